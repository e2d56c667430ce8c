package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"threatwatch/api/handlers"
	"threatwatch/config"
	"threatwatch/core/advisory"
	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

// BackgroundWorker is anything with a lifecycle tied to the server process.
type BackgroundWorker interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

type ServerDeps struct {
	DB       *sql.DB
	Threats  *threats.Service
	Advisory *advisory.Client
}

type Server struct {
	cfg      *config.AppConfig
	db       *sql.DB
	threats  *threats.Service
	advisory *advisory.Client
	logger   *utils.Logger
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	return &Server{
		cfg:      cfg,
		db:       deps.DB,
		threats:  deps.Threats,
		advisory: deps.Advisory,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.logMiddleware)
	r.Use(s.corsMiddleware)

	th := handlers.NewThreatsHandler(s.threats, s.logger)
	ah := handlers.NewAdvisoryHandler(s.advisory, s.threats, s.logger)

	advisoryRate := 10
	if s.cfg != nil && s.cfg.Advisory.RatePerMin > 0 {
		advisoryRate = s.cfg.Advisory.RatePerMin
	}
	limitAdvisory := s.rateLimit(newLimiter(advisoryRate, time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.MethodFunc(http.MethodGet, "/health", s.handleHealth)

		r.MethodFunc(http.MethodPost, "/threats", th.Create)
		r.MethodFunc(http.MethodGet, "/threats", th.List)
		r.MethodFunc(http.MethodGet, "/threats/unresolved", th.Unresolved)
		r.MethodFunc(http.MethodGet, "/threats/stats", th.Stats)
		r.MethodFunc(http.MethodGet, "/threats/{id:[0-9]+}", th.Get)
		r.MethodFunc(http.MethodPut, "/threats/{id:[0-9]+}", th.Update)
		r.MethodFunc(http.MethodGet, "/threats/{id:[0-9]+}/messages", th.ListMessages)
		r.MethodFunc(http.MethodPost, "/threats/{id:[0-9]+}/messages", th.PostMessage)
		r.MethodFunc(http.MethodGet, "/threats/{id:[0-9]+}/logs", th.ListLogs)

		r.MethodFunc(http.MethodPost, "/analyze-threat-level", limitAdvisory(ah.AnalyzeLevel))
		r.MethodFunc(http.MethodPost, "/threats/ai-analysis", limitAdvisory(ah.Narrative))
		r.MethodFunc(http.MethodPost, "/generate-sample-threats", limitAdvisory(ah.GenerateSamples))
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
