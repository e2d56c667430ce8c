package statsreport

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"threatwatch/config"
	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

// Reporter periodically writes an aggregate snapshot of the threat register
// to the process log. It only reads; nothing in the store is mutated.
type Reporter struct {
	cfg    config.StatsReportConfig
	svc    *threats.Service
	logger *utils.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewReporter(cfg config.StatsReportConfig, svc *threats.Service, logger *utils.Logger) *Reporter {
	return &Reporter{cfg: cfg, svc: svc, logger: logger}
}

func (r *Reporter) Start(ctx context.Context) {
	if r == nil || !r.cfg.Enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return
	}
	c := cron.New()
	if _, err := c.AddFunc(r.cfg.Schedule, func() { r.report() }); err != nil {
		r.logger.Errorf("stats reporter schedule %q: %v", r.cfg.Schedule, err)
		return
	}
	c.Start()
	r.cron = c
	r.logger.Printf("stats reporter started with schedule %q", r.cfg.Schedule)
}

func (r *Reporter) Stop(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return nil
	}
	done := c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (r *Reporter) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stats, err := r.svc.Stats(ctx)
	if err != nil {
		r.logger.Errorf("stats snapshot: %v", err)
		return
	}
	total := 0
	critical := 0
	for _, lc := range stats.Levels {
		total += lc.Count
		if lc.Level == threats.MaxLevel {
			critical = lc.Count
		}
	}
	r.logger.Printf("threat register snapshot: total=%d critical=%d categories=%d months=%d",
		total, critical, len(stats.Categories), len(stats.Monthly))
}
