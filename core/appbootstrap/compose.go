package appbootstrap

import (
	"database/sql"

	"threatwatch/api"
	"threatwatch/config"
	"threatwatch/core/advisory"
	"threatwatch/core/statsreport"
	"threatwatch/core/store"
	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	workers    []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) *runtimeComposition {
	threatsStore := store.NewThreatsStore(db)
	activityStore := store.NewActivityStore(db)
	messagesStore := store.NewMessagesStore(db)

	svc := threats.NewService(threatsStore, activityStore, messagesStore, logger)
	advisor := advisory.NewClient(cfg.Advisory)
	if advisor == nil {
		logger.Printf("advisory disabled: no API key configured")
	}
	reporter := statsreport.NewReporter(cfg.StatsReport, svc, logger)

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			DB:       db,
			Threats:  svc,
			Advisory: advisor,
		},
		workers: []api.BackgroundWorker{reporter},
	}
}
