package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/channelops/commission-review/internal/api"
	"github.com/channelops/commission-review/internal/config"
	"github.com/channelops/commission-review/internal/fetch"
	"github.com/channelops/commission-review/internal/repository"
	"github.com/channelops/commission-review/internal/review"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Infof("Initializing run-history database at %s", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	runRepo := repository.NewRunRepo(db)

	client := fetch.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger)

	svc := review.NewService(client, runRepo, review.Config{
		Tolerance:        cfg.Tolerance,
		TestEnterpriseID: cfg.TestEnterpriseID,
		PageSize:         cfg.PageSize,
	}, logger)

	router := api.NewRouter(svc, client, runRepo, cfg.TestEnterpriseID, logger)

	logger.Info("Channel Commission Review")
	logger.Infof("Upstream: %s (tolerance=%s)", cfg.UpstreamBaseURL, cfg.Tolerance)
	logger.Infof("Listening on http://localhost:%s", cfg.Port)
	logger.Info("Endpoints:")
	logger.Info("  POST   /api/v1/commission/calculate")
	logger.Info("  GET    /api/v1/commission/records")
	logger.Info("  GET    /api/v1/commission/summary")
	logger.Info("  GET    /api/v1/commission/export")
	logger.Info("  GET    /api/v1/rollups/jurisdictions")
	logger.Info("  GET    /api/v1/rollups/enterprises")
	logger.Info("  GET    /api/v1/enterprises")
	logger.Info("  GET    /api/v1/navigator/current")
	logger.Info("  POST   /api/v1/navigator/next")
	logger.Info("  POST   /api/v1/navigator/prev")
	logger.Info("  GET    /api/v1/runs")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
