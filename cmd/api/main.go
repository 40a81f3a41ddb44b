package main

import (
	"context"
	"flag"
	"log"

	"facebook-extractor/internal/api"
	"facebook-extractor/internal/config"
	"facebook-extractor/internal/database"
	"facebook-extractor/internal/monitoring"
	"facebook-extractor/internal/utils"
)

func main() {
	var (
		configFile = flag.String("config", "configs/config.yaml", "Configuration file path")
		port       = flag.Int("port", 0, "API server port (overrides api.port)")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.File, *debug)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(context.Background()); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	if *port != 0 {
		cfg.API.Port = *port
	}
	monitor := monitoring.NewMonitor(logger, cfg.Monitoring.MetricsFile)
	server := api.NewServer(db, monitor, logger, cfg.API.Port)

	logger.Info("Available endpoints:")
	logger.Info("  GET  /api/posts - List posts with pagination")
	logger.Info("  GET  /api/posts/shape/{shape} - Posts of one shape")
	logger.Info("  GET  /api/stats - Extraction statistics")
	logger.Info("  GET  /api/export/csv - Export posts to CSV")
	logger.Info("  GET  /api/health - Health check")
	logger.Info("  GET  /metrics - Prometheus metrics")
	logger.Info("  GET  /dashboard - Web dashboard")

	if err := server.Start(); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
