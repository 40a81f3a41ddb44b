package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"facebook-extractor/internal/config"
	"facebook-extractor/internal/database"
	"facebook-extractor/internal/monitoring"
	"facebook-extractor/internal/utils"
)

func main() {
	var (
		configFile  = flag.String("config", "configs/config.yaml", "Configuration file path")
		metricsFile = flag.String("metrics", "", "Metrics file path (overrides monitoring.metrics_file)")
		report      = flag.Bool("report", false, "Generate and display monitoring report")
		alerts      = flag.Bool("alerts", false, "Check and display alerts")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := utils.SetupLogger(cfg.Logging.Level, "", false)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	if *metricsFile != "" {
		cfg.Monitoring.MetricsFile = *metricsFile
	}
	monitor := monitoring.NewMonitor(logger, cfg.Monitoring.MetricsFile)
	staleAfter := time.Duration(cfg.Monitoring.StaleAfterMinutes) * time.Minute

	if *report {
		fmt.Println(monitor.GenerateReport())

		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			return
		}
		defer db.Close()

		stats, err := db.GetScrapingStats(context.Background())
		if err != nil {
			logger.Errorf("Failed to get database stats: %v", err)
			return
		}
		fmt.Println("\nDatabase Statistics:")
		fmt.Printf("- Total Posts: %v\n", stats["total_posts"])
		fmt.Printf("- Video Posts: %v\n", stats["video_posts"])
		fmt.Printf("- Profiles: %v\n", stats["total_users"])
		fmt.Printf("- Average Reactions: %.2f\n", stats["average_reactions"])
		fmt.Printf("- Last Scraped: %v\n", stats["last_scraped_at"])
		fmt.Printf("- Posts by Shape: %v\n", stats["posts_by_shape"])
		fmt.Printf("- Posts by Sieve: %v\n", stats["posts_by_sieve"])
		return
	}

	if *alerts {
		alertManager := monitoring.NewAlertManager(monitor, monitoring.AlertThresholds{
			StaleAfter:       staleAfter,
			MaxErrorRate:     cfg.Monitoring.MaxErrorRate,
			MaxUnhandledRate: cfg.Monitoring.MaxUnhandledRate,
		}, logger)
		active := alertManager.CheckAlerts()

		if len(active) == 0 {
			fmt.Println("✅ No alerts - extractor is healthy")
		} else {
			fmt.Println("⚠️  Active Alerts:")
			for _, alert := range active {
				fmt.Printf("  - %s\n", alert)
			}
			alertManager.SendAlerts(active)
		}
		return
	}

	health := monitor.GetHealthStatus(staleAfter)
	fmt.Println("Facebook Extractor Status:")
	fmt.Printf("- Status: %s\n", health["status"])
	fmt.Printf("- Last Run: %s\n", health["last_run"])
	fmt.Printf("- Total Lookups: %v\n", health["total_lookups"])
	fmt.Printf("- Error Rate: %s\n", health["error_rate"])
	fmt.Printf("- Unhandled Rate: %s\n", health["unhandled_rate"])
	fmt.Printf("- Average Lookup Time: %s\n", health["average_lookup_time"])

	if warning, exists := health["warning"]; exists {
		fmt.Printf("- Warning: %s\n", warning)
	}
}
