package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"facebook-extractor/internal/config"
	"facebook-extractor/internal/scraper"
	"facebook-extractor/internal/utils"
)

func main() {
	configFile := flag.String("config", "configs/config.yaml", "Configuration file path")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, closeLog, err := utils.SetupLogger("debug", "", true)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	authManager, err := scraper.NewAuthManager(cfg.Facebook.BaseURL, cfg.Facebook.Auth, logger)
	if err != nil {
		log.Fatalf("Failed to create auth manager: %v", err)
	}

	fmt.Println("Testing cookie loading...")
	cookies, err := authManager.LoadCookies()
	if err != nil {
		log.Fatalf("Failed to load cookies: %v", err)
	}
	if err := scraper.ValidateCookies(cookies); err != nil {
		log.Fatalf("Cookie file is not usable: %v", err)
	}

	fmt.Println("Testing authentication...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Facebook.PageTimeout())
	defer cancel()
	start := time.Now()
	if err := authManager.ValidateAuth(ctx); err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}

	fmt.Printf("✅ Cookies are valid and authentication successful! (%s)\n", time.Since(start).Round(time.Millisecond))
}
