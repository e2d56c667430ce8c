package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"threatwatch/config"
	"threatwatch/core/appbootstrap"
	"threatwatch/core/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	// Missing .env is fine; production supplies real environment variables.
	_ = godotenv.Load()

	logger := utils.NewLogger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}

	if err := appbootstrap.Run(cfg, logger); err != nil {
		logger.Errorf("server exited: %v", err)
		os.Exit(1)
	}
}
