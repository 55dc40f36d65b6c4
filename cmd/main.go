package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"CancelDash/internal/appmanager"
	"CancelDash/internal/logger"
)

func main() {
	// Load .env for local dev
	_ = godotenv.Load("../.env")
	_ = godotenv.Load()

	// amounts and ratios go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	servicesFile := os.Getenv("SERVICES_FILE")
	if servicesFile == "" {
		servicesFile = "../services.yaml"
	}

	manager := appmanager.NewAppManager(appmanager.NewShared())

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(servicesFile)
	if err != nil {
		log.Fatal("failed to load service sequence: ", err)
	}

	// Automatically register all services
	manager.AutoRegisterServices(servicesCfg)

	// Start all services
	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start: ", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	logger.L().Infow("shutting down", "signal", sig.String())

	// Stop all services
	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop: ", err)
	}
}
