package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gobevtrend_api/internal/app"
	"gobevtrend_api/internal/scraper/adapters"

	"gobevtrend_api/config"
	"gobevtrend_api/pkg/dbconnect/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the application config")
	flag.Parse()

	appConfig, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	connector := postgres.NewPgConnector(&appConfig.Postgres)
	server := app.NewServer(connector, appConfig, os.Stdout)

	// Real distributor adapters are registered here by deployments; the
	// offline mock keeps the wiring exercisable without credentials.
	for _, d := range appConfig.Distributors {
		server.Registry().Register(d.Slug, adapters.NewMockScraper(d.Slug, 2000))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Started app")
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
