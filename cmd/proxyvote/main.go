package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/proxyvote-app/proxyvote/internal/app"
	"github.com/proxyvote-app/proxyvote/internal/config"
	"github.com/proxyvote-app/proxyvote/internal/logging"
)

func main() {
	var configPath string
	var migrateOnly bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&migrateOnly, "migrate", false, "run database migrations and exit")
	flag.Parse()

	// Missing .env is fine; env vars may come from the environment itself.
	_ = godotenv.Load()

	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		log.Fatalf("load config: %v", errLoad)
	}
	logging.Setup(cfg.Log)

	if migrateOnly {
		if errMigrate := app.Migrate(cfg); errMigrate != nil {
			log.Fatalf("migrate: %v", errMigrate)
		}
		log.Info("migrations applied")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := app.RunServer(ctx, cfg); errRun != nil {
		log.Fatalf("server: %v", errRun)
	}
}
