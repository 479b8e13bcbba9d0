package main

import (
	"LeftoverLink/cmd/config"
	migration "LeftoverLink/cmd/database/migrate"
	"LeftoverLink/cmd/database/seed"
	"LeftoverLink/internal/utils"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	defaultPort          = "3000"
	defaultSweepInterval = 10 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			return
		case "seed":
			responseCache := config.ConnectCache()
			defer responseCache.Close()
			if err := seed.Seed(ctx, db, responseCache); err != nil {
				log.Fatalf("Seeding failed: %v", err)
			}
			return
		default:
			log.Fatalf("unknown command %q, expected migrate or seed", os.Args[1])
		}
	}

	deps, err := config.LoadDeps()
	if err != nil {
		log.Fatalf("Error loading dependencies: %v", err)
	}
	defer deps.Cache.Close()

	app, err := config.NewApp(db, deps)
	if err != nil {
		log.Fatalf("Error creating app: %v", err)
	}

	go app.DonationService.RunExpirySweep(ctx, utils.GetConfigDuration("EXPIRY_SWEEP_INTERVAL", defaultSweepInterval))

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorf("Shutdown failed: %v", err)
		}
	}()

	port := utils.GetConfigDefault("APP_PORT", defaultPort)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
