package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gokaizen/adapters/archive"
	"gokaizen/app"
	"gokaizen/internal/config"
	"gokaizen/internal/dataset"
	"gokaizen/internal/logging"
	"gokaizen/internal/simulation"
	"gokaizen/ports"
	"gokaizen/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := logging.Init(logging.Options{
		Verbose:    appConfig.Logging.Verbose,
		LogsFolder: appConfig.Logging.LogsFolder,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logging")
	}
	if envErr != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var history ports.DatasetArchive
	if appConfig.Database.Enabled() {
		db, err := archive.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Str("driver", appConfig.Database.Driver).Msg("failed to initialize archive database")
		}
		defer db.Close()
		history = archive.NewRepository(db)
		log.Info().Str("driver", appConfig.Database.Driver).Msg("dataset archive enabled")
	} else {
		log.Info().Msg("DATABASE_URL not set, dataset archive disabled")
	}

	gin.SetMode(appConfig.Server.GinMode)

	service := app.NewAnalysisService(dataset.NewStore(), simulation.NewGenerator(), history)
	server := ui.NewServer(service, ui.Options{
		AllowedOrigins:     appConfig.Server.AllowedOrigins,
		SimulationDefaults: appConfig.Simulation,
	})

	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
