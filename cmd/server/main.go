package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumo/backend/config"
	httpDelivery "github.com/jumo/backend/internal/delivery/http"
	"github.com/jumo/backend/internal/domain"
	"github.com/jumo/backend/internal/infrastructure/aivision"
	"github.com/jumo/backend/internal/infrastructure/database"
	"github.com/jumo/backend/internal/infrastructure/openfoodfacts"
	"github.com/jumo/backend/internal/infrastructure/storage"
	"github.com/jumo/backend/internal/usecase"
)

func main() {
	log := newLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Environment == "development" {
		log = log.Level(zerolog.DebugLevel)
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting jumo backend")

	// Database
	db, err := database.Open(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	foods := database.NewProviderFoodRepository(db)
	meals := database.NewMealRepository(db)
	items := database.NewMealItemRepository(db)

	// The nutrient catalog is loaded once and shared read-only.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	catalog, err := database.NewNutrientRepository(db).ListNutrients(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load nutrient catalog")
	}
	log.Info().Int("nutrients", len(catalog)).Msg("nutrient catalog loaded")

	// Provider clients
	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, log)
	visionClient := aivision.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, log)

	imageStore, err := storage.NewS3Store(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize photo storage")
	}

	// Usecase layer
	resolver := usecase.NewResolver(
		foods,
		map[domain.Provider]domain.ProviderAdapter{
			domain.ProviderBarcodeDB: offClient,
			domain.ProviderAIVision:  aivision.NewAdapter(),
		},
		catalog,
		usecase.ResolverConfig{
			TTL:          cfg.Resolver.TTL,
			FetchTimeout: cfg.Resolver.FetchTimeout,
		},
		log,
	)
	snapshots := usecase.NewSnapshotService(foods, items, log)
	mealService := usecase.NewMealService(meals, items, log)
	estimation := usecase.NewEstimationService(visionClient, imageStore, resolver, cfg.Storage.Bucket, log)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(resolver, snapshots, mealService, estimation, offClient, visionClient, foods, imageStore, log)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, log)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
