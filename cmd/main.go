package main

import (
	"context"
	"os"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/config"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/controllers"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/routes"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/services"

	"github.com/rs/zerolog"
)

func main() {
	config.InitDB()
	settings := config.LoadSettings()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	logs := services.NewLogService(config.DB)
	journal := services.NewJournalService(logs)
	off := services.NewOFFService()
	barcodes := services.NewBarcodeService()
	hub := services.NewRealtimeHub()

	// dashboards always get live updates; the Firestore mirror only when
	// configured. Absent config means an absent target, not a nil check
	// downstream.
	targets := []services.SyncTarget{hub}
	if settings.FirestoreURL != "" {
		targets = append(targets, services.NewFirebaseService(settings.FirestoreURL, settings.FirestoreToken))
	} else {
		logger.Warn().Msg("no Firestore config, remote mirror disabled")
	}
	dispatcher := services.NewSyncDispatcher(logs, logger, targets...)

	var oracle services.Oracle
	if settings.OpenAIKey != "" {
		oracle = services.NewOpenAIService(settings.OpenAIKey)
	} else {
		logger.Warn().Msg("no OpenAI key, using Rekognition/OFF fallback oracle")
		rek, err := services.NewRekognitionService(context.Background(), settings.AWSRegion)
		if err != nil {
			logger.Fatal().Err(err).Msg("fallback oracle init failed")
		}
		oracle = services.NewFallbackOracle(rek, off)
	}

	conv := services.NewConversationService(logs, journal, oracle, off, barcodes, dispatcher, logger)

	r := routes.SetupRouter(settings, routes.Controllers{
		Event:    controllers.NewEventController(conv),
		Journal:  controllers.NewJournalController(journal, logs),
		Goal:     controllers.NewGoalController(logs, conv),
		Realtime: controllers.NewRealtimeController(hub),
	})
	if err := r.Run(settings.ListenAddr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
