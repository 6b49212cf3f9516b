// Package main is the entry point for the voice assistant core server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/internal/client"
	"github.com/cojovi/cmac-chat-module-win86/internal/config"
	"github.com/cojovi/cmac-chat-module-win86/internal/handler"
	"github.com/cojovi/cmac-chat-module-win86/internal/middleware"
	"github.com/cojovi/cmac-chat-module-win86/internal/service"
	"github.com/cojovi/cmac-chat-module-win86/internal/state"
	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
)

func main() {
	// Load .env if present; environment wins over file values.
	_ = godotenv.Load()

	srvCfg := config.LoadServer()

	log, err := logger.New(srvCfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting voice assistant core")

	manager, err := config.NewManager()
	if err != nil {
		log.Error("failed to initialize config manager", zap.Error(err))
		os.Exit(1)
	}

	cfg, err := manager.Load()
	if err != nil {
		log.Error("failed to load configuration", zap.Error(err))
		os.Exit(1)
	}

	// Missing keys are not fatal: clients degrade at call time and
	// connectivity reports disconnected.
	creds := manager.ResolveCredentials()

	st := state.New(cfg, creds, log)

	// A client that fails construction stays nil; its operations fail and
	// connectivity reports it disconnected.
	var transcriber service.Transcriber
	if c, err := client.NewWhisperClient(cfg.Whisper, creds.Whisper, log); err != nil {
		log.Warn("transcription client unavailable", zap.Error(err))
	} else {
		transcriber = c
	}

	var chatter service.Chatter
	if c, err := client.NewOpenWebUIClient(cfg.OpenWebUI, creds.OpenWebUI, log); err != nil {
		log.Warn("chat client unavailable", zap.Error(err))
	} else {
		chatter = c
	}

	var synthesizer service.Synthesizer
	if c, err := client.NewElevenLabsClient(cfg.ElevenLabs, creds.ElevenLabs, log); err != nil {
		log.Warn("speech client unavailable", zap.Error(err))
	} else {
		synthesizer = c
	}

	pipeline := service.NewPipeline(st, manager, transcriber, chatter, synthesizer, log)

	// Initial connectivity check in the background so startup never blocks
	// on unreachable services.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		pipeline.CheckConnectivity(ctx)
	}()

	healthHandler := handler.NewHealthHandler(st)
	pipelineHandler := handler.NewPipelineHandler(pipeline, log)
	settingsHandler := handler.NewSettingsHandler(pipeline, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "tauri://localhost"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(srvCfg.RateLimitRequests, srvCfg.RateLimitWindow))

		r.Post("/transcriptions", pipelineHandler.Transcribe)
		r.Post("/messages", pipelineHandler.SendMessage)
		r.Post("/speech", pipelineHandler.Synthesize)
		r.Post("/voice-query", pipelineHandler.VoiceQuery)

		r.Get("/config", settingsHandler.GetConfig)
		r.Put("/config", settingsHandler.PutConfig)
		r.Put("/credentials/{service}", settingsHandler.PutCredential)
		r.Put("/voice-settings", settingsHandler.PutVoiceSettings)
		r.Get("/voices", settingsHandler.GetVoices)

		r.Post("/connectivity/check", settingsHandler.CheckConnectivity)
		r.Get("/state", settingsHandler.GetState)
		r.Get("/conversation", settingsHandler.GetConversation)
		r.Delete("/conversation", settingsHandler.ClearConversation)
	})

	server := &http.Server{
		Addr:         "127.0.0.1:" + srvCfg.Port,
		Handler:      r,
		ReadTimeout:  srvCfg.ReadTimeout,
		WriteTimeout: srvCfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
