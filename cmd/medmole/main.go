package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medmole/medmole/internal/analysis"
	"github.com/medmole/medmole/internal/config"
	"github.com/medmole/medmole/internal/database"
	"github.com/medmole/medmole/internal/llm"
	"github.com/medmole/medmole/internal/logging"
	"github.com/medmole/medmole/internal/predictor"
	"github.com/medmole/medmole/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	provider, err := llm.New(llm.Config{
		Provider:       cfg.LLMProvider,
		DeepSeekAPIKey: cfg.DeepSeekAPIKey,
		DeepSeekModel:  cfg.DeepSeekModel,
		OllamaURL:      cfg.OllamaURL,
		OllamaModel:    cfg.OllamaModel,
		TimeoutSeconds: cfg.LLMTimeout,
	})
	if err != nil {
		log.Fatalf("failed to configure llm provider: %v", err)
	}
	logger.Info("llm provider ready", "provider", provider.Name())

	runner := predictor.NewRunner(cfg.PhysicalModelPath, cfg.MentalModelPath, 0, logger)

	srv := server.New(db, provider, runner, logger)

	scheduler, err := analysis.StartScheduler(srv.Analysis(),
		time.Duration(cfg.AnalysisInterval)*time.Minute)
	if err != nil {
		log.Fatalf("failed to start analysis scheduler: %v", err)
	}
	defer func() { _ = scheduler.Shutdown() }()

	// Periodic housekeeping for expired sessions and stale rate-limit keys.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-stop:
				return
			}
		}
	}()

	// Chat replies wait on the model backend, so the write deadline must
	// outlast the llm timeout.
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: time.Duration(cfg.LLMTimeout+30) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Medmole running at http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(stop)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
