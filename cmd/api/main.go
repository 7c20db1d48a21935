package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"taskai/api/internal/app"
	"taskai/api/internal/assistant"
	"taskai/api/internal/config"
	"taskai/api/internal/ratelimit"
	"taskai/api/internal/search"
	"taskai/api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	pg := search.NewPostgres(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pg)
	searchService.ReindexAllFromPG(ctx)

	var limiter *ratelimit.Limiter
	if strings.TrimSpace(cfg.RedisURL) != "" {
		limiter, err = ratelimit.New(cfg.RedisURL, cfg.AssistantRateLimit, time.Minute)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer limiter.Close()
		log.Printf("assistant rate limiting enabled: %d requests/minute per client", cfg.AssistantRateLimit)
	}

	assistantClient := assistant.New(cfg.AssistantAPIKey, cfg.AssistantModel, cfg.AssistantTimeout)

	service := app.New(cfg, dataStore, assistantClient, searchService)
	httpServer := app.NewHTTPServer(service, limiter, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("TaskAI API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
