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

	"github.com/exotic-travel-booking/backend/internal/api"
	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/config"
	"github.com/exotic-travel-booking/backend/internal/days"
	"github.com/exotic-travel-booking/backend/internal/geocoder"
	"github.com/exotic-travel-booking/backend/internal/httpclient"
	"github.com/exotic-travel-booking/backend/internal/images"
	"github.com/exotic-travel-booking/backend/internal/llmreasoning"
	"github.com/exotic-travel-booking/backend/internal/metrics"
	"github.com/exotic-travel-booking/backend/internal/orchestrator"
	"github.com/exotic-travel-booking/backend/internal/route"
	"github.com/exotic-travel-booking/backend/internal/routing"
	"github.com/exotic-travel-booking/backend/internal/spatial"
	"github.com/exotic-travel-booking/backend/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cleanup, err := observability.InitTracing("itinerary-engine", cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer cleanup()

	metrics.InitGlobalCollector()
	defer metrics.StopGlobalCollector()

	o := buildOrchestrator(cfg)
	handler := api.NewRouter(o, api.Config{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// buildOrchestrator wires every singleton collaborator together: the
// shared HTTP client pool, the two-tier cache, the reasoning provider, and
// each external-provider client, matching the teacher's
// repository-then-service-then-handler construction order.
func buildOrchestrator(cfg *config.Config) *orchestrator.Orchestrator {
	pool := httpclient.NewPool()
	pool.Register("geocoder", httpclient.DefaultClientConfig())
	pool.Register("images", httpclient.DefaultClientConfig())
	pool.Register("routing", httpclient.DefaultClientConfig())
	pool.Register("spatial", httpclient.DefaultClientConfig())

	var distributed *cache.DistributedCache
	if cfg.Redis.Host != "" {
		d, err := cache.NewDistributedCache(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("redis distributed cache unavailable, running local-only: %v", err)
		} else {
			distributed = d
		}
	}
	c := cache.New(distributed)

	llmProvider := llmreasoning.NewProvider(llmreasoning.Config{
		OpenAIAPIKey:    cfg.LLM.OpenAIAPIKey,
		OpenAIModel:     cfg.LLM.OpenAIModel,
		AnthropicAPIKey: cfg.LLM.AnthropicAPIKey,
		AnthropicModel:  cfg.LLM.AnthropicModel,
	})

	geocoderClient := geocoder.New(pool, c, geocoder.Config{
		PrimaryBaseURL:   cfg.Geocoder.PrimaryBaseURL,
		SecondaryBaseURL: cfg.Geocoder.SecondaryBaseURL,
		UserAgent:        cfg.Geocoder.UserAgent,
	})

	spatialClient := spatial.New(spatial.Config{
		Endpoint: cfg.Spatial.Endpoint,
		Workers:  cfg.Spatial.Workers,
	}, pool.Client("spatial"))

	imagesClient := images.New(pool)

	routingClient := routing.New(pool, routing.Config{BaseURL: cfg.Routing.BaseURL})
	optimizer := route.New(routingClient)
	partitioner := days.New(routingClient)

	return orchestrator.New(orchestrator.Deps{
		LLM:          llmProvider,
		Geocoder:     geocoderClient,
		Spatial:      spatialClient,
		Images:       imagesClient,
		Optimizer:    optimizer,
		Partitioner:  partitioner,
		Cache:        c,
		DiscoveryTTL: cfg.Cache.DiscoveryTTL,
		PlaceTTL:     cfg.Cache.PlaceTTL,
	})
}
