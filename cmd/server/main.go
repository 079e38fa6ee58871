package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recallhq/recall/internal/api"
	"github.com/recallhq/recall/internal/cache"
	"github.com/recallhq/recall/internal/config"
	"github.com/recallhq/recall/internal/core"
	"github.com/recallhq/recall/internal/llm"
	"github.com/recallhq/recall/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for seeding the default category tree
	seedUserFlag := flag.Int64("seed-categories", 0, "Seed the default category tree for the given user ID and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewPostgresStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	categoryService := core.NewCategoryService(dbStore)

	// Handle category seeding if the flag is set
	if *seedUserFlag != 0 {
		log.Printf("Seeding default categories for user %d...", *seedUserFlag)
		if err := categoryService.SeedDefaults(*seedUserFlag); err != nil {
			log.Fatalf("Category seeding failed: %v", err)
		}
		log.Println("Category seeding complete. Exiting.")
		os.Exit(0)
	}

	// Initialize LLM client
	llmClient := llm.NewClient()

	// Analysis cache: Redis when configured, in-process otherwise
	var backend cache.Backend
	if config.AppConfig.RedisAddr != "" {
		backend = cache.NewRedisBackend(config.AppConfig.RedisAddr, "recall:analysis:")
		log.Printf("Analysis cache using Redis at %s", config.AppConfig.RedisAddr)
	} else {
		backend = cache.NewMemoryBackend()
	}
	analysisCache := cache.New(backend, time.Duration(config.AppConfig.CacheTTLMin)*time.Minute)

	// Initialize services
	learner := core.NewCategoryLearner(dbStore)
	extractor := core.NewExtractor(dbStore, llmClient, analysisCache, learner)
	conceptService := core.NewConceptService(dbStore, learner)
	quizService := core.NewQuizService(dbStore, llmClient)
	journeyService := core.NewJourneyService(dbStore, llmClient)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(dbStore, extractor, conceptService, categoryService, quizService, journeyService, learner)
	limiter := api.NewRateLimiter(config.AppConfig.RateLimitRPM, config.AppConfig.RedisAddr)
	router := api.NewRouter(apiHandler, limiter)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // extraction runs several LLM calls
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
