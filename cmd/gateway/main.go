package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"csvchat/internal/config"
	"csvchat/internal/httpapi"
)

func main() {
	// Local development reads credentials from a .env file; absence is
	// fine in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	handler, deps, err := httpapi.NewRouter(cfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	// Refuse to start without at least one credentialed provider; every
	// /chat call would fail anyway.
	detected, ok := deps.Gateway.DetectProvider()
	if !ok {
		log.Println("Error: no LLM provider configured!")
		log.Println("Set one of the following:")
		log.Println("- ANTHROPIC_API_KEY for Claude (direct file upload)")
		log.Println("- OPENAI_API_KEY for GPT")
		log.Println("- AZURE_OPENAI_API_KEY and AZURE_OPENAI_ENDPOINT for Azure OpenAI")
		log.Println("- GOOGLE_API_KEY for Gemini")
		os.Exit(1)
	}
	log.Printf("Using LLM provider: %s (model %s)", detected.Kind, detected.DefaultModel)

	addr := ":" + cfg.HTTPPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // provider calls can run long
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("csvchat gateway listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Flush buffered usage records and close clients.
	if err := deps.Shutdown(ctx); err != nil {
		log.Printf("Failed to shut down dependencies: %v", err)
	}

	log.Println("Server exited")
}
