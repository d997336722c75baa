// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iyunix/go-aichat/internal/app"
	"github.com/iyunix/go-aichat/internal/config"
	"github.com/iyunix/go-aichat/internal/services"
)

func main() {
	fmt.Println("Testing the configured AI provider...")

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.AIAPIKey == "" {
		log.Fatal("AI_API_KEY not set in environment")
	}

	fmt.Printf("Endpoint: %s\n", cfg.AIBaseURL)
	fmt.Printf("Model:    %s\n", cfg.AIModel)
	fmt.Printf("API key:  %s\n", services.Mask(cfg.AIAPIKey))

	client := app.ProvideAIClient(cfg, nil, &services.NoOpLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+5*time.Second)
	defer cancel()

	start := time.Now()
	status := client.CheckHealth(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	if !status.IsHealthy {
		fmt.Printf("Provider unhealthy after %s: %s\n", elapsed, status.Error)
		os.Exit(1)
	}
	fmt.Printf("Provider healthy (%s)\n", elapsed)
}
