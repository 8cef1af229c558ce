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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/roundtable-hq/orchestrator/internal/adapter/gateway"
	"github.com/roundtable-hq/orchestrator/internal/adapter/notify"
	"github.com/roundtable-hq/orchestrator/internal/config"
	"github.com/roundtable-hq/orchestrator/internal/policy"
	store "github.com/roundtable-hq/orchestrator/internal/repository"
	"github.com/roundtable-hq/orchestrator/internal/roster"
	"github.com/roundtable-hq/orchestrator/internal/service"
	v1 "github.com/roundtable-hq/orchestrator/internal/transport/http/v1"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting roundtable orchestrator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Gateway URL: %s", cfg.GatewayURL)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Seed the provider/personality catalog
	ctx := context.Background()
	catalog := roster.Default()
	if cfg.RosterFile != "" {
		catalog, err = roster.LoadFile(cfg.RosterFile)
		if err != nil {
			log.Fatalf("Failed to load roster file: %v", err)
		}
		log.Printf("Loaded roster from %s", cfg.RosterFile)
	}
	if err := roster.Seed(ctx, db, catalog); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	// Initialize provider gateway
	gw := gateway.NewGateway(cfg.GatewayURL, cfg.GatewayAPIKey, cfg.TurnTimeout, cfg.CostPerKTokens)

	// Initialize notification client
	notifier := notify.NewClient(cfg.NotifyURL)

	// Initialize session-admission policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(db, gw, notifier, cfg, policyEngine)

	// Initialize handlers
	h := v1.NewHandler(svc)

	// Create Echo server
	server := echo.New()
	server.HideBanner = true

	// Middleware
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())
	server.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(server)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down orchestrator...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Orchestrator stopped")
}
