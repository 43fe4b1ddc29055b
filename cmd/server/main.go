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

	"maxwavex-backend/internal/config"
	"maxwavex-backend/internal/database"
	"maxwavex-backend/internal/handlers"
	"maxwavex-backend/internal/middleware"
	"maxwavex-backend/internal/repository"
	"maxwavex-backend/internal/router"
	"maxwavex-backend/internal/services"
	"maxwavex-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting MaxWaveX Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	guestRepo := repository.NewGuestRepo(pool)
	moduleRepo := repository.NewModuleRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	gameRepo := repository.NewGameRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	guestTTL := time.Duration(cfg.GuestSessionMinutes) * time.Minute
	authService := services.NewAuthService(userRepo, guestRepo, redisClients.Tokens, jwtAuth, guestTTL)
	progressService := services.NewProgressService(progressRepo, moduleRepo)
	gameService := services.NewGameService(gameRepo, redisClients.PubSub)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	moduleHandler := handlers.NewModuleHandler(moduleRepo)
	progressHandler := handlers.NewProgressHandler(progressService)
	gameHandler := handlers.NewGameHandler(gameService)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub)
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authService,
		authHandler,
		moduleHandler,
		progressHandler,
		gameHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ MaxWaveX Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws/leaderboard", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
