package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/goldenleaf/goldpay/internal/api"
	"github.com/goldenleaf/goldpay/internal/assistant"
	"github.com/goldenleaf/goldpay/internal/auth"
	"github.com/goldenleaf/goldpay/internal/cache"
	"github.com/goldenleaf/goldpay/internal/service"
	"github.com/goldenleaf/goldpay/internal/storage/sqlite"
	"github.com/goldenleaf/goldpay/pkg/logging"
)

const (
	suggestionTTL      = 6 * time.Hour
	suggestionCooldown = 60 * time.Second
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/goldpay.db")
	port := getEnv("PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	payBaseURL := getEnv("PAY_BASE_URL", "http://localhost:"+port)
	geminiKey := os.Getenv("GEMINI_API_KEY")

	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	jwtTTL := 24 * time.Hour
	if raw := os.Getenv("JWT_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			slog.Error("Invalid JWT_TTL_HOURS", "value", raw)
			os.Exit(1)
		}
		jwtTTL = time.Duration(hours) * time.Hour
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, jwtTTL)
	assistantClient := assistant.New(geminiKey,
		cache.NewTTL(suggestionTTL),
		cache.NewCooldown(suggestionCooldown),
	)

	server := api.NewServer(
		service.NewUserService(store, jwtManager),
		service.NewPaymentService(store),
		service.NewSplitService(store),
		service.NewDashboardService(store),
		assistantClient,
		jwtManager,
		payBaseURL,
	)

	addr := ":" + port
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
