package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	webAdapter "ledger-engine/internal/adapters/web"
	"ledger-engine/internal/app"
	"ledger-engine/internal/db"
	"ledger-engine/internal/logging"
	"ledger-engine/internal/sources"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log := logging.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	store := sources.NewStore(pool, log)
	svc := app.NewAppService(store, log, debounceWindow())
	defer svc.Close()

	listener := sources.NewListener(pool, log)
	go listener.Run(ctx, svc.RefreshSource)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, log)

	log.Infof("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// debounceWindow reads REFRESH_DEBOUNCE_MS; zero falls through to the
// service default.
func debounceWindow() time.Duration {
	raw := os.Getenv("REFRESH_DEBOUNCE_MS")
	if raw == "" {
		return 0
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
