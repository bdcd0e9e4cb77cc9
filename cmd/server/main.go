package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/giftpot/giftpot/internal/middleware"
	"github.com/giftpot/giftpot/internal/service"
	"github.com/giftpot/giftpot/pkg/logging"
)

const defaultPort = "8080"

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	balances := service.NewBalanceService()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics)
	router.Use(middleware.CORS)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Post("/v1/settlements", balances.ComputeSettlements)
	router.Post("/v1/settlements/{personID}", balances.SettlementsForPerson)

	// HTTP/2 without TLS; the proxy in front terminates TLS.
	handler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%s", getEnv("PORT", defaultPort))
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
