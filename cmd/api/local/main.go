//go:build !lambda
// +build !lambda

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/server"
	"go.uber.org/zap"
)

// @title           Wallet Policy API
// @version         1.0
// @description     Session keys, gas policies and multisig approvals for smart wallets

// @host      localhost:8000
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx := context.Background()

	logger.InitLogger(os.Getenv("STAGE"))

	cfg, _, err := server.LoadConfig(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	defer logger.Sync()
	// .env is read by LoadConfig, after the logger was built.
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logger.SetLevel(lvl)
	}

	srv, err := server.New(ctx, cfg, server.Options{})
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              srv.Addr(),
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	srv.Close()

	logger.Info("Server exiting")
}
