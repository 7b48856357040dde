package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"call-dashboard/internal/config"
	"call-dashboard/internal/httpapi"
	"call-dashboard/internal/notify"
	"call-dashboard/internal/records"
	"call-dashboard/internal/session"
	"call-dashboard/internal/upstream"
	"call-dashboard/pkg/logger"
	"call-dashboard/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	api, err := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	}, log)
	if err != nil {
		log.Error("upstream client init failed", "err", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	verifier, err := session.NewVerifier(cfg.Auth.TokenSecret, cfg.Auth.TokenIssuer, cfg.Auth.TokenAudience)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	gate := session.NewGate(api, verifier, session.NewRedisStore(rdb), cfg.Auth.SessionTTL, log)
	store := records.NewStore(api, log)

	poller := notify.NewPoller(api, cfg.App.PollInterval, log)
	poller.Start(rootCtx)
	defer poller.Stop()

	h := httpapi.Handlers{
		Gate:     gate,
		Store:    store,
		Upstream: api,
		Poller:   poller,
	}

	r := newRouter(cfg, log, gate, h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("dashboard gateway listening", "addr", srv.Addr, "env", cfg.App.Env, "upstream", cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
