package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bornholm/go-x/slogx"

	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/httpapi"
	platformclock "github.com/Overland-East-Bay/membership-tracker/internal/platform/clock"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/config"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/logging"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

func main() {
	conf, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %+v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(conf.Logger.Level), conf.Logger.Format)
	slog.SetDefault(logger)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	app, err := setup.New(ctx, conf, logger, clk)
	if err != nil {
		logger.Error("could not initialize storage", slogx.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	go setup.PurgeIdempotency(ctx, app.Idempotency, clk, conf.Idempotency.Retention, conf.Idempotency.PurgeInterval,
		logger.With(slog.String("component", "idempotency")))

	api := httpapi.NewServer(app.Service, app.Idempotency, clk, logger.With(slog.String("component", "httpapi")))

	router := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		CORSAllowedOrigins: conf.HTTP.CORSAllowedOrigins,
		RateLimit: httpapi.RateLimitOptions{
			Enabled:           conf.HTTP.RateLimit.Enabled,
			Interval:          conf.HTTP.RateLimit.Interval,
			Burst:             conf.HTTP.RateLimit.Burst,
			CacheSize:         conf.HTTP.RateLimit.CacheSize,
			TTL:               conf.HTTP.RateLimit.TTL,
			TrustProxyHeaders: conf.HTTP.RateLimit.TrustProxyHeaders,
		},
	})

	srv := &http.Server{
		Addr:              conf.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: conf.HTTP.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("api listening", slog.String("address", conf.HTTP.Address), slog.String("storage", conf.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", slogx.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slogx.Error(err))
	}
}
