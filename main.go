package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/bitvote/auth"
	"github.com/danielhkuo/bitvote/cliparse"
	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/ledger/ledgerdb"
	"github.com/danielhkuo/bitvote/logging"
	"github.com/danielhkuo/bitvote/middleware"
	"github.com/danielhkuo/bitvote/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}

	// Open the world state
	db, err := ledgerdb.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("ledger open failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Ledger ready", "type", cfg.DatabaseType)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := middleware.RegisterMetrics(registry); err != nil {
		slog.Error("metrics registration failed", "error", err)
		os.Exit(1)
	}

	gw, err := gateway.New(db, gateway.Options{
		AdminID:    cfg.AdminID,
		OpenSignup: cfg.OpenSignup,
		CacheSize:  cfg.IdentityCacheSize,
		Logger:     logger,
		Registerer: registry,
	})
	if err != nil {
		slog.Error("gateway setup failed", "error", err)
		os.Exit(1)
	}

	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		slog.Error("session setup failed", "error", err)
		os.Exit(1)
	}

	oauth := auth.NewOAuth(auth.OAuthConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
	}, sessions.Secret())
	if oauth == nil {
		slog.Warn("GOOGLE_CLIENT_ID not set, sign-in disabled")
	}

	// Create router
	mux := router.NewRouter(router.Deps{
		Gateway:  gw,
		Sessions: sessions,
		OAuth:    oauth,
		Gatherer: registry,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "admin", cfg.AdminID, "open_signup", cfg.OpenSignup)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
