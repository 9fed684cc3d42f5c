package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"lbry-tech/internal/alert"
	"lbry-tech/internal/auth"
	"lbry-tech/internal/config"
	"lbry-tech/internal/db"
	"lbry-tech/internal/feed"
	myMiddleware "lbry-tech/internal/middleware"
	"lbry-tech/internal/metrics"
	"lbry-tech/internal/newsletter"
	"lbry-tech/internal/realtime"
	"lbry-tech/internal/router"
	"lbry-tech/internal/tour"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Config & Flags
	configPath := flag.String("config", "", "path to YAML config (environment variables when empty)")
	addr := flag.String("addr", "", "http service address (overrides ip/port from config)")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	for _, m := range cfg.Missing() {
		logger.Warn("[missing] " + m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Alerts (Slack + optional PostgreSQL log)
	alerts, history, closeDB := setupAlerts(ctx, cfg, logger)
	defer closeDB()

	// 3. Connect to Redis (feed store)
	store, closeRedis := setupStore(ctx, cfg, alerts, logger)
	defer closeRedis()

	// 4. Feature wiring
	m := metrics.New("lbrytech")

	// Without an access token every daemon call would be rejected, so the
	// tour is left unwired and its messages are dropped.
	var tourHandler router.TourHandler
	if cfg.Daemon.AccessToken != "" {
		daemon := tour.NewClient(cfg.Daemon.URL, cfg.Daemon.AccessToken,
			tour.WithTimeout(cfg.Daemon.Timeout),
			tour.WithLogger(logger),
		)
		tourHandler = tour.NewGateway(daemon, cfg.Daemon.ImagesPath, alerts, logger)
	}

	github := feed.NewGitHubClient(cfg.GitHub.APIURL, cfg.GitHub.Token,
		feed.WithTimeout(cfg.GitHub.Timeout),
		feed.WithLogger(logger),
	)
	var feedStore feed.Store
	if store != nil {
		feedStore = store
	}
	cache := feed.NewCache(feedStore, github, cfg.GitHub.Org,
		feed.WithAlerts(alerts),
		feed.WithCacheLogger(logger),
	)
	refresher := feed.NewRefresher(cache, cfg.GitHub.RefreshInterval, logger)

	subscriber := newsletter.NewGateway(cfg.Newsletter.URL, alerts,
		newsletter.WithTimeout(cfg.Newsletter.Timeout),
		newsletter.WithLogger(logger),
	)

	msgRouter := router.New(tourHandler, cache, subscriber, m, logger)

	hub := realtime.NewHub(m, logger)
	wsHandler := realtime.NewHandler(hub, msgRouter, cfg.Server.AllowedOrigins, m, logger)

	authService := auth.NewService(cfg.Ops.JWTSecret)
	authMiddleware := myMiddleware.NewAuthMiddleware(authService)
	feedHandler := feed.NewHandler(cache)
	alertHandler := alert.NewHandler(history)

	// 5. Define Routes
	r := newRouter(routes{
		ws:        wsHandler.ServeWs,
		healthz:   healthz(hub, store),
		metrics:   m.Handler(),
		auth:      authMiddleware.Handle,
		refresh:   feedHandler.Refresh,
		alerts:    alertHandler.Recent,
		origins:   cfg.Server.AllowedOrigins,
		staticDir: cfg.Server.StaticDir,
	})

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = net.JoinHostPort(cfg.Server.IP, strconv.Itoa(cfg.Server.Port))
	}
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Run until signalled
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		log.Fatalf("❌ Failed to listen on %s: %v", listenAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if err := refresher.Start(gctx); err != nil {
		log.Fatalf("❌ Failed to start feed refresher: %v", err)
	}

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := refresher.Stop(shutdownCtx); err != nil {
			logger.Warn("feed refresher stop", "error", err)
		}
		err := srv.Shutdown(shutdownCtx)
		cache.Wait()
		return err
	})

	port := ln.Addr().(*net.TCPAddr).Port
	if cfg.Development() {
		logger.Info(fmt.Sprintf("⚡ %d", port))
	} else {
		alerts.Notify(ctx, fmt.Sprintf("Server started at port `%d`", port))
	}
	logger.Info("🚀 Server starting", "addr", ln.Addr().String())

	if err := g.Wait(); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.Development() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// setupAlerts builds the alert reporter. Development keeps alerts on the
// console; production posts to Slack. The PostgreSQL log is used in both
// when a DSN is set.
func setupAlerts(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*alert.Reporter, alert.History, func()) {
	var (
		sinks   alert.Multi
		history alert.History
		closeDB = func() {}
	)

	if cfg.Alerts.DatabaseDSN != "" {
		database, err := db.NewDatabase(ctx, cfg.Alerts.DatabaseDSN)
		if err != nil {
			logger.Error("❌ Failed to connect to PostgreSQL", "error", err)
		} else if err := database.AutoMigrate(ctx); err != nil {
			logger.Error("❌ Migration failed", "error", err)
			database.Close()
		} else {
			logger.Info("✅ Connected to PostgreSQL")
			dbSink := alert.NewDBSink(database.Conn)
			sinks = append(sinks, dbSink)
			history = dbSink
			closeDB = func() { database.Close() }
		}
	}

	if cfg.Alerts.SlackWebhookURL != "" && !cfg.Development() {
		sinks = append(sinks, alert.NewSlackSink(cfg.Alerts.SlackWebhookURL, nil))
	}

	var sink alert.Sink
	if len(sinks) > 0 {
		if cfg.Development() {
			sinks = append(sinks, alert.NewLogSink(logger))
		}
		sink = sinks
	}
	return alert.NewReporter(sink, logger), history, closeDB
}

// setupStore connects the feed's sorted set. It returns nil when Redis or
// the GitHub token is not configured, which disables the feed.
func setupStore(ctx context.Context, cfg *config.Config, alerts *alert.Reporter, logger *slog.Logger) (*feed.RedisStore, func()) {
	noop := func() {}
	if cfg.Redis.URL == "" || cfg.GitHub.Token == "" {
		return nil, noop
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("❌ Invalid Redis URL", "error", err)
		return nil, noop
	}
	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// go-redis reconnects on demand; keep the store and report.
		if cfg.Development() {
			logger.Warn("Unable to connect to Redis client. You may be missing a config file or your connection was reset.", "error", err)
		} else {
			alerts.Report(ctx, alert.KindRedis, err,
				"Someone is trying to run LBRY.tech locally without environment variables OR Heroku is busted")
		}
	} else {
		logger.Info("✅ Connected to Redis")
	}

	return feed.NewRedisStore(redisClient, feed.DefaultKey), func() { redisClient.Close() }
}

func healthz(hub *realtime.Hub, store *feed.RedisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"status":      "ok",
			"connections": hub.Count(),
		}
		if store != nil {
			n, err := store.Len(r.Context())
			if err != nil {
				status["feed"] = err.Error()
			} else {
				status["feed_entries"] = n
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}
