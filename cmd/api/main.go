package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/luxstay/internal/apiclient"
	"github.com/diagnosis/luxstay/internal/booking"
	httpmw "github.com/diagnosis/luxstay/internal/http/middleware"
	"github.com/diagnosis/luxstay/internal/http/router"
	"github.com/diagnosis/luxstay/internal/messaging"
	"github.com/diagnosis/luxstay/internal/session"
	"github.com/diagnosis/luxstay/pkg/cache"
	"github.com/diagnosis/luxstay/pkg/config"
	"github.com/diagnosis/luxstay/pkg/database"
	"github.com/diagnosis/luxstay/pkg/events"
	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/diagnosis/luxstay/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Log.Level)
	metrics.Register()

	ctx := context.Background()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		publisher = nc
	}
	defer publisher.Close()

	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis {
		rc, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Error("Failed to configure Redis", "error", err)
			os.Exit(1)
		}
		if err := cache.Ping(ctx, rc); err != nil {
			logger.Error("Redis unavailable", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		redisClient = rc
	}

	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		store = session.NewRedisStore(redisClient, "luxstay:session:"+cfg.Session.Key)
	case config.SessionStorePostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg := session.NewPostgresStore(pool, cfg.Session.Key)
		if err := pg.Migrate(ctx); err != nil {
			logger.Error("Failed to prepare session table", "error", err)
			os.Exit(1)
		}
		store = pg
	default:
		store = session.NewMemoryStore()
	}

	holder := session.NewHolder(store)
	api := apiclient.New(cfg.API.BaseURL, holder, cfg.API.Timeout,
		apiclient.WithBreaker(cfg.API.BreakerFailures, cfg.API.BreakerTimeout))

	sessions := session.NewService(api, holder, publisher)
	if _, err := sessions.Restore(ctx); err != nil {
		logger.Warn("Starting signed out", "error", err)
	}

	var counter httpmw.Counter = httpmw.NewMemoryCounter()
	if redisClient != nil {
		counter = httpmw.NewRedisCounter(redisClient)
	}

	handler := router.New(router.Deps{
		Sessions:    sessions,
		Bookings:    booking.NewManager(api, publisher),
		Inbox:       messaging.NewInbox(api, holder, publisher),
		CORSOrigins: cfg.Server.CORSOrigins,
		LoginLimiter: httpmw.NewRateLimiter(counter, httpmw.RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
		}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down luxstay client...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting luxstay client", "port", cfg.Server.Port, "api", cfg.API.BaseURL, "session_store", cfg.Session.Store)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
