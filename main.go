package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-booking/internal/auth"
	"ms-booking/internal/booking"
	"ms-booking/internal/booking/booking_api"
	bookingdb "ms-booking/internal/booking/db"
	"ms-booking/internal/booking/qr"
	bookingredis "ms-booking/internal/booking/redis"
	"ms-booking/internal/catalog"
	"ms-booking/internal/catalog/catalog_api"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/kafka"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/stats"
	stats_api "ms-booking/internal/stats/api"
)

// openLedger connects the configured backend: postgres for the networked
// deployment, sqlite for the local store. Postgres gets a few connection
// retries because the database usually starts alongside the service.
func openLedger(cfg *config.Config, log *logger.Logger) *bun.DB {
	if cfg.Storage.Backend == config.BackendLocal {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to open sqlite store: %v", err))
		}
		log.Info("DATABASE", fmt.Sprintf("✅ Local sqlite store at %s", cfg.Storage.SQLitePath))
		return bun.NewDB(sqldb, sqlitedialect.New())
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Storage.PostgresDSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	log.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

// bootstrapLocalSchema creates the sqlite tables; postgres uses the
// golang-migrate runner instead.
func bootstrapLocalSchema(ctx context.Context, db *bun.DB, log *logger.Logger) {
	for _, model := range []interface{}{(*models.Event)(nil), (*models.Booking)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to create local schema: %v", err))
		}
	}
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := openLedger(cfg, log)
	defer bunDB.Close()

	if cfg.Storage.Backend == config.BackendLocal {
		bootstrapLocalSchema(ctx, bunDB, log)
	} else {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.Run(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
	}

	// --- Booking lock: redis when configured, in-process otherwise ---
	var locker booking.EventLocker = booking.NewMutexLocker()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
		}
		defer redisClient.Close()
		log.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
		locker = bookingredis.NewLock(redisClient, cfg.Redis.LockTTL)
	} else {
		log.Info("APP", "Using in-process booking lock (single instance mode)")
	}

	// --- Kafka ---
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.BookingCreated,
			cfg.Kafka.Topics.BookingCancelled,
			cfg.Kafka.Topics.EventDeactivated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, booking events will not be published")
	}

	// --- Services ---
	ledger := &bookingdb.DB{Bun: bunDB}
	catalogDB := &catalog.DB{Bun: bunDB}

	var bookingPublisher booking.EventPublisher
	var catalogPublisher catalog.DeactivationPublisher
	if producer != nil {
		bookingPublisher = producer
		catalogPublisher = producer
	}

	catalogService := catalog.NewService(catalogDB, ledger, catalogPublisher)
	bookingService := booking.NewBookingService(ledger, catalogService, locker, bookingPublisher)
	statsService := stats.NewService(bunDB)

	qrSecret := os.Getenv("QR_SECRET_KEY")
	if qrSecret == "" {
		qrSecret = "booking-confirmation"
		log.Warn("CONFIG", "QR_SECRET_KEY not set, using default secret")
	}
	qrGen := qr.NewGenerator(qrSecret)

	bookingHandler := booking_api.NewHandler(bookingService, qrGen, log)
	catalogHandler := catalog_api.NewHandler(catalogService, log)
	statsHandler := stats_api.NewHandler(statsService, log)

	// --- Event deactivation cascade ---
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.EventDeactivated, cfg.Kafka.GroupID)
		defer consumer.Close()

		log.LogKafka("SUBSCRIBE", cfg.Kafka.Topics.EventDeactivated, "event deactivation cascade consumer starting")

		go consumer.Start(ctx, func(ctx context.Context, ev kafka.EventDeactivated) {
			reason := ev.Reason
			if reason == "" {
				reason = "Event cancelled by organizer"
			}
			n, err := bookingService.CancelAllForEvent(ctx, ev.EventID, reason)
			if err != nil {
				log.Error("CASCADE", fmt.Sprintf("Failed to cancel bookings for event %s: %v", ev.EventID, err))
				return
			}
			log.Info("CASCADE", fmt.Sprintf("Cancelled %d bookings for deactivated event %s", n, ev.EventID))
		})
	}

	// --- Router ---
	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(auth.RequestLogger(log))

	r.Route("/api", func(r chi.Router) {
		// Public catalog reads
		catalogHandler.RegisterPublicRoutes(r)

		// Everything else needs an authenticated holder
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.OIDCIssuer))
			log.Info("AUTH", "OIDC middleware applied to protected API routes")

			bookingHandler.RegisterRoutes(r)
			statsHandler.RegisterRoutes(r)
			catalogHandler.RegisterAdminRoutes(r)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Booking Service shutdown complete")
	}
}
