package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Abdurahmanit/GroupProject/room-service/internal/adapter/httpapi"
	natsadapter "github.com/Abdurahmanit/GroupProject/room-service/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/adapter/repository/cache"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/adapter/storage/s3"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/mailer"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/domain"
	"github.com/Abdurahmanit/GroupProject/room-service/internal/room/usecase"
)

type App struct {
	cfg            *config.Config
	log            *logger.Logger
	server         *httpapi.Server
	sessions       *httpapi.SessionHandler
	profiles       *usecase.ProfileUsecase
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
	tracerProvider *sdktrace.TracerProvider
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	appLogger := logger.NewLogger(&cfg.Logger)
	appLogger.Info("Logger initialized", "level", cfg.Logger.Level, "http_port", cfg.HTTP.Port)

	a := &App{cfg: cfg, log: appLogger}
	if err := a.init(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.cfg

	tp, err := tracer.InitTracer(ctx, cfg.Tracing, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	a.tracerProvider = tp

	appMetrics := metrics.New("room_service")

	a.log.Info("Initializing MongoDB client...")
	a.mongoClient, err = mongodb.NewClient(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	db := a.mongoClient.Database(cfg.Mongo.Database)
	roomRepo := mongodb.NewRoomRepository(db, cfg.Mongo.PollInterval, a.log)
	if err := roomRepo.EnsureIndexes(ctx); err != nil {
		a.log.Warn("Failed to ensure room indexes", "error", err.Error())
	}
	userRepo := mongodb.NewUserRepository(db, a.log)
	a.log.Info("MongoDB repositories initialized", "database", cfg.Mongo.Database)

	a.log.Info("Initializing Redis client...")
	a.redisClient, err = cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis client: %w", err)
	}

	a.log.Info("Initializing MinIO storage...")
	avatars, err := s3.NewAvatarStorage(ctx, cfg.MinIO, a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize avatar storage: %w", err)
	}

	a.log.Info("Connecting to NATS...")
	a.natsConn, err = natsadapter.NewConnection(cfg.NATS, a.log)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	publisher := natsadapter.NewPublisher(a.natsConn, a.log)

	var notifier domain.Mailer
	if cfg.SMTP.Enabled() {
		smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			return fmt.Errorf("failed to initialize mailer: %w", err)
		}
		notifier = smtpMailer
		a.log.Info("SMTP mailer enabled", "host", cfg.SMTP.Host)
	} else {
		a.log.Info("SMTP not configured, profile update emails disabled")
	}

	savedRooms := usecase.NewSavedRoomsUsecase(roomRepo, publisher, a.log)
	savedRooms.SetTimeout(cfg.Rooms.RemoteTimeout)
	a.profiles = usecase.NewProfileUsecase(userRepo, avatars, publisher, notifier, a.log)
	a.profiles.SetTimeout(cfg.Rooms.RemoteTimeout)

	rooms := cache.NewCachedRoomStore(savedRooms, cache.NewSavedRoomsCache(a.redisClient, cfg.Redis.TTL), a.log)

	verifier := auth.NewTokenVerifier(cfg.JWT.Secret)
	a.sessions = httpapi.NewSessionHandler(httpapi.SessionDeps{
		Verifier:       verifier,
		Rooms:          rooms,
		Users:          a.profiles,
		Profiles:       userRepo,
		Events:         natsadapter.NewSessionListener(a.natsConn, a.log),
		Prices:         domain.NewPriceFormatter(cfg.Rooms.Locale),
		Metrics:        appMetrics,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
	}, a.log)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Logger:   a.log,
		Metrics:  appMetrics,
		Verifier: verifier,
		Sessions: a.sessions,
		Checks: map[string]httpapi.HealthCheck{
			"mongo": func(ctx context.Context) error { return a.mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return a.redisClient.Ping(ctx).Err() },
			"nats": func(context.Context) error {
				if !a.natsConn.IsConnected() {
					return fmt.Errorf("nats status %s", a.natsConn.Status())
				}
				return nil
			},
		},
	})
	a.server = httpapi.NewServer(cfg.HTTP, router, a.log)
	return nil
}

// Run serves until SIGINT/SIGTERM or a server error, then shuts down.
func (a *App) Run() error {
	a.log.Info("Starting application components...")

	errCh, err := a.server.Start()
	if err != nil {
		a.close(context.Background())
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		a.log.Info("Received shutdown signal, shutting down application...", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			a.log.Error("HTTP server failed", "error", err.Error())
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Error during HTTP server shutdown", "error", err.Error())
	}
	if err := a.sessions.Close(shutdownCtx); err != nil {
		a.log.Warn("Sessions did not close in time", "error", err.Error())
	}
	a.profiles.Wait()
	a.close(shutdownCtx)

	a.log.Info("Application shut down successfully")
	return runErr
}

func (a *App) close(ctx context.Context) {
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Error("Error draining NATS connection", "error", err.Error())
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", "error", err.Error())
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Error("Error disconnecting from MongoDB", "error", err.Error())
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Error shutting down tracer provider", "error", err.Error())
		}
	}
	_ = a.log.Sync()
}
