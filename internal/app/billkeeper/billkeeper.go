// Package billkeeper собирает и запускает веб-приложение учёта счетов.
package billkeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/billkeeper/internal/cache"
	"github.com/magabrotheeeer/billkeeper/internal/config"
	"github.com/magabrotheeeer/billkeeper/internal/http/view"
	jwtlib "github.com/magabrotheeeer/billkeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/billkeeper/internal/migrations"
	"github.com/magabrotheeeer/billkeeper/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/billkeeper/internal/services/auth"
	billservice "github.com/magabrotheeeer/billkeeper/internal/services/bill"
	groupservice "github.com/magabrotheeeer/billkeeper/internal/services/group"
	"github.com/magabrotheeeer/billkeeper/internal/session"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
	"github.com/magabrotheeeer/billkeeper/internal/uploads"
)

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	amqpConn  *amqp.Connection
	publisher *rabbitmq.Publisher
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = waitForDB(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwtlib.NewMaker(cfg.SessionToken.SecretKey, cfg.SessionToken.TTL)
	sessions := session.NewManager(cacheRedis, maker, cfg.SessionToken.CookieName, cfg.SessionToken.TTL)

	saver, err := uploads.New(cfg.Uploads.Dir)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitURL, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		publisher, err = rabbitmq.NewPublisher(amqpConn)
		if err != nil {
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
	} else {
		logger.Warn("rabbit_url is empty, audit events are disabled")
	}

	v, err := view.New(logger)
	if err != nil {
		return nil, err
	}

	var (
		authService  *authservice.AuthService
		groupService *groupservice.GroupService
		billService  *billservice.BillService
	)
	if publisher != nil {
		authService = authservice.NewAuthService(db, publisher, logger)
		groupService = groupservice.NewGroupService(db, cacheRedis, publisher, logger)
		billService = billservice.NewBillService(db, publisher, logger)
	} else {
		authService = authservice.NewAuthService(db, nil, logger)
		groupService = groupservice.NewGroupService(db, cacheRedis, nil, logger)
		billService = billservice.NewBillService(db, nil, logger)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, groupService, billService, sessions, saver, v)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		amqpConn:  amqpConn,
		publisher: publisher,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.publisher != nil {
			if cerr := a.publisher.Close(); cerr != nil {
				a.logger.Error("failed to close publisher", slog.Any("err", cerr))
			}
		}
		if a.amqpConn != nil {
			if cerr := a.amqpConn.Close(); cerr != nil {
				a.logger.Error("failed to close RabbitMQ connection", slog.Any("err", cerr))
			}
		}
		a.db.DB.Close()
		return err
	}
}
