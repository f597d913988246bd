package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"github.com/Dhoini/notification-relay/internal/app"
	"github.com/Dhoini/notification-relay/internal/config"
	"github.com/Dhoini/notification-relay/internal/http/routes"
	"github.com/Dhoini/notification-relay/internal/kafka"
	"github.com/Dhoini/notification-relay/internal/kafka/producer"
	"github.com/Dhoini/notification-relay/internal/mail"
	"github.com/Dhoini/notification-relay/internal/metrics"
	"github.com/Dhoini/notification-relay/internal/repository"
	"github.com/Dhoini/notification-relay/internal/services"
	"github.com/Dhoini/notification-relay/internal/stripe"
	"github.com/Dhoini/notification-relay/internal/templates"
	"github.com/Dhoini/notification-relay/internal/validation"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

func main() {
	// Загружаем конфигурацию. Без обязательных переменных сервис не стартует.
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.INFO).Fatalw("Failed to load configuration", "error", err)
	}

	log := logger.New(logger.ParseLevel(cfg.App.LogLevel))
	defer log.Sync()

	log.Infow("Notification relay starting up...")

	// Устанавливаем режим Gin в зависимости от окружения
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Mail.TimeZone)
	if err != nil {
		log.Fatalw("Failed to load mail time zone", "error", err, "timezone", cfg.Mail.TimeZone)
	}

	// Метрики
	registry := metrics.NewRegistry()
	notificationMetrics := metrics.NewNotificationMetrics(registry)

	// Хранилище обработанных событий вебхука (опционально)
	var eventStore repository.EventStore = repository.NopEventStore{}
	if cfg.Redis.Addr != "" {
		store, err := repository.NewRedisEventStore(context.Background(),
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.DedupTTL, log)
		if err != nil {
			// Не фатально: повторы отсеиваются только в пределах этого процесса
			log.Warnw("Failed to initialize Redis, falling back to in-memory webhook deduplication", "error", err)
			eventStore = repository.NewInMemoryEventStore(cfg.Redis.DedupTTL, log)
		} else {
			eventStore = store
			defer func() {
				if err := store.Close(); err != nil {
					log.Errorw("Error closing Redis connection", "error", err)
				}
			}()
		}
	} else {
		log.Infow("REDIS_ADDR is not set, webhook deduplication disabled")
	}

	// Инициализируем Kafka Producer (опционально)
	var audit producer.NotificationProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaCfg := kafka.NewConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		syncProducer, err := kafka.NewSyncProducer(kafkaCfg, log)
		if err != nil {
			log.Errorw("Failed to initialize Kafka producer, continuing without audit events", "error", err)
		} else {
			audit = producer.NewKafkaNotificationProducer(syncProducer, kafkaCfg.Topic, log)
			defer func() {
				if err := audit.Close(); err != nil {
					log.Errorw("Error closing Kafka producer", "error", err)
				}
			}()
		}
	}

	// Внешние сервисы
	sender := mail.NewZeptoMailClient(cfg.Mail.URL, cfg.Mail.Token, cfg.Mail.Timeout, log)
	stripeClient := stripe.NewStripeClient(cfg.Stripe.SecretKey, log)
	verifier := stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret, log)

	// Инициализируем service layer
	formatter := templates.NewFormatter(cfg.Mail.BrandName, cfg.Mail.SupportEmail, loc)
	notifier := services.NewNotificationService(sender, formatter, services.NotificationConfig{
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		AdminEmail:  cfg.Mail.AdminEmail,
		BrandName:   cfg.Mail.BrandName,
	}, notificationMetrics, audit, time.Now, log)

	contactService := services.NewContactService(validation.NewContactValidator(loc, time.Now), notifier, notificationMetrics, log)
	paymentService := services.NewPaymentService(stripeClient, verifier, notifier, eventStore, notificationMetrics, log)

	application := app.NewApp(cfg, contactService, paymentService, registry, log)

	router := gin.New()
	routes.SetupRoutes(router, application, log)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout(),
	}

	// Запускаем HTTP сервер в горутине
	go func() {
		log.Infow("Server started",
			"port", cfg.Server.Port,
			"environment", cfg.App.Env,
			"admin_email", cfg.Mail.AdminEmail,
			"allowed_origins", cfg.App.AllowedOrigins,
			"timezone", loc.String(),
			"redis", cfg.Redis.Addr != "",
			"kafka", audit != nil,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infow("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}

	log.Infow("Server stopped gracefully")
}
