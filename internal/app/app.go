package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dhoini/notification-relay/internal/config"
	"github.com/Dhoini/notification-relay/internal/http/handlers"
	"github.com/Dhoini/notification-relay/internal/middleware"
	"github.com/Dhoini/notification-relay/internal/services"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

// App представляет собой контейнер для всех компонентов HTTP слоя
type App struct {
	Config *config.Config

	ContactHandler *handlers.ContactHandler
	PaymentHandler *handlers.PaymentHandler
	WebhookHandler *handlers.WebhookHandler
	HealthHandler  *handlers.HealthHandler

	LoggerMiddleware   gin.HandlerFunc
	ContactRateLimiter *middleware.IPRateLimiter
	WebhookRateLimiter *middleware.IPRateLimiter

	Gatherer prometheus.Gatherer
	Logger   *logger.Logger
}

// NewApp создает и инициализирует новый экземпляр приложения
func NewApp(
	cfg *config.Config,
	contactService *services.ContactService,
	paymentService *services.PaymentService,
	gatherer prometheus.Gatherer,
	log *logger.Logger,
) *App {
	return &App{
		Config: cfg,

		ContactHandler: handlers.NewContactHandler(contactService, cfg.Mail.SupportEmail, log),
		PaymentHandler: handlers.NewPaymentHandler(paymentService, cfg.IsProduction(), log),
		WebhookHandler: handlers.NewWebhookHandler(paymentService, log),
		HealthHandler:  handlers.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version),

		LoggerMiddleware:   middleware.RequestLogger(log),
		ContactRateLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.ContactRequests, cfg.RateLimit.ContactWindow, log),
		WebhookRateLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.WebhookRequests, cfg.RateLimit.WebhookWindow, log),

		Gatherer: gatherer,
		Logger:   log,
	}
}
