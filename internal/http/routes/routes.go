package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dhoini/notification-relay/internal/app"
	"github.com/Dhoini/notification-relay/internal/http/handlers"
	"github.com/Dhoini/notification-relay/internal/middleware"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

// MaxJSONBodySize лимит тела для JSON и form маршрутов
const MaxJSONBodySize = int64(10 * 1024)

// SetupRoutes настраивает все маршруты API для Gin роутера
func SetupRoutes(router *gin.Engine, app *app.App, log *logger.Logger) {
	// Без TRUSTED_PROXIES X-Forwarded-For игнорируется
	if err := router.SetTrustedProxies(app.Config.App.TrustedProxies); err != nil {
		log.Errorw("Invalid TRUSTED_PROXIES, client IP falls back to the socket address", "error", err)
		_ = router.SetTrustedProxies(nil)
	}

	// Промежуточное ПО для всех запросов
	router.Use(middleware.RequestID())
	router.Use(app.LoggerMiddleware)
	router.Use(middleware.Recovery(log, app.Config.IsProduction()))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(app.Config.App.AllowedOrigins))

	router.GET("/", app.HealthHandler.Root)
	router.GET("/health", app.HealthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(app.Gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		// Форма обратной связи
		api.POST("/contact",
			app.ContactRateLimiter.Middleware(middleware.RateLimitMessage),
			middleware.BodyLimit(MaxJSONBodySize),
			app.ContactHandler.Submit,
		)

		payment := api.Group("/payment")
		{
			payment.POST("/create-payment-intent",
				middleware.BodyLimit(MaxJSONBodySize),
				app.PaymentHandler.CreatePaymentIntent,
			)

			// Вебхук Stripe: сырое тело, лимит внутри обработчика
			payment.POST("/webhook",
				app.WebhookRateLimiter.Middleware(middleware.RateLimitMessage),
				app.WebhookHandler.HandleStripeWebhook,
			)
		}
	}

	router.NoRoute(handlers.NotFound)

	log.Infow("API routes successfully configured")
}
