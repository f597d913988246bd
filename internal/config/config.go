package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Окружение, в котором внутренние ошибки скрываются от клиентов.
const EnvProduction = "production"

// Переменные окружения, без которых сервис не стартует.
var requiredKeys = []string{
	"ZEPTOMAIL_URL",
	"ZEPTOMAIL_TOKEN",
	"ZEPTOMAIL_FROM_ADDRESS",
	"ZEPTOMAIL_FROM_NAME",
	"STRIPE_SECRET_KEY",
	"STRIPE_WEBHOOK_SECRET",
	"ADMIN_EMAIL",
}

// Config представляет конфигурацию приложения. Создается один раз при старте
// и дальше только читается.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Mail      MailConfig
	Stripe    StripeConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// AppConfig общие настройки сервиса
type AppConfig struct {
	Env            string
	LogLevel       string
	ServiceName    string
	Version        string
	AllowedOrigins []string
	// TrustedProxies адреса/CIDR прокси, чьим X-Forwarded-For можно верить. Пусто: IP берется из сокета.
	TrustedProxies []string
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// MailConfig конфигурация ZeptoMail и шаблонов писем
type MailConfig struct {
	URL          string
	Token        string
	FromAddress  string
	FromName     string
	AdminEmail   string
	BrandName    string
	SupportEmail string
	TimeZone     string
	Timeout      time.Duration
}

// StripeConfig конфигурация Stripe
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// RedisConfig конфигурация хранилища обработанных событий вебхука.
// Пустой Addr отключает дедупликацию.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	DedupTTL time.Duration
}

// KafkaConfig конфигурация аудита уведомлений. Пустой список брокеров отключает публикацию.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RateLimitConfig лимиты запросов на один IP
type RateLimitConfig struct {
	ContactRequests int
	ContactWindow   time.Duration
	WebhookRequests int
	WebhookWindow   time.Duration
}

// MissingEnvError возвращается, если не заданы обязательные переменные окружения.
type MissingEnvError struct {
	Keys []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// maxMailSteps максимальное число писем в одном сценарии
const maxMailSteps = 3

// HTTPWriteTimeout WriteTimeout сервера: не меньше, чем нужно на самый длинный сценарий
// из maxMailSteps последовательных вызовов почтового API.
func (c *Config) HTTPWriteTimeout() time.Duration {
	workflow := time.Duration(maxMailSteps)*c.Mail.Timeout + 5*time.Second
	if c.Server.WriteTimeout > workflow {
		return c.Server.WriteTimeout
	}
	return workflow
}

// IsProduction сообщает, запущен ли сервис в production окружении
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// Load загружает конфигурацию из .env файла (вне production) и переменных окружения.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != EnvProduction {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingEnvError{Keys: missing}
	}

	cfg := &Config{
		App: AppConfig{
			Env:            v.GetString("APP_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ServiceName:    v.GetString("SERVICE_NAME"),
			Version:        v.GetString("SERVICE_VERSION"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Mail: MailConfig{
			URL:          v.GetString("ZEPTOMAIL_URL"),
			Token:        v.GetString("ZEPTOMAIL_TOKEN"),
			FromAddress:  v.GetString("ZEPTOMAIL_FROM_ADDRESS"),
			FromName:     v.GetString("ZEPTOMAIL_FROM_NAME"),
			AdminEmail:   v.GetString("ADMIN_EMAIL"),
			BrandName:    v.GetString("BRAND_NAME"),
			SupportEmail: v.GetString("SUPPORT_EMAIL"),
			TimeZone:     v.GetString("MAIL_TIMEZONE"),
			Timeout:      time.Duration(v.GetInt("MAIL_TIMEOUT_SECONDS")) * time.Second,
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			DedupTTL: time.Duration(v.GetInt("WEBHOOK_DEDUP_TTL_HOURS")) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		RateLimit: RateLimitConfig{
			ContactRequests: v.GetInt("CONTACT_RATE_LIMIT"),
			ContactWindow:   time.Duration(v.GetInt("CONTACT_RATE_WINDOW_MINUTES")) * time.Minute,
			WebhookRequests: v.GetInt("WEBHOOK_RATE_LIMIT"),
			WebhookWindow:   time.Duration(v.GetInt("WEBHOOK_RATE_WINDOW_MINUTES")) * time.Minute,
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "NHS Career Boost Mail Server")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
	v.SetDefault("ALLOWED_ORIGINS", "https://nhscareerboost.co.uk,http://127.0.0.1:5500")

	v.SetDefault("PORT", "3000")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)

	v.SetDefault("BRAND_NAME", "NHS Career Boost")
	v.SetDefault("SUPPORT_EMAIL", "daniel@nhscareerboost.co.uk")
	v.SetDefault("MAIL_TIMEZONE", "Europe/London")
	v.SetDefault("MAIL_TIMEOUT_SECONDS", 15)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("WEBHOOK_DEDUP_TTL_HOURS", 72)
	v.SetDefault("KAFKA_TOPIC", "notifications.dispatched")

	v.SetDefault("CONTACT_RATE_LIMIT", 5)
	v.SetDefault("CONTACT_RATE_WINDOW_MINUTES", 15)
	v.SetDefault("WEBHOOK_RATE_LIMIT", 100)
	v.SetDefault("WEBHOOK_RATE_WINDOW_MINUTES", 1)
}

// splitList разбивает список через запятую, отбрасывая пустые элементы
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
