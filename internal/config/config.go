package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	Webhook          WebhookHTTPConfig       `env:",prefix=WEBHOOK_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Panel            PanelConfig             `env:",prefix=PANEL_"`
	Qiwi             QiwiConfig              `env:",prefix=QIWI_"`
	Subscription     SubscriptionConfig      `env:",prefix=SUBSCRIPTION_"`
}

type TelegramConfig struct {
	BotToken string        `env:"BOT_TOKEN,required"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
	AdminIDs []int64       `env:"ADMIN_IDS"`
}

// PanelConfig описывает доступ к панели 3x-ui, которая выдаёт VPN-ключи.
type PanelConfig struct {
	BaseURL  string        `env:"BASE_URL,required"`
	Username string        `env:"USERNAME,required"`
	Password string        `env:"PASSWORD,required"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
}

// QiwiConfig описывает биллинг-провайдера (Qiwi bills API).
// SecretKey одновременно служит ключом HMAC-подписи вебхуков.
type QiwiConfig struct {
	SecretKey  string        `env:"SECRET_KEY,required"`
	WebhookURL string        `env:"WEBHOOK_URL,default=https://example.com/webhook/payment"`
	Timeout    time.Duration `env:"TIMEOUT,default=30s"`
	BillTTL    time.Duration `env:"BILL_TTL,default=1h"`
}

type SubscriptionConfig struct {
	// Fallback на случай, когда у платежа не удаётся определить тариф.
	DefaultDays int `env:"DEFAULT_DAYS,default=30"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// WebhookHTTPConfig настраивает сервер, принимающий уведомления биллинга.
type WebhookHTTPConfig struct {
	Host         string        `env:"HOST,default=0.0.0.0"`
	Port         uint16        `env:"PORT,default=8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a WebhookHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/altyn.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
