package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"marketpulse/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Telegram      TelegramConfig
	Finnhub       FinnhubConfig
	Reddit        RedditConfig
	AI            AIConfig
	ErrorTracking ErrorTrackingConfig
	Monitor       MonitorConfig
	Metrics       MetricsConfig
}

type AppConfig struct {
	Name          string `envconfig:"APP_NAME" default:"marketpulse"`
	Env           string `envconfig:"APP_ENV" default:"development"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile       string `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"14"`
	Version       string `envconfig:"APP_VERSION" default:"dev"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"POSTGRES_HOST" required:"true"`
	Port            int           `envconfig:"POSTGRES_PORT" default:"5432" validate:"min=1,max=65535"`
	User            string        `envconfig:"POSTGRES_USER" required:"true"`
	Password        string        `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database        string        `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns        int           `envconfig:"POSTGRES_MAX_CONNS" default:"10" validate:"min=1"`
	ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"POSTGRES_AUTO_MIGRATE" default:"true"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig is optional. With Enabled=false ticker resolutions are cached in memory.
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379" validate:"min=1,max=65535"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig is optional. With Enabled=false command usage is only written to Postgres.
type KafkaConfig struct {
	Enabled    bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers    []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	UsageTopic string   `envconfig:"KAFKA_USAGE_TOPIC" default:"marketpulse.command_usage"`
	AlertTopic string   `envconfig:"KAFKA_ALERT_TOPIC" default:"marketpulse.alerts"`
}

type TelegramConfig struct {
	BotToken          string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminChatID       int64         `envconfig:"TELEGRAM_CHAT_ID"`
	PollTimeout       int           `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30" validate:"min=1,max=60"`
	HTTPTimeout       time.Duration `envconfig:"TELEGRAM_HTTP_TIMEOUT" default:"35s"`
	HandlerTimeout    time.Duration `envconfig:"TELEGRAM_HANDLER_TIMEOUT" default:"2m"`
	RateLimit         float64       `envconfig:"TELEGRAM_RATE_LIMIT" default:"25"`
	RateBurst         int           `envconfig:"TELEGRAM_RATE_BURST" default:"5"`
	CommandsPerMinute int           `envconfig:"TELEGRAM_COMMANDS_PER_MINUTE" default:"20" validate:"gte=0"` // 0 disables the per-user limit
	Debug             bool          `envconfig:"TELEGRAM_DEBUG" default:"false"`
	DonateURL         string        `envconfig:"TELEGRAM_DONATE_URL"`
}

type FinnhubConfig struct {
	APIKey        string        `envconfig:"FINNHUB_API_KEY" required:"true"`
	BaseURL       string        `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`
	Timeout       time.Duration `envconfig:"FINNHUB_TIMEOUT" default:"10s"`
	RatePerMinute int           `envconfig:"FINNHUB_RATE_PER_MINUTE" default:"60" validate:"gt=0"`
}

type RedditConfig struct {
	BaseURL    string        `envconfig:"REDDIT_BASE_URL" default:"https://www.reddit.com"`
	UserAgent  string        `envconfig:"REDDIT_USER_AGENT" default:"marketpulse-bot/1.0"`
	Subreddits []string      `envconfig:"REDDIT_SUBREDDITS" default:"wallstreetbets,stocks,investing"`
	Timeout    time.Duration `envconfig:"REDDIT_TIMEOUT" default:"10s"`
}

// AIConfig selects the LLM backend. "groq" and "openai" share the OpenAI-compatible client.
type AIConfig struct {
	Provider           string        `envconfig:"AI_PROVIDER" default:"groq" validate:"oneof=groq openai gemini none"`
	Model              string        `envconfig:"AI_MODEL" default:"llama-3.3-70b-versatile"`
	BaseURL            string        `envconfig:"AI_BASE_URL"`
	GroqKey            string        `envconfig:"GROQ_API_KEY"`
	OpenAIKey          string        `envconfig:"OPENAI_API_KEY"`
	GeminiKey          string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel        string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	TranscriptionModel string        `envconfig:"AI_TRANSCRIPTION_MODEL" default:"whisper-large-v3"`
	Timeout            time.Duration `envconfig:"AI_TIMEOUT" default:"45s"`
	ReqPerMinute       float64       `envconfig:"AI_REQ_PER_MINUTE" default:"30" validate:"gte=0"`
	Burst              int           `envconfig:"AI_BURST" default:"5" validate:"gte=0"`
}

// APIKey returns the key matching the selected provider
func (c AIConfig) APIKey() string {
	switch strings.ToLower(c.Provider) {
	case "groq":
		return c.GroqKey
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	default:
		return ""
	}
}

type ErrorTrackingConfig struct {
	Enabled     bool    `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string  `envconfig:"SENTRY_DSN"`
	Environment string  `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
	SampleRate  float64 `envconfig:"SENTRY_SAMPLE_RATE" default:"1.0" validate:"gte=0,lte=1"`
}

// MonitorConfig drives the background alert sweeps.
// Interval is the base tick; each user is scanned once their own alert interval has elapsed.
// NewsLookback bounds the /news window and the news section of reports.
type MonitorConfig struct {
	Enabled            bool          `envconfig:"MONITOR_ENABLED" default:"true"`
	Interval           time.Duration `envconfig:"MONITOR_INTERVAL" default:"5m" validate:"min=1m"`
	PriceThreshold     float64       `envconfig:"MONITOR_PRICE_THRESHOLD" default:"5.0" validate:"gt=0"`
	VolumeRatio        float64       `envconfig:"MONITOR_VOLUME_RATIO" default:"0" validate:"gte=0"` // 0 disables volume-spike alerts
	NewsPerTicker      int           `envconfig:"MONITOR_NEWS_PER_TICKER" default:"3" validate:"gte=0"`
	NewsLookback       time.Duration `envconfig:"MONITOR_NEWS_LOOKBACK" default:"72h"`
	BriefingSchedule   string        `envconfig:"MONITOR_BRIEFING_CRON" default:"0 0 13 * * 1-5"`
	CleanupInterval    time.Duration `envconfig:"MONITOR_CLEANUP_INTERVAL" default:"24h"`
	NotificationMaxAge time.Duration `envconfig:"MONITOR_NOTIFICATION_MAX_AGE" default:"168h"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// CronParser accepts six-field expressions with seconds, descriptors like
// @daily, and a CRON_TZ= prefix. The scheduler parses with it too.
var CronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Load reads configuration from environment variables.
// It first tries to load .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the validate tags first, reporting fields by their env
// name, then the cross-field rules tags cannot express
func (c *Config) Validate() error {
	c.AI.Provider = strings.ToLower(c.AI.Provider)

	if err := fieldValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errors.NewValidationError(fe.Field(), describe(fe), fe.Value())
		}
		return errors.Wrap(err, "failed to validate config")
	}

	if c.Telegram.HTTPTimeout <= time.Duration(c.Telegram.PollTimeout)*time.Second {
		return errors.NewValidationError("TELEGRAM_HTTP_TIMEOUT", "must exceed the poll timeout", c.Telegram.HTTPTimeout)
	}
	if c.Monitor.BriefingSchedule != "" {
		if _, err := CronParser.Parse(c.Monitor.BriefingSchedule); err != nil {
			return errors.NewValidationError("MONITOR_BRIEFING_CRON", err.Error(), c.Monitor.BriefingSchedule)
		}
	}
	return nil
}

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("envconfig"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " check"
	}
}
