package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Chat transport.
	BotToken        string `mapstructure:"BOT_TOKEN"`
	BotDebug        bool   `mapstructure:"BOT_DEBUG"`
	WebhookURL      string `mapstructure:"WEBHOOK_URL"`
	WebhookSecret   string `mapstructure:"WEBHOOK_SECRET"`
	DispatchWorkers int    `mapstructure:"DISPATCH_WORKERS"`
	NotifyChatID    int64  `mapstructure:"NOTIFY_CHAT_ID"`
	GroupChatID     int64  `mapstructure:"GROUP_CHAT_ID"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// PurgeQueue moves project asset deletion onto the asynq queue.
	PurgeQueue bool `mapstructure:"PURGE_QUEUE"`

	// Conversation state backend: "memory" or "redis".
	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`

	// Cloudinary.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Expense spreadsheet service.
	AppsScriptURL         string        `mapstructure:"APPS_SCRIPT_URL"`
	ExpenseTimeout        time.Duration `mapstructure:"EXPENSE_TIMEOUT"`
	ExpenseReservedSheets []string      `mapstructure:"EXPENSE_RESERVED_SHEETS"`
	ExpensePersonalSheet  string        `mapstructure:"EXPENSE_PERSONAL_SHEET"`
	ExpenseContributors   []string      `mapstructure:"EXPENSE_CONTRIBUTORS"`

	// Document templates.
	TemplateContractURL string `mapstructure:"TEMPLATE_CONTRACT_URL"`
	TemplateAppendixURL string `mapstructure:"TEMPLATE_APPENDIX_URL"`
	TemplateWaybillURL  string `mapstructure:"TEMPLATE_WAYBILL_URL"`
	TemplateTrustURL    string `mapstructure:"TEMPLATE_TRUST_URL"`

	// Static assets sent from the menu.
	AssetPresentationURL  string `mapstructure:"ASSET_PRESENTATION_URL"`
	AssetCardPrimaryURL   string `mapstructure:"ASSET_CARD_PRIMARY_URL"`
	AssetCardSecondaryURL string `mapstructure:"ASSET_CARD_SECONDARY_URL"`
}

var AppConfig Config

func LoadConfig() {
	// Local development keeps secrets in .env; a missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("BOT_TOKEN", "")
	viper.SetDefault("BOT_DEBUG", false)
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("WEBHOOK_SECRET", "")
	viper.SetDefault("DISPATCH_WORKERS", 8)
	viper.SetDefault("NOTIFY_CHAT_ID", 0)
	viper.SetDefault("GROUP_CHAT_ID", 0)

	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "qartel")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("PURGE_QUEUE", false)

	viper.SetDefault("SESSION_BACKEND", "memory")
	viper.SetDefault("SESSION_TTL", "24h")

	viper.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	viper.SetDefault("CLOUDINARY_API_KEY", "")
	viper.SetDefault("CLOUDINARY_API_SECRET", "")

	viper.SetDefault("APPS_SCRIPT_URL", "")
	viper.SetDefault("EXPENSE_TIMEOUT", "10s")
	viper.SetDefault("EXPENSE_RESERVED_SHEETS", []string{"Шаблон", "Сводка"})
	viper.SetDefault("EXPENSE_PERSONAL_SHEET", "Траты с личных карт и наличка")
	viper.SetDefault("EXPENSE_CONTRIBUTORS", []string{"Артем", "Саня"})

	viper.SetDefault("TEMPLATE_CONTRACT_URL", "")
	viper.SetDefault("TEMPLATE_APPENDIX_URL", "")
	viper.SetDefault("TEMPLATE_WAYBILL_URL", "")
	viper.SetDefault("TEMPLATE_TRUST_URL", "")

	viper.SetDefault("ASSET_PRESENTATION_URL", "")
	viper.SetDefault("ASSET_CARD_PRIMARY_URL", "")
	viper.SetDefault("ASSET_CARD_SECONDARY_URL", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// UseRedisSessions reports whether conversation state lives in Redis.
func UseRedisSessions() bool {
	return AppConfig.SessionBackend == "redis"
}
