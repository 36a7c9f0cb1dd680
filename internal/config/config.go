package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	AdminEmail         string
	AdminPasswordHash  string
	BusinessConfigPath string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	NotifyEmail string // receives new order notifications
}

type APIKeys struct {
	OpenAI                string
	Groq                  string
	Gemini                string
	HuggingFace           string
	Jina                  string
	Telegram              string
	TelegramWebhookSecret string
	TwilioAccountSid      string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini", "openai", "jina" or "none"
	EmbeddingModel    string
	OllamaBaseURL     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.jsonl"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", "dev-secret-key"),
			AdminEmail:         getEnv("ADMIN_EMAIL", "admin@example.com"),
			AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
			BusinessConfigPath: getEnv("BUSINESS_CONFIG_PATH", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "Chatbot"),
			NotifyEmail: getEnv("ORDER_NOTIFY_EMAIL", ""),
		},
		Keys: APIKeys{
			OpenAI:                getEnv("OPENAI_API_KEY", ""),
			Groq:                  getEnv("GROQ_API_KEY", ""),
			Gemini:                getEnv("GEMINI_API_KEY", ""),
			HuggingFace:           getEnv("HUGGINGFACE_API_KEY", ""),
			Jina:                  getEnv("JINA_API_KEY", ""),
			Telegram:              getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramWebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
			TwilioAccountSid:      getEnv("TWILIO_ACCOUNT_SID", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
