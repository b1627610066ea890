package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Port string
	Env  string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret string

	RazorpayKey           string
	RazorpaySecret        string
	RazorpayWebhookSecret string
	Currency              string

	TypeformSecret string
	TypeformRefs   TypeformRefs

	// AIAPIKey is handed to the content generation service; nothing here calls it.
	AIAPIKey string

	RedisAddr     string
	RedisPassword string
	LockTTL       time.Duration

	KafkaBrokers []string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	LogLevel  string
	LogFormat string

	NotificationBatchSize int
}

// TypeformRefs maps enquiry attributes to the field refs used in the Typeform form.
type TypeformRefs struct {
	Name     string
	Email    string
	Phone    string
	District string
	Course   string
	Message  string
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// LoadConfig loads configuration from the optional .env file and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "enrollsphere")
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("TYPEFORM_REF_NAME", "name")
	v.SetDefault("TYPEFORM_REF_EMAIL", "email")
	v.SetDefault("TYPEFORM_REF_PHONE", "phone")
	v.SetDefault("TYPEFORM_REF_DISTRICT", "district")
	v.SetDefault("TYPEFORM_REF_COURSE", "course")
	v.SetDefault("TYPEFORM_REF_MESSAGE", "message")
	v.SetDefault("LOCK_TTL", 30*time.Second)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("NOTIFICATION_BATCH_SIZE", 1000)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		Env:                   v.GetString("ENV"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		RazorpayKey:           v.GetString("RAZORPAY_KEY"),
		RazorpaySecret:        v.GetString("RAZORPAY_SECRET"),
		RazorpayWebhookSecret: v.GetString("RAZORPAY_WEBHOOK_SECRET"),
		Currency:              v.GetString("CURRENCY"),
		TypeformSecret:        v.GetString("TYPEFORM_SECRET"),
		TypeformRefs: TypeformRefs{
			Name:     v.GetString("TYPEFORM_REF_NAME"),
			Email:    v.GetString("TYPEFORM_REF_EMAIL"),
			Phone:    v.GetString("TYPEFORM_REF_PHONE"),
			District: v.GetString("TYPEFORM_REF_DISTRICT"),
			Course:   v.GetString("TYPEFORM_REF_COURSE"),
			Message:  v.GetString("TYPEFORM_REF_MESSAGE"),
		},
		AIAPIKey:              v.GetString("AI_API_KEY"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		LockTTL:               v.GetDuration("LOCK_TTL"),
		KafkaBrokers:          splitList(v.GetString("KAFKA_BROKERS")),
		SMTPHost:              v.GetString("SMTP_HOST"),
		SMTPPort:              v.GetInt("SMTP_PORT"),
		SMTPUsername:          v.GetString("SMTP_USERNAME"),
		SMTPPassword:          v.GetString("SMTP_PASSWORD"),
		SMTPFrom:              v.GetString("SMTP_FROM"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		NotificationBatchSize: v.GetInt("NOTIFICATION_BATCH_SIZE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the payment flow cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.RazorpaySecret == "" {
		missing = append(missing, "RAZORPAY_SECRET")
	}
	if c.RazorpayWebhookSecret == "" {
		missing = append(missing, "RAZORPAY_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.NotificationBatchSize <= 0 {
		c.NotificationBatchSize = 1000
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
