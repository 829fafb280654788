package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Cron     CronConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для кеширования справочников
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka.
// ReviewTopic - события об отзывах, MailTopic - очередь писем с кодами.
type KafkaConfig struct {
	Brokers     []string
	ReviewTopic string
	MailTopic   string
	MailGroupID string
}

// JWTConfig - настройки для access токенов
type JWTConfig struct {
	SecretKey           string
	AccessTokenDuration time.Duration
}

// SMTPConfig - настройки почтового транспорта
type SMTPConfig struct {
	Host string
	Port string
	From string
}

// CronConfig - расписание фоновой прогрузки кешей
type CronConfig struct {
	CacheWarmSchedule string
}

// LoggingConfig - уровень логирования и опциональный Logstash
type LoggingConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения.
// Локальный .env подхватывается, если он есть.
func Load() (*Config, error) {
	_ = godotenv.Load()

	accessDuration, err := time.ParseDuration(getEnv("JWT_ACCESS_DURATION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_DURATION: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "kritika"),
			Password: getEnv("DB_PASSWORD", "kritika"),
			DBName:   getEnv("DB_NAME", "kritika"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ReviewTopic: getEnv("KAFKA_REVIEW_TOPIC", "review_events"),
			MailTopic:   getEnv("KAFKA_MAIL_TOPIC", "mail_events"),
			MailGroupID: getEnv("KAFKA_MAIL_GROUP_ID", "kritika-mailer"),
		},
		JWT: JWTConfig{
			SecretKey:           getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenDuration: accessDuration,
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "localhost"),
			Port: getEnv("SMTP_PORT", "25"),
			From: getEnv("SMTP_FROM", "noreply@kritika.local"),
		},
		Cron: CronConfig{
			CacheWarmSchedule: getEnv("CRON_CACHE_WARM", "@hourly"),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес SMTP сервера в формате host:port
func (c *SMTPConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
