package config

import (
	"log"
	"time"

	"dorm-backend/events"
	"dorm-backend/utils"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDriver    string
	CorsOrigins string

	JWTSecret string
	JWTTTL    time.Duration

	Events          events.TransportConfig
	ImportReportTTL time.Duration

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads .env (optional) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg := Config{
		Port:        utils.EnvOrDefault("PORT", "8080"),
		DBDriver:    utils.EnvOrDefault("DB_DRIVER", "mysql"),
		CorsOrigins: utils.EnvOrDefault("CORS_ORIGINS", ""),

		JWTSecret: utils.EnvOrDefault("JWT_SECRET", ""),
		JWTTTL:    utils.EnvDuration("JWT_TTL", 24*time.Hour),

		Events: events.TransportConfig{
			Transport:   utils.EnvOrDefault("EVENTS_TRANSPORT", "log"),
			KafkaBroker: utils.EnvOrDefault("KAFKA_BROKER", ""),
			Topic:       utils.EnvOrDefault("EVENTS_TOPIC", "dorm.occupancy"),
			RabbitMQURL: utils.EnvOrDefault("RABBITMQ_URL", ""),
		},
		ImportReportTTL: utils.EnvDuration("IMPORT_REPORT_TTL", 30*time.Minute),

		SeedAdminEmail:    utils.EnvOrDefault("SEED_ADMIN_EMAIL", "admin@dorm.local"),
		SeedAdminPassword: utils.EnvOrDefault("SEED_ADMIN_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		log.Println("⚠️  JWT_SECRET is not set; serve will refuse to start")
	}
	return cfg
}
