package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"dorm-backend/models"
	"dorm-backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

func resolveMySQLDSN() (string, string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, strings.TrimSpace(os.Getenv("DB_NAME")), nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "dorm_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	)
	return dsn, dbName, nil
}

func resolvePostgresDSN() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		return raw
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		utils.EnvOrDefault("DB_HOST", "127.0.0.1"),
		utils.EnvOrDefault("DB_PORT", "5432"),
		utils.EnvOrDefault("DB_USER", "postgres"),
		utils.EnvOrDefault("DB_PASS", ""),
		utils.EnvOrDefault("DB_NAME", "dorm_db"),
		utils.EnvOrDefault("DB_SSLMODE", "disable"),
	)
}

// Dialector picks the gorm driver for DB_DRIVER (mysql, postgres, sqlite).
func Dialector(driver string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "mysql":
		dsn, _, err := resolveMySQLDSN()
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(resolvePostgresDSN()), nil
	case "sqlite":
		return sqlite.Open(utils.EnvOrDefault("SQLITE_PATH", "dorm.db")), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func ConnectDatabase(driver string) (*gorm.DB, error) {
	dialector, err := Dialector(driver)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(utils.EnvInt("DB_MAX_OPEN_CONNS", 25))
		sqlDB.SetMaxIdleConns(utils.EnvInt("DB_MAX_IDLE_CONNS", 25))
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	} else {
		log.Printf("info: cannot get raw sql.DB: %v", err)
	}

	return db, nil
}

// Migrate creates or updates every table in parent -> child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// SeedDatabase makes sure one admin account exists. A blank password skips
// seeding.
func SeedDatabase(db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("info: SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if !existing.IsAdmin() {
			return fmt.Errorf("seed: %s exists but is not an admin", email)
		}
		log.Println("Admin already seeded")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	admin := models.User{
		Email:        email,
		Name:         "Admin User",
		Gender:       models.GenderMale,
		Role:         models.RoleAdmin,
		Status:       models.UserNotStaying,
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	log.Println("Default admin seeded")
	return nil
}
