package app

import (
	"strings"
	"time"

	"github.com/example/contentapi/internal/platform/envutil"
)

type Config struct {
	HTTPAddr        string
	DatabaseDSN     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServiceSecret   string
	AllowOrigins    []string
	AutoMigrate     bool
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:        envutil.Str("HTTP_ADDR", ":8080"),
		DatabaseDSN:     envutil.Str("DATABASE_URL", "postgres://localhost:5432/content?sslmode=disable"),
		MaxOpenConns:    envutil.Int("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    envutil.Int("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Duration(envutil.Int("DB_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ServiceSecret:   envutil.Str("SERVICE_SECRET", ""),
		AllowOrigins:    strings.Split(envutil.Str("ALLOW_ORIGINS", "http://localhost:3000"), ","),
		AutoMigrate:     envutil.Bool("DB_AUTO_MIGRATE", false),
	}
}
