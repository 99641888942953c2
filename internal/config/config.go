package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	PostgresDSN    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	TokenSecret    string
	TokenTTL       time.Duration
	CORSOrigins    []string
	LogLevel       string
	LogFormat      string
	MaxUploadBytes int64
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getenv("PORT", "5000"),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "podcastify"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "podcastify-media"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		TokenSecret:    getenv("ACCESS_TOKEN_SECRET", ""),
		TokenTTL:       getDuration("TOKEN_TTL", 5*time.Hour),
		CORSOrigins:    splitList(getenv("CORS_ORIGINS", "http://localhost:5173,https://podcastify-598b9.web.app")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 200)) << 20,
	}
}

// Validate reports the first missing setting the server cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.TokenSecret == "":
		return errors.New("ACCESS_TOKEN_SECRET is required")
	case c.MongoURI == "":
		return errors.New("MONGO_URI is required")
	case c.PostgresDSN == "":
		return errors.New("POSTGRES_DSN is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
