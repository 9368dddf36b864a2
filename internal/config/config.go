package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string        `env:"DATABASE_URI"`
	AuthSecret  string        `env:"JWT_SECRET"`
	Port        string        `env:"PORT"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"`
	MaxUploadMB int           `env:"MAX_UPLOAD_MB"`

	// Photo storage
	UploadDir    string `env:"UPLOAD_DIR"`
	PhotoStorage string `env:"PHOTO_STORAGE"` // "disk" | "s3"
	PhotoBaseURL string `env:"PHOTO_BASE_URL"`
	S3Bucket     string `env:"S3_BUCKET"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	S3Region     string `env:"S3_REGION"`
	S3AccessKey  string `env:"S3_ACCESS_KEY"`
	S3SecretKey  string `env:"S3_SECRET_KEY"`

	// Client-side settings
	ServerURL string `env:"SERVER_URL"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

// Addr возвращает адрес для http.ListenAndServe.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// MaxUploadBytes — лимит тела multipart-запроса.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres://, mongodb:// или путь к sqlite)")
	flag.StringVar(&cfg.AuthSecret, "jwt-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.Port, "port", cfg.Port, "порт HTTP сервера")
	flag.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "каталог для фотографий")
	flag.StringVar(&cfg.PhotoStorage, "photo-storage", cfg.PhotoStorage, "хранилище фотографий: disk или s3")
	// Client flags
	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "URL of the ID card server")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "idcards.db"
	}
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	cfg.PhotoStorage = strings.ToLower(strings.TrimSpace(cfg.PhotoStorage))
	if cfg.PhotoStorage != "s3" {
		cfg.PhotoStorage = "disk"
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	cfg.PhotoBaseURL = strings.TrimRight(cfg.PhotoBaseURL, "/")

	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:5000"
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://") && !strings.HasPrefix(cfg.ServerURL, "https://") {
		cfg.ServerURL = "http://" + cfg.ServerURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.TokenFile = filepath.Join(dir, "IDCards", "auth_token")
		} else {
			cfg.TokenFile = ".idcards_token"
		}
	}
}
