package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	ServerAddr    string        `env:"SERVER_ADDR" envDefault:":8080"`
	MongoURI      string        `env:"MONGO_URI,required"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"leafmarket"`
	RedisAddr     string        `env:"REDIS_ADDR,required"`
	JWTSecret     string        `env:"JWT_SECRET,required"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	RoleCacheTTL  time.Duration `env:"ROLE_CACHE_TTL" envDefault:"5m"`
	AssetBackend  string        `env:"ASSET_BACKEND" envDefault:"gcs"` // gcs or disk
	AssetBucket   string        `env:"ASSET_BUCKET"`
	AssetDir      string        `env:"ASSET_DIR" envDefault:"./data/assets"`
	AssetBaseURL  string        `env:"ASSET_BASE_URL" envDefault:"http://localhost:8080"`
	CheckoutPhone string        `env:"CHECKOUT_PHONE" envDefault:"1234567890"`
	AuthRateLimit float64       `env:"AUTH_RATE_LIMIT" envDefault:"5"`  // requests per second per client
	AuthRateBurst int           `env:"AUTH_RATE_BURST" envDefault:"10"`
	MaxUploadSize int64         `env:"MAX_UPLOAD_SIZE_BYTES" envDefault:"5242880"` // 5MB
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
