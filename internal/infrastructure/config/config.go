package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// BulkWorkers sizes the reminder dispatcher worker pool.
	BulkWorkers int `env:"BULK_WORKERS, default=4"`

	// AdminEmail and AdminPassword seed the first admin account at startup.
	// Registration requires an admin token, so without a seed there is no
	// way to create the first account.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Backup BackupConfig
	Gemini GeminiConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=roster_manager"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type BackupConfig struct {
	Region    string `env:"S3_REGION,     default=us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Bucket    string `env:"S3_BUCKET,     default=roster-backups"`
}

type GeminiConfig struct {
	// APIKey may be empty: assist endpoints then degrade to their fixed
	// fallback responses.
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
