package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Firebase  FirebaseConfig
	Queue     QueueConfig
	Logging   LoggingConfig
	AdminUIDs []string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsFile string
	StorageBucket   string
}

type QueueConfig struct {
	EntryTTL      time.Duration
	SweepInterval time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("QUEUE_ENTRY_TTL_SEC", 300)
	viper.SetDefault("QUEUE_SWEEP_INTERVAL_SEC", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: viper.GetString("FIREBASE_CREDENTIALS_FILE"),
			StorageBucket:   viper.GetString("FIREBASE_STORAGE_BUCKET"),
		},
		Queue: QueueConfig{
			EntryTTL:      time.Duration(viper.GetInt("QUEUE_ENTRY_TTL_SEC")) * time.Second,
			SweepInterval: time.Duration(viper.GetInt("QUEUE_SWEEP_INTERVAL_SEC")) * time.Second,
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		// Operator accounts are environment-specific configuration, never
		// identities hardcoded in request paths.
		AdminUIDs: viper.GetStringSlice("ADMIN_UIDS"),
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}
	if c.Firebase.CredentialsFile == "" {
		return fmt.Errorf("firebase credentials file is required")
	}
	if c.Firebase.StorageBucket == "" {
		return fmt.Errorf("firebase storage bucket is required")
	}
	if c.Queue.EntryTTL <= 0 {
		return fmt.Errorf("queue entry TTL must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
