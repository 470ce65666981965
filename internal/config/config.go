// internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Queue      QueueConfig
	ModelStore ModelStoreConfig
	Forecast   ForecastConfig
	Alerts     AlertConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLHours      int
}

type QueueConfig struct {
	Name        string
	PollTimeout time.Duration
}

type ModelStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type ForecastConfig struct {
	LookbackDays       int
	MinTrainingRecords int
	HorizonDays        int
	SeasonalPeriod     int
	ActivityWindowDays int
	MinRecentSales     int
}

type AlertConfig struct {
	Channel string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "saai")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", true)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		// Observed TTLs in production were split between 24h and 36h; a single
		// knob keeps every call site on the same value.
		viper.SetDefault("FORECAST_CACHE_TTL_HOURS", 24)
		viper.SetDefault("FORECAST_QUEUE_NAME", "saai:forecast:tenants")
		viper.SetDefault("FORECAST_QUEUE_POLL_TIMEOUT_SECONDS", 5)
		viper.SetDefault("MODEL_STORE_ENDPOINT", "127.0.0.1:9000")
		viper.SetDefault("MODEL_STORE_ACCESS_KEY", "")
		viper.SetDefault("MODEL_STORE_SECRET_KEY", "")
		viper.SetDefault("MODEL_STORE_BUCKET", "saai-models")
		viper.SetDefault("MODEL_STORE_USE_SSL", false)
		viper.SetDefault("FORECAST_LOOKBACK_DAYS", 90)
		viper.SetDefault("FORECAST_MIN_TRAINING_RECORDS", 30)
		viper.SetDefault("FORECAST_HORIZON_DAYS", 7)
		viper.SetDefault("FORECAST_SEASONAL_PERIOD", 7)
		viper.SetDefault("FORECAST_ACTIVITY_WINDOW_DAYS", 30)
		viper.SetDefault("FORECAST_MIN_RECENT_SALES", 5)
		viper.SetDefault("ALERTS_CHANNEL", "saai:alerts")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				TTLHours:      viper.GetInt("FORECAST_CACHE_TTL_HOURS"),
			},
			Queue: QueueConfig{
				Name:        viper.GetString("FORECAST_QUEUE_NAME"),
				PollTimeout: time.Duration(viper.GetInt("FORECAST_QUEUE_POLL_TIMEOUT_SECONDS")) * time.Second,
			},
			ModelStore: ModelStoreConfig{
				Endpoint:  viper.GetString("MODEL_STORE_ENDPOINT"),
				AccessKey: viper.GetString("MODEL_STORE_ACCESS_KEY"),
				SecretKey: viper.GetString("MODEL_STORE_SECRET_KEY"),
				Bucket:    viper.GetString("MODEL_STORE_BUCKET"),
				UseSSL:    viper.GetBool("MODEL_STORE_USE_SSL"),
			},
			Forecast: ForecastConfig{
				LookbackDays:       viper.GetInt("FORECAST_LOOKBACK_DAYS"),
				MinTrainingRecords: viper.GetInt("FORECAST_MIN_TRAINING_RECORDS"),
				HorizonDays:        viper.GetInt("FORECAST_HORIZON_DAYS"),
				SeasonalPeriod:     viper.GetInt("FORECAST_SEASONAL_PERIOD"),
				ActivityWindowDays: viper.GetInt("FORECAST_ACTIVITY_WINDOW_DAYS"),
				MinRecentSales:     viper.GetInt("FORECAST_MIN_RECENT_SALES"),
			},
			Alerts: AlertConfig{
				Channel: viper.GetString("ALERTS_CHANNEL"),
			},
		}
	})

	return instance
}
