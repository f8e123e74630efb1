// backend-go/internal/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Simulation SimulationConfig
	Simulator  SimulatorConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Speech     SpeechConfig
	Storage    StorageConfig
	Drive      DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// SimulationConfig points the dashboard at the simulation backend.
type SimulationConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Timeout returns zero (no deadline) unless a positive timeout is configured.
func (c SimulationConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SimulatorConfig tunes the Monte-Carlo simulation backend.
type SimulatorConfig struct {
	Port           string
	Runs           int
	Horizon        int
	Seed           uint64
	Workers        int
	MaxConcurrent  int64
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
	// MaxConcurrentTx bounds the transactions open at once through WithTx.
	MaxConcurrentTx        int64
}

// DSN returns the lib/pq key/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled              bool
	RedisURL             string
	RedisHost            string
	RedisPort            string
	RedisPassword        string
	RedisDB              int
	DialTimeoutSeconds   int
	KeyPrefix            string
	SimulationTTLSeconds int
}

// SimulationTTL is the lifetime of a cached simulation response, one minute when unset.
func (c CacheConfig) SimulationTTL() time.Duration {
	if c.SimulationTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.SimulationTTLSeconds) * time.Second
}

type SpeechConfig struct {
	Engine string
	Lang   string
}

// StorageConfig holds the S3-compatible bucket used for comparison exports.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

var (
	once     sync.Once
	instance *Config
)

// Load returns the process-wide configuration, reading it on first use.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = New()
	})

	return instance
}

// New builds a configuration from defaults and the current environment.
func New() *Config {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("SIMULATION_BASE_URL", "http://localhost:8000")
	v.SetDefault("SIMULATION_TIMEOUT_SECONDS", 0)
	v.SetDefault("SIMULATOR_PORT", "8000")
	v.SetDefault("SIMULATOR_RUNS", 300)
	v.SetDefault("SIMULATOR_HORIZON", 12)
	v.SetDefault("SIMULATOR_SEED", 0)
	v.SetDefault("SIMULATOR_WORKERS", 4)
	v.SetDefault("SIMULATOR_MAX_CONCURRENT", 8)
	v.SetDefault("SIMULATOR_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "scenario_planner")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT_SECONDS", 5)
	v.SetDefault("CACHE_KEY_PREFIX", "simulation:run:")
	v.SetDefault("CACHE_SIMULATION_TTL_SECONDS", 60)
	v.SetDefault("SPEECH_ENGINE", "none")
	v.SetDefault("SPEECH_LANG", "en-US")
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "scenario-exports")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_PREFIX", "comparisons/")
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Simulation: SimulationConfig{
			BaseURL:        v.GetString("SIMULATION_BASE_URL"),
			TimeoutSeconds: v.GetInt("SIMULATION_TIMEOUT_SECONDS"),
		},
		Simulator: SimulatorConfig{
			Port:           v.GetString("SIMULATOR_PORT"),
			Runs:           v.GetInt("SIMULATOR_RUNS"),
			Horizon:        v.GetInt("SIMULATOR_HORIZON"),
			Seed:           v.GetUint64("SIMULATOR_SEED"),
			Workers:        v.GetInt("SIMULATOR_WORKERS"),
			MaxConcurrent:  v.GetInt64("SIMULATOR_MAX_CONCURRENT"),
			AllowedOrigins: v.GetStringSlice("SIMULATOR_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),

			MaxOpenConns:           v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:           v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeMinutes: v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES"),
			MaxConcurrentTx:        v.GetInt64("DB_MAX_CONCURRENT_TX"),
		},
		Cache: CacheConfig{
			Enabled:              v.GetBool("CACHE_ENABLED"),
			RedisURL:             v.GetString("REDIS_URL"),
			RedisHost:            v.GetString("REDIS_HOST"),
			RedisPort:            v.GetString("REDIS_PORT"),
			RedisPassword:        v.GetString("REDIS_PASSWORD"),
			RedisDB:              v.GetInt("REDIS_DB"),
			DialTimeoutSeconds:   v.GetInt("REDIS_DIAL_TIMEOUT_SECONDS"),
			KeyPrefix:            v.GetString("CACHE_KEY_PREFIX"),
			SimulationTTLSeconds: v.GetInt("CACHE_SIMULATION_TTL_SECONDS"),
		},
		Speech: SpeechConfig{
			Engine: v.GetString("SPEECH_ENGINE"),
			Lang:   v.GetString("SPEECH_LANG"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
			Prefix:    v.GetString("S3_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		},
	}
}
