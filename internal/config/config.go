// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Redis    RedisConfig
	YouTube  YouTubeConfig
	Proxy    ProxyConfig
	Pipeline PipelineConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
// An empty Host disables the document record store.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// StorageConfig contains S3-compatible object storage configuration.
// An empty Bucket disables document publishing and cache checks.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

// RedisConfig contains Redis configuration shared by the URL cache and the
// refresh queue. An empty URL disables both.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// YouTubeConfig contains YouTube Data API configuration.
// An empty APIKey disables the Data API metadata provider and comments.
type YouTubeConfig struct {
	APIKey      string
	MaxComments int
}

// ProxyConfig contains optional outbound proxy configuration applied to all
// transcript and metadata transports identically.
type ProxyConfig struct {
	HTTPURL  string
	HTTPSURL string
}

// RabbitMQConfig contains RabbitMQ connection and exchange configuration.
// An empty Host disables event publishing.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// PipelineConfig contains acquisition pipeline tuning.
type PipelineConfig struct {
	WorkerPoolSize       int
	StageTimeout         time.Duration
	DefaultMaxTranscript int
	MaxDisplaySize       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("YTDOC")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database (optional document record store)
	viper.SetDefault("database.host", "")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "ytdoc")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 5)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Object storage
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.accesskey", "minioadmin")
	viper.SetDefault("storage.secretkey", "minioadmin")
	viper.SetDefault("storage.bucket", "")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.usessl", false)
	viper.SetDefault("storage.publicurl", "")

	// Redis (URL cache + refresh queue)
	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.cachettl", 1*time.Hour)

	// YouTube Data API
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.maxcomments", 20)

	// Proxy
	viper.SetDefault("proxy.httpurl", "")
	viper.SetDefault("proxy.httpsurl", "")

	// RabbitMQ
	viper.SetDefault("rabbitmq.host", "")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "youtube.documents")
	viper.SetDefault("rabbitmq.queue", "youtube.documents.generated")
	viper.SetDefault("rabbitmq.routingkey", "document.generated")

	// Pipeline
	viper.SetDefault("pipeline.workerpoolsize", 8)
	viper.SetDefault("pipeline.stagetimeout", 30*time.Second)
	viper.SetDefault("pipeline.defaultmaxtranscript", 10000)
	viper.SetDefault("pipeline.maxdisplaysize", 300000)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
