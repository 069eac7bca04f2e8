package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// MongoDB holds every entity collection and the GridFS media bucket
	MongoDB MongoDBConfig `json:"mongodb"`

	// Database is the MySQL cascade-failure ledger
	Database DatabaseConfig `json:"database"`

	Storage StorageConfig `json:"storage"`

	Auth AuthConfig `json:"auth"`

	View ViewConfig `json:"view"`

	Cascade CascadeConfig `json:"cascade"`

	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	GRPCPort     string `json:"grpc_port"`
	MediaPort    string `json:"media_port"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
	MediaBaseURL string `json:"media_base_url"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Enabled      bool   `json:"enabled"`
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// StorageConfig selects where uploaded media objects go
type StorageConfig struct {
	Driver string      `json:"driver"` // gridfs, minio
	Minio  MinioConfig `json:"minio"`
}

type MinioConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
	PublicURL string `json:"public_url"`
}

type AuthConfig struct {
	JWTSecret       string        `json:"-"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
}

// ViewConfig bounds paginated read views
type ViewConfig struct {
	DefaultPageSize int `json:"default_page_size"`
	MaxPageSize     int `json:"max_page_size"`
}

type CascadeConfig struct {
	ReconcileInterval time.Duration `json:"reconcile_interval"`
	MaxAttempts       int           `json:"max_attempts"`
	BatchSize         int           `json:"batch_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, console
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

var envBindings = map[string]string{
	"server.host":           "SERVER_HOST",
	"server.port":           "SERVER_PORT",
	"server.grpc_port":      "GRPC_PORT",
	"server.media_port":     "MEDIA_PORT",
	"server.read_timeout":   "SERVER_READ_TIMEOUT",
	"server.write_timeout":  "SERVER_WRITE_TIMEOUT",
	"server.environment":    "ENVIRONMENT",
	"server.media_base_url": "MEDIA_BASE_URL",

	"mongodb.host":     "MONGO_HOST",
	"mongodb.port":     "MONGO_PORT",
	"mongodb.username": "MONGO_USERNAME",
	"mongodb.password": "MONGO_PASSWORD",
	"mongodb.database": "MONGO_DATABASE",

	"database.enabled":        "MYSQL_ENABLED",
	"database.host":           "MYSQL_HOST",
	"database.port":           "MYSQL_PORT",
	"database.username":       "MYSQL_USERNAME",
	"database.password":       "MYSQL_PASSWORD",
	"database.database_name":  "MYSQL_DATABASE",
	"database.max_open_conns": "MYSQL_MAX_OPEN_CONNS",
	"database.max_idle_conns": "MYSQL_MAX_IDLE_CONNS",

	"storage.driver":           "STORAGE_DRIVER",
	"storage.minio.endpoint":   "MINIO_ENDPOINT",
	"storage.minio.access_key": "MINIO_ACCESS_KEY",
	"storage.minio.secret_key": "MINIO_SECRET_KEY",
	"storage.minio.bucket":     "MINIO_BUCKET",
	"storage.minio.use_ssl":    "MINIO_USE_SSL",
	"storage.minio.public_url": "MINIO_PUBLIC_URL",

	"auth.jwt_secret":        "JWT_SECRET",
	"auth.access_token_ttl":  "ACCESS_TOKEN_TTL",
	"auth.refresh_token_ttl": "REFRESH_TOKEN_TTL",

	"view.default_page_size": "VIEW_DEFAULT_PAGE_SIZE",
	"view.max_page_size":     "VIEW_MAX_PAGE_SIZE",

	"cascade.reconcile_interval": "CASCADE_RECONCILE_INTERVAL",
	"cascade.max_attempts":       "CASCADE_MAX_ATTEMPTS",
	"cascade.batch_size":         "CASCADE_BATCH_SIZE",

	"logging.level":       "LOG_LEVEL",
	"logging.format":      "LOG_FORMAT",
	"logging.output_path": "LOG_OUTPUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.grpc_port", "9000")
	v.SetDefault("server.media_port", "8081")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.environment", "development")

	v.SetDefault("mongodb.host", "localhost")
	v.SetDefault("mongodb.port", "27017")
	v.SetDefault("mongodb.username", "")
	v.SetDefault("mongodb.password", "")
	v.SetDefault("mongodb.database", "gotube")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.username", "gotube")
	v.SetDefault("database.password", "gotube123")
	v.SetDefault("database.database_name", "gotube")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.driver", "gridfs")
	v.SetDefault("storage.minio.endpoint", "localhost:9001")
	v.SetDefault("storage.minio.bucket", "gotube-media")
	v.SetDefault("storage.minio.use_ssl", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.refresh_token_ttl", "240h")

	v.SetDefault("view.default_page_size", 10)
	v.SetDefault("view.max_page_size", 50)

	v.SetDefault("cascade.reconcile_interval", "1m")
	v.SetDefault("cascade.max_attempts", 5)
	v.SetDefault("cascade.batch_size", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// LoadConfig reads .env, an optional config.yaml and the environment, in that order of precedence (lowest first).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetString("server.port"),
			GRPCPort:     v.GetString("server.grpc_port"),
			MediaPort:    v.GetString("server.media_port"),
			ReadTimeout:  v.GetInt("server.read_timeout"),
			WriteTimeout: v.GetInt("server.write_timeout"),
			Environment:  v.GetString("server.environment"),
			MediaBaseURL: v.GetString("server.media_base_url"),
		},
		MongoDB: MongoDBConfig{
			Host:     v.GetString("mongodb.host"),
			Port:     v.GetString("mongodb.port"),
			Username: v.GetString("mongodb.username"),
			Password: v.GetString("mongodb.password"),
			Database: v.GetString("mongodb.database"),
		},
		Database: DatabaseConfig{
			Enabled:      v.GetBool("database.enabled"),
			Host:         v.GetString("database.host"),
			Port:         v.GetString("database.port"),
			Username:     v.GetString("database.username"),
			Password:     v.GetString("database.password"),
			DatabaseName: v.GetString("database.database_name"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("storage.driver"),
			Minio: MinioConfig{
				Endpoint:  v.GetString("storage.minio.endpoint"),
				AccessKey: v.GetString("storage.minio.access_key"),
				SecretKey: v.GetString("storage.minio.secret_key"),
				Bucket:    v.GetString("storage.minio.bucket"),
				UseSSL:    v.GetBool("storage.minio.use_ssl"),
				PublicURL: v.GetString("storage.minio.public_url"),
			},
		},
		Auth: AuthConfig{
			JWTSecret:       v.GetString("auth.jwt_secret"),
			AccessTokenTTL:  v.GetDuration("auth.access_token_ttl"),
			RefreshTokenTTL: v.GetDuration("auth.refresh_token_ttl"),
		},
		View: ViewConfig{
			DefaultPageSize: v.GetInt("view.default_page_size"),
			MaxPageSize:     v.GetInt("view.max_page_size"),
		},
		Cascade: CascadeConfig{
			ReconcileInterval: v.GetDuration("cascade.reconcile_interval"),
			MaxAttempts:       v.GetInt("cascade.max_attempts"),
			BatchSize:         v.GetInt("cascade.batch_size"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("logging.level"),
			Format:     v.GetString("logging.format"),
			OutputPath: v.GetString("logging.output_path"),
		},
	}

	if cfg.Server.MediaBaseURL == "" {
		cfg.Server.MediaBaseURL = fmt.Sprintf("http://localhost:%s/media", cfg.Server.MediaPort)
	}
	if cfg.Storage.Minio.PublicURL == "" {
		scheme := "http"
		if cfg.Storage.Minio.UseSSL {
			scheme = "https"
		}
		cfg.Storage.Minio.PublicURL = fmt.Sprintf("%s://%s", scheme, cfg.Storage.Minio.Endpoint)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot start with.
func (cfg *Config) Validate() error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.View.DefaultPageSize < 1 || cfg.View.MaxPageSize < cfg.View.DefaultPageSize {
		return fmt.Errorf("invalid page sizes: default=%d max=%d", cfg.View.DefaultPageSize, cfg.View.MaxPageSize)
	}
	switch cfg.Storage.Driver {
	case "gridfs", "minio":
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return nil
}

func (cfg *Config) GetMongoURI() string {
	m := cfg.MongoDB
	if m.Username != "" && m.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin", m.Username, m.Password, m.Host, m.Port, m.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s/%s", m.Host, m.Port, m.Database)
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}
