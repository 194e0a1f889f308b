package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"codecrafters"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres   Postgres
	Redis      Redis
	Security   Security
	Storage    Storage
	Submission Submission
	Profile    Profile
	CORS       CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// ConnString renders the pgx keyword/value connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode, p.MaxConns)
}

// Redis holds cache, lock and pub/sub configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"codecrafters"`
	AccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1h"`
}

// Storage points at the media storage account used for challenge assets.
type Storage struct {
	BaseURL      string        `env:"CLOUDINARY_BASE_URL" envDefault:"https://api.cloudinary.com"`
	CloudName    string        `env:"CLOUDINARY_CLOUD_NAME,notEmpty"`
	UploadPreset string        `env:"CLOUDINARY_UPLOAD_PRESET,notEmpty"`
	HTTPTimeout  time.Duration `env:"CLOUDINARY_HTTP_TIMEOUT" envDefault:"60s"`
}

// Submission tunes the challenge submission flow.
type Submission struct {
	UploadTimeout   time.Duration `env:"SUBMISSION_UPLOAD_TIMEOUT" envDefault:"2m"`
	MaxMemoryBytes  int64         `env:"SUBMISSION_MAX_MEMORY_BYTES" envDefault:"33554432"`
	MaxBodyBytes    int64         `env:"SUBMISSION_MAX_BODY_BYTES" envDefault:"209715200"`
	LockTTL         time.Duration `env:"SUBMISSION_LOCK_TTL" envDefault:"5m"`
	ProgressChannel string        `env:"SUBMISSION_PROGRESS_CHANNEL" envDefault:"submissions:progress"`
}

// Profile configures the profile page cache.
type Profile struct {
	CacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Client configures the command-line client.
type Client struct {
	APIURL  string        `env:"CODECRAFTERS_API_URL" envDefault:"http://localhost:8080"`
	Token   string        `env:"CODECRAFTERS_TOKEN" envDefault:""`
	Timeout time.Duration `env:"CODECRAFTERS_HTTP_TIMEOUT" envDefault:"30s"`

	// UploadTimeout bounds the upload phase of one submission.
	UploadTimeout time.Duration `env:"SUBMISSION_UPLOAD_TIMEOUT" envDefault:"2m"`

	Storage ClientStorage
}

// ClientStorage lets the CLI upload straight to the storage provider.
type ClientStorage struct {
	BaseURL      string        `env:"CLOUDINARY_BASE_URL" envDefault:"https://api.cloudinary.com"`
	CloudName    string        `env:"CLOUDINARY_CLOUD_NAME" envDefault:""`
	UploadPreset string        `env:"CLOUDINARY_UPLOAD_PRESET" envDefault:""`
	HTTPTimeout  time.Duration `env:"CLOUDINARY_HTTP_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadClient parses the CLI configuration. Storage settings are only
// checked when a command needs them.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	return cfg, nil
}
