package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	HTTP     HTTPConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Session  SessionConfig
	Google   GoogleConfig
	Images   ImagesConfig
	Demo     DemoConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"5001"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	StaticDir       string        `env:"HTTP_STATIC_DIR" env-default:"web"`
}

type StoreConfig struct {
	// Driver selects the persistence backend: memory, postgres or mongo.
	Driver string `env:"STORE_DRIVER" env-default:"memory"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-default:"localhost"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password       string        `env:"POSTGRES_PASSWORD" env-default:""`
	Database       string        `env:"POSTGRES_DATABASE" env-default:"todoplane"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type MongoConfig struct {
	URI            string        `env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database       string        `env:"MONGODB_DATABASE" env-default:"todoplane"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"MONGODB_PING_TIMEOUT" env-default:"10s"`
}

type SessionConfig struct {
	Issuer string        `env:"SESSION_ISSUER" env-default:"todoplane"`
	Secret string        `env:"SESSION_SECRET" env-required:"true"`
	TTL    time.Duration `env:"SESSION_TTL" env-default:"24h"`
	Secure bool          `env:"SESSION_SECURE_COOKIE" env-default:"false"`
}

type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID" env-default:""`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET" env-default:""`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL" env-default:"http://localhost:5001/auth/google/callback"`
	// AdminEmail is promoted to the admin role on Google login.
	AdminEmail string `env:"ADMIN_EMAIL" env-default:""`
}

type ImagesConfig struct {
	S3Bucket string `env:"S3_BUCKET_NAME" env-default:""`
	S3Region string `env:"AWS_REGION" env-default:"us-east-1"`
	// S3Endpoint overrides the endpoint for MinIO/LocalStack setups.
	S3Endpoint string `env:"S3_ENDPOINT" env-default:""`
	S3Prefix   string `env:"S3_PREFIX" env-default:""`
}

type DemoConfig struct {
	// Enabled seeds demo fixtures and opens the auto-login routes.
	// Only honored with the memory store driver.
	Enabled bool `env:"DEMO_MODE" env-default:"false"`
}
