package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/rentora/access-layer/internal/core/domain"
	"github.com/rentora/access-layer/internal/pkg/validate"
)

// DefaultBaseURL is used when API_BASE_URL is not set.
const DefaultBaseURL = "http://localhost:8080/api"

type Config struct {
	BaseURL       string        `env:"API_BASE_URL,   default=http://localhost:8080/api" validate:"required,http_url"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`
	LogPretty     bool          `env:"LOG_PRETTY,     default=false"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT,   default=30s" validate:"gt=0"`
	RedirectDelay time.Duration `env:"REDIRECT_DELAY, default=1500ms" validate:"gte=0"`
	MetadataPath  string        `env:"METADATA_PATH,  default=/seo"`
	Tracing       bool          `env:"OTEL_TRACING,   default=false"`

	Staff   RoleConfig `env:", prefix=STAFF_"`
	EndUser RoleConfig `env:", prefix=END_USER_"`

	Credentials CredentialsConfig
	Redis       RedisConfig
	Mongo       MongoConfig
}

// RoleConfig holds the two locations a role needs: the login entry point its
// browsing context is redirected to, and the backend endpoint that issues
// its tokens.
type RoleConfig struct {
	LoginPath     string `env:"LOGIN_PATH"     validate:"required"`
	LoginEndpoint string `env:"LOGIN_ENDPOINT" validate:"required"`
}

type CredentialsConfig struct {
	Backend string `env:"CREDENTIAL_STORE, default=file" validate:"oneof=file memory redis mongo"`
	Dir     string `env:"CREDENTIAL_DIR,   default=.credentials"`
	// Key is a 64-char hex key; when set, the file backend seals tokens at rest.
	Key string `env:"CREDENTIAL_KEY" validate:"omitempty,len=64,hexadecimal"`
}

type RedisConfig struct {
	Addr   string        `env:"REDIS_ADDR,   default=localhost:6379"`
	DB     int           `env:"REDIS_DB,     default=0"`
	Prefix string        `env:"REDIS_PREFIX, default=access"`
	TTL    time.Duration `env:"REDIS_TTL,    default=0s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=access_layer"`
}

// LoginPaths maps each role to its login entry point.
func (c *Config) LoginPaths() map[domain.Role]string {
	return map[domain.Role]string{
		domain.RoleStaff:   c.Staff.LoginPath,
		domain.RoleEndUser: c.EndUser.LoginPath,
	}
}

// LoginEndpoints maps each role to the backend endpoint issuing its tokens.
func (c *Config) LoginEndpoints() map[domain.Role]string {
	return map[domain.Role]string{
		domain.RoleStaff:   c.Staff.LoginEndpoint,
		domain.RoleEndUser: c.EndUser.LoginEndpoint,
	}
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l, fills role defaults, and validates
// the result.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	setDefault(&cfg.Staff.LoginPath, "/admin/login")
	setDefault(&cfg.Staff.LoginEndpoint, "/admin/auth/login")
	setDefault(&cfg.EndUser.LoginPath, "/login")
	setDefault(&cfg.EndUser.LoginEndpoint, "/auth/login")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load that panics on failure.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func setDefault(field *string, def string) {
	if *field == "" {
		*field = def
	}
}
