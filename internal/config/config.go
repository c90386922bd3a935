// Package config holds the settings of the zkauth commands.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/taurusgroup/zkauth/internal/storage"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/session"
)

// EnvPrefix is the prefix of environment overrides, e.g. ZKAUTH_DATABASE_DSN.
const EnvPrefix = "zkauth"

// Config is the decoded configuration.
type Config struct {
	Debug bool `mapstructure:"debug"`
	// Group is "default" (RFC 5114 1024-bit) or "toy".
	Group    string   `mapstructure:"group"`
	Server   Server   `mapstructure:"server"`
	Attempt  Attempt  `mapstructure:"attempt"`
	Database Database `mapstructure:"database"`
	Token    Token    `mapstructure:"token"`
}

type Server struct {
	Listen string `mapstructure:"listen"`
	// URL is where the register and login commands reach the server.
	URL string `mapstructure:"url"`
}

type Attempt struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
}

// Database is optional. Registrations live in memory only when DSN is empty.
type Database struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Token configures JWT session tokens. Opaque random tokens are issued when
// Secret is empty.
type Token struct {
	Secret   string        `mapstructure:"secret"`
	Lifetime time.Duration `mapstructure:"lifetime"`
	Issuer   string        `mapstructure:"issuer"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("group", "default")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("attempt.ttl", session.DefaultAttemptTTL)
	v.SetDefault("attempt.sweep-interval", 30*time.Second)
	v.SetDefault("database.driver", storage.DriverSqlite)
	v.SetDefault("database.dsn", "")
	v.SetDefault("token.secret", "")
	v.SetDefault("token.lifetime", time.Hour)
	v.SetDefault("token.issuer", "zkauth")
}

// BindEnv makes every key overridable from ZKAUTH_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the values that would otherwise only fail later at runtime.
func (c *Config) Validate() error {
	if _, err := c.Parameters(); err != nil {
		return err
	}
	if c.Attempt.TTL < 0 {
		return fmt.Errorf("config: attempt.ttl must not be negative, got %s", c.Attempt.TTL)
	}
	switch c.Database.Driver {
	case storage.DriverSqlite, storage.DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Token.Secret != "" && len(c.Token.Secret) < 32 {
		return fmt.Errorf("config: token.secret must be at least 32 bytes")
	}
	return nil
}

// Parameters returns the group named by c.Group.
func (c *Config) Parameters() (*group.Parameters, error) {
	switch c.Group {
	case "", "default":
		return group.Default(), nil
	case "toy":
		return group.Toy(), nil
	default:
		return nil, fmt.Errorf("config: unknown group %q", c.Group)
	}
}
