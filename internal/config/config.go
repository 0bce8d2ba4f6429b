package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/idilsaglam/issuetracker/internal/shopify"
)

// Backends for issue storage.
const (
	BackendShopify = "shopify"
	BackendFile    = "file"
)

const (
	envPrefix  = "ISSUETRACKER"
	configName = "issuetracker"
)

// Config is the resolved runtime configuration.
type Config struct {
	ShopDomain string `mapstructure:"shop_domain"`
	APIVersion string `mapstructure:"api_version"`
	Endpoint   string `mapstructure:"endpoint"`

	Metafield struct {
		Namespace string `mapstructure:"namespace"`
		Key       string `mapstructure:"key"`
	} `mapstructure:"metafield"`

	Store struct {
		Backend string `mapstructure:"backend"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"store"`

	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	Sandbox struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"sandbox"`

	Log struct {
		Debug bool   `mapstructure:"debug"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
}

// Dir is the per-user directory holding config and credentials.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".issuetracker"), nil
}

// New returns a viper instance with defaults, env binding and config search
// paths set. A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	// missing .env is fine, env vars can be set by other means
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("api_version", shopify.DefaultAPIVersion)
	v.SetDefault("metafield.namespace", shopify.DefaultNamespace)
	v.SetDefault("metafield.key", shopify.DefaultKey)
	v.SetDefault("store.backend", BackendShopify)
	v.SetDefault("store.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("sandbox.addr", ":8089")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")
	v.SetDefault("shop_domain", "")
	v.SetDefault("endpoint", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the platform's own variable name, as the admin scripts use it
	_ = v.BindEnv("shop_domain", envPrefix+"_SHOP_DOMAIN", "SHOPIFY_SHOP_DOMAIN")

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := Dir(); err == nil {
		v.AddConfigPath(dir)
	}
	return v
}

// Load reads the config file if any and decodes everything into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendShopify, BackendFile:
	default:
		return fmt.Errorf("store.backend: %q is invalid (valid values: %s, %s)", c.Store.Backend, BackendShopify, BackendFile)
	}
	if c.Metafield.Namespace == "" || c.Metafield.Key == "" {
		return errors.New("metafield.namespace and metafield.key must not be empty")
	}
	return nil
}
