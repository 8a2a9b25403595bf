// Package config loads the sluice configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/sluice/pkg/domain"
)

// Config is the full service configuration.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Admin    Admin   `yaml:"admin"`
	Router   Router  `yaml:"router"`
	Server   Server  `yaml:"server"`
	Redis    Redis   `yaml:"redis"`
	Journal  Journal `yaml:"journal"`
}

// Admin configures the administrator identity and the API key guarding the
// HTTP admin surface.
type Admin struct {
	Address domain.Address `yaml:"address"`
	APIKey  string         `yaml:"api_key"`
}

// Router configures the engine identity and registry behavior.
type Router struct {
	Address       domain.Address `yaml:"address"`
	WrappedNative domain.Token   `yaml:"wrapped_native"`
	DefaultActive bool           `yaml:"default_active"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr string `yaml:"addr"`
}

// Redis configures registry persistence and the distributed execute lock.
// An empty Addr disables both.
type Redis struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// Journal configures the sqlite settlement journal. An empty Path disables
// it.
type Journal struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Admin:    Admin{Address: "admin"},
		Router: Router{
			Address:       "sluice",
			WrappedNative: "WNATIVE",
			DefaultActive: true,
		},
		Server: Server{Addr: ":8372"},
		Redis:  Redis{Prefix: "sluice:"},
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Admin.Address == domain.Zero {
		return fmt.Errorf("admin.address must be set")
	}
	if c.Router.Address == domain.Zero {
		return fmt.Errorf("router.address must be set")
	}
	if c.Admin.Address == c.Router.Address {
		return fmt.Errorf("admin.address and router.address must differ")
	}
	return nil
}
