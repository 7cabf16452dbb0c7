package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	sharedConfig "github.com/orris-inc/licensegate/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig      `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig    `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig      `mapstructure:"logger"`
	Redis       sharedConfig.RedisConfig       `mapstructure:"redis"`
	RateLimit   sharedConfig.RateLimitConfig   `mapstructure:"rate_limit"`
	Entitlement sharedConfig.EntitlementConfig `mapstructure:"entitlement"`
	Admin       sharedConfig.AdminConfig       `mapstructure:"admin"`
	Notify      sharedConfig.NotifyConfig      `mapstructure:"notify"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath, when non-empty, names an explicit config file.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("LICENSEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Defaults plus environment are enough to boot a development instance.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Entitlement.PlansFile != "" {
		plans, err := LoadPlansFile(config.Entitlement.PlansFile)
		if err != nil {
			return nil, err
		}
		config.Entitlement.Plans = plans
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// plansFile is the on-disk layout of a plan table override.
type plansFile struct {
	Plans []struct {
		Name      string `yaml:"name"`
		Limit     int    `yaml:"limit"`
		Unlimited bool   `yaml:"unlimited"`
	} `yaml:"plans"`
}

// LoadPlansFile reads a YAML plan table. Unlimited plans are stored with limit 0.
func LoadPlansFile(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var file plansFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}

	plans := make(map[string]int, len(file.Plans))
	for _, p := range file.Plans {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return nil, fmt.Errorf("plans file %s: plan name is required", path)
		}
		if p.Unlimited {
			plans[name] = 0
			continue
		}
		if p.Limit <= 0 {
			return nil, fmt.Errorf("plans file %s: plan %q needs a positive limit or unlimited: true", path, name)
		}
		plans[name] = p.Limit
	}
	return plans, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.version", "1.0.0")

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "licensegate_dev")
	v.SetDefault("database.path", "licensegate.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_window", 60)
	v.SetDefault("rate_limit.window_seconds", 60)

	// Entitlement defaults
	v.SetDefault("entitlement.plans", map[string]int{
		"solo":   500,
		"studio": 0,
		"agency": 0,
	})
	v.SetDefault("entitlement.default_limit", 500)
	v.SetDefault("entitlement.upgrade_url", "https://example.com/pricing")
	v.SetDefault("entitlement.product_id", "")
	v.SetDefault("entitlement.timestamp_skew_seconds", 300)
	v.SetDefault("entitlement.latest_plugin_version", "")

	// Admin defaults
	v.SetDefault("admin.jwt_secret", "change-me-in-production")
	v.SetDefault("admin.issuer", "licensegate")
	v.SetDefault("admin.token_ttl_hours", 24*365)

	// Notify defaults
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.smtp_host", "localhost")
	v.SetDefault("notify.smtp_port", 1025)
	v.SetDefault("notify.from_address", "noreply@licensegate.local")
	v.SetDefault("notify.from_name", "License Gate")
	v.SetDefault("notify.events_channel", "licensegate:store:events")
	v.SetDefault("notify.inbox_channel", "licensegate:licensing:inbox")
	v.SetDefault("notify.alert_cooldown_minutes", 30)
}
