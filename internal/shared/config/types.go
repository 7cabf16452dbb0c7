package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Timezone       string   `mapstructure:"timezone"`
	Version        string   `mapstructure:"version"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RateLimitConfig bounds per-store request frequency over a fixed window.
type RateLimitConfig struct {
	RequestsPerWindow int `mapstructure:"requests_per_window"`
	WindowSeconds     int `mapstructure:"window_seconds"`
}

func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// EntitlementConfig carries the deployment's plan table and signing policy.
type EntitlementConfig struct {
	// Plans maps plan name to its license cap. A value of 0 marks the plan unlimited.
	Plans map[string]int `mapstructure:"plans"`
	// PlansFile optionally points to a YAML file overriding Plans.
	PlansFile      string `mapstructure:"plans_file"`
	DefaultLimit   int    `mapstructure:"default_limit"`
	UpgradeURL     string `mapstructure:"upgrade_url"`
	ProductID      string `mapstructure:"product_id"`
	TimestampSkew  int    `mapstructure:"timestamp_skew_seconds"`
	LatestPlugin   string `mapstructure:"latest_plugin_version"`
	// PriceTiers maps an external price identifier to an internal plan name.
	PriceTiers map[string]string `mapstructure:"price_tiers"`
}

func (e *EntitlementConfig) Skew() time.Duration {
	return time.Duration(e.TimestampSkew) * time.Second
}

// AdminConfig authenticates the subscription system on the notification routes.
type AdminConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	Issuer        string `mapstructure:"issuer"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

func (a *AdminConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type NotifyConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SMTPHost      string `mapstructure:"smtp_host"`
	SMTPPort      int    `mapstructure:"smtp_port"`
	SMTPUser      string `mapstructure:"smtp_user"`
	SMTPPassword  string `mapstructure:"smtp_password"`
	FromAddress   string `mapstructure:"from_address"`
	FromName      string `mapstructure:"from_name"`
	AlertAddress  string `mapstructure:"alert_address"`
	EventsChannel string `mapstructure:"events_channel"`
	InboxChannel  string `mapstructure:"inbox_channel"`
	// AlertCooldownMinutes suppresses repeat alerts for the same store and
	// event type. Only applied when redis is enabled.
	AlertCooldownMinutes int `mapstructure:"alert_cooldown_minutes"`
}

func (n *NotifyConfig) AlertCooldown() time.Duration {
	return time.Duration(n.AlertCooldownMinutes) * time.Minute
}
