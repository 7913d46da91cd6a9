package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Source   SourceConfig   `mapstructure:"source"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Debug     bool   `mapstructure:"debug"`
	StaticDir string `mapstructure:"static_dir"` // Built table UI (served at /)
}

// SourceConfig locates the two input documents. Each location is a file
// path or an http(s) URL.
type SourceConfig struct {
	Inventory      string        `mapstructure:"inventory"`
	Prices         string        `mapstructure:"prices"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"` // 0 disables periodic reload
	// LegacyIDLookup re-keys price entries recorded under raw item ids to
	// stable ids when a snapshot is loaded.
	LegacyIDLookup bool `mapstructure:"legacy_id_lookup"`
}

type PricingConfig struct {
	Retention      time.Duration `mapstructure:"retention"`
	RefreshOnCarry bool          `mapstructure:"refresh_on_carry"`
	ExportFilename string        `mapstructure:"export_filename"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return decode(v)
}

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, _ := decode(v)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("source.inventory", "./docs/inventory.json")
	v.SetDefault("source.prices", "./docs/prices.json")
	v.SetDefault("source.fetch_timeout", "15s")
	v.SetDefault("source.reload_interval", "10m")
	v.SetDefault("source.legacy_id_lookup", false)
	v.SetDefault("pricing.retention", "168h")
	v.SetDefault("pricing.refresh_on_carry", true)
	v.SetDefault("pricing.export_filename", "prices.json")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("database.mode", "memory")
	v.SetDefault("database.sqlite_path", "./data/tradeboard.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 2)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 64)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
