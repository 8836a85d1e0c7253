package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Columns ColumnsConfig `yaml:"columns" mapstructure:"columns"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourcesConfig locates the two input datasets. Locations may be local
// paths, http(s):// URLs or ftp:// URLs.
type SourcesConfig struct {
	Topology       string `yaml:"topology" mapstructure:"topology"`
	TopologyObject string `yaml:"topology_object" mapstructure:"topology_object"`
	Gini           string `yaml:"gini" mapstructure:"gini"`
	GiniSheet      string `yaml:"gini_sheet" mapstructure:"gini_sheet"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ColumnsConfig names the town properties and Gini table columns.
type ColumnsConfig struct {
	TownName   string `yaml:"town_name" mapstructure:"town_name"`
	Pop1980    string `yaml:"pop_1980" mapstructure:"pop_1980"`
	Pop2010    string `yaml:"pop_2010" mapstructure:"pop_2010"`
	GiniID     string `yaml:"gini_id" mapstructure:"gini_id"`
	GiniYear   string `yaml:"gini_year" mapstructure:"gini_year"`
	GiniIndex  string `yaml:"gini_index" mapstructure:"gini_index"`
	GiniArea   string `yaml:"gini_area" mapstructure:"gini_area"`
	LatestYear int    `yaml:"latest_year" mapstructure:"latest_year"`
}

// RenderConfig configures map output.
type RenderConfig struct {
	Width     float64 `yaml:"width" mapstructure:"width"`
	Height    float64 `yaml:"height" mapstructure:"height"`
	OutputDir string  `yaml:"output_dir" mapstructure:"output_dir"`
	PopLow    string  `yaml:"pop_low" mapstructure:"pop_low"`
	PopHigh   string  `yaml:"pop_high" mapstructure:"pop_high"`
	Fallback  string  `yaml:"fallback" mapstructure:"fallback"`
}

// FetchConfig configures remote source downloads.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	SessionTTLMins int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	CacheSize      int      `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLMins   int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxSessions    int      `yaml:"max_sessions" mapstructure:"max_sessions"`
	SessionRate    float64  `yaml:"session_rate_per_sec" mapstructure:"session_rate_per_sec"`
	SessionBurst   int      `yaml:"session_burst" mapstructure:"session_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml, if present, and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path and environment. An empty path
// falls back to an optional ./config.yaml; an explicit path must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("CHOROPLETH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.topology", "./data/towns.topojson")
	v.SetDefault("sources.topology_object", "ma")
	v.SetDefault("sources.gini", "./data/gini_index.csv")
	v.SetDefault("sources.temp_dir", "/tmp/choropleth")
	v.SetDefault("columns.town_name", "TOWN")
	v.SetDefault("columns.pop_1980", "POP1980")
	v.SetDefault("columns.pop_2010", "POP2010")
	v.SetDefault("columns.gini_id", "id")
	v.SetDefault("columns.gini_year", "year")
	v.SetDefault("columns.gini_index", "Estimate!!Gini Index")
	v.SetDefault("columns.gini_area", "Geographic Area Name")
	v.SetDefault("columns.latest_year", 2019)
	v.SetDefault("render.width", 960)
	v.SetDefault("render.height", 640)
	v.SetDefault("render.output_dir", "./out")
	v.SetDefault("render.pop_low", "#fee5d9")
	v.SetDefault("render.pop_high", "#de2d26")
	v.SetDefault("render.fallback", "#cccccc")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 1)
	v.SetDefault("fetch.rate_per_sec", 5)
	v.SetDefault("fetch.user_agent", "choropleth-cli/1.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.session_ttl_mins", 30)
	v.SetDefault("server.cache_size", 64)
	v.SetDefault("server.cache_ttl_mins", 60)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8080"})
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("server.session_rate_per_sec", 5)
	v.SetDefault("server.session_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command needs before it starts work.
// Mode is one of "render", "serve" or "inspect".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "render", "inspect":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.SessionTTLMins <= 0 {
			errs = append(errs, "server.session_ttl_mins must be > 0")
		}
		if c.Server.MaxSessions < 0 {
			errs = append(errs, "server.max_sessions must be >= 0")
		}
		if c.Server.SessionRate < 0 {
			errs = append(errs, "server.session_rate_per_sec must be >= 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Sources.Topology == "" {
		errs = append(errs, "sources.topology is required")
	}
	if c.Sources.TopologyObject == "" {
		errs = append(errs, "sources.topology_object is required")
	}
	if c.Sources.Gini == "" {
		errs = append(errs, "sources.gini is required")
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, "render.width and render.height must be > 0")
	}
	if c.Fetch.MaxRetries < 1 {
		errs = append(errs, "fetch.max_retries must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
