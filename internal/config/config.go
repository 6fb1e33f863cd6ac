package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Austin  AustinConfig  `yaml:"austin" mapstructure:"austin"`
	Augment AugmentConfig `yaml:"augment" mapstructure:"augment"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// AustinConfig configures the City of Austin ArcGIS endpoints and the HTTP
// session used to reach them.
type AustinConfig struct {
	LandingURL  string  `yaml:"landing_url" mapstructure:"landing_url"`
	GeocodeURL  string  `yaml:"geocode_url" mapstructure:"geocode_url"`
	DistrictURL string  `yaml:"district_url" mapstructure:"district_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/s, 0 = unlimited
	TraceHTTP   bool    `yaml:"trace_http" mapstructure:"trace_http"`
}

// Timeout returns the per-request timeout.
func (c AustinConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// AugmentConfig configures the row augmentation loop.
type AugmentConfig struct {
	IntervalSecs float64 `yaml:"interval_secs" mapstructure:"interval_secs"`
}

// Interval returns the pause between rows.
func (c AugmentConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs * float64(time.Second))
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUGMENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("austin.landing_url", "https://www.austintexas.gov/government")
	v.SetDefault("austin.geocode_url", "https://maps.austintexas.gov/arcgis/rest/services/Geocode/COA_Locator/GeocodeServer/findAddressCandidates")
	v.SetDefault("austin.district_url", "https://maps.austintexas.gov/gis/rest/Shared/CouncilDistrictsFill/MapServer/0/query")
	v.SetDefault("austin.user_agent", "augment-cli/1.0")
	v.SetDefault("austin.timeout_secs", 30)
	v.SetDefault("austin.rate_limit", 0)
	v.SetDefault("austin.trace_http", false)
	v.SetDefault("augment.interval_secs", 30)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the augment and lookup commands depend on.
func (c *Config) Validate() error {
	var missing []string
	if c.Austin.LandingURL == "" {
		missing = append(missing, "austin.landing_url")
	}
	if c.Austin.GeocodeURL == "" {
		missing = append(missing, "austin.geocode_url")
	}
	if c.Austin.DistrictURL == "" {
		missing = append(missing, "austin.district_url")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.Augment.IntervalSecs < 0 {
		return eris.Errorf("config: augment.interval_secs must not be negative, got %v", c.Augment.IntervalSecs)
	}
	if c.Austin.RateLimit < 0 {
		return eris.Errorf("config: austin.rate_limit must not be negative, got %v", c.Austin.RateLimit)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// zapConfig maps LogConfig onto a zap config. Console output carries no
// stack traces.
func zapConfig(cfg LogConfig) (zap.Config, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	return zapCfg, nil
}
