package agent

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultTickerInterval   = 30 * time.Second
	DefaultAnalysisInterval = 5 * time.Minute
	DefaultAnalysisWindow   = 30
	DefaultAnalysisMinBars  = 10

	// MinNewsInterval is the floor for the news poll interval.
	MinNewsInterval          = 15 * time.Minute
	DefaultNewsMinConfidence = 0.7

	DefaultInitialCash            = 10000.0
	DefaultMaxPositionSize        = 5000.0
	DefaultTradingMinConfidence   = 0.6
	DefaultEventBusBufferSize     = 256
	DefaultTradingBarWindowLength = 50
)

// Duration wraps time.Duration with YAML string parsing ("30s", "15m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid duration %q", raw)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// TickerSettings configures the ticker agent.
type TickerSettings struct {
	Interval Duration `yaml:"interval" validate:"gt=0"`
}

// AnalysisSettings configures the analysis agent.
type AnalysisSettings struct {
	Interval Duration `yaml:"interval" validate:"gt=0"`
	// Window is the number of recent bars analyzed per symbol.
	Window int `yaml:"window" validate:"gte=1"`
	// MinBars is the minimum history required before a symbol is analyzed.
	MinBars int `yaml:"min_bars" validate:"gte=1"`
}

// NewsSettings configures the news agent.
type NewsSettings struct {
	Interval Duration `yaml:"interval" validate:"gt=0"`
	// MinConfidence filters news analyses below this confidence.
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
}

// TradingSettings configures the trading agent.
type TradingSettings struct {
	InitialCash float64 `yaml:"initial_cash" validate:"gt=0"`
	// MaxPositionSize bounds the exposure per symbol in account currency.
	MaxPositionSize float64 `yaml:"max_position_size" validate:"gt=0"`
	// MinConfidence discards inbound signals below this confidence.
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
}

// Config is the engine configuration shared by all agents.
type Config struct {
	Symbols  []string         `yaml:"symbols" validate:"required,min=1,dive,required"`
	Ticker   TickerSettings   `yaml:"ticker"`
	Analysis AnalysisSettings `yaml:"analysis"`
	News     NewsSettings     `yaml:"news"`
	Trading  TradingSettings  `yaml:"trading"`
}

// DefaultConfig returns a config with all defaults applied and no symbols.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()

	return cfg
}

// ApplyDefaults fills unset fields and floors the news interval at
// MinNewsInterval.
func (c *Config) ApplyDefaults() {
	if c.Ticker.Interval <= 0 {
		c.Ticker.Interval = Duration(DefaultTickerInterval)
	}

	if c.Analysis.Interval <= 0 {
		c.Analysis.Interval = Duration(DefaultAnalysisInterval)
	}

	if c.Analysis.Window <= 0 {
		c.Analysis.Window = DefaultAnalysisWindow
	}

	if c.Analysis.MinBars <= 0 {
		c.Analysis.MinBars = DefaultAnalysisMinBars
	}

	if c.News.Interval < Duration(MinNewsInterval) {
		c.News.Interval = Duration(MinNewsInterval)
	}

	if c.News.MinConfidence <= 0 {
		c.News.MinConfidence = DefaultNewsMinConfidence
	}

	if c.Trading.InitialCash <= 0 {
		c.Trading.InitialCash = DefaultInitialCash
	}

	if c.Trading.MaxPositionSize <= 0 {
		c.Trading.MaxPositionSize = DefaultMaxPositionSize
	}

	if c.Trading.MinConfidence <= 0 {
		c.Trading.MinConfidence = DefaultTradingMinConfidence
	}
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid agent config", err)
	}

	return nil
}

// LoadConfig reads a YAML config file, applies defaults and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ConfigUpdate is a partial configuration change applied through the
// orchestrator. Nil fields are left unchanged.
type ConfigUpdate struct {
	Symbols              []string
	TickerInterval       *time.Duration
	AnalysisInterval     *time.Duration
	NewsInterval         *time.Duration
	NewsMinConfidence    *float64
	TradingMinConfidence *float64
	MaxPositionSize      *float64
}
