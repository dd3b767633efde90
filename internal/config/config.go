// Package config defines the top-level configuration for the trade
// simulator and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADESIM_* environment
// variables. Components receive the sub-structs they need at construction;
// there is no ambient global configuration.
type Config struct {
	Stream     StreamConfig             `toml:"stream"`
	Window     WindowConfig             `toml:"window"`
	Impact     ImpactConfig             `toml:"impact"`
	Slippage   SlippageConfig           `toml:"slippage"`
	MakerTaker MakerTakerConfig         `toml:"maker_taker"`
	Fees       map[string]FeeTierConfig `toml:"fees"`
	Server     ServerConfig             `toml:"server"`
	LogLevel   string                   `toml:"log_level"`
}

// StreamConfig holds the market-data transport parameters.
type StreamConfig struct {
	URL                  string   `toml:"url"`
	ReconnectDelay       duration `toml:"reconnect_delay"`
	MaxReconnectAttempts int      `toml:"max_reconnect_attempts"`
	Buffer               int      `toml:"buffer"`
}

// WindowConfig holds the rolling-window parameters.
type WindowConfig struct {
	Capacity      int     `toml:"capacity"`
	Annualization float64 `toml:"annualization"`
}

// ImpactConfig holds the fixed Almgren-Chriss coefficients.
type ImpactConfig struct {
	Eta          float64 `toml:"eta"`
	Gamma        float64 `toml:"gamma"`
	RiskAversion float64 `toml:"risk_aversion"`
}

// SlippageConfig holds the quantile-regression hyperparameters.
type SlippageConfig struct {
	Quantile      float64  `toml:"quantile"`
	Alpha         float64  `toml:"alpha"`
	RefitInterval duration `toml:"refit_interval"`
}

// MakerTakerConfig holds the logistic-classifier hyperparameters.
type MakerTakerConfig struct {
	MaxIterations int      `toml:"max_iterations"`
	RefitInterval duration `toml:"refit_interval"`
}

// FeeTierConfig holds one exchange fee tier, rates as fractions.
type FeeTierConfig struct {
	Maker float64 `toml:"maker"`
	Taker float64 `toml:"taker"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Stream: StreamConfig{
			URL:                  "wss://ws.gomarket-cpp.goquant.io/ws/l2-orderbook/okx/BTC-USDT-SWAP",
			ReconnectDelay:       duration{5 * time.Second},
			MaxReconnectAttempts: 5,
			Buffer:               256,
		},
		Window: WindowConfig{
			Capacity:      1000,
			Annualization: 252,
		},
		Impact: ImpactConfig{
			Eta:          0.1,
			Gamma:        0.1,
			RiskAversion: 0.1,
		},
		Slippage: SlippageConfig{
			Quantile:      0.5,
			Alpha:         0.1,
			RefitInterval: duration{5 * time.Minute},
		},
		MakerTaker: MakerTakerConfig{
			MaxIterations: 1000,
			RefitInterval: duration{5 * time.Minute},
		},
		Fees: map[string]FeeTierConfig{
			"Tier 1": {Maker: 0.0008, Taker: 0.0010},
			"Tier 2": {Maker: 0.0007, Taker: 0.0009},
			"Tier 3": {Maker: 0.0006, Taker: 0.0008},
			"Tier 4": {Maker: 0.0005, Taker: 0.0007},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Stream
	if c.Stream.URL == "" {
		errs = append(errs, "stream: url must not be empty")
	} else if !strings.HasPrefix(c.Stream.URL, "ws://") && !strings.HasPrefix(c.Stream.URL, "wss://") {
		errs = append(errs, fmt.Sprintf("stream: url must be a ws:// or wss:// endpoint, got %q", c.Stream.URL))
	}
	if c.Stream.ReconnectDelay.Duration <= 0 {
		errs = append(errs, "stream: reconnect_delay must be positive")
	}
	if c.Stream.MaxReconnectAttempts < 1 {
		errs = append(errs, "stream: max_reconnect_attempts must be >= 1")
	}
	if c.Stream.Buffer < 1 {
		errs = append(errs, "stream: buffer must be >= 1")
	}

	// Window
	if c.Window.Capacity < 2 {
		errs = append(errs, "window: capacity must be >= 2")
	}
	if c.Window.Annualization <= 0 {
		errs = append(errs, "window: annualization must be positive")
	}

	// Impact
	if c.Impact.Eta <= 0 {
		errs = append(errs, "impact: eta must be positive")
	}
	if c.Impact.Gamma < 0 {
		errs = append(errs, "impact: gamma must be >= 0")
	}
	if c.Impact.RiskAversion < 0 {
		errs = append(errs, "impact: risk_aversion must be >= 0")
	}

	// Slippage
	if c.Slippage.Quantile <= 0 || c.Slippage.Quantile >= 1 {
		errs = append(errs, fmt.Sprintf("slippage: quantile must be in (0, 1), got %v", c.Slippage.Quantile))
	}
	if c.Slippage.Alpha < 0 {
		errs = append(errs, "slippage: alpha must be >= 0")
	}
	if c.Slippage.RefitInterval.Duration <= 0 {
		errs = append(errs, "slippage: refit_interval must be positive")
	}

	// MakerTaker
	if c.MakerTaker.MaxIterations < 1 {
		errs = append(errs, "maker_taker: max_iterations must be >= 1")
	}
	if c.MakerTaker.RefitInterval.Duration <= 0 {
		errs = append(errs, "maker_taker: refit_interval must be positive")
	}

	// Fees
	if len(c.Fees) == 0 {
		errs = append(errs, "fees: at least one tier must be configured")
	}
	for name, tier := range c.Fees {
		if tier.Maker < 0 || tier.Taker < 0 {
			errs = append(errs, fmt.Sprintf("fees: tier %q rates must be >= 0", name))
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
