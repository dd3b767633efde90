package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TRADESIM_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. A missing file is not
// an error: the defaults plus environment are used as-is.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TRADESIM_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators adjust the deployment without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Stream ──
	setStr(&cfg.Stream.URL, "TRADESIM_STREAM_URL")
	setDuration(&cfg.Stream.ReconnectDelay, "TRADESIM_STREAM_RECONNECT_DELAY")
	setInt(&cfg.Stream.MaxReconnectAttempts, "TRADESIM_STREAM_MAX_RECONNECT_ATTEMPTS")
	setInt(&cfg.Stream.Buffer, "TRADESIM_STREAM_BUFFER")

	// ── Window ──
	setInt(&cfg.Window.Capacity, "TRADESIM_WINDOW_CAPACITY")
	setFloat64(&cfg.Window.Annualization, "TRADESIM_WINDOW_ANNUALIZATION")

	// ── Impact ──
	setFloat64(&cfg.Impact.Eta, "TRADESIM_IMPACT_ETA")
	setFloat64(&cfg.Impact.Gamma, "TRADESIM_IMPACT_GAMMA")
	setFloat64(&cfg.Impact.RiskAversion, "TRADESIM_IMPACT_RISK_AVERSION")

	// ── Slippage ──
	setFloat64(&cfg.Slippage.Quantile, "TRADESIM_SLIPPAGE_QUANTILE")
	setFloat64(&cfg.Slippage.Alpha, "TRADESIM_SLIPPAGE_ALPHA")
	setDuration(&cfg.Slippage.RefitInterval, "TRADESIM_SLIPPAGE_REFIT_INTERVAL")

	// ── MakerTaker ──
	setInt(&cfg.MakerTaker.MaxIterations, "TRADESIM_MAKER_TAKER_MAX_ITERATIONS")
	setDuration(&cfg.MakerTaker.RefitInterval, "TRADESIM_MAKER_TAKER_REFIT_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "TRADESIM_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "TRADESIM_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "TRADESIM_SERVER_CORS_ORIGINS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "TRADESIM_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
