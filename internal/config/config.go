// Package config loads the engine's configuration surface per spec §6,
// shaped after the pack's single-binary bots (0xtitan6-polymarket-mm,
// stadam23-Eve-flipper): viper reads a YAML strategy config with
// flag/env overrides, while a separate codingconcepts/env struct keeps
// exchange credentials out of the YAML file entirely.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yoyowasa/bitget-eth-mm-bi-funding/internal/gateway"
)

// Config is spec §6's "recognized options" surface.
type Config struct {
	Symbol string `mapstructure:"symbol"`

	TickSec time.Duration `mapstructure:"tick_sec"`

	QuoteQty            float64 `mapstructure:"quote_qty"`
	BaseHalfSpreadBps   float64 `mapstructure:"base_half_spread_bps"`
	KOBI                float64 `mapstructure:"k_obi"`
	InventorySkewBps    float64 `mapstructure:"inventory_skew_bps"`
	FundingSkewBps      float64 `mapstructure:"funding_skew_bps"`
	MinAbsFunding       float64 `mapstructure:"min_abs_funding"`
	ReplaceThresholdBps float64 `mapstructure:"replace_threshold_bps"`

	HedgeSlipBps    float64       `mapstructure:"hedge_slip_bps"`
	HedgeChaseSec   time.Duration `mapstructure:"hedge_chase_sec"`
	HedgeMaxTries   int           `mapstructure:"hedge_max_tries"`
	HedgeDeadlineMs time.Duration `mapstructure:"hedge_deadline_ms"`
	ChaseGain       float64       `mapstructure:"chase_gain"`

	BookStaleSec    time.Duration `mapstructure:"book_stale_sec"`
	FundingStaleSec time.Duration `mapstructure:"funding_stale_sec"`

	MaxUnhedgedNotional float64       `mapstructure:"max_unhedged_notional"`
	MaxUnhedgedSec       time.Duration `mapstructure:"max_unhedged_sec"`
	RejectStreakHalt     int           `mapstructure:"reject_streak_halt"`

	ControlledReconnectGraceSec time.Duration `mapstructure:"controlled_reconnect_grace_sec"`

	DryRun bool `mapstructure:"dry_run"`

	ExpectedPositionMode  string `mapstructure:"expected_position_mode"`
	AutoSetPositionMode   bool   `mapstructure:"auto_set_position_mode"`

	AdminAddr        string `mapstructure:"admin_addr"`
	ProfitReportCron string `mapstructure:"profit_report_cron"`

	SlackWebhookURL string `mapstructure:"slack_webhook_url"`
	SlackChannel    string `mapstructure:"slack_channel"`

	LogPrimaryPath  string `mapstructure:"log_primary_path"`
	LogIncidentPath string `mapstructure:"log_incident_path"`
}

// Credentials are exchange API credentials, loaded from process
// environment only — never from the YAML config file (spec §2.3).
type Credentials struct {
	APIKey     string `env:"BITGET_API_KEY"`
	APISecret  string `env:"BITGET_API_SECRET"`
	Passphrase string `env:"BITGET_PASSPHRASE"`
}

// BindFlags registers the pflag flags viper binds config from, for
// cmd/engine's `run` subcommand.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("symbol", "ETHUSDT", "trading symbol")
	fs.Duration("tick-sec", 250*time.Millisecond, "strategy tick cadence")
	fs.Bool("dry-run", false, "use the simulated gateway instead of the live venue")
	fs.String("config", "configs/config.yaml", "path to the YAML config file")
}

// Load reads the YAML config at path through viper, with flags and
// BITGET_MM_-prefixed env vars as overrides, per spec §2.3's layering.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load() // optional local .env; absence is not an error

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BITGET_MM")
	v.AutomaticEnv()

	setDefaults(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
		// BindPFlags keys each flag by its hyphenated name; bind the
		// hyphenated flags to their underscored config keys as well.
		for key, name := range map[string]string{"tick_sec": "tick-sec", "dry_run": "dry-run"} {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tick_sec", "250ms")
	v.SetDefault("hedge_chase_sec", "5s")
	v.SetDefault("hedge_deadline_ms", "10s")
	v.SetDefault("hedge_max_tries", 3)
	v.SetDefault("chase_gain", 0.5)
	v.SetDefault("book_stale_sec", "2s")
	v.SetDefault("funding_stale_sec", "120s")
	v.SetDefault("max_unhedged_sec", "30s")
	v.SetDefault("reject_streak_halt", 5)
	v.SetDefault("controlled_reconnect_grace_sec", "10s")
	v.SetDefault("expected_position_mode", string(gateway.PositionModeOneWay))
}

// Validate checks the fields the engine cannot safely start without.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.QuoteQty <= 0 {
		return fmt.Errorf("quote_qty must be > 0")
	}
	if c.MaxUnhedgedNotional <= 0 {
		return fmt.Errorf("max_unhedged_notional must be > 0")
	}
	if c.RejectStreakHalt <= 0 {
		return fmt.Errorf("reject_streak_halt must be > 0")
	}
	return nil
}
