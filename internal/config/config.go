package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`

	Rates      RatesConfig      `mapstructure:"rates"`
	RateStream RateStreamConfig `mapstructure:"rate_stream"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	SBA        SBAConfig        `mapstructure:"sba"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	WorkerPoll   string `mapstructure:"worker_poll"`
	RatesRefresh string `mapstructure:"rates_refresh"`
}

type RatesConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxStaleness time.Duration `mapstructure:"max_staleness"`
}

type RateStreamConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// PolicyConfig seeds the default bank overlay when a bank has none stored.
// Threshold numbers are policy data, never hardcoded in engine code.
type PolicyConfig struct {
	DefaultMinDSCR           float64 `mapstructure:"default_min_dscr"`
	DefaultMaxLeverage       float64 `mapstructure:"default_max_leverage"`
	DefaultMinCurrentRatio   float64 `mapstructure:"default_min_current_ratio"`
	DefaultMaxLTV            float64 `mapstructure:"default_max_ltv"`
	ModerateDeviationCutoff  float64 `mapstructure:"moderate_deviation_cutoff"`
	SevereDeviationCutoff    float64 `mapstructure:"severe_deviation_cutoff"`
	DefaultBaseSpreadBps     int     `mapstructure:"default_base_spread_bps"`
	DefaultMinDebtYieldPct   float64 `mapstructure:"default_min_debt_yield_pct"`
	DefaultStressedMinDSCR   float64 `mapstructure:"default_stressed_min_dscr"`
	DefaultMaxDebtToEBITDA   float64 `mapstructure:"default_max_debt_to_ebitda"`
	DefaultGuarantyThreshold float64 `mapstructure:"default_guaranty_threshold"`
}

type PricingConfig struct {
	DefaultIndexCode     string  `mapstructure:"default_index_code"`
	ConservativeBumpBps  int     `mapstructure:"conservative_bump_bps"`
	StretchDiscountBps   int     `mapstructure:"stretch_discount_bps"`
	ConservativeAmortCut int     `mapstructure:"conservative_amort_cut_months"`
	StressShockBps       int     `mapstructure:"stress_shock_bps"`
	DefaultTermMonths    int     `mapstructure:"default_term_months"`
	DefaultAmortMonths   int     `mapstructure:"default_amort_months"`
	OriginationFeePct    float64 `mapstructure:"origination_fee_pct"`
	SBAIndexCode         string  `mapstructure:"sba_index_code"`
	SBASpreadBps         int     `mapstructure:"sba_spread_bps"`
	SBATermMonths        int     `mapstructure:"sba_term_months"`
	SBAGuarantyFeeTier1  float64 `mapstructure:"sba_guaranty_fee_tier1_pct"`
	SBAGuarantyFeeTier2  float64 `mapstructure:"sba_guaranty_fee_tier2_pct"`
	SBAGuarantyFeeTier3  float64 `mapstructure:"sba_guaranty_fee_tier3_pct"`
	SBAFeeTier1CapUSD    float64 `mapstructure:"sba_fee_tier1_cap_usd"`
	SBAFeeTier2CapUSD    float64 `mapstructure:"sba_fee_tier2_cap_usd"`
}

type SBAConfig struct {
	MaxLoanUSD    float64 `mapstructure:"max_loan_usd"`
	MaxRevenueUSD float64 `mapstructure:"max_revenue_usd"`
}

type SchedulerConfig struct {
	MaxConflictRetries int           `mapstructure:"max_conflict_retries"`
	DefaultRunDelay    time.Duration `mapstructure:"default_run_delay"`
}

type WorkerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.worker_poll", "@every 15s")
	v.SetDefault("cron.rates_refresh", "@every 10m")

	v.SetDefault("rates.base_url", "https://rates.example.com")
	v.SetDefault("rates.timeout", "15s")
	v.SetDefault("rates.max_staleness", "1h")
	v.SetDefault("rate_stream.enabled", false)
	v.SetDefault("rate_stream.url", "")
	v.SetDefault("rate_stream.reconnect_delay", "5s")

	v.SetDefault("policy.default_min_dscr", 1.25)
	v.SetDefault("policy.default_max_leverage", 4.0)
	v.SetDefault("policy.default_min_current_ratio", 1.2)
	v.SetDefault("policy.default_max_ltv", 0.75)
	v.SetDefault("policy.moderate_deviation_cutoff", 0.10)
	v.SetDefault("policy.severe_deviation_cutoff", 0.25)
	v.SetDefault("policy.default_base_spread_bps", 275)
	v.SetDefault("policy.default_min_debt_yield_pct", 9.0)
	v.SetDefault("policy.default_stressed_min_dscr", 1.0)
	v.SetDefault("policy.default_max_debt_to_ebitda", 5.0)
	v.SetDefault("policy.default_guaranty_threshold", 500000)

	v.SetDefault("pricing.default_index_code", "SOFR_30D")
	v.SetDefault("pricing.conservative_bump_bps", 50)
	v.SetDefault("pricing.stretch_discount_bps", 50)
	v.SetDefault("pricing.conservative_amort_cut_months", 60)
	v.SetDefault("pricing.stress_shock_bps", 300)
	v.SetDefault("pricing.default_term_months", 120)
	v.SetDefault("pricing.default_amort_months", 300)
	v.SetDefault("pricing.origination_fee_pct", 1.0)
	v.SetDefault("pricing.sba_index_code", "WSJ_PRIME")
	v.SetDefault("pricing.sba_spread_bps", 275)
	v.SetDefault("pricing.sba_term_months", 300)
	v.SetDefault("pricing.sba_guaranty_fee_tier1_pct", 0)
	v.SetDefault("pricing.sba_guaranty_fee_tier2_pct", 1.45)
	v.SetDefault("pricing.sba_guaranty_fee_tier3_pct", 1.70)
	v.SetDefault("pricing.sba_fee_tier1_cap_usd", 1000000)
	v.SetDefault("pricing.sba_fee_tier2_cap_usd", 2000000)

	v.SetDefault("sba.max_loan_usd", 5000000)
	v.SetDefault("sba.max_revenue_usd", 47000000)

	v.SetDefault("scheduler.max_conflict_retries", 2)
	v.SetDefault("scheduler.default_run_delay", "5s")

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.batch_size", 5)
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.retry_backoff", "1m")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
