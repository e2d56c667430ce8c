package config

import "time"

type AppConfig struct {
	DBDriver        string            `yaml:"db_driver" env:"THREATWATCH_DB_DRIVER" env-default:"sqlite"`
	DBPath          string            `yaml:"db_path" env:"THREATWATCH_DB_PATH" env-default:"data/threatwatch.db"`
	DBURL           string            `yaml:"db_url" env:"THREATWATCH_DB_URL"`
	ListenAddr      string            `yaml:"listen_addr" env:"THREATWATCH_LISTEN_ADDR" env-default:"0.0.0.0:3001"`
	CORSAllowOrigin string            `yaml:"cors_allow_origin" env:"THREATWATCH_CORS_ALLOW_ORIGIN" env-default:"*"`
	AppEnv          string            `yaml:"app_env" env:"THREATWATCH_APP_ENV"`
	Advisory        AdvisoryConfig    `yaml:"advisory"`
	StatsReport     StatsReportConfig `yaml:"stats_report"`
}

type AdvisoryConfig struct {
	// The key is deliberately env-only; it must never end up in a config file.
	APIKey      string `yaml:"-" env:"OPENAI_API_KEY"`
	Model       string `yaml:"model" env:"THREATWATCH_ADVISORY_MODEL" env-default:"gpt-4o-mini"`
	BaseURL     string `yaml:"base_url" env:"THREATWATCH_ADVISORY_BASE_URL" env-default:"https://api.openai.com/v1"`
	TimeoutSec  int    `yaml:"timeout_sec" env:"THREATWATCH_ADVISORY_TIMEOUT" env-default:"30"`
	SampleLimit int    `yaml:"sample_limit" env:"THREATWATCH_ADVISORY_SAMPLE_LIMIT" env-default:"10"`
	RatePerMin  int    `yaml:"rate_per_min" env:"THREATWATCH_ADVISORY_RATE_PER_MIN" env-default:"10"`
}

type StatsReportConfig struct {
	Enabled  bool   `yaml:"enabled" env:"THREATWATCH_STATS_REPORT_ENABLED" env-default:"false"`
	Schedule string `yaml:"schedule" env:"THREATWATCH_STATS_REPORT_SCHEDULE" env-default:"0 * * * *"`
}

const defaultAdvisoryTimeout = 30 * time.Second

func (c *AdvisoryConfig) Timeout() time.Duration {
	if c == nil || c.TimeoutSec <= 0 {
		return defaultAdvisoryTimeout
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c *AdvisoryConfig) Configured() bool {
	return c != nil && c.APIKey != ""
}
