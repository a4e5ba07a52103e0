package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Registry RegistryConfig `mapstructure:"registry"`
	Cron     CronConfig     `mapstructure:"cron"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
}

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Name string `mapstructure:"name"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
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

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// LLMConfig drives the OpenRouter-compatible reply phrasing. Models are tried
// in order; the first well-formed reply wins.
type LLMConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Models  []string      `mapstructure:"models"`
	Timeout time.Duration `mapstructure:"timeout"`
	Referer string        `mapstructure:"referer"`
	Title   string        `mapstructure:"title"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Sender   string `mapstructure:"sender"`
}

type RegistryConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

type CronConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	SessionExpiry   string        `mapstructure:"session_expiry"`
	AgentLogCleanup string        `mapstructure:"agent_log_cleanup"`
	SalaryWaitMax   time.Duration `mapstructure:"salary_wait_max"`
	AgentLogMaxAge  time.Duration `mapstructure:"agent_log_max_age"`
}

type UploadsConfig struct {
	Root string `mapstructure:"root"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("app.name", "loanflow")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.rate_limit_window", "1m")
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
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "60s")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.models", []string{
		"mistralai/mistral-7b-instruct:free",
		"openchat/openchat-7b:free",
	})
	v.SetDefault("llm.timeout", "10s")
	v.SetDefault("llm.referer", "https://loanflow.local")
	v.SetDefault("llm.title", "Loanflow")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("registry.seed_path", "config/customers.json")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.session_expiry", "@every 10m")
	v.SetDefault("cron.agent_log_cleanup", "@every 6h")
	v.SetDefault("cron.salary_wait_max", "72h")
	v.SetDefault("cron.agent_log_max_age", "720h")
	v.SetDefault("uploads.root", "uploads")

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
