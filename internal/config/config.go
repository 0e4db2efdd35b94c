package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/felixggj/happy-robot-fde/internal/api"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	APIBaseURL      string        `mapstructure:"API_BASE_URL"`
	APIKey          string        `mapstructure:"API_KEY"`
	DashboardKey    string        `mapstructure:"DASHBOARD_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	LoadsMaxResults int           `mapstructure:"LOADS_MAX_RESULTS"`
	CallsLimit      int           `mapstructure:"CALLS_LIMIT"`
}

// Load reads .env if present, then the process environment. The result is
// read once at startup and never mutated.
func Load() (Config, error) {
	return load(".env")
}

func load(envFile string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_BASE_URL", api.DefaultBaseURL)
	v.SetDefault("API_KEY", "")
	v.SetDefault("DASHBOARD_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOADS_MAX_RESULTS", 25)
	v.SetDefault("CALLS_LIMIT", 20)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
