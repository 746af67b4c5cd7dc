package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Portfolio Portfolio `mapstructure:"portfolio"`
	CoinGecko CoinGecko `mapstructure:"coingecko"`
	Report    Report    `mapstructure:"report"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
}

// Portfolio holds the location of the holdings file.
type Portfolio struct {
	File string `mapstructure:"file"`
}

// CoinGecko holds the configuration for the CoinGecko API.
// SymbolIDs extends or overrides the built-in ticker -> coin id registry.
type CoinGecko struct {
	BaseURL        string            `mapstructure:"base_url"`
	RateLimit      float64           `mapstructure:"rate_limit"`
	RateLimitBurst int               `mapstructure:"rate_limit_burst"`
	SymbolIDs      map[string]string `mapstructure:"symbol_ids"`
}

// Report holds the configuration for the console report.
type Report struct {
	HistoryLimit int `mapstructure:"history_limit"`
}

// Server holds the configuration for the snapshot web UI.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the snapshot database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("portfolio.file", "./portfolio.json")
	viper.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("coingecko.rate_limit", 1)       // requests per second, the free tier is tight
	viper.SetDefault("coingecko.rate_limit_burst", 1) // burst size
	viper.SetDefault("report.history_limit", 10)
	viper.SetDefault("database.dsn", "./dashboard.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("server.port", 8080)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
