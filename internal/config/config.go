package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Redis struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
}

type Server struct {
	Port string `mapstructure:"port"`
}

type RateLimit struct {
	Times         int `mapstructure:"times"`
	WindowSeconds int `mapstructure:"window-seconds"`
}

type Cache struct {
	Prefix       string `mapstructure:"prefix"`
	TTLSeconds   int    `mapstructure:"ttl-seconds"`
	DelaySeconds int    `mapstructure:"delay-seconds"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL   string `mapstructure:"url"`
	Level string `mapstructure:"level"`
}

type Config struct {
	Redis     Redis     `mapstructure:"redis"`
	Server    Server    `mapstructure:"server"`
	RateLimit RateLimit `mapstructure:"rate-limit"`
	Cache     Cache     `mapstructure:"cache"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Logs      Logs      `mapstructure:"logs"`
}

// envOverrides maps config keys to the environment variable names the
// service has historically been deployed with.
var envOverrides = map[string]string{
	"redis.user":     "REDISUSER",
	"redis.password": "REDISPASSWORD",
	"redis.host":     "REDISHOST",
	"redis.port":     "REDISPORT",
	"logs.level":     "LOG_LEVEL",
	"server.port":    "SERVER_PORT",
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	for key, env := range envOverrides {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Logs.Level = strings.ToLower(config.Logs.Level)

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}
