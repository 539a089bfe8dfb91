package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/gookit/config/v2"
	"github.com/gookit/config/v2/yaml"
	"github.com/joho/godotenv"
)

// Config holds the process-wide settings of the API server.
type Config struct {
	Port        string `config:"port"`
	DatabaseURI string `config:"database_uri"`
	JWTSecret   string `config:"jwt_secret"`
	MQTTURL     string `config:"mqtt_url"`
	LogLevel    string `config:"log_level"`
	CORSOrigins string `config:"cors_origins"`
}

var defaults = map[string]any{
	"port":         "3000",
	"log_level":    "info",
	"cors_origins": "*",
}

// envKeys maps environment variables onto config keys.
var envKeys = map[string]string{
	"PORT":         "port",
	"DATABASE_URI": "database_uri",
	"JWT_SECRET":   "jwt_secret",
	"MQTT_URL":     "mqtt_url",
	"LOG_LEVEL":    "log_level",
	"CORS_ORIGINS": "cors_origins",
}

// LoadENV loads variables from a .env file in the working directory, if any.
// Variables already set in the environment win.
func LoadENV() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads defaults, then the optional YAML file at path, then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	c := config.NewWithOptions("gotodo", func(opt *config.Options) {
		opt.ParseEnv = true
		opt.DecoderConfig.TagName = "config"
	})
	c.AddDriver(yaml.Driver)

	if err := c.LoadData(defaults); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := c.LoadExists(path); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	c.LoadOSEnvs(envKeys)

	var cfg Config
	if err := c.BindStruct("", &cfg); err != nil {
		return nil, fmt.Errorf("bind config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails when a required setting is missing.
func (c *Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.DatabaseURI == "" {
		missing = append(missing, "DATABASE_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("you must set your %s environmental variable(s)", strings.Join(missing, ", "))
	}
	return nil
}
