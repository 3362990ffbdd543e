package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Gemini struct {
		Model string `yaml:"model"`
	} `yaml:"gemini"`
	Leaderboard struct {
		// Backend picks the store: file (default), memory, redis, postgres.
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"leaderboard"`
	Preferences struct {
		Path string `yaml:"path"`
	} `yaml:"preferences"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Leaderboard.Backend == "" {
		c.Leaderboard.Backend = "file"
	}
	if c.Leaderboard.Path == "" {
		c.Leaderboard.Path = "data/leaderboard.json"
	}
	if c.Preferences.Path == "" {
		c.Preferences.Path = "data/preferences.json"
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
