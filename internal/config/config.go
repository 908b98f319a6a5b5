package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the linehook binaries.
type Config struct {
	Line   LineConfig   `toml:"line"`
	Server ServerConfig `toml:"server"`
	Seen   SeenConfig   `toml:"seen"`
	Tap    TapConfig    `toml:"tap"`
}

type LineConfig struct {
	ChannelSecret      string `toml:"channel_secret"`
	ChannelAccessToken string `toml:"channel_access_token"`
}

type ServerConfig struct {
	Addr    string `toml:"addr"`
	Verbose bool   `toml:"verbose"`
}

type SeenConfig struct {
	Backend       string `toml:"backend"` // "memory" or "redis"
	TTL           int    `toml:"ttl"`     // seconds, redis only
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

type TapConfig struct {
	Addr  string `toml:"addr"` // empty disables the tap
	Token string `toml:"token"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":18080",
		},
		Seen: SeenConfig{
			Backend: "memory",
			TTL:     3600,
		},
	}
}

// Load reads configuration from the TOML config file (if it exists) and
// applies environment variable overrides. Env vars always win.
//
// Config file resolution: LINEHOOK_CONFIG env var → ~/.config/linehook/config.toml → skip.
func Load() (*Config, error) {
	cfg := defaults()

	path := configPath()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(&cfg)
	cfg.validate()
	return &cfg, nil
}

func configPath() string {
	if p := os.Getenv("LINEHOOK_CONFIG"); p != "" {
		return expandHome(p)
	}
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "linehook", "config.toml")
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LINE_CHANNEL_SECRET"); v != "" {
		cfg.Line.ChannelSecret = v
	}
	if v := os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"); v != "" {
		cfg.Line.ChannelAccessToken = v
	}

	if v := os.Getenv("LINEHOOK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LINEHOOK_VERBOSE"); v != "" {
		cfg.Server.Verbose = v == "true"
	}

	if v := os.Getenv("LINEHOOK_SEEN_BACKEND"); v != "" {
		cfg.Seen.Backend = v
	}
	if v := os.Getenv("LINEHOOK_SEEN_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Seen.TTL = n
		}
	}
	if v := os.Getenv("LINEHOOK_REDIS_ADDR"); v != "" {
		cfg.Seen.RedisAddr = v
	}
	if v := os.Getenv("LINEHOOK_REDIS_PASSWORD"); v != "" {
		cfg.Seen.RedisPassword = v
	}
	if v := os.Getenv("LINEHOOK_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Seen.RedisDB = n
		}
	}

	if v := os.Getenv("LINEHOOK_TAP_ADDR"); v != "" {
		cfg.Tap.Addr = v
	}
	if v := os.Getenv("LINEHOOK_TAP_TOKEN"); v != "" {
		cfg.Tap.Token = v
	}
}

// validate normalises fields that have a constrained value set. Channel
// credentials are checked at plugin construction, not here.
func (c *Config) validate() {
	switch strings.ToLower(c.Seen.Backend) {
	case "memory", "redis":
		c.Seen.Backend = strings.ToLower(c.Seen.Backend)
	default:
		c.Seen.Backend = "memory"
	}

	if c.Seen.TTL < 60 {
		c.Seen.TTL = 3600
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
