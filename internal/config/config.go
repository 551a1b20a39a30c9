// Package config loads nexus's on-disk YAML configuration, following the
// teacher's pattern of environment-variable expansion plus post-unmarshal
// defaulting.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document, normally read from
// ~/.nexus/config.yaml.
type Config struct {
	Home     string `yaml:"Home"`
	Database struct {
		Path string `yaml:"Path"`
	} `yaml:"Database"`
	Control struct {
		StatePath string `yaml:"StatePath"`
	} `yaml:"Control"`
	Skills struct {
		UserDir    string `yaml:"UserDir"`
		BundledDir string `yaml:"BundledDir"`
	} `yaml:"Skills"`
	Input struct {
		PasteSettleMS int `yaml:"PasteSettleMS"`
	} `yaml:"Input"`
	Dialogs struct {
		AutoDismiss bool `yaml:"AutoDismiss"`
	} `yaml:"Dialogs"`
	Vision struct {
		APIKey string `yaml:"APIKey"`
	} `yaml:"Vision"`
	Perception struct {
		MaxElements int `yaml:"MaxElements"`
		CacheTTLMS  int `yaml:"CacheTTLMS"`
	} `yaml:"Perception"`
	Browser struct {
		Enabled  bool `yaml:"Enabled"`
		Headless bool `yaml:"Headless"`
	} `yaml:"Browser"`
}

// PasteSettle is the configured atomic-paste settle delay.
func (c Config) PasteSettle() time.Duration {
	return time.Duration(c.Input.PasteSettleMS) * time.Millisecond
}

// CacheTTL is the configured perception-cache time-to-live.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Perception.CacheTTLMS) * time.Millisecond
}

// LoadFromBytes loads configuration from YAML bytes with environment
// variable expansion, then applies defaults for any unset field.
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, err
	}
	applyDefaults(&c)
	return c, nil
}

// Load reads configuration from path, or returns defaults if the file
// doesn't exist.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var c Config
			applyDefaults(&c)
			return c, nil
		}
		return Config{}, err
	}
	return LoadFromBytes(data)
}

func applyDefaults(c *Config) {
	home, _ := os.UserHomeDir()
	if c.Home == "" {
		c.Home = filepath.Join(home, ".nexus")
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Home, "nexus.db")
	}
	if c.Control.StatePath == "" {
		c.Control.StatePath = filepath.Join(c.Home, "state.json")
	}
	if c.Skills.BundledDir == "" {
		c.Skills.BundledDir = filepath.Join(c.Home, "skills")
	}
	if c.Skills.UserDir == "" {
		c.Skills.UserDir = filepath.Join(c.Home, "skills-user")
	}
	if c.Input.PasteSettleMS == 0 {
		c.Input.PasteSettleMS = 300
	}
	if c.Perception.MaxElements == 0 {
		c.Perception.MaxElements = 200
	}
	if c.Perception.CacheTTLMS == 0 {
		c.Perception.CacheTTLMS = 3000
	}
	if !c.Browser.Enabled {
		c.Browser.Headless = true
	}
}
