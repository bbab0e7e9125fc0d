// Package config loads the daemon and apps configuration documents.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath         = "/etc/strhost/strhost.yaml"
	DefaultAppsFile     = "/etc/strhost/apps.yaml"
	DefaultHTTPAddr     = "0.0.0.0:8086"
	DefaultStateDir     = "/var/lib/strhost/state"
	DefaultDashboardDir = "/var/lib/strhost/dashboards"

	DefaultHassTimeoutSeconds = 15
	DefaultHassRatePerMinute  = 120

	DefaultMQTTPort            = 1883
	DefaultMQTTDiscoveryPrefix = "homeassistant"
	DefaultMQTTBaseTopic       = "strhost"

	DefaultBlobPrefix = "strhost/state"
)

// Config is the daemon configuration (strhost.yaml).
type Config struct {
	Core  CoreConfig  `yaml:"core"`
	Hass  HassConfig  `yaml:"hass"`
	MQTT  *MQTTConfig `yaml:"mqtt,omitempty"`
	State StateConfig `yaml:"state"`
}

// CoreConfig holds daemon-level settings.
type CoreConfig struct {
	HTTPAddr     string `yaml:"http_addr"`
	AppsFile     string `yaml:"apps_file"`
	DashboardDir string `yaml:"dashboard_dir"`
	LogLevel     string `yaml:"log_level"`
}

// HassConfig describes the Home Assistant connection.
type HassConfig struct {
	BaseURL        string `yaml:"base_url"`
	TokenFile      string `yaml:"token_file"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RatePerMinute  int    `yaml:"rate_per_minute"`
}

// MQTTConfig describes the optional MQTT status publisher.
type MQTTConfig struct {
	Broker          string `yaml:"broker"`
	Port            int    `yaml:"port"`
	TLS             bool   `yaml:"tls"`
	Username        string `yaml:"username"`
	PasswordFile    string `yaml:"password_file"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	BaseTopic       string `yaml:"base_topic"`
}

// StateConfig describes the persistent day-marker store.
type StateConfig struct {
	Dir  string      `yaml:"dir"`
	Blob *BlobConfig `yaml:"blob,omitempty"`
}

// BlobConfig describes the optional S3 mirror for state files.
type BlobConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Bucket        string `yaml:"bucket"`
	Prefix        string `yaml:"prefix"`
	AccessKeyFile string `yaml:"access_key_file"`
	SecretKeyFile string `yaml:"secret_key_file"`
	Region        string `yaml:"region"`
}

// Load parses the daemon config file, applies defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Core.HTTPAddr == "" {
		cfg.Core.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Core.AppsFile == "" {
		cfg.Core.AppsFile = DefaultAppsFile
	}
	if cfg.Core.DashboardDir == "" {
		cfg.Core.DashboardDir = DefaultDashboardDir
	}

	if cfg.Hass.TimeoutSeconds == 0 {
		cfg.Hass.TimeoutSeconds = DefaultHassTimeoutSeconds
	}
	if cfg.Hass.RatePerMinute == 0 {
		cfg.Hass.RatePerMinute = DefaultHassRatePerMinute
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.Port == 0 {
			cfg.MQTT.Port = DefaultMQTTPort
		}
		if cfg.MQTT.DiscoveryPrefix == "" {
			cfg.MQTT.DiscoveryPrefix = DefaultMQTTDiscoveryPrefix
		}
		if cfg.MQTT.BaseTopic == "" {
			cfg.MQTT.BaseTopic = DefaultMQTTBaseTopic
		}
	}

	if cfg.State.Dir == "" {
		cfg.State.Dir = DefaultStateDir
	}
	if cfg.State.Blob != nil && cfg.State.Blob.Prefix == "" {
		cfg.State.Blob.Prefix = DefaultBlobPrefix
	}
}

// Validate enforces required invariants beyond YAML typing.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.Core.HTTPAddr == "" {
		return fmt.Errorf("core.http_addr is required")
	}
	if cfg.Core.AppsFile == "" {
		return fmt.Errorf("core.apps_file is required")
	}

	if cfg.Hass.BaseURL == "" {
		return fmt.Errorf("hass.base_url is required")
	}
	if cfg.Hass.TokenFile == "" {
		return fmt.Errorf("hass.token_file is required")
	}
	if cfg.Hass.TimeoutSeconds < 0 {
		return fmt.Errorf("hass.timeout_seconds must not be negative")
	}
	if cfg.Hass.RatePerMinute < 0 {
		return fmt.Errorf("hass.rate_per_minute must not be negative")
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required")
		}
		if cfg.MQTT.Port <= 0 || cfg.MQTT.Port > 65535 {
			return fmt.Errorf("mqtt.port must be a valid port")
		}
	}

	if cfg.State.Dir == "" {
		return fmt.Errorf("state.dir is required")
	}
	if blob := cfg.State.Blob; blob != nil {
		if blob.Endpoint == "" {
			return fmt.Errorf("state.blob.endpoint is required")
		}
		if blob.Bucket == "" {
			return fmt.Errorf("state.blob.bucket is required")
		}
		if blob.AccessKeyFile == "" {
			return fmt.Errorf("state.blob.access_key_file is required")
		}
		if blob.SecretKeyFile == "" {
			return fmt.Errorf("state.blob.secret_key_file is required")
		}
	}

	return nil
}
