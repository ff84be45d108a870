package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Port     string   `yaml:"port"`
	Env      string   `yaml:"env"`
	CORS     []string `yaml:"cors_allow_origins"`
	LogLevel string   `yaml:"log_level"`
	Analysis struct {
		Endpoint    string `yaml:"endpoint"`
		Timeout     string `yaml:"timeout"`
		MaxUploadMB int64  `yaml:"max_upload_mb"`
		RatePerMin  int    `yaml:"rate_per_min"`
		Breaker     struct {
			Failures *int   `yaml:"failures"`
			Open     string `yaml:"open"`
		} `yaml:"breaker"`
	} `yaml:"analysis"`
}

// LoadFile reads a YAML config file on top of Default. Empty keys keep defaults.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := Default()
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.Env != "" {
		cfg.Env = normalizeEnv(fc.Env)
	}
	if len(fc.CORS) > 0 {
		cfg.CORSAllowOrigin = fc.CORS
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Analysis.Endpoint != "" {
		cfg.AnalysisEndpoint = fc.Analysis.Endpoint
	}
	if fc.Analysis.Timeout != "" {
		d, err := time.ParseDuration(fc.Analysis.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: analysis.timeout: %w", path, err)
		}
		cfg.UploadTimeout = d
	}
	if fc.Analysis.MaxUploadMB > 0 {
		cfg.MaxUploadMB = fc.Analysis.MaxUploadMB
	}
	if fc.Analysis.RatePerMin > 0 {
		cfg.UploadRatePerMin = fc.Analysis.RatePerMin
	}
	if fc.Analysis.Breaker.Failures != nil {
		cfg.BreakerFailures = *fc.Analysis.Breaker.Failures
	}
	if fc.Analysis.Breaker.Open != "" {
		d, err := time.ParseDuration(fc.Analysis.Breaker.Open)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: analysis.breaker.open: %w", path, err)
		}
		cfg.BreakerOpen = d
	}
	return cfg, nil
}
