// Copyright 2025 The vmcp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates process-wide configuration for the
// vmcp server. Configuration is resolved once at startup: an optional YAML
// file first, then environment variables on top. A missing API key is a
// startup failure, never a per-call error.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the upstream compute API endpoint used when no
// override is configured.
const DefaultBaseURL = "https://api.magalu.cloud/br-ne-1/compute/v1"

// DefaultHTTPTimeout bounds a single upstream round trip. There are no
// retries, so this is also the worst-case latency of any tool call.
const DefaultHTTPTimeout = 30 * time.Second

// Config holds the resolved process-wide configuration.
type Config struct {
	// BaseURL is the upstream compute API base URL.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates every upstream request via the x-api-key header.
	// Required.
	APIKey string `yaml:"api_key"`

	// TenantID, when set, is forwarded as the x-tenant-id header on every
	// request unless a call supplies its own tenant.
	TenantID string `yaml:"tenant_id"`

	// HTTPTimeout is the total timeout for one upstream round trip.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Default returns a Config with defaults applied and no credential.
func Default() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: DefaultHTTPTimeout,
	}
}

// Load resolves configuration from an optional YAML file at path (empty
// path skips the file) and the environment, then validates the result.
//
// Environment variables (override file values):
//   - VM_API_URL: upstream base URL
//   - VM_API_KEY: upstream API key (required)
//   - VM_TENANT_ID: default tenant scope
//   - VMCP_HTTP_TIMEOUT: Go duration string, e.g. "45s"
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultBaseURL
		}
		if cfg.HTTPTimeout == 0 {
			cfg.HTTPTimeout = DefaultHTTPTimeout
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VM_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("VM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("VM_TENANT_ID"); v != "" {
		cfg.TenantID = v
	}
	if v := os.Getenv("VMCP_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}
}

// Validate checks that the configuration is complete enough to start.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("VM_API_KEY is required (set the environment variable or api_key in the config file)")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must use HTTP or HTTPS scheme, got %q", c.BaseURL)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be > 0, got %v", c.HTTPTimeout)
	}

	return nil
}
