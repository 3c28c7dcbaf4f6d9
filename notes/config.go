// Copyright 2025 Lucentia Systems
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


package notes

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the text-generation endpoint.
type Config struct {
	// Endpoint is the base URL of the generation service.
	// Example: "http://localhost:11434" for a local Ollama server.
	Endpoint string

	// Model is the generation model identifier.
	// Example: "llama3.1", "qwen2.5:3b"
	Model string

	// Timeout bounds every generation request. Timeouts are treated like
	// any other generation failure and trigger the deterministic fallback.
	// Default: 120s
	Timeout time.Duration
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// WithEndpoint sets the generation service base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithModel sets the generation model identifier.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults for a local Ollama
// server.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: "http://localhost:11434",
		Model:    "llama3.1",
		Timeout:  120 * time.Second,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.Endpoint = strings.TrimSuffix(strings.TrimSpace(c.Endpoint), "/")
}

// Validate checks that the configuration is complete. It normalizes the
// configuration before validating.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Endpoint == "" {
		return errors.New("notes config: Endpoint is required")
	}
	if c.Model == "" {
		return errors.New("notes config: Model is required")
	}
	if c.Timeout <= 0 {
		return errors.New("notes config: Timeout must be positive and finite")
	}
	return nil
}
