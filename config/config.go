/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"log/slog"

	"dirpx.dev/wref/apis"
)

const (
	// DefaultShards represents the default for Shards.
	// Sixteen shards keep first-handle installs on different objects from
	// contending on the same map in typical workloads.
	DefaultShards = 16
	// MaxShards is the upper bound applied to Shards.
	MaxShards = 1 << 12
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure Shards is valid.
	if cfg.Shards <= 0 {
		cfg.Shards = DefaultShards
	}
	if cfg.Logger == nil {
		cfg.Logger = DiscardLogger()
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Shards: DefaultShards,
		Logger: DiscardLogger(),
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ShardCount normalizes n to a power of two in [1, MaxShards].
// Non-positive values yield DefaultShards.
func ShardCount(n int) int {
	if n <= 0 {
		return DefaultShards
	}
	if n > MaxShards {
		return MaxShards
	}
	c := 1
	for c < n {
		c <<= 1
	}
	return c
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithShards sets the Shards option.
// A non-positive value resets to the default.
func WithShards(n int) Option {
	return func(c *apis.Config) {
		if n <= 0 {
			c.Shards = DefaultShards
			return
		}
		c.Shards = ShardCount(n)
	}
}

// WithLogger sets the Logger option. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *apis.Config) {
		if l == nil {
			l = DiscardLogger()
		}
		c.Logger = l
	}
}
