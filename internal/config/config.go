/*
Package config carries run configuration for subscope: built-in defaults,
optionally overlaid with a YAML file. CLI flags are applied on top by the
command layer, so precedence is flags > file > defaults.
*/
package config

/*
subscope — subdomain discovery over Certificate Transparency logs, in Go
Copyright (C) 2026  subscope contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults, mirrored by the CLI flag definitions.
const (
	DefaultOutputDir           = "outputs"
	DefaultThreads             = 10
	DefaultProbeTimeoutSeconds = 5
	DefaultRateLimit           = 100.0
)

// Config is the resolved run configuration.
type Config struct {
	OutputDir           string  `yaml:"output_dir"`
	Threads             int     `yaml:"threads"`
	ProbeTimeoutSeconds int     `yaml:"probe_timeout_seconds"`
	RateLimit           float64 `yaml:"rate_limit"`
	CheckActive         bool    `yaml:"check_active"`
	MetricsPort         int     `yaml:"metrics_port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:           DefaultOutputDir,
		Threads:             DefaultThreads,
		ProbeTimeoutSeconds: DefaultProbeTimeoutSeconds,
		RateLimit:           DefaultRateLimit,
		CheckActive:         true,
	}
}

// Load overlays the YAML file at path onto the defaults. Keys absent from
// the file keep their default values. Unknown keys are an error — a typo in
// a config file should fail the run, not silently fall back to a default.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the pool or prober cannot run with.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Threads <= 0 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.ProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("probe_timeout_seconds must be positive, got %d", c.ProbeTimeoutSeconds)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %v", c.RateLimit)
	}
	return nil
}

// ProbeTimeout returns the per-attempt probe timeout as a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}
