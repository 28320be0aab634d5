// Copyright 2026 EngFlow Inc. All rights reserved.
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

// Package config loads the YAML configuration file of ccexpand.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no
// configuration file is given explicitly.
const DefaultFileName = ".ccexpand.yaml"

var validLogLevels = []string{"", "debug", "info", "warn", "warning", "error"}

// Config holds the settings shared by every processed file. Command line
// flags are merged on top of it.
type Config struct {
	// Macros in -D syntax, e.g. "DEBUG" or "VERSION=3".
	Defines []string `yaml:"defines,omitempty"`
	// Names of macros to remove, applied after Defines.
	Undefines []string `yaml:"undefines,omitempty"`
	// Target platform as "os/arch", e.g. "linux/x86_64", or "host".
	Platform string `yaml:"platform,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
	// Log every macro expansion.
	Trace bool `yaml:"trace,omitempty"`
}

// FromYAML parses a configuration. Unknown keys are rejected.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToYAML serializes the configuration.
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads the configuration file at path. With an empty path
// DefaultFileName is tried and an empty configuration is returned if it does
// not exist; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without knowing the
// platforms and macro syntax.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, expected one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// Merge applies override on top of c: lists are appended, non-empty strings
// replace, and Trace is enabled if either enables it.
func (c *Config) Merge(override *Config) *Config {
	merged := &Config{
		Defines:   slices.Concat(c.Defines, override.Defines),
		Undefines: slices.Concat(c.Undefines, override.Undefines),
		Platform:  c.Platform,
		LogLevel:  c.LogLevel,
		Trace:     c.Trace || override.Trace,
	}
	if override.Platform != "" {
		merged.Platform = override.Platform
	}
	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
	}
	return merged
}
