// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package config loads the settings of the markitdown command and service
// from an optional YAML file, a .env file and MARKITDOWN_* variables.
package config

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	markitdown "github.com/conductor-oss/markitdown-go"
)

// Config holds all settings. Zero values are replaced by ApplyDefaults.
type Config struct {
	Debug        bool          `yaml:"debug"`
	KeepDataURIs bool          `yaml:"keep_data_uris"`
	StyleMap     string        `yaml:"style_map"`
	ExiftoolPath string        `yaml:"exiftool_path"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	Archive      ArchiveConfig `yaml:"archive"`
	YouTube      YouTubeConfig `yaml:"youtube"`
	Server       ServerConfig  `yaml:"server"`
}

// ArchiveConfig controls ZIP expansion.
type ArchiveConfig struct {
	Concurrency   int  `yaml:"concurrency"`
	MaxDepth      int  `yaml:"max_depth"`
	KeepExtracted bool `yaml:"keep_extracted"`
}

// YouTubeConfig controls transcript retrieval for YouTube pages.
type YouTubeConfig struct {
	Transcript         bool   `yaml:"transcript"`
	TranscriptLanguage string `yaml:"transcript_language"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Load reads the YAML file at path (optional when path is ""), overlays the
// environment, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyEnv overrides file values with MARKITDOWN_* variables.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("MARKITDOWN_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MARKITDOWN_DEBUG: %w", err)
		}
		cfg.Debug = b
	}
	if v := os.Getenv("MARKITDOWN_EXIFTOOL_PATH"); v != "" {
		cfg.ExiftoolPath = v
	}
	if v := os.Getenv("MARKITDOWN_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MARKITDOWN_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARKITDOWN_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	if cfg.Archive.MaxDepth == 0 {
		cfg.Archive.MaxDepth = 8
	}
	if cfg.YouTube.TranscriptLanguage == "" {
		cfg.YouTube.TranscriptLanguage = "en"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 64 << 20
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 2 * time.Minute
	}
}

var reLanguage = regexp.MustCompile(`^[A-Za-z]{2,3}([-_][A-Za-z0-9]+)*$`)

// Validate checks value ranges.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPTimeout, validation.Min(time.Second)),
		validation.Field(&c.Archive),
		validation.Field(&c.YouTube),
		validation.Field(&c.Server),
	)
}

// Validate checks archive settings.
func (a ArchiveConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Concurrency, validation.Min(0), validation.Max(64)),
		validation.Field(&a.MaxDepth, validation.Min(1), validation.Max(64)),
	)
}

// Validate checks the transcript language tag.
func (y YouTubeConfig) Validate() error {
	return validation.ValidateStruct(&y,
		validation.Field(&y.TranscriptLanguage, validation.Match(reLanguage)),
	)
}

// Validate checks server settings.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Host, validation.Required),
		validation.Field(&s.Port, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.CORSOrigins, validation.Each(validation.Required)),
		validation.Field(&s.MaxBodyBytes, validation.Min(int64(1))),
		validation.Field(&s.RequestTimeout, validation.Min(time.Second)),
	)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EngineOptions translates the configuration into engine options.
func (c *Config) EngineOptions() []markitdown.Option {
	opts := []markitdown.Option{
		markitdown.WithKeepDataURIs(c.KeepDataURIs),
		markitdown.WithArchiveConcurrency(c.Archive.Concurrency),
		markitdown.WithMaxArchiveDepth(c.Archive.MaxDepth),
		markitdown.WithHTTPClient(&http.Client{Timeout: c.HTTPTimeout}),
	}
	if c.StyleMap != "" {
		opts = append(opts, markitdown.WithStyleMap(c.StyleMap))
	}
	if c.ExiftoolPath != "" {
		opts = append(opts, markitdown.WithExiftoolPath(c.ExiftoolPath))
	}
	return opts
}

// ConverterOptions returns the per-call defaults derived from the
// configuration.
func (c *Config) ConverterOptions() markitdown.ConverterOptions {
	cleanup := !c.Archive.KeepExtracted
	return markitdown.ConverterOptions{
		EnableYouTubeTranscript:   c.YouTube.Transcript,
		YouTubeTranscriptLanguage: c.YouTube.TranscriptLanguage,
		CleanupExtracted:          &cleanup,
	}
}
