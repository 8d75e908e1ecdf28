/*
 * config.go, part of gophonon.
 *
 * Copyright 2024 The gophonon Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package config holds the settings of the gophonon command, read from and written to YAML.
package config

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rmera/gophonon/mode"
	"github.com/rmera/gophonon/viewer"
)

const (
	DefaultFormat      = "json"
	DefaultPrecision   = 4
	DefaultCompression = 11
	DefaultLogLevel    = "info"
)

// Formats are the output formats the animate command can write.
var Formats = []string{"json", "xyz", "stf", "dcd"}

type Config struct {
	Frames       int          `yaml:"frames"`
	Amplitude    float64      `yaml:"amplitude"`
	Scale        float64      `yaml:"scale"`
	MassWeighted bool         `yaml:"mass_weighted"`
	Format       string       `yaml:"format"`
	Stf          StfConfig    `yaml:"stf"`
	LogLevel     string       `yaml:"log_level"`
	Scene        viewer.Scene `yaml:"scene"`
}

type StfConfig struct {
	Precision   int `yaml:"precision"`
	Compression int `yaml:"compression_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Frames:    viewer.DefaultFrames,
		Amplitude: viewer.DefaultAmplitude,
		Scale:     mode.DisplacementScale,
		Format:    DefaultFormat,
		Stf: StfConfig{
			Precision:   DefaultPrecision,
			Compression: DefaultCompression,
		},
		LogLevel: DefaultLogLevel,
		Scene:    *viewer.DefaultScene(),
	}
}

// Load reads the file in path over the default configuration, so keys absent
// from the file keep their default values. The result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "writing config")
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	switch {
	case c.Frames < 1:
		return errors.Errorf("frames must be at least 1, got %d", c.Frames)
	case math.IsNaN(c.Amplitude) || math.IsInf(c.Amplitude, 0):
		return errors.Errorf("invalid amplitude %v", c.Amplitude)
	case !(c.Scale > 0) || math.IsInf(c.Scale, 0):
		return errors.Errorf("scale must be a positive number, got %v", c.Scale)
	case !lo.Contains(Formats, c.Format):
		return errors.Errorf("unknown format %q, must be one of %v", c.Format, Formats)
	case c.Stf.Precision < 1 || c.Stf.Precision > 8:
		return errors.Errorf("stf precision must be between 1 and 8, got %d", c.Stf.Precision)
	case c.Stf.Compression < 1 || c.Stf.Compression > 22:
		return errors.Errorf("stf compression level must be between 1 and 22, got %d", c.Stf.Compression)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return errors.Wrap(c.Scene.Validate(), "scene")
}

// Level returns the log level of the configuration.
func (c *Config) Level() (logrus.Level, error) {
	l, err := logrus.ParseLevel(c.LogLevel)
	return l, errors.Wrap(err, "log level")
}
