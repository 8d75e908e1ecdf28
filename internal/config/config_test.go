/*
 * config_test.go, part of gophonon.
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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gophonon/viewer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, viewer.DefaultFrames, cfg.Frames)
	assert.Equal(t, 1.0, cfg.Amplitude)
	assert.Equal(t, 0.2, cfg.Scale)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "#0000FF", cfg.Scene.Background)
	assert.NoError(t, cfg.Validate())
	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gophonon.yaml")
	text := `frames: 40
format: stf
stf:
  precision: 5
scene:
  background: "#000000"
  camera_direction: [1, 0, 0]
`
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Frames)
	assert.Equal(t, "stf", cfg.Format)
	assert.Equal(t, 5, cfg.Stf.Precision)
	assert.Equal(t, DefaultCompression, cfg.Stf.Compression, "absent keys keep their defaults")
	assert.Equal(t, 1.0, cfg.Amplitude)
	assert.Equal(t, "#000000", cfg.Scene.Background)
	assert.Equal(t, [3]float64{1, 0, 0}, cfg.Scene.CameraDirection)
	assert.Equal(t, "movement", cfg.Scene.VectorField.Vectors)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.Amplitude = 2.5
	cfg.MassWeighted = true
	cfg.LogLevel = "debug"
	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero frames", func(c *Config) { c.Frames = 0 }},
		{"zero scale", func(c *Config) { c.Scale = 0 }},
		{"bad format", func(c *Config) { c.Format = "pdb" }},
		{"bad precision", func(c *Config) { c.Stf.Precision = 0 }},
		{"bad compression", func(c *Config) { c.Stf.Compression = 30 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad color", func(c *Config) { c.Scene.Background = "blue" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("frames: [1, 2\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("frames: -3\n"), 0644))
	_, err = Load(invalid)
	assert.Error(t, err)
}
