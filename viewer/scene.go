/*
 * scene.go, part of gophonon.
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

// Package viewer keeps the state behind an animated display of a vibrational mode.
// A Session holds the structure, the eigenvectors, the amplitude and the number of frames,
// regenerates the trajectory each time one of them changes, and hands the result, together
// with the Scene settings, to a Sink that does the actual displaying or exporting.
package viewer

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/rmera/gophonon/mode"
)

// VectorField tells the viewer how to draw a per-site vector attribute as arrows.
type VectorField struct {
	Origins string  `yaml:"origins" json:"origins"`
	Vectors string  `yaml:"vectors" json:"vectors"`
	Color   string  `yaml:"color" json:"color"`
	Radius  float64 `yaml:"radius" json:"radius"`
}

// Scene holds the display settings for a trajectory.
type Scene struct {
	Background      string      `yaml:"background" json:"backgroundColor"`
	ModelStyle      int         `yaml:"model_style" json:"modelStyle"` //0 ball, 1 ball and stick, 2 polyhedra, 3 stick
	AtomScale       float64     `yaml:"atom_scale" json:"atomScale"`
	CameraDirection [3]float64  `yaml:"camera_direction" json:"cameraDirection"`
	VectorField     VectorField `yaml:"vector_field" json:"vectorField"`
	ShowVectorField bool        `yaml:"show_vector_field" json:"showVectorField"`
}

// DefaultScene returns the default settings: blue background, ball and stick models with
// small atoms, looking along y, and the movement of each site drawn as red arrows.
func DefaultScene() *Scene {
	return &Scene{
		Background:      "#0000FF",
		ModelStyle:      1,
		AtomScale:       0.1,
		CameraDirection: [3]float64{0, 1, 0},
		VectorField: VectorField{
			Origins: "positions",
			Vectors: mode.MovementAttribute,
			Color:   "#ff0000",
			Radius:  0.1,
		},
		ShowVectorField: true,
	}
}

// Copy returns a copy of the scene.
func (s *Scene) Copy() *Scene {
	c := *s
	return &c
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate returns an error if any of the settings can't be displayed.
func (s *Scene) Validate() error {
	if !hexColor.MatchString(s.Background) {
		return errors.Errorf("invalid background color %q", s.Background)
	}
	if !hexColor.MatchString(s.VectorField.Color) {
		return errors.Errorf("invalid vector field color %q", s.VectorField.Color)
	}
	if s.ModelStyle < 0 || s.ModelStyle > 3 {
		return errors.Errorf("model style must be between 0 and 3, got %d", s.ModelStyle)
	}
	if s.AtomScale <= 0 {
		return errors.Errorf("atom scale must be positive, got %v", s.AtomScale)
	}
	if s.VectorField.Radius <= 0 {
		return errors.Errorf("vector field radius must be positive, got %v", s.VectorField.Radius)
	}
	if s.CameraDirection == [3]float64{} {
		return errors.New("camera direction can't be the zero vector")
	}
	if s.VectorField.Vectors == "" || s.VectorField.Origins == "" {
		return errors.New("vector field needs both origins and vectors")
	}
	return nil
}

func (s *Scene) String() string {
	return fmt.Sprintf("background %s, style %d, atom scale %.2f, camera %v, vectors %q from %q in %s (r=%.2f, shown: %v)",
		s.Background, s.ModelStyle, s.AtomScale, s.CameraDirection, s.VectorField.Vectors, s.VectorField.Origins,
		s.VectorField.Color, s.VectorField.Radius, s.ShowVectorField)
}
