/*
 * session.go, part of gophonon.
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

package viewer

import (
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/cif"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
)

// Sink displays, or otherwise consumes, a trajectory with the given scene settings.
// Each frame of the trajectory has the positions of the sites and their movement,
// as the mode.MovementAttribute attribute.
type Sink interface {
	Show(traj *mode.Trajectory, scene *Scene) error
}

// Session is a handle to an animated display of a vibrational mode. Every change to one of
// its inputs builds a new trajectory from all of them, and sends it to the sink. Changes that
// would give an invalid trajectory are rejected, and the current trajectory is kept.
// A Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	sink      Sink
	scene     *Scene
	log       logrus.FieldLogger
	structure *chem.Structure
	evecs     *v3.Matrix
	amplitude float64
	frames    int
	scale     float64
	traj      *mode.Trajectory
}

// NewSession returns a session with the default inputs, DefaultCIF, DefaultEigenvectors,
// DefaultFrames and DefaultAmplitude, which has already sent its first trajectory to sink.
// sink can be nil, in which case trajectories are only kept. If scene is nil, DefaultScene is used,
// and if log is nil, the standard logrus logger is.
func NewSession(sink Sink, scene *Scene, log logrus.FieldLogger) (*Session, error) {
	if scene == nil {
		scene = DefaultScene()
	}
	if err := scene.Validate(); err != nil {
		return nil, errors.Wrap(err, "new session")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	S, err := cif.ReadString(DefaultCIF)
	if err != nil {
		return nil, errors.Wrap(err, "reading default structure")
	}
	evecs, err := mode.ParseEigenvectors([]byte(DefaultEigenvectors), S.Len())
	if err != nil {
		return nil, errors.Wrap(err, "parsing default eigenvectors")
	}
	s := &Session{
		sink:      sink,
		scene:     scene.Copy(),
		log:       log,
		structure: S,
		evecs:     evecs,
		amplitude: DefaultAmplitude,
		frames:    DefaultFrames,
		scale:     mode.DisplacementScale,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(S, evecs, DefaultAmplitude, DefaultFrames, mode.DisplacementScale); err != nil {
		return nil, err
	}
	return s, nil
}

// commit generates a trajectory from the given inputs and, if that works, makes them the
// current ones and shows the new trajectory. The caller must hold the lock.
func (s *Session) commit(S *chem.Structure, evecs *v3.Matrix, amplitude float64, frames int, scale float64) error {
	traj, err := mode.Generate(S, evecs, amplitude, frames, scale)
	if err != nil {
		s.log.WithError(err).Warn("rejected input, keeping the current trajectory")
		return errors.Wrap(err, "generating trajectory")
	}
	s.structure, s.evecs, s.amplitude, s.frames, s.scale = S, evecs, amplitude, frames, scale
	s.traj = traj
	s.log.WithFields(logrus.Fields{
		"sites":     S.Len(),
		"frames":    frames,
		"amplitude": amplitude,
		"scale":     scale,
	}).Debug("trajectory generated")
	return s.show()
}

func (s *Session) show() error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.Show(s.traj, s.scene.Copy()); err != nil {
		s.log.WithError(err).Error("sink failed to show the trajectory")
		return errors.Wrap(err, "showing trajectory")
	}
	return nil
}

// SetStructure reads a new structure, in CIF format, from r. The current eigenvectors
// must have one vector per site of the new structure.
func (s *Session) SetStructure(r io.Reader) error {
	S, err := cif.Read(r)
	if err != nil {
		s.log.WithError(err).Warn("can't read structure")
		return errors.Wrap(err, "reading structure")
	}
	return s.SetStructureValue(S)
}

// SetStructureText is SetStructure for a CIF in a string.
func (s *Session) SetStructureText(text string) error {
	return s.SetStructure(strings.NewReader(text))
}

// SetStructureValue sets the structure. S is copied. A corrupted structure is rejected.
func (s *Session) SetStructureValue(S *chem.Structure) error {
	if S == nil {
		return errors.New("nil structure")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkStructure(S); err != nil {
		return err
	}
	return s.commit(S.Copy(), s.evecs, s.amplitude, s.frames, s.scale)
}

// SetEigenvectors sets the eigenvectors from a JSON array of 3D vectors, one per site.
func (s *Session) SetEigenvectors(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evecs, err := mode.ParseEigenvectors([]byte(text), s.structure.Len())
	if err != nil {
		s.log.WithError(err).Warn("rejected eigenvectors")
		return errors.Wrap(err, "parsing eigenvectors")
	}
	return s.commit(s.structure, evecs, s.amplitude, s.frames, s.scale)
}

// SetEigenvectorMatrix sets the eigenvectors, one row per site. evecs is copied.
func (s *Session) SetEigenvectorMatrix(evecs *v3.Matrix) error {
	if evecs == nil {
		return errors.New("nil eigenvectors")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.structure, evecs.Clone(), s.amplitude, s.frames, s.scale)
}

// SetMode sets both the structure and the eigenvectors in one step, which is needed when
// the number of sites changes. Both are copied.
func (s *Session) SetMode(S *chem.Structure, evecs *v3.Matrix) error {
	if S == nil || evecs == nil {
		return errors.New("nil structure or eigenvectors")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkStructure(S); err != nil {
		return err
	}
	return s.commit(S.Copy(), evecs.Clone(), s.amplitude, s.frames, s.scale)
}

// checkStructure rejects structures whose coordinates or attributes don't match their sites,
// which can't be copied. The caller must hold the lock.
func (s *Session) checkStructure(S *chem.Structure) error {
	if err := S.Corrupted(); err != nil {
		s.log.WithError(err).Warn("rejected structure, keeping the current trajectory")
		return errors.Wrap(err, "invalid structure")
	}
	return nil
}

// SetFrames sets the number of frames per period. It must be positive.
func (s *Session) SetFrames(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.structure, s.evecs, s.amplitude, n, s.scale)
}

// SetAmplitude sets the amplitude of the oscillation. It must be finite.
func (s *Session) SetAmplitude(a float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.structure, s.evecs, a, s.frames, s.scale)
}

// SetScale sets the factor that converts movement vectors into position changes.
// It must be positive and finite, as for mode.Generate.
func (s *Session) SetScale(sc float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.structure, s.evecs, s.amplitude, s.frames, sc)
}

// SetScene changes the display settings and shows the current trajectory with them.
func (s *Session) SetScene(scene *Scene) error {
	if scene == nil {
		return errors.New("nil scene")
	}
	if err := scene.Validate(); err != nil {
		s.log.WithError(err).Warn("rejected scene")
		return errors.Wrap(err, "setting scene")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene = scene.Copy()
	return s.show()
}

// Scene returns a copy of the current display settings.
func (s *Session) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Copy()
}

// Trajectory returns the current trajectory. It is replaced, never modified, by later changes,
// so it can be read while the session keeps changing. Read it sequentially through its Reader,
// which keeps the position outside the shared trajectory. Don't modify the frames.
func (s *Session) Trajectory() *mode.Trajectory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traj
}

// Structure returns a copy of the current base structure.
func (s *Session) Structure() *chem.Structure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.structure.Copy()
}

// Inputs returns the current amplitude, number of frames and displacement scale.
func (s *Session) Inputs() (amplitude float64, frames int, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amplitude, s.frames, s.scale
}

// Update builds the trajectory again from the current inputs and shows it.
func (s *Session) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(s.structure, s.evecs, s.amplitude, s.frames, s.scale)
}
