/*
 * trajectory.go, part of gophonon.
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

package mode

import (
	"fmt"
	"math"

	chem "github.com/rmera/gophonon"
	v3 "github.com/rmera/gophonon/v3"
)

// MovementAttribute is the name of the per-site attribute holding the displacement
// of each site in a frame.
const MovementAttribute = "movement"

// DisplacementScale is the default factor applied to the movement vectors before
// adding them to the positions.
const DisplacementScale = 0.2

// Phase returns the phase angle, in radians, of the frame i of a period sampled with n frames.
func Phase(i, n int) float64 {
	return 2 * math.Pi * float64(i) / float64(n)
}

// Trajectory is one period of a vibrational mode, sampled at evenly spaced phases.
// It is not modified after Generate returns, so it can be shared between goroutines.
// Use Reader to read it sequentially as a chem.Traj.
type Trajectory struct {
	frames    []*chem.Structure
	amplitude float64
	scale     float64
}

// Generate returns nframes snapshots of the structure base displaced along the vectors in evecs.
// At the frame i, with t=2πi/nframes, the movement of each site is evecs*amplitude*sin(t),
// and its position is the base position plus the movement times scale (DisplacementScale if not given).
// scale must be positive and finite.
// Each frame is a deep copy of base, with the movement attached as the MovementAttribute attribute.
// base is never modified. evecs must have one vector per site, or a *ShapeError is returned.
func Generate(base *chem.Structure, evecs *v3.Matrix, amplitude float64, nframes int, scale ...float64) (*Trajectory, error) {
	if base == nil {
		return nil, Error{"Nil structure", []string{"Generate"}, true}
	}
	if err := base.Corrupted(); err != nil {
		return nil, Error{err.Error(), []string{"Generate"}, true}
	}
	if evecs == nil {
		return nil, &ShapeError{Row: -1, Rows: 0, Cols: 3, WantRows: base.Len(), WantCols: 3, deco: []string{"Generate"}}
	}
	if r, c := evecs.Dims(); r != base.Len() || c != 3 {
		return nil, &ShapeError{Row: -1, Rows: r, Cols: c, WantRows: base.Len(), WantCols: 3, deco: []string{"Generate"}}
	}
	if !evecs.IsFinite() {
		return nil, Error{"Eigenvectors must be finite", []string{"Generate"}, true}
	}
	if nframes < 1 {
		return nil, Error{fmt.Sprintf("Number of frames must be positive, got %d", nframes), []string{"Generate"}, true}
	}
	if math.IsNaN(amplitude) || math.IsInf(amplitude, 0) {
		return nil, Error{fmt.Sprintf("Amplitude must be finite, got %v", amplitude), []string{"Generate"}, true}
	}
	sc := DisplacementScale
	if len(scale) > 0 {
		sc = scale[0]
		if !(sc > 0) || math.IsInf(sc, 0) {
			return nil, Error{fmt.Sprintf("Displacement scale must be a positive finite number, got %v", sc), []string{"Generate"}, true}
		}
	}
	T := &Trajectory{frames: make([]*chem.Structure, 0, nframes), amplitude: amplitude, scale: sc}
	for i := 0; i < nframes; i++ {
		s := math.Sin(Phase(i, nframes))
		mov := v3.Zeros(base.Len())
		mov.Scale(amplitude*s, evecs)
		frame := base.Copy()
		frame.Coords.AddScaled(frame.Coords, sc, mov)
		if err := frame.SetAttribute(MovementAttribute, mov); err != nil {
			return nil, errDecorate(err, "Generate")
		}
		T.frames = append(T.frames, frame)
	}
	return T, nil
}

// Len returns the number of sites per frame.
func (T *Trajectory) Len() int {
	if len(T.frames) == 0 {
		return 0
	}
	return T.frames[0].Len()
}

// NFrames returns the number of frames in the trajectory.
func (T *Trajectory) NFrames() int {
	return len(T.frames)
}

// Amplitude returns the amplitude used to build the trajectory.
func (T *Trajectory) Amplitude() float64 { return T.amplitude }

// Scale returns the factor applied to the movement before displacing the positions.
func (T *Trajectory) Scale() float64 { return T.scale }

// Frame returns the ith frame. It panics if i is out of range.
// The frame is not copied.
func (T *Trajectory) Frame(i int) *chem.Structure {
	if i < 0 || i >= len(T.frames) {
		panic(fmt.Sprintf("mode: frame %d requested from a %d frames trajectory", i, len(T.frames)))
	}
	return T.frames[i]
}

// Frames returns all the frames, in order. The slice is shared with the trajectory.
func (T *Trajectory) Frames() []*chem.Structure {
	return T.frames
}

// Movement returns the displacement vectors of the ith frame. It panics if i is out of range.
func (T *Trajectory) Movement(i int) *v3.Matrix {
	m, _ := T.Frame(i).Attribute(MovementAttribute)
	return m
}

// Phase returns the phase, in radians, of the ith frame.
func (T *Trajectory) Phase(i int) float64 {
	return Phase(i, len(T.frames))
}

// Reader returns a new sequential reader over the frames of T, starting at the first one.
// Each reader keeps its own position, so several can read the same trajectory at once.
func (T *Trajectory) Reader() *Reader {
	return &Reader{traj: T}
}

// Reader reads the frames of a Trajectory in order. It implements chem.Traj.
// A Reader is not safe for concurrent use, but the Trajectory behind it is.
type Reader struct {
	traj    *Trajectory
	current int
}

var _ chem.Traj = (*Reader)(nil)

// Len returns the number of sites per frame.
func (R *Reader) Len() int {
	return R.traj.Len()
}

// Readable returns true if there are frames left to read with Next.
func (R *Reader) Readable() bool {
	return R.current < len(R.traj.frames)
}

// Next puts the positions of the next frame in output, unless output is nil.
// If a box slice of at least 9 elements is given, and the structure has a cell,
// the lattice vectors are copied into it. After the last frame, Next returns an error
// that implements chem.LastFrameError.
func (R *Reader) Next(output *v3.Matrix, box ...[]float64) error {
	if !R.Readable() {
		return lastFrameError{[]string{"Next"}}
	}
	f := R.traj.frames[R.current]
	R.current++
	if output != nil {
		if output.NVecs() != f.Len() {
			return Error{fmt.Sprintf("Output has %d vectors for %d sites", output.NVecs(), f.Len()), []string{"Next"}, true}
		}
		output.Copy(f.Coords)
	}
	if len(box) > 0 && len(box[0]) >= 9 && f.Cell != nil {
		copy(box[0], f.Box())
	}
	return nil
}

// Rewind goes back to the first frame, so the trajectory can be read again with Next.
func (R *Reader) Rewind() {
	R.current = 0
}
