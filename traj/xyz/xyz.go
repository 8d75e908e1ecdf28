/*
 * xyz.go, part of gophonon.
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

// Package xyz writes trajectories as multi-frame extended XYZ files, as read by ASE, Ovito and
// most molecular viewers. The lattice and any per-site vector attribute (such as the movement of
// each site in a vibrational mode) are declared in the comment line of each frame.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
)

// Error is the error type for the XYZ writer. It fullfills chem.Error and chem.TrajError.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return "xyz: " + err.message }

// Decorate Adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns an empty string, the writer is not associated to a file.
func (err Error) FileName() string { return "" }

// Format returns "xyz"
func (err Error) Format() string { return "xyz" }

func (err Error) Critical() bool { return err.critical }

// Writer writes frames to an io.Writer in the extended XYZ format.
type Writer struct {
	out    *bufio.Writer
	atoms  chem.Atomer
	frames int
}

// NewWriter returns a Writer for frames with the atoms in atoms.
func NewWriter(w io.Writer, atoms chem.Atomer) *Writer {
	return &Writer{out: bufio.NewWriter(w), atoms: atoms}
}

// Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.atoms.Len()
}

// Frames returns the number of frames written so far.
func (W *Writer) Frames() int {
	return W.frames
}

// WNext writes coords as the next frame. The box, if given, is written as the lattice.
// The data is flushed after each frame.
func (W *Writer) WNext(coords *v3.Matrix, box ...[]float64) error {
	var b []float64
	if len(box) > 0 {
		b = box[0]
	}
	return W.write(coords, b, nil, nil)
}

// WStructure writes S as the next frame, with the per-site attributes named in attributes
// as extra columns. All the attributes must exist in S.
func (W *Writer) WStructure(S *chem.Structure, attributes ...string) error {
	if S == nil {
		return Error{"got a nil structure", []string{"WStructure"}, true}
	}
	if S.Len() != W.Len() {
		return Error{fmt.Sprintf("structure with %d sites for a writer of %d", S.Len(), W.Len()), []string{"WStructure"}, true}
	}
	attrs := make([]*v3.Matrix, 0, len(attributes))
	for _, name := range attributes {
		a, ok := S.Attribute(name)
		if !ok {
			return Error{fmt.Sprintf("structure has no attribute %s", name), []string{"WStructure"}, true}
		}
		attrs = append(attrs, a)
	}
	err := W.write(S.Coords, S.Box(), attributes, attrs)
	if err != nil {
		err.(Error).Decorate("WStructure")
	}
	return err
}

func (W *Writer) write(coords *v3.Matrix, box []float64, names []string, attrs []*v3.Matrix) error {
	if coords == nil {
		return Error{"got nil coordinates", []string{"write"}, true}
	}
	n := W.Len()
	if coords.NVecs() != n {
		return Error{fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), n), []string{"write"}, true}
	}
	props := "species:S:1:pos:R:3"
	for _, name := range names {
		props += ":" + name + ":R:3"
	}
	comment := make([]string, 0, 3)
	if len(box) >= 9 {
		lat := make([]string, 9)
		for i := range lat {
			lat[i] = fmt.Sprintf("%.8f", box[i])
		}
		comment = append(comment, fmt.Sprintf("Lattice=\"%s\"", strings.Join(lat, " ")))
	}
	comment = append(comment, "Properties="+props, fmt.Sprintf("frame=%d", W.frames))
	if _, err := fmt.Fprintf(W.out, "%d\n%s\n", n, strings.Join(comment, " ")); err != nil {
		return Error{err.Error(), []string{"write"}, true}
	}
	for i := 0; i < n; i++ {
		line := fmt.Sprintf("%-2s %14.8f %14.8f %14.8f", W.atoms.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		for _, a := range attrs {
			line += fmt.Sprintf(" %14.8f %14.8f %14.8f", a.At(i, 0), a.At(i, 1), a.At(i, 2))
		}
		if _, err := W.out.WriteString(line + "\n"); err != nil {
			return Error{err.Error(), []string{"write"}, true}
		}
	}
	if err := W.out.Flush(); err != nil {
		return Error{err.Error(), []string{"write"}, true}
	}
	W.frames++
	return nil
}

// WriteTrajectory writes every frame of traj to w, with the movement of each site as extra columns,
// and returns the number of frames written.
func WriteTrajectory(w io.Writer, traj *mode.Trajectory) (int, error) {
	if traj == nil || traj.NFrames() == 0 {
		return 0, Error{"empty trajectory", []string{"WriteTrajectory"}, true}
	}
	W := NewWriter(w, traj.Frame(0))
	for i, f := range traj.Frames() {
		if err := W.WStructure(f, mode.MovementAttribute); err != nil {
			err.(Error).Decorate("WriteTrajectory")
			return i, err
		}
	}
	return W.Frames(), nil
}
