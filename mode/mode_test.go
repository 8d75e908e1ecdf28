/*
 * mode_test.go, part of gophonon.
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
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	chem "github.com/rmera/gophonon"
	v3 "github.com/rmera/gophonon/v3"
)

func twoSites(Te *testing.T) *chem.Structure {
	Te.Helper()
	top := chem.NewTopology([]*chem.Atom{{Name: "Fe1", Symbol: "Fe"}, {Name: "Fe2", Symbol: "Fe"}})
	coords, err := v3.FromRows([][]float64{{0, 0, 0}, {0.5, 0.5, 0.5}})
	if err != nil {
		Te.Fatal(err)
	}
	cell, err := chem.NewCell(2.8, 2.8, 2.8, 90, 90, 90)
	if err != nil {
		Te.Fatal(err)
	}
	S, err := chem.NewStructure(top, coords, cell)
	if err != nil {
		Te.Fatal(err)
	}
	return S
}

func defaultEvecs(Te *testing.T) *v3.Matrix {
	Te.Helper()
	e, err := ParseEigenvectors([]byte("[[1,0,0],[0,0,1]]"), 2)
	if err != nil {
		Te.Fatal(err)
	}
	return e
}

func sameRow(m *v3.Matrix, i int, want []float64) bool {
	for j, v := range want {
		if math.Abs(m.At(i, j)-v) > 1e-9 {
			return false
		}
	}
	return true
}

func TestParseEigenvectors(Te *testing.T) {
	e, err := ParseEigenvectors([]byte(" [[1, 0, 0], [0, 0, 1]] "), 0)
	if err != nil {
		Te.Fatal(err)
	}
	if e.NVecs() != 2 || !sameRow(e, 1, []float64{0, 0, 1}) {
		Te.Errorf("Wrong eigenvectors:\n%v", e)
	}
	var shape *ShapeError
	_, err = ParseEigenvectors([]byte("[[1,0,0]]"), 2)
	if !errors.As(err, &shape) || shape.Row != -1 || shape.Rows != 1 || shape.WantRows != 2 {
		Te.Errorf("Expected a row count ShapeError, got %v", err)
	}
	_, err = ParseEigenvectors([]byte("[[1,0,0],[0,1]]"), 2)
	if !errors.As(err, &shape) || shape.Row != 1 || shape.Cols != 2 {
		Te.Errorf("Expected a component count ShapeError, got %v", err)
	}
	_, err = ParseEigenvectors([]byte("[]"), 0)
	if !errors.As(err, &shape) {
		Te.Errorf("Expected a ShapeError for an empty array, got %v", err)
	}
	for _, bad := range []string{"[[1,0,0],[0,0,1]", "{\"a\": 1}", "[[\"x\",0,0]]", ""} {
		_, err = ParseEigenvectors([]byte(bad), 0)
		if _, ok := err.(Error); !ok {
			Te.Errorf("Expected a parse Error for %q, got %v", bad, err)
		}
	}
	fmt.Println(err)
}

func TestGenerateExample(Te *testing.T) {
	base := twoSites(Te)
	T, err := Generate(base, defaultEvecs(Te), 1, 4)
	if err != nil {
		Te.Fatal(err)
	}
	if T.NFrames() != 4 || T.Len() != 2 {
		Te.Fatalf("Expected 4 frames of 2 sites, got %d of %d", T.NFrames(), T.Len())
	}
	f := T.Frame(1)
	if !sameRow(f.Coords, 0, []float64{0.2, 0, 0}) || !sameRow(f.Coords, 1, []float64{0.5, 0.5, 0.7}) {
		Te.Errorf("Wrong positions in frame 1:\n%v", f.Coords)
	}
	mov := T.Movement(1)
	if !sameRow(mov, 0, []float64{1, 0, 0}) || !sameRow(mov, 1, []float64{0, 0, 1}) {
		Te.Errorf("Wrong movement in frame 1:\n%v", mov)
	}
	// half a period later, the sites move the other way.
	if !sameRow(T.Movement(3), 0, []float64{-1, 0, 0}) {
		Te.Errorf("Wrong movement in frame 3:\n%v", T.Movement(3))
	}
	if math.Abs(T.Phase(2)-math.Pi) > 1e-12 {
		Te.Errorf("Wrong phase for frame 2: %f", T.Phase(2))
	}
	fmt.Println(f.Coords)
}

func TestGenerateProperties(Te *testing.T) {
	base := twoSites(Te)
	orig := base.Coords.Clone()
	evecs := defaultEvecs(Te)
	for _, n := range []int{1, 2, 7, 20} {
		T, err := Generate(base, evecs, 1.5, n)
		if err != nil {
			Te.Fatal(err)
		}
		if T.NFrames() != n {
			Te.Errorf("Asked for %d frames, got %d", n, T.NFrames())
		}
		for i := 0; i < 2; i++ {
			if !sameRow(T.Frame(0).Coords, i, orig.RawRowView(i)) {
				Te.Errorf("Frame 0 of %d is displaced", n)
			}
			if !sameRow(T.Movement(0), i, []float64{0, 0, 0}) {
				Te.Errorf("Frame 0 of %d has non-zero movement", n)
			}
		}
		for i := 0; i < n; i++ {
			// the trajectory is periodic: frame i holds what frame i+n would.
			s := 1.5 * math.Sin(Phase(i+n, n))
			for j := 0; j < 2; j++ {
				wantMov := []float64{evecs.At(j, 0) * s, evecs.At(j, 1) * s, evecs.At(j, 2) * s}
				wantPos := make([]float64, 3)
				for k := range wantPos {
					wantPos[k] = orig.At(j, k) + DisplacementScale*wantMov[k]
				}
				if !sameRow(T.Movement(i), j, wantMov) || !sameRow(T.Frame(i).Coords, j, wantPos) {
					Te.Errorf("Frame %d of %d is not frame %d: site %d at %v moving %v", i, n, i+n, j, T.Frame(i).Coords.RawRowView(j), T.Movement(i).RawRowView(j))
				}
			}
			names := T.Frame(i).AttributeNames()
			if len(names) != 1 || names[0] != MovementAttribute {
				Te.Errorf("Wrong attributes in frame %d: %v", i, names)
			}
		}
		// mutating the trajectory doesn't touch the base.
		T.Frame(n - 1).Coords.Set(0, 0, 100)
		T.Movement(n-1).Set(0, 0, 100)
		for i := 0; i < 2; i++ {
			if !sameRow(base.Coords, i, orig.RawRowView(i)) {
				Te.Fatalf("Base structure modified")
			}
		}
		if _, ok := base.Attribute(MovementAttribute); ok {
			Te.Fatalf("Movement attached to the base structure")
		}
	}
	T, err := Generate(base, evecs, 0, 10)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < T.NFrames(); i++ {
		for j := 0; j < 2; j++ {
			if !sameRow(T.Frame(i).Coords, j, orig.RawRowView(j)) {
				Te.Errorf("Zero amplitude displaced site %d in frame %d", j, i)
			}
		}
	}
	T, err = Generate(base, evecs, 1, 4, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if !sameRow(T.Frame(1).Coords, 0, []float64{1, 0, 0}) || T.Scale() != 1 {
		Te.Errorf("Scale not applied:\n%v", T.Frame(1).Coords)
	}
}

func TestGenerateErrors(Te *testing.T) {
	base := twoSites(Te)
	evecs := defaultEvecs(Te)
	one, _ := v3.FromRows([][]float64{{1, 0, 0}})
	var shape *ShapeError
	if _, err := Generate(base, one, 1, 4); !errors.As(err, &shape) {
		Te.Errorf("Expected ShapeError, got %v", err)
	}
	if _, err := Generate(base, nil, 1, 4); !errors.As(err, &shape) {
		Te.Errorf("Expected ShapeError for nil eigenvectors, got %v", err)
	}
	for _, n := range []int{0, -3} {
		if _, err := Generate(base, evecs, 1, n); err == nil {
			Te.Errorf("No error for %d frames", n)
		}
	}
	for _, a := range []float64{math.NaN(), math.Inf(1)} {
		if _, err := Generate(base, evecs, a, 4); err == nil {
			Te.Errorf("No error for amplitude %v", a)
		}
	}
	for _, sc := range []float64{math.NaN(), math.Inf(1), 0, -1} {
		if _, err := Generate(base, evecs, 1, 4, sc); err == nil {
			Te.Errorf("No error for scale %v", sc)
		}
	}
	if _, err := Generate(nil, evecs, 1, 4); err == nil {
		Te.Errorf("No error for a nil structure")
	}
}

func TestTrajInterface(Te *testing.T) {
	var T chem.Traj
	traj, err := Generate(twoSites(Te), defaultEvecs(Te), 1, 4)
	if err != nil {
		Te.Fatal(err)
	}
	R := traj.Reader()
	T = R
	coords := v3.Zeros(T.Len())
	box := make([]float64, 9)
	read := 0
	for T.Readable() {
		if err := T.Next(coords, box); err != nil {
			Te.Fatal(err)
		}
		if read == 1 && !sameRow(coords, 1, []float64{0.5, 0.5, 0.7}) {
			Te.Errorf("Wrong coordinates from Next:\n%v", coords)
		}
		read++
	}
	if read != 4 || box[0] != 2.8 {
		Te.Errorf("Read %d frames, box %v", read, box)
	}
	err = T.Next(nil)
	if _, ok := err.(chem.LastFrameError); !ok {
		Te.Errorf("Expected a LastFrameError, got %v", err)
	}
	// a second reader starts from the beginning, independently of the first one.
	if err := traj.Reader().Next(nil); err != nil {
		Te.Errorf("Can't read with a new reader: %v", err)
	}
	if R.Readable() {
		Te.Errorf("A new reader moved the position of the old one")
	}
	R.Rewind()
	if err := T.Next(nil); err != nil {
		Te.Errorf("Can't read after Rewind: %v", err)
	}
	if err := T.Next(v3.Zeros(3)); err == nil {
		Te.Errorf("No error for an output of the wrong size")
	}
}

const bandYAML = `nqpoint: 2
npath: 1
segment_nqpoint:
- 2
reciprocal_lattice:
- [     0.357142857,     0.000000000,     0.000000000 ] # a*
- [     0.000000000,     0.357142857,     0.000000000 ] # b*
- [     0.000000000,     0.000000000,     0.357142857 ] # c*
natom: 2
lattice:
- [     2.800000000,     0.000000000,     0.000000000 ] # a
- [     0.000000000,     2.800000000,     0.000000000 ] # b
- [     0.000000000,     0.000000000,     2.800000000 ] # c
points:
- symbol: Fe # 1
  coordinates: [  0.000000000000000,  0.000000000000000,  0.000000000000000 ]
  mass: 55.845000
- symbol: O  # 2
  coordinates: [  0.500000000000000,  0.500000000000000,  0.500000000000000 ]
  mass: 15.999000

phonon:
- q-position: [    0.0000000,    0.0000000,    0.0000000 ]
  distance:    0.0000000
  band:
  - # 1
    frequency:    -0.0000001
    eigenvector:
    - # atom 1
      - [  0.70710678,  0.00000000 ]
      - [  0.00000000,  0.00000000 ]
      - [  0.00000000,  0.00000000 ]
    - # atom 2
      - [  0.70710678,  0.00000000 ]
      - [  0.00000000,  0.00000000 ]
      - [  0.00000000,  0.00000000 ]
  - # 2
    frequency:     8.1234567
    eigenvector:
    - # atom 1
      - [  0.00000000,  0.00000000 ]
      - [  0.00000000,  0.00000000 ]
      - [  0.40000000,  0.10000000 ]
    - # atom 2
      - [  0.00000000,  0.00000000 ]
      - [  0.00000000,  0.00000000 ]
      - [ -0.80000000,  0.00000000 ]
- q-position: [    0.5000000,    0.0000000,    0.0000000 ]
  distance:    0.1785714
  band:
  - # 1
    frequency:     3.0000000
`

func TestPhonopy(Te *testing.T) {
	P, err := ReadPhonopy(strings.NewReader(bandYAML))
	if err != nil {
		Te.Fatal(err)
	}
	if P.NAtoms() != 2 || P.NQPoints() != 2 || P.NBands(0) != 2 || P.NBands(5) != 0 {
		Te.Fatalf("Wrong sizes: %d atoms %d q-points %d bands", P.NAtoms(), P.NQPoints(), P.NBands(0))
	}
	if P.Symbols[1] != "O" || P.Masses[1] != 15.999 {
		Te.Errorf("Wrong second site: %s %f", P.Symbols[1], P.Masses[1])
	}
	M, err := P.Mode(0, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(M.Frequency-8.1234567) > 1e-9 || M.Imag.At(0, 2) != 0.1 {
		Te.Errorf("Wrong mode: %f %v", M.Frequency, M.Imag)
	}
	d, err := M.Displacements(false)
	if err != nil {
		Te.Fatal(err)
	}
	if !sameRow(d, 0, []float64{0, 0, 0.5}) || !sameRow(d, 1, []float64{0, 0, -1}) {
		Te.Errorf("Wrong displacements:\n%v", d)
	}
	d, err = M.Displacements(true)
	if err != nil {
		Te.Fatal(err)
	}
	// 0.4/sqrt(55.845) vs 0.8/sqrt(15.999): the oxygen still moves the most.
	want := 0.4 / math.Sqrt(55.845) / (0.8 / math.Sqrt(15.999))
	if !sameRow(d, 1, []float64{0, 0, -1}) || math.Abs(d.At(0, 2)-want) > 1e-9 {
		Te.Errorf("Wrong mass weighted displacements:\n%v", d)
	}
	// the displacements can drive a trajectory directly.
	base := twoSites(Te)
	if _, err := Generate(base, d, 1, 10); err != nil {
		Te.Error(err)
	}
	if q := P.QPosition(1); q != [3]float64{0.5, 0, 0} {
		Te.Errorf("Wrong q-point position %v", q)
	}
	if f := P.Frequencies(0); len(f) != 2 || f[1] != 8.1234567 {
		Te.Errorf("Wrong frequencies %v", f)
	}
	if _, err := P.Mode(1, 0); err == nil {
		Te.Error("No error for a mode without eigenvectors")
	}
	if _, err := P.Mode(2, 0); err == nil {
		Te.Error("No error for a q-point out of range")
	}
	if _, err := P.Mode(0, 2); err == nil {
		Te.Error("No error for a band out of range")
	}
	if _, err := ReadPhonopy(strings.NewReader("natom: 2\nphonon: []\n")); err == nil {
		Te.Error("No error for a file without sites")
	}
}
