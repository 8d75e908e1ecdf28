/*
 * stf_test.go, part of gophonon.
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

package stf

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/cif"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
)

func fe2Traj(Te *testing.T, nframes int) *mode.Trajectory {
	Te.Helper()
	S, err := cif.ReadString(`data_fe2
_cell_length_a 2.8
_cell_length_b 2.8
_cell_length_c 2.8
loop_
_atom_site_label
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
Fe1 0.0 0.0 0.0
Fe2 0.5 0.5 0.5
`)
	if err != nil {
		Te.Fatal(err)
	}
	evecs, err := mode.ParseEigenvectors([]byte("[[1,0,0],[0,0,1]]"), 2)
	if err != nil {
		Te.Fatal(err)
	}
	T, err := mode.Generate(S, evecs, 1, nframes)
	if err != nil {
		Te.Fatal(err)
	}
	return T
}

// Tests writing and reading back with every compression method.
func TestSTFRoundTrip(Te *testing.T) {
	fmt.Println("STF round trip test!")
	T := fe2Traj(Te, 8)
	dir := Te.TempDir()
	for _, ext := range []string{"stf", "stz", "str", "stl"} {
		name := filepath.Join(dir, "fe2."+ext)
		n, err := WriteTrajectory(name, T, 4)
		if err != nil {
			Te.Fatal(err)
		}
		if n != 8 {
			Te.Errorf("%s: wrote %d frames, expected 8", ext, n)
		}
		R, header, err := New(name)
		if err != nil {
			Te.Fatal(err)
		}
		if header["prec"] != "4" || header["frames"] != "8" || header["amplitude"] != "1" {
			Te.Errorf("%s: wrong header %v", ext, header)
		}
		if sym := Symbols(header); len(sym) != 2 || sym[1] != "Fe" {
			Te.Errorf("%s: wrong symbols %v", ext, sym)
		}
		if R.Len() != 2 {
			Te.Fatalf("%s: %d atoms, expected 2", ext, R.Len())
		}
		coords := v3.Zeros(2)
		box := make([]float64, 9)
		i := 0
		for ; ; i++ {
			err := R.Next(coords, box)
			if err != nil {
				if _, ok := err.(chem.LastFrameError); ok {
					break
				}
				Te.Fatal(err)
			}
			want := T.Frame(i).Coords
			for j := 0; j < 2; j++ {
				for k := 0; k < 3; k++ {
					if math.Abs(coords.At(j, k)-want.At(j, k)) > 0.5e-4+1e-12 {
						Te.Errorf("%s: frame %d atom %d differs: %v vs %v", ext, i, j, coords.RawRowView(j), want.RawRowView(j))
					}
				}
			}
			if math.Abs(box[0]-2.8) > 1e-6 || math.Abs(box[8]-2.8) > 1e-6 {
				Te.Errorf("%s: wrong box %v", ext, box)
			}
		}
		if i != 8 {
			Te.Errorf("%s: read %d frames, expected 8", ext, i)
		}
		if R.Readable() {
			Te.Errorf("%s: still readable after the last frame", ext)
		}
	}
	// writing reads the trajectory through its own reader, so a fresh one starts at frame 0.
	if !T.Reader().Readable() {
		Te.Errorf("Trajectory not readable after writing")
	}
}

func TestSTFDefaults(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "plain.stf")
	W, err := NewWriter(name, 1, nil)
	if err != nil {
		Te.Fatal(err)
	}
	c, _ := v3.FromRows([][]float64{{1.234, -5.678, 0.005}})
	if err := W.WNext(c); err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(v3.Zeros(2)); err == nil {
		Te.Errorf("No error for a frame with the wrong number of atoms")
	}
	if err := W.Close(); err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(c); err == nil {
		Te.Errorf("No error writing to a closed trajectory")
	}
	R, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	defer R.Close()
	if header["prec"] != "2" || len(header) != 1 {
		Te.Errorf("Wrong default header: %v", header)
	}
	if err := nextConc(R, c); err != nil {
		Te.Fatal(err)
	}
	if math.Abs(c.At(0, 0)-1.23) > 1e-9 || math.Abs(c.At(0, 1)+5.68) > 1e-9 {
		Te.Errorf("Wrong coordinates with the default precision: %v", c)
	}
}

// nextConc reads one frame through NextConc.
func nextConc(S *StfR, c *v3.Matrix) error {
	chans, err := S.NextConc([]*v3.Matrix{c})
	if err != nil {
		return err
	}
	<-chans[0]
	return nil
}

func TestSTFErrors(Te *testing.T) {
	dir := Te.TempDir()
	if _, _, err := New(filepath.Join(dir, "missing.stf")); err == nil {
		Te.Errorf("No error for a missing file")
	}
	if _, err := NewWriter(filepath.Join(dir, "bad.stf"), 2, map[string]string{"a=b": "c"}); err == nil {
		Te.Errorf("No error for an invalid header key")
	}
	if _, err := NewWriter(filepath.Join(dir, "empty.stf"), 0, nil); err == nil {
		Te.Errorf("No error for zero atoms")
	}
	// a truncated frame is an error, not the end of the trajectory.
	name := filepath.Join(dir, "trunc.stl")
	W, err := NewWriter(name, 3, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := W.h.Write([]byte("1 2 3\n*\n")); err != nil {
		Te.Fatal(err)
	}
	W.Close()
	R, _, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	err = R.Next(nil)
	if _, ok := err.(chem.LastFrameError); err == nil || ok {
		Te.Errorf("Expected a critical error for a truncated frame, got %v", err)
	}
	os.Remove(name)
}
