/*
 * xyz_test.go, part of gophonon.
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

package xyz

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/rmera/gophonon/cif"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
)

func TestXYZTrajectory(Te *testing.T) {
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
	T, err := mode.Generate(S, evecs, 1, 4)
	if err != nil {
		Te.Fatal(err)
	}
	var buf bytes.Buffer
	n, err := WriteTrajectory(&buf, T)
	if err != nil {
		Te.Fatal(err)
	}
	if n != 4 {
		Te.Errorf("Wrote %d frames, expected 4", n)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4*4 {
		Te.Fatalf("Expected 16 lines, got %d", len(lines))
	}
	comment := lines[5]
	if !strings.Contains(comment, "Lattice=\"2.80000000 0.00000000") || !strings.Contains(comment, "Properties=species:S:1:pos:R:3:movement:R:3") || !strings.Contains(comment, "frame=1") {
		Te.Errorf("Wrong comment line: %s", comment)
	}
	fields := strings.Fields(lines[6])
	if len(fields) != 7 || fields[0] != "Fe" {
		Te.Fatalf("Wrong atom line: %s", lines[6])
	}
	x, _ := strconv.ParseFloat(fields[1], 64)
	mx, _ := strconv.ParseFloat(fields[4], 64)
	if x != 0.2 || mx != 1 {
		Te.Errorf("Wrong position or movement in frame 1: %s", lines[6])
	}
}

func TestXYZPlain(Te *testing.T) {
	S, err := cif.ReadString(`data_x
loop_
_atom_site_label
_atom_site_Cartn_x
_atom_site_Cartn_y
_atom_site_Cartn_z
O1 0 0 0
`)
	if err != nil {
		Te.Fatal(err)
	}
	var buf bytes.Buffer
	W := NewWriter(&buf, S)
	if err := W.WNext(S.Coords); err != nil {
		Te.Fatal(err)
	}
	if strings.Contains(buf.String(), "Lattice") {
		Te.Errorf("Lattice written for a structure without cell: %s", buf.String())
	}
	if err := W.WNext(v3.Zeros(2)); err == nil {
		Te.Errorf("No error for the wrong number of atoms")
	}
	if err := W.WStructure(S, "nothere"); err == nil {
		Te.Errorf("No error for a missing attribute")
	}
	if W.Frames() != 1 {
		Te.Errorf("Wrong frame count %d", W.Frames())
	}
}
