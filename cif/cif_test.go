/*
 * cif_test.go, part of gophonon.
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

package cif

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fe2 = `
data_image0
_chemical_formula_structural       Fe2
_chemical_formula_sum              "Fe2"
_cell_length_a       2.8
_cell_length_b       2.8
_cell_length_c       2.8
_cell_angle_alpha    90
_cell_angle_beta     90
_cell_angle_gamma    90

_space_group_name_H-M_alt    "P 1"
_space_group_IT_number       1

loop_
  _space_group_symop_operation_xyz
  'x, y, z'

loop_
  _atom_site_type_symbol
  _atom_site_label
  _atom_site_symmetry_multiplicity
  _atom_site_fract_x
  _atom_site_fract_y
  _atom_site_fract_z
  _atom_site_occupancy
  Fe  Fe1       1.0  0.00000  0.00000  0.00000  1.0000
  Fe  Fe2       1.0  0.50000  0.50000  0.50000  1.0000
`

// Rock salt, only the two inequivalent sites plus the F-centering and a few
// of the point operations, which is enough to generate the 8 atoms of the cell.
const nacl = `
# NaCl, a comment before the block
data_NaCl
_cell_length_a    5.640(2)
_cell_length_b    5.640(2)
_cell_length_c    5.640(2)
_cell_angle_alpha 90
_cell_angle_beta  90
_cell_angle_gamma 90
_symmetry_space_group_name_H-M 'F m -3 m'
_publ_section_title
;
 A text field that
 spans lines, with a data_ word and a 'quote' in it.
;
loop_
_symmetry_equiv_pos_as_xyz
'x, y, z'
'-x, -y, -z'
'x, y+1/2, z+1/2'
'x+1/2, y, z+1/2'
'x+1/2, y+1/2, z'
loop_
_atom_site_label
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
Na1 0.0 0.0 0.0
Cl1 0.5 0.5 0.5 # trailing comment

data_ignored
_cell_length_a 1
`

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFe2(Te *testing.T) {
	S, err := ReadString(fe2)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Len() != 2 {
		Te.Fatalf("Expected 2 sites, got %d", S.Len())
	}
	if S.Name != "image0" {
		Te.Errorf("Wrong block name %q", S.Name)
	}
	if S.Atom(1).Name != "Fe2" || S.Atom(1).Symbol != "Fe" {
		Te.Errorf("Wrong second atom: %+v", S.Atom(1))
	}
	if !near(S.Atom(0).Mass, 55.845) {
		Te.Errorf("Mass not assigned: %f", S.Atom(0).Mass)
	}
	if !near(S.Cell.Volume(), 2.8*2.8*2.8) {
		Te.Errorf("Wrong volume %f", S.Cell.Volume())
	}
	for j := 0; j < 3; j++ {
		if !near(S.Coords.At(0, j), 0) || !near(S.Coords.At(1, j), 1.4) {
			Te.Errorf("Wrong coordinates:\n%v", S.Coords)
		}
	}
	fmt.Println(S.Formula(), S.Coords)
}

func TestSymmetry(Te *testing.T) {
	S, err := ReadString(nacl)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Name != "NaCl" {
		Te.Errorf("Wrong block %q, only the first one should be read", S.Name)
	}
	if S.Len() != 8 {
		Te.Fatalf("Expected 8 atoms after symmetry expansion, got %d\n%v", S.Len(), S.Coords)
	}
	if S.Formula() != "Na4Cl4" {
		Te.Errorf("Wrong formula %s", S.Formula())
	}
	if !near(S.Cell.A, 5.64) {
		Te.Errorf("Uncertainty not removed from cell length: %f", S.Cell.A)
	}
	f, err := S.FracCoords()
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < f.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			if v := f.At(i, j); v < 0 || v >= 1 {
				Te.Errorf("Position %d not wrapped into the cell: %v", i, f.RawRowView(i))
			}
		}
	}
	fmt.Println(S.Coords)
}

func TestSymOp(Te *testing.T) {
	cases := []struct {
		op   string
		in   [3]float64
		want [3]float64
	}{
		{"x, y, z", [3]float64{0.1, 0.2, 0.3}, [3]float64{0.1, 0.2, 0.3}},
		{"-x+1/2, y, z", [3]float64{0.1, 0.2, 0.3}, [3]float64{0.4, 0.2, 0.3}},
		{"x-y, x, z+0.5", [3]float64{0.3, 0.1, 0.2}, [3]float64{0.2, 0.3, 0.7}},
		{"1/2+X, -Y, 2z", [3]float64{0.1, 0.2, 0.3}, [3]float64{0.6, -0.2, 0.6}},
	}
	for _, c := range cases {
		op, err := ParseSymOp(c.op)
		if err != nil {
			Te.Fatal(err)
		}
		got := op.Apply(c.in)
		for i := range got {
			if !near(got[i], c.want[i]) {
				Te.Errorf("%s applied to %v gave %v, expected %v", c.op, c.in, got, c.want)
				break
			}
		}
	}
	for _, bad := range []string{"x, y", "x, y, w", "x, y, z/0", "x, y, z+"} {
		if _, err := ParseSymOp(bad); err == nil {
			Te.Errorf("No error for symmetry operation %q", bad)
		}
	}
}

func TestCartesian(Te *testing.T) {
	text := `data_cart
_cell_length_a 4
_cell_length_b 4
_cell_length_c 4
loop_
_atom_site_type_symbol
_atom_site_Cartn_x
_atom_site_Cartn_y
_atom_site_Cartn_z
O 1.0 2.0 3.0
H 1.5 2.0 3.0
`
	S, err := ReadString(text)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Len() != 2 || S.Atom(1).Symbol != "H" || S.Atom(1).Name != "H2" {
		Te.Errorf("Wrong atoms: %+v %+v", S.Atom(0), S.Atom(1))
	}
	if !near(S.Coords.At(0, 2), 3.0) || !near(S.Coords.At(1, 0), 1.5) {
		Te.Errorf("Cartesian coordinates changed:\n%v", S.Coords)
	}
}

func TestErrors(Te *testing.T) {
	cases := []struct {
		name string
		text string
		line int
	}{
		{"no block", "_cell_length_a 3\n", 1},
		{"unterminated quote", "data_x\n_cell_length_a 'oops\n", 2},
		{"unterminated text", "data_x\n;\nnever closed\n", 2},
		{"bad number", "data_x\n_cell_length_a 3\n_cell_length_b 3\n_cell_length_c 3\nloop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nFe1 0.0 abc 0.0\n", 10},
		{"ragged loop", "data_x\nloop_\n_atom_site_label\n_atom_site_fract_x\nFe1 0.0 Fe2\n", 2},
		{"no sites", "data_x\n_cell_length_a 3\n_cell_length_b 3\n_cell_length_c 3\n", 0},
		{"frac without cell", "data_x\nloop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nFe1 0 0 0\n", 0},
		{"bad symbol", "data_x\n_cell_length_a 3\n_cell_length_b 3\n_cell_length_c 3\nloop_\n_atom_site_label\n_atom_site_fract_x\n_atom_site_fract_y\n_atom_site_fract_z\nQq1 0 0 0\n", 10},
	}
	for _, c := range cases {
		_, err := ReadString(c.text)
		if err == nil {
			Te.Errorf("%s: expected an error", c.name)
			continue
		}
		e, ok := err.(Error)
		if !ok {
			Te.Errorf("%s: error of type %T, not cif.Error", c.name, err)
			continue
		}
		if e.Line() != c.line {
			Te.Errorf("%s: error at line %d, expected %d (%s)", c.name, e.Line(), c.line, err.Error())
		}
		fmt.Println(err)
	}
}

func TestWriteRead(Te *testing.T) {
	S, err := ReadString(nacl)
	if err != nil {
		Te.Fatal(err)
	}
	S.Atom(0).Name = "Na 1" //needs quoting
	var buf bytes.Buffer
	if err := Write(&buf, S, ""); err != nil {
		Te.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "data_NaCl\n") {
		Te.Errorf("Block name not taken from the structure:\n%s", buf.String())
	}
	name := filepath.Join(Te.TempDir(), "nacl.cif")
	if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
		Te.Fatal(err)
	}
	R, err := File(name)
	if err != nil {
		Te.Fatal(err)
	}
	if R.Len() != S.Len() || R.Atom(0).Name != "Na 1" {
		Te.Fatalf("Round trip changed the atoms: %d vs %d, %q", R.Len(), S.Len(), R.Atom(0).Name)
	}
	for i := 0; i < S.Len(); i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(R.Coords.At(i, j)-S.Coords.At(i, j)) > 1e-4 {
				Te.Errorf("Round trip changed atom %d: %v vs %v", i, R.Coords.RawRowView(i), S.Coords.RawRowView(i))
			}
		}
	}
	S.Cell = nil
	if err := Write(&buf, S, "x"); err == nil {
		Te.Error("Writing a structure without cell should fail")
	}
}
