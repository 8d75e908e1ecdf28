/*
 * write.go, part of gophonon.
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
	"bufio"
	"fmt"
	"io"
	"strings"

	chem "github.com/rmera/gophonon"
)

// Write writes the structure S to w as a CIF with a single data block named blockname
// (or the name of the structure, if blockname is empty) in the P 1 space group.
// S must have a cell. Only the positions are written, not the per-site attributes.
func Write(w io.Writer, S *chem.Structure, blockname string) error {
	if S.Cell == nil {
		return Error{"Can't write a structure without a cell", 0, []string{"Write"}}
	}
	frac, err := S.FracCoords()
	if err != nil {
		return Error{err.Error(), 0, []string{"FracCoords", "Write"}}
	}
	if blockname == "" {
		blockname = S.Name
	}
	if blockname == "" {
		blockname = "gophonon"
	}
	b := bufio.NewWriter(w)
	c := S.Cell
	fmt.Fprintf(b, "data_%s\n", strings.Join(strings.Fields(blockname), "_"))
	fmt.Fprintf(b, "_chemical_formula_sum              %s\n", quote(S.Formula()))
	fmt.Fprintf(b, "_cell_length_a       %.6f\n", c.A)
	fmt.Fprintf(b, "_cell_length_b       %.6f\n", c.B)
	fmt.Fprintf(b, "_cell_length_c       %.6f\n", c.C)
	fmt.Fprintf(b, "_cell_angle_alpha    %.4f\n", c.Alpha)
	fmt.Fprintf(b, "_cell_angle_beta     %.4f\n", c.Beta)
	fmt.Fprintf(b, "_cell_angle_gamma    %.4f\n\n", c.Gamma)
	b.WriteString("_space_group_name_H-M_alt    'P 1'\n")
	b.WriteString("_space_group_IT_number       1\n\n")
	b.WriteString("loop_\n  _space_group_symop_operation_xyz\n  'x, y, z'\n\n")
	b.WriteString("loop_\n  _atom_site_type_symbol\n  _atom_site_label\n  _atom_site_fract_x\n  _atom_site_fract_y\n  _atom_site_fract_z\n  _atom_site_occupancy\n")
	for i := 0; i < S.Len(); i++ {
		at := S.Atom(i)
		occ := at.Occupancy
		if occ == 0 {
			occ = 1
		}
		fmt.Fprintf(b, "  %-3s %-8s %10.6f %10.6f %10.6f %7.4f\n", at.Symbol, quote(at.Name), frac.At(i, 0), frac.At(i, 1), frac.At(i, 2), occ)
	}
	if err := b.Flush(); err != nil {
		return Error{err.Error(), 0, []string{"Flush", "Write"}}
	}
	return nil
}

// quote puts s between quotes if it would not be read back as a single value.
func quote(s string) string {
	if s == "" {
		return "?"
	}
	if strings.ContainsAny(s, " \t'\"#") || strings.HasPrefix(s, "_") || strings.HasPrefix(s, ";") {
		if strings.Contains(s, "'") {
			return `"` + s + `"`
		}
		return "'" + s + "'"
	}
	return s
}
