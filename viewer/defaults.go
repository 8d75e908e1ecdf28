/*
 * defaults.go, part of gophonon.
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

// DefaultCIF is the structure a new Session starts with: two iron atoms in a cubic cell.
const DefaultCIF = `
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

// DefaultEigenvectors moves the first atom along x and the second along z.
const DefaultEigenvectors = `[[1, 0, 0], [0, 0, 1]]`

const (
	DefaultFrames    = 20
	DefaultAmplitude = 1.0
)
