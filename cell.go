/*
 * cell.go, part of gophonon.
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

package chem

import (
	"fmt"
	"math"

	v3 "github.com/rmera/gophonon/v3"
	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //used to correct floating point
// errors. Everything equal or less than this is considered zero.

// Cell is a crystallographic unit cell. Lengths are in Angstrom and angles in degrees.
// The lattice vectors are kept in the standard orientation: a along the x axis,
// b in the xy plane.
type Cell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
	lattice            *mat.Dense //rows are the a, b and c vectors
}

// NewCell returns the cell with the given lengths and angles. It returns an
// error if the lengths are not positive or the angles don't define a cell.
func NewCell(a, b, c, alpha, beta, gamma float64) (*Cell, error) {
	for _, v := range []float64{a, b, c} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, CError{fmt.Sprintf("Invalid cell length %v", v), []string{"NewCell"}, true}
		}
	}
	for _, v := range []float64{alpha, beta, gamma} {
		if !(v > 0 && v < 180) {
			return nil, CError{fmt.Sprintf("Invalid cell angle %v", v), []string{"NewCell"}, true}
		}
	}
	C := &Cell{A: a, B: b, C: c, Alpha: alpha, Beta: beta, Gamma: gamma}
	ca := clean(math.Cos(Deg2Rad(alpha)))
	cb := clean(math.Cos(Deg2Rad(beta)))
	cg := clean(math.Cos(Deg2Rad(gamma)))
	sg := clean(math.Sin(Deg2Rad(gamma)))
	cy := (ca - cb*cg) / sg
	cz2 := 1 - cb*cb - cy*cy
	if cz2 <= appzero {
		return nil, CError{fmt.Sprintf("Angles %v %v %v don't define a cell", alpha, beta, gamma), []string{"NewCell"}, true}
	}
	C.lattice = mat.NewDense(3, 3, []float64{
		a, 0, 0,
		b * cg, b * sg, 0,
		c * cb, c * cy, c * math.Sqrt(cz2),
	})
	return C, nil
}

// clean sets to zero values that are zero except for floating point errors, so
// an angle of 90 degrees gives exactly orthogonal vectors.
func clean(f float64) float64 {
	if math.Abs(f) <= appzero {
		return 0
	}
	return f
}

// Copy returns a copy of the cell
func (C *Cell) Copy() *Cell {
	if C == nil {
		return nil
	}
	r := *C
	r.lattice = mat.DenseCopyOf(C.lattice)
	return &r
}

// Lattice returns a copy of the lattice vectors, as the rows of a 3x3 matrix.
func (C *Cell) Lattice() *v3.Matrix {
	return v3.Dense2Matrix(mat.DenseCopyOf(C.lattice))
}

// Box returns the lattice vectors as 9 numbers, a, then b, then c.
// This is the box format used by trajectory writers.
func (C *Cell) Box() []float64 {
	ret := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		ret = append(ret, C.lattice.RawRowView(i)...)
	}
	return ret
}

// Volume returns the volume of the cell in cubic Angstrom.
func (C *Cell) Volume() float64 {
	return math.Abs(mat.Det(C.lattice))
}

// FracToCart returns the cartesian coordinates for the fractional coordinates frac.
func (C *Cell) FracToCart(frac *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(frac.NVecs())
	ret.Mul(frac.Dense, C.lattice)
	return ret
}

// CartToFrac returns the fractional coordinates for the cartesian coordinates cart.
func (C *Cell) CartToFrac(cart *v3.Matrix) (*v3.Matrix, error) {
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(C.lattice); err != nil {
		return nil, CError{"Can't invert the lattice: " + err.Error(), []string{"CartToFrac"}, true}
	}
	ret := v3.Zeros(cart.NVecs())
	ret.Mul(cart.Dense, inv)
	return ret, nil
}

// String returns the cell parameters in a human-readable form.
func (C *Cell) String() string {
	return fmt.Sprintf("a=%.4f b=%.4f c=%.4f alpha=%.2f beta=%.2f gamma=%.2f", C.A, C.B, C.C, C.Alpha, C.Beta, C.Gamma)
}
