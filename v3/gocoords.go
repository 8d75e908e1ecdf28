/*
 * gocoords.go, part of gophonon.
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

package v3

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //used to correct floating point
// errors. Everything equal or less than this is considered zero.

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	if vecs <= 0 {
		panic(ErrShape)
	}
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

// METHODS

// NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// Vec copies the ith vector of F into dst, which is allocated if nil, and returns it.
func (F *Matrix) Vec(dst []float64, i int) []float64 {
	if i < 0 || i >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	if dst == nil {
		dst = make([]float64, 3)
	}
	copy(dst, F.RawRowView(i))
	return dst
}

// Rows returns a copy of the contents of F as a slice of 3-element slices.
func (F *Matrix) Rows() [][]float64 {
	ret := make([][]float64, F.NVecs())
	for i := range ret {
		ret[i] = F.Vec(nil, i)
	}
	return ret
}

// SwapVecs swaps the vectors i and j of F.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	ri := F.RawRowView(i)
	rj := F.RawRowView(j)
	for k := 0; k < 3; k++ {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// AddVec adds the vector vec to each vector of A, putting the result on the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	F.addScaledVec(A, vec, 1)
}

// SubVec subtracts the vector vec from each vector of A, putting the result on the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	F.addScaledVec(A, vec, -1)
}

func (F *Matrix) addScaledVec(A, vec *Matrix, s float64) {
	ar := A.NVecs()
	if vec.NVecs() != 1 || ar != F.NVecs() {
		panic(ErrShape)
	}
	v := vec.RawRowView(0)
	for i := 0; i < ar; i++ {
		a := A.RawRowView(i)
		f := F.RawRowView(i)
		for j := range f {
			f[j] = a[j] + s*v[j]
		}
	}
}

// AddScaled puts in the receiver A + s*B, element-wise.
func (F *Matrix) AddScaled(A *Matrix, s float64, B *Matrix) {
	ar := A.NVecs()
	if ar != B.NVecs() || ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		floats.AddScaledTo(F.RawRowView(i), A.RawRowView(i), s, B.RawRowView(i))
	}
}

// VecNorm returns the euclidean norm of the ith vector of F.
func (F *Matrix) VecNorm(i int) float64 {
	if i < 0 || i >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	return floats.Norm(F.RawRowView(i), 2)
}

// Norms returns the euclidean norm of every vector in F.
func (F *Matrix) Norms() []float64 {
	ret := make([]float64, F.NVecs())
	for i := range ret {
		ret[i] = F.VecNorm(i)
	}
	return ret
}

// Unit puts in the receiver the vectors of A normalized. Vectors with a norm
// below appzero are left as zero vectors.
func (F *Matrix) Unit(A *Matrix) {
	ar := A.NVecs()
	if ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		n := A.VecNorm(i)
		f := F.RawRowView(i)
		if n <= appzero {
			for j := range f {
				f[j] = 0
			}
			continue
		}
		floats.ScaleTo(f, 1/n, A.RawRowView(i))
	}
}

// IsFinite returns false if any element of F is NaN or infinite.
func (F *Matrix) IsFinite() bool {
	for i := 0; i < F.NVecs(); i++ {
		if floats.HasNaN(F.RawRowView(i)) {
			return false
		}
		for _, v := range F.RawRowView(i) {
			if math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
