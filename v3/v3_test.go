/*
 * v3_test.go, part of gophonon.
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
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewMatrix(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	if A.NVecs() != 3 {
		Te.Errorf("Expected 3 vectors, got %d", A.NVecs())
	}
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("A slice of 4 elements should not make a Matrix")
	}
	if _, ok := err.(Error); !ok {
		Te.Errorf("Expected a v3.Error, got %T", err)
	}
	_, err = FromRows([][]float64{{1, 2, 3}, {4, 5}})
	if err == nil {
		Te.Error("FromRows accepted a 2-element vector")
	}
}

func TestViews(Te *testing.T) {
	A, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	View := A.VecView(1)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Errorf("Changes in the view were not reflected in the matrix: %v", A)
	}
	C := A.Clone()
	C.Set(0, 0, -1)
	if A.At(0, 0) != 1 {
		Te.Errorf("Changes in a clone were reflected in the original: %v", A)
	}
	B := Zeros(5)
	B.SetMatrix(2, A)
	if B.At(4, 2) != 9 || B.At(0, 0) != 0 {
		Te.Errorf("SetMatrix put A in the wrong place:\n%v", B)
	}
	fmt.Println(B)
}

func TestVecOps(Te *testing.T) {
	A, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	row, _ := NewMatrix([]float64{10, 20, 30})
	B := Zeros(2)
	B.AddVec(A, row)
	if B.At(1, 2) != 36 {
		Te.Errorf("AddVec failed: %v", B)
	}
	B.SubVec(B, row)
	if !mat.Equal(A, B) {
		Te.Errorf("SubVec did not undo AddVec: %v %v", A, B)
	}
	B.AddScaled(A, 0.5, A)
	if B.At(0, 1) != 3 {
		Te.Errorf("AddScaled failed: %v", B)
	}
	A.SwapVecs(0, 1)
	if A.At(0, 0) != 4 || A.At(1, 0) != 1 {
		Te.Errorf("SwapVecs failed: %v", A)
	}
}

func TestUnit(Te *testing.T) {
	A, _ := FromRows([][]float64{{3, 0, 4}, {0, 0, 0}})
	if A.VecNorm(0) != 5 {
		Te.Errorf("Wrong norm %f", A.VecNorm(0))
	}
	A.Unit(A)
	if math.Abs(A.VecNorm(0)-1) > appzero {
		Te.Errorf("Vector not normalized: %v", A)
	}
	if A.VecNorm(1) != 0 {
		Te.Errorf("A zero vector should stay zero: %v", A)
	}
	A.Set(1, 1, math.Inf(1))
	if A.IsFinite() {
		Te.Error("IsFinite missed an infinity")
	}
}
