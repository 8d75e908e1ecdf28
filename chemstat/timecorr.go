/*
 * timecorr.go, part of gophonon.
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

// Package chemstat analyses quantities that change along a trajectory, such as
// the coordinate of the structure along a vibrational mode.
package chemstat

import (
	"fmt"
	"math"
	"math/cmplx"

	chem "github.com/rmera/gophonon"
	v3 "github.com/rmera/gophonon/v3"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

// Series reads all the remaining frames of t and returns the result of applying f to each of them.
func Series(t chem.Traj, f func(c *v3.Matrix) float64) ([]float64, error) {
	coord := v3.Zeros(t.Len())
	ret := make([]float64, 0, 32)
	for err := t.Next(coord); ; err = t.Next(coord) {
		if err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			return ret, err
		}
		ret = append(ret, f(coord))
	}
	return ret, nil
}

// ModeCoordinateFunc returns a function that gives the coordinate of a frame along a mode,
// that is, the projection of the displacement of the frame from ref on direction,
// divided by the squared norm of direction. It panics if direction is all zeros.
func ModeCoordinateFunc(ref, direction *v3.Matrix) func(c *v3.Matrix) float64 {
	var norm2 float64
	for i := 0; i < direction.NVecs(); i++ {
		n := direction.VecNorm(i)
		norm2 += n * n
	}
	if norm2 == 0 {
		panic("ModeCoordinateFunc: zero direction")
	}
	return func(c *v3.Matrix) float64 {
		var proj float64
		for i := 0; i < c.NVecs(); i++ {
			for j := 0; j < 3; j++ {
				proj += (c.At(i, j) - ref.At(i, j)) * direction.At(i, j)
			}
		}
		return proj / norm2
	}
}

// CrossCorrelation returns the normalized cross-correlation of c1 and c2, which must have the same length,
// for lags from 0 to len(c1)-1. The data is zero-padded, so the correlation is not circular.
// A series without variance gives all zeros.
func CrossCorrelation(c1, c2 []float64) []float64 {
	if len(c1) != len(c2) {
		panic(fmt.Sprintf("CrossCorrelation: series of different lengths %d, %d", len(c1), len(c2)))
	}
	n := len(c1)
	ret := make([]float64, n)
	if n == 0 {
		return ret
	}
	c1std := math.Sqrt(stat.PopVariance(c1, nil))
	c2std := math.Sqrt(stat.PopVariance(c2, nil))
	if c1std == 0 || c2std == 0 {
		return ret
	}
	c1mean := stat.Mean(c1, nil)
	c2mean := stat.Mean(c2, nil)
	c1pad := make([]complex128, 2*n)
	c2pad := make([]complex128, 2*n)
	for i, v := range c1 {
		c1pad[i] = complex(v-c1mean, 0)
		c2pad[i] = complex(c2[i]-c2mean, 0)
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxMulConj(c1pad, c2pad)
	f.Sequence(c1pad, c1pad)
	// the 1/len factor normalizes the FFT
	norm := float64(len(c1pad)) * c1std * c2std * float64(n)
	for i := range ret {
		ret[i] = real(c1pad[i]) / norm
	}
	return ret
}

// AutoCorrelation returns the normalized autocorrelation of c, for lags from 0 to len(c)-1.
func AutoCorrelation(c []float64) []float64 {
	return CrossCorrelation(c, c)
}

// DominantPeriod returns the period, in samples, of the strongest non-constant frequency
// component of c, and the fraction of the total (non-constant) power it carries.
// It returns zeros if c has less than 3 samples or doesn't change.
func DominantPeriod(c []float64) (period, fraction float64) {
	if len(c) < 3 {
		return 0, 0
	}
	mean := stat.Mean(c, nil)
	centered := make([]float64, len(c))
	for i, v := range c {
		centered[i] = v - mean
	}
	f := fourier.NewFFT(len(c))
	coeffs := f.Coefficients(nil, centered)
	var total, best float64
	besti := 0
	for i := 1; i < len(coeffs); i++ {
		p := real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i])
		total += p
		if p > best {
			best, besti = p, i
		}
	}
	if besti == 0 || total < 1e-20 {
		return 0, 0
	}
	return 1 / f.Freq(besti), best / total
}
