/*
 * timecorr_test.go, part of gophonon.
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

package chemstat

import (
	"math"
	"testing"

	"github.com/rmera/gophonon/cif"
	"github.com/rmera/gophonon/mode"
)

func TestModeCoordinate(Te *testing.T) {
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
	T, err := mode.Generate(S, evecs, 2, 20)
	if err != nil {
		Te.Fatal(err)
	}
	series, err := Series(T.Reader(), ModeCoordinateFunc(S.Coords, evecs))
	if err != nil {
		Te.Fatal(err)
	}
	if len(series) != 20 {
		Te.Fatalf("Got %d values, expected 20", len(series))
	}
	for i, v := range series {
		want := 2 * mode.DisplacementScale * math.Sin(mode.Phase(i, 20))
		if math.Abs(v-want) > 1e-12 {
			Te.Errorf("Frame %d: coordinate %f, expected %f", i, v, want)
		}
	}
	period, fraction := DominantPeriod(series)
	if math.Abs(period-20) > 1e-9 || fraction < 0.99 {
		Te.Errorf("Period %f (%f of the power), expected 20", period, fraction)
	}
	ac := AutoCorrelation(series)
	if math.Abs(ac[0]-1) > 1e-9 {
		Te.Errorf("Autocorrelation at lag 0 is %f", ac[0])
	}
	// half a period later the structure is on the other side.
	if ac[10] >= 0 {
		Te.Errorf("Autocorrelation at half a period should be negative, got %f", ac[10])
	}
}

func TestDegenerate(Te *testing.T) {
	if p, f := DominantPeriod([]float64{1, 1, 1, 1}); p != 0 || f != 0 {
		Te.Errorf("Period %f, %f for a constant series", p, f)
	}
	if p, _ := DominantPeriod([]float64{1, 2}); p != 0 {
		Te.Errorf("Period %f for a too short series", p)
	}
	ac := AutoCorrelation([]float64{3, 3, 3})
	for _, v := range ac {
		if v != 0 {
			Te.Errorf("Non-zero autocorrelation for a constant series: %v", ac)
		}
	}
}
