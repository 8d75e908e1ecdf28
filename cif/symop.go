/*
 * symop.go, part of gophonon.
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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SymOp is a symmetry operation in fractional coordinates: f' = Rot*f + Trans.
type SymOp struct {
	Rot   [3][3]float64
	Trans [3]float64
}

// Identity is the 'x, y, z' operation.
var Identity = SymOp{Rot: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}

// ParseSymOp parses a symmetry operation in the xyz notation used in CIF files,
// for instance '-x+1/2, y, z' or 'x-y, x, z+0.5'.
func ParseSymOp(s string) (SymOp, error) {
	var ret SymOp
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return ret, Error{fmt.Sprintf("Symmetry operation '%s' doesn't have 3 components", s), 0, []string{"ParseSymOp"}}
	}
	for i, v := range fields {
		row, t, err := parseComponent(v)
		if err != nil {
			return ret, Error{fmt.Sprintf("Can't parse symmetry operation '%s': %s", s, err.Error()), 0, []string{"ParseSymOp"}}
		}
		ret.Rot[i] = row
		ret.Trans[i] = t
	}
	return ret, nil
}

func isXYZ(c byte) bool {
	return c == 'x' || c == 'y' || c == 'z'
}

// parseComponent parses one of the three components of a symmetry operation, returning
// the coefficients for x, y and z, and the translation.
func parseComponent(s string) ([3]float64, float64, error) {
	var row [3]float64
	var t float64
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	if s == "" {
		return row, t, fmt.Errorf("empty component")
	}
	i := 0
	for i < len(s) {
		sign := 1.0
		if s[i] == '+' || s[i] == '-' {
			if s[i] == '-' {
				sign = -1
			}
			i++
		}
		if i >= len(s) {
			return row, t, fmt.Errorf("dangling sign in '%s'", s)
		}
		if isXYZ(s[i]) {
			row[s[i]-'x'] += sign
			i++
			continue
		}
		j := i
		for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.' || s[j] == '/') {
			j++
		}
		if j == i {
			return row, t, fmt.Errorf("unexpected character '%c' in '%s'", s[i], s)
		}
		v, err := parseFraction(s[i:j])
		if err != nil {
			return row, t, err
		}
		i = j
		if i < len(s) && s[i] == '*' {
			i++
		}
		if i < len(s) && isXYZ(s[i]) { //a coefficient, i.e. '2x'
			row[s[i]-'x'] += sign * v
			i++
			continue
		}
		t += sign * v
	}
	return row, t, nil
}

func parseFraction(s string) (float64, error) {
	num, den, isfrac := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	if !isfrac {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator in '%s'", s)
	}
	return n / d, nil
}

// Apply returns the result of applying the operation to the fractional coordinates f.
func (O SymOp) Apply(f [3]float64) [3]float64 {
	var ret [3]float64
	for i := 0; i < 3; i++ {
		ret[i] = O.Rot[i][0]*f[0] + O.Rot[i][1]*f[1] + O.Rot[i][2]*f[2] + O.Trans[i]
	}
	return ret
}

// wrap puts the fractional coordinate in [0,1)
func wrap(f float64) float64 {
	r := f - math.Floor(f)
	if 1-r < symprec {
		r = 0
	}
	return r
}

// samePeriodic returns true if a and b are the same point, up to lattice translations.
func samePeriodic(a, b [3]float64) bool {
	for i := 0; i < 3; i++ {
		d := a[i] - b[i]
		d -= math.Round(d)
		if math.Abs(d) > symprec {
			return false
		}
	}
	return true
}
