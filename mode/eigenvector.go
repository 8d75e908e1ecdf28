/*
 * eigenvector.go, part of gophonon.
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

// Package mode turns vibrational modes into trajectories. Given a structure and one
// displacement vector per site, Generate builds one period of the oscillation as a
// sequence of displaced snapshots, each carrying the instantaneous displacement of
// every site as the "movement" attribute. The modes themselves can be given as JSON
// arrays or read from the YAML files written by phonopy.
package mode

import (
	"encoding/json"
	"math"

	v3 "github.com/rmera/gophonon/v3"
)

// ParseEigenvectors parses a JSON array of 3-component arrays, one per site, like
// [[1,0,0],[0,0,1]], and returns them as a matrix. If nsites > 0, the number of vectors must
// be nsites. Shape problems are reported with a *ShapeError, syntax problems with an Error.
func ParseEigenvectors(text []byte, nsites int) (*v3.Matrix, error) {
	var rows [][]float64
	if err := json.Unmarshal(text, &rows); err != nil {
		return nil, Error{"Can't parse eigenvectors: " + err.Error(), []string{"ParseEigenvectors"}, true}
	}
	return eigenvectorMatrix(rows, nsites)
}

// EigenvectorMatrix checks that rows holds exactly one 3D vector per site (nsites of them, if
// nsites > 0) and returns them as a matrix. rows is copied.
func EigenvectorMatrix(rows [][]float64, nsites int) (*v3.Matrix, error) {
	m, err := eigenvectorMatrix(rows, nsites)
	return m, errDecorate(err, "EigenvectorMatrix")
}

func eigenvectorMatrix(rows [][]float64, nsites int) (*v3.Matrix, error) {
	if len(rows) == 0 || (nsites > 0 && len(rows) != nsites) {
		return nil, &ShapeError{Row: -1, Rows: len(rows), Cols: 3, WantRows: nsites, WantCols: 3}
	}
	ret := v3.Zeros(len(rows))
	for i, r := range rows {
		if len(r) != 3 {
			return nil, &ShapeError{Row: i, Rows: len(rows), Cols: len(r), WantRows: nsites, WantCols: 3}
		}
		for _, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, Error{"Eigenvectors must be finite", []string{"eigenvectorMatrix"}, true}
			}
		}
		copy(ret.RawRowView(i), r)
	}
	return ret, nil
}
