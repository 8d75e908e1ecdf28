/*
 * phonopy.go, part of gophonon.
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

package mode

import (
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	chem "github.com/rmera/gophonon"
	v3 "github.com/rmera/gophonon/v3"
)

// The part of the band.yaml, mesh.yaml and qpoints.yaml files written by phonopy that we use.
type phonopySite struct {
	Symbol      string    `yaml:"symbol"`
	Coordinates []float64 `yaml:"coordinates"`
	Mass        float64   `yaml:"mass"`
}

type phonopyBand struct {
	Frequency   float64       `yaml:"frequency"`
	Eigenvector [][][]float64 `yaml:"eigenvector"` //site, component, (re, im)
}

type phonopyQPoint struct {
	QPosition []float64     `yaml:"q-position"`
	Band      []phonopyBand `yaml:"band"`
}

type phonopyFile struct {
	NAtom  int             `yaml:"natom"`
	Points []phonopySite   `yaml:"points"`
	Atoms  []phonopySite   `yaml:"atoms"` //older versions
	Phonon []phonopyQPoint `yaml:"phonon"`
}

// PhonopyModes holds the modes read from a phonopy output file.
type PhonopyModes struct {
	Symbols []string
	Masses  []float64
	qpoints []phonopyQPoint
}

// Mode is one vibrational mode at one q-point.
type Mode struct {
	QPosition [3]float64
	Frequency float64    //in the units of the phonopy file, THz by default
	Real      *v3.Matrix //real part of the eigenvector, one row per site
	Imag      *v3.Matrix
	Masses    []float64
}

// ReadPhonopy reads the modes in a band.yaml, mesh.yaml or qpoints.yaml file, as written
// by phonopy with the eigenvectors included.
func ReadPhonopy(r io.Reader) (*PhonopyModes, error) {
	var f phonopyFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, Error{"Can't decode phonopy file: " + err.Error(), []string{"ReadPhonopy"}, true}
	}
	sites := f.Points
	if len(sites) == 0 {
		sites = f.Atoms
	}
	if len(sites) == 0 {
		return nil, Error{"No sites in phonopy file", []string{"ReadPhonopy"}, true}
	}
	if f.NAtom != 0 && f.NAtom != len(sites) {
		return nil, Error{fmt.Sprintf("natom is %d but there are %d sites", f.NAtom, len(sites)), []string{"ReadPhonopy"}, true}
	}
	if len(f.Phonon) == 0 {
		return nil, Error{"No q-points in phonopy file", []string{"ReadPhonopy"}, true}
	}
	P := &PhonopyModes{qpoints: f.Phonon}
	for _, s := range sites {
		P.Symbols = append(P.Symbols, s.Symbol)
		m := s.Mass
		if m == 0 {
			m, _ = chem.SymbolMass(s.Symbol)
		}
		P.Masses = append(P.Masses, m)
	}
	return P, nil
}

// NAtoms returns the number of sites in the unit cell.
func (P *PhonopyModes) NAtoms() int { return len(P.Masses) }

// NQPoints returns the number of q-points in the file.
func (P *PhonopyModes) NQPoints() int { return len(P.qpoints) }

// NBands returns the number of bands at the q-point q, or 0 if q is out of range.
func (P *PhonopyModes) NBands(q int) int {
	if q < 0 || q >= len(P.qpoints) {
		return 0
	}
	return len(P.qpoints[q].Band)
}

// QPosition returns the position of the q-point q in reciprocal space. It panics if q is out of range.
func (P *PhonopyModes) QPosition(q int) [3]float64 {
	var ret [3]float64
	copy(ret[:], P.qpoints[q].QPosition)
	return ret
}

// Frequencies returns the frequency of each band at the q-point q. It panics if q is out of range.
func (P *PhonopyModes) Frequencies(q int) []float64 {
	ret := make([]float64, 0, len(P.qpoints[q].Band))
	for _, b := range P.qpoints[q].Band {
		ret = append(ret, b.Frequency)
	}
	return ret
}

// Mode returns the mode for the given q-point and band, both 0-based.
// It returns an error if either index is out of range, or if the file
// doesn't have eigenvectors for that mode.
func (P *PhonopyModes) Mode(q, band int) (*Mode, error) {
	if q < 0 || q >= len(P.qpoints) {
		return nil, Error{fmt.Sprintf("q-point %d out of range (%d q-points)", q, len(P.qpoints)), []string{"Mode"}, true}
	}
	qp := P.qpoints[q]
	if band < 0 || band >= len(qp.Band) {
		return nil, Error{fmt.Sprintf("band %d out of range (%d bands)", band, len(qp.Band)), []string{"Mode"}, true}
	}
	b := qp.Band[band]
	if len(b.Eigenvector) == 0 {
		return nil, Error{"No eigenvectors in file. Run phonopy with EIGENVECTORS = .TRUE.", []string{"Mode"}, true}
	}
	if len(b.Eigenvector) != P.NAtoms() {
		return nil, &ShapeError{Row: -1, Rows: len(b.Eigenvector), Cols: 3, WantRows: P.NAtoms(), WantCols: 3, deco: []string{"Mode"}}
	}
	M := &Mode{Frequency: b.Frequency, Real: v3.Zeros(P.NAtoms()), Imag: v3.Zeros(P.NAtoms())}
	copy(M.QPosition[:], qp.QPosition)
	M.Masses = append(M.Masses, P.Masses...)
	for i, site := range b.Eigenvector {
		if len(site) != 3 {
			return nil, &ShapeError{Row: i, Rows: len(b.Eigenvector), Cols: len(site), WantRows: P.NAtoms(), WantCols: 3, deco: []string{"Mode"}}
		}
		for j, c := range site {
			if len(c) != 2 {
				return nil, Error{fmt.Sprintf("Eigenvector component %d of site %d is not a (real, imaginary) pair", j, i), []string{"Mode"}, true}
			}
			M.Real.Set(i, j, c[0])
			M.Imag.Set(i, j, c[1])
		}
	}
	return M, nil
}

// Displacements returns the direction in which each site moves in the mode, i.e. the real
// part of the eigenvector, divided by the square root of the site mass if massWeighted is true.
// The vectors are scaled so the largest one has norm 1. A mode where no site moves gives zero vectors.
func (M *Mode) Displacements(massWeighted bool) (*v3.Matrix, error) {
	ret := M.Real.Clone()
	if massWeighted {
		if len(M.Masses) != ret.NVecs() {
			return nil, Error{fmt.Sprintf("%d masses for %d sites", len(M.Masses), ret.NVecs()), []string{"Displacements"}, true}
		}
		for i, m := range M.Masses {
			if m <= 0 {
				return nil, Error{fmt.Sprintf("Non-positive mass for site %d", i), []string{"Displacements"}, true}
			}
			r := ret.RawRowView(i)
			for j := range r {
				r[j] /= math.Sqrt(m)
			}
		}
	}
	max := 0.0
	for _, n := range ret.Norms() {
		max = math.Max(max, n)
	}
	if max > 0 {
		ret.Dense.Scale(1/max, ret.Dense)
	}
	return ret, nil
}
