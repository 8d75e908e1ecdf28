/*
 * structure.go, part of gophonon.
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
	"sort"

	v3 "github.com/rmera/gophonon/v3"
)

// Structure is one snapshot of a crystal (or molecular) structure: the sites, their cartesian
// coordinates, an optional unit cell and any number of named per-site vector attributes.
type Structure struct {
	*Topology
	Name   string //i.e. the name of the data block in a CIF file
	Coords *v3.Matrix
	Cell   *Cell //nil for non-periodic structures
	attrs  map[string]*v3.Matrix
}

// NewStructure makes a structure with the topology top, coordinates coords and cell cell (which can be nil),
// and returns it. It returns error if the topology or coordinates are nil, or if they don't match.
// Nothing is copied.
func NewStructure(top *Topology, coords *v3.Matrix, cell *Cell) (*Structure, error) {
	if top == nil {
		return nil, CError{"Supplied a nil Topology", []string{"NewStructure"}, true}
	}
	if coords == nil {
		return nil, CError{"Supplied nil coordinates", []string{"NewStructure"}, true}
	}
	S := &Structure{Topology: top, Coords: coords, Cell: cell}
	if err := S.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewStructure")
	}
	return S, nil
}

// Corrupted checks whether the structure is corrupted, i.e. the
// coordinates or any attribute don't match the number of atoms.
func (S *Structure) Corrupted() error {
	if S.Coords.NVecs() != S.Len() {
		return CError{fmt.Sprintf("Inconsistent coordinates/atoms: Atoms %d, coords: %d", S.Len(), S.Coords.NVecs()), []string{"Corrupted"}, true}
	}
	for k, v := range S.attrs {
		if v.NVecs() != S.Len() {
			return CError{fmt.Sprintf("Inconsistent attribute %s: Atoms %d, vectors: %d", k, S.Len(), v.NVecs()), []string{"Corrupted"}, true}
		}
	}
	return nil
}

// Copy returns a deep copy of the structure, including coordinates, cell and attributes.
func (S *Structure) Copy() *Structure {
	if err := S.Corrupted(); err != nil {
		panic(err.Error()) //copying a corrupted structure means that the program is wrong.
	}
	ret := new(Structure)
	ret.Topology = S.CopyAtoms()
	ret.Name = S.Name
	ret.Coords = S.Coords.Clone()
	ret.Cell = S.Cell.Copy()
	if S.attrs != nil {
		ret.attrs = make(map[string]*v3.Matrix, len(S.attrs))
		for k, v := range S.attrs {
			ret.attrs[k] = v.Clone()
		}
	}
	return ret
}

// Coord returns a view of the coordinates of the ith atom.
// Panics if i is out of range.
func (S *Structure) Coord(i int) *v3.Matrix {
	if i >= S.Len() || i < 0 {
		panic(fmt.Sprintf("Requested coordinate (%d) out of bounds (%d)", i, S.Len()))
	}
	return S.Coords.VecView(i)
}

// SetAttribute attaches the per-site vectors in m to the structure under the given name,
// replacing any previous attribute with that name. m is not copied.
// It returns an error if m doesn't have one vector per site.
func (S *Structure) SetAttribute(name string, m *v3.Matrix) error {
	if m == nil {
		return CError{"Attribute " + name + " is nil", []string{"SetAttribute"}, true}
	}
	if m.NVecs() != S.Len() {
		return CError{fmt.Sprintf("Attribute %s has %d vectors for %d sites", name, m.NVecs(), S.Len()), []string{"SetAttribute"}, true}
	}
	if S.attrs == nil {
		S.attrs = make(map[string]*v3.Matrix)
	}
	S.attrs[name] = m
	return nil
}

// Attribute returns the per-site attribute with the given name, and whether it exists.
func (S *Structure) Attribute(name string) (*v3.Matrix, bool) {
	m, ok := S.attrs[name]
	return m, ok
}

// DelAttribute removes the attribute with the given name, if present.
func (S *Structure) DelAttribute(name string) {
	delete(S.attrs, name)
}

// AttributeNames returns the names of all attributes in the structure, sorted.
func (S *Structure) AttributeNames() []string {
	ret := make([]string, 0, len(S.attrs))
	for k := range S.attrs {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Box returns the box (lattice vectors) of the structure, or nil if it has no cell.
func (S *Structure) Box() []float64 {
	if S.Cell == nil {
		return nil
	}
	return S.Cell.Box()
}

// FracCoords returns the fractional coordinates of the structure. It returns an error
// if the structure has no cell.
func (S *Structure) FracCoords() (*v3.Matrix, error) {
	if S.Cell == nil {
		return nil, CError{"Structure has no cell", []string{"FracCoords"}, true}
	}
	f, err := S.Cell.CartToFrac(S.Coords)
	return f, errDecorate(err, "FracCoords")
}
