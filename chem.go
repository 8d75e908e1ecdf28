/*
 * chem.go, part of gophonon.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"fmt"
	"strings"
)

/**Note: Many functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the information of a site, except for the coordinates, which will be in a matrix.
type Atom struct {
	Name      string //The label of the site in the structure file, i.e. "Fe1"
	Id        int
	Symbol    string
	Mass      float64
	Occupancy float64
}

// Atom methods

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	Newat := new(Atom)
	*Newat = *A
	return Newat
}

/*****Topology type***/

// Topology contains the information about a structure which is not expected to change in time
// (i.e. everything except for coordinates and per-site attributes)
type Topology struct {
	Atoms []*Atom
}

// NewTopology makes a topology with the given atoms, and returns it.
// The atoms are not copied.
func NewTopology(ats []*Atom) *Topology {
	top := new(Topology)
	top.Atoms = ats
	return top
}

/*Topology methods*/

// CopyAtoms returns a topology with copies of all the atoms in T
func (T *Topology) CopyAtoms() *Topology {
	Top := new(Topology)
	Top.Atoms = make([]*Atom, T.Len())
	for key, val := range T.Atoms {
		Top.Atoms[key] = val.Copy()
	}
	return Top
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// ResetIds sets the current order of atoms as Id (starting from 1).
func (T *Topology) ResetIds() {
	for key := range T.Atoms {
		T.Atoms[key].Id = key + 1
	}
}

// Symbols returns the chemical symbols of all atoms, in order.
func (T *Topology) Symbols() []string {
	ret := make([]string, 0, T.Len())
	for _, v := range T.Atoms {
		ret = append(ret, v.Symbol)
	}
	return ret
}

// Formula returns the chemical formula of the topology, with the symbols
// in order of first appearance, i.e. "Fe2" or "SrTiO3".
func (T *Topology) Formula() string {
	order := make([]string, 0, 4)
	count := make(map[string]int)
	for _, v := range T.Atoms {
		if _, ok := count[v.Symbol]; !ok {
			order = append(order, v.Symbol)
		}
		count[v.Symbol]++
	}
	var b strings.Builder
	for _, s := range order {
		b.WriteString(s)
		if count[s] > 1 {
			b.WriteString(fmt.Sprint(count[s]))
		}
	}
	return b.String()
}

// Masses returns a slice with the masses of all atoms, and an error if
// any of them has not been assigned.
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i := 0; i < T.Len(); i++ {
		thisatom := T.Atom(i)
		if thisatom.Mass == 0 {
			return nil, CError{fmt.Sprintf("Not all the masses have been obtained: %d %v", i, thisatom), []string{"Masses"}, true}
		}
		mass[i] = thisatom.Mass
	}
	return mass, nil
}

// AssignMasses sets the mass of every atom that doesn't have one from its symbol.
// It returns an error listing the symbols for which no mass is known.
func (T *Topology) AssignMasses() error {
	var unknown []string
	for _, v := range T.Atoms {
		if v.Mass != 0 {
			continue
		}
		m, ok := SymbolMass(v.Symbol)
		if !ok {
			unknown = append(unknown, v.Symbol)
			continue
		}
		v.Mass = m
	}
	if len(unknown) > 0 {
		return CError{fmt.Sprintf("No mass known for symbols: %v", unknown), []string{"AssignMasses"}, false}
	}
	return nil
}

// Errors

// CError (Concrete Error) is the concrete error type
// for the chem package, that implements chem.Error
type CError struct {
	msg      string
	deco     []string
	critical bool
}

func (err CError) Error() string { return err.msg }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err CError) Critical() bool { return err.critical }

// errDecorate is a helper function that decorates the error with the caller's
// name before returning it, if the error implements chem.Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}
