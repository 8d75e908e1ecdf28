/*
 * cif.go, part of gophonon.
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

// Package cif reads crystal structures from, and writes them to, files in the
// Crystallographic Information File (CIF) format.
//
// Only the first data block of a file is read. The unit cell, the atom_site loop
// (fractional or cartesian coordinates) and the symmetry operations are used;
// all the other items are ignored.
package cif

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	chem "github.com/rmera/gophonon"
	v3 "github.com/rmera/gophonon/v3"
)

// tolerance, in fractional units, to consider two positions the same.
const symprec = 1e-4

// a CIF data block
type block struct {
	name  string
	items map[string]token
	loops []*loop
}

type loop struct {
	tags []string
	rows [][]token
}

// col returns the column of the loop with the given tag, or -1
func (l *loop) col(tag string) int {
	for i, v := range l.tags {
		if v == tag {
			return i
		}
	}
	return -1
}

// findLoop returns the first loop in the block containing any of the given tags.
func (b *block) findLoop(tags ...string) *loop {
	for _, l := range b.loops {
		for _, t := range tags {
			if l.col(t) >= 0 {
				return l
			}
		}
	}
	return nil
}

func parse(toks []token) (*block, error) {
	b := &block{items: make(map[string]token)}
	started := false
	i := 0
	for i < len(toks) {
		t := toks[i]
		l := strings.ToLower(t.val)
		switch {
		case !t.quoted && strings.HasPrefix(l, "data_"):
			if started {
				return b, nil //only the first block is read
			}
			started = true
			b.name = t.val[len("data_"):]
			i++
		case !started:
			return nil, Error{fmt.Sprintf("Found '%s' before any data block", t.val), t.line, []string{"parse"}}
		case !t.quoted && l == "loop_":
			i++
			lp := new(loop)
			for i < len(toks) && toks[i].isTag() {
				lp.tags = append(lp.tags, strings.ToLower(toks[i].val))
				i++
			}
			if len(lp.tags) == 0 {
				return nil, Error{"loop_ without data names", t.line, []string{"parse"}}
			}
			vals := make([]token, 0, 4*len(lp.tags))
			for i < len(toks) && !toks[i].isTag() && !toks[i].isKeyword() {
				vals = append(vals, toks[i])
				i++
			}
			if len(vals)%len(lp.tags) != 0 {
				return nil, Error{fmt.Sprintf("loop_ with %d data names has %d values", len(lp.tags), len(vals)), t.line, []string{"parse"}}
			}
			for k := 0; k < len(vals); k += len(lp.tags) {
				lp.rows = append(lp.rows, vals[k:k+len(lp.tags)])
			}
			b.loops = append(b.loops, lp)
		case t.isTag():
			if i+1 >= len(toks) || toks[i+1].isTag() || toks[i+1].isKeyword() {
				return nil, Error{fmt.Sprintf("No value for %s", t.val), t.line, []string{"parse"}}
			}
			b.items[l] = toks[i+1]
			i += 2
		case t.isKeyword(): //save frames, global blocks. Nothing we need there.
			i++
		default:
			return nil, Error{fmt.Sprintf("Unexpected value '%s'", t.val), t.line, []string{"parse"}}
		}
	}
	if !started {
		return nil, Error{"No data block found", 0, []string{"parse"}}
	}
	return b, nil
}

// number parses a numeric CIF value, dropping the standard uncertainty, if present.
// It returns false if the value is unknown ('?') or inapplicable ('.').
func number(t token) (float64, bool, error) {
	v := t.val
	if !t.quoted && (v == "?" || v == ".") {
		return 0, false, nil
	}
	if k := strings.IndexByte(v, '('); k >= 0 {
		v = v[:k]
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, Error{fmt.Sprintf("Can't parse '%s' as a number", t.val), t.line, []string{"number"}}
	}
	return f, true, nil
}

// cell returns the unit cell of the block, or nil if the block has none.
func (b *block) cell() (*chem.Cell, error) {
	lengths := []string{"_cell_length_a", "_cell_length_b", "_cell_length_c"}
	angles := []string{"_cell_angle_alpha", "_cell_angle_beta", "_cell_angle_gamma"}
	var p [6]float64
	found := 0
	for i, k := range lengths {
		t, ok := b.items[k]
		if !ok {
			continue
		}
		v, known, err := number(t)
		if err != nil {
			return nil, errDecorate(err, "cell")
		}
		if known {
			p[i] = v
			found++
		}
	}
	if found == 0 {
		return nil, nil
	}
	if found != 3 {
		return nil, Error{"Incomplete cell lengths", 0, []string{"cell"}}
	}
	for i, k := range angles {
		p[i+3] = 90
		t, ok := b.items[k]
		if !ok {
			continue
		}
		v, known, err := number(t)
		if err != nil {
			return nil, errDecorate(err, "cell")
		}
		if known {
			p[i+3] = v
		}
	}
	c, err := chem.NewCell(p[0], p[1], p[2], p[3], p[4], p[5])
	if err != nil {
		return nil, Error{err.Error(), 0, []string{"chem.NewCell", "cell"}}
	}
	return c, nil
}

// symops returns the symmetry operations of the block, or just the identity
// if the block has none.
func (b *block) symops() ([]SymOp, error) {
	tags := []string{"_space_group_symop_operation_xyz", "_symmetry_equiv_pos_as_xyz"}
	l := b.findLoop(tags...)
	if l == nil {
		for _, t := range tags { //a single operation can also be given outside a loop
			if v, ok := b.items[t]; ok {
				op, err := ParseSymOp(v.val)
				if err != nil {
					return nil, Error{err.Error(), v.line, []string{"symops"}}
				}
				return []SymOp{op}, nil
			}
		}
		return []SymOp{Identity}, nil
	}
	c := l.col(tags[0])
	if c < 0 {
		c = l.col(tags[1])
	}
	ret := make([]SymOp, 0, len(l.rows))
	for _, row := range l.rows {
		op, err := ParseSymOp(row[c].val)
		if err != nil {
			return nil, Error{err.Error(), row[c].line, []string{"symops"}}
		}
		ret = append(ret, op)
	}
	return ret, nil
}

// a site as read from the file, before symmetry expansion.
type site struct {
	label  string
	symbol string
	pos    [3]float64
	occ    float64
}

// sites reads the atom_site loop. frac is true if the positions are fractional.
func (b *block) sites() (sites []site, frac bool, err error) {
	fr := []string{"_atom_site_fract_x", "_atom_site_fract_y", "_atom_site_fract_z"}
	ca := []string{"_atom_site_cartn_x", "_atom_site_cartn_y", "_atom_site_cartn_z"}
	l := b.findLoop(fr[0], ca[0])
	if l == nil {
		return nil, false, Error{"No atom_site loop with coordinates", 0, []string{"sites"}}
	}
	coordtags := fr
	frac = true
	if l.col(fr[0]) < 0 {
		coordtags = ca
		frac = false
	}
	var cols [3]int
	for i, t := range coordtags {
		cols[i] = l.col(t)
		if cols[i] < 0 {
			return nil, false, Error{"Missing coordinate " + t, 0, []string{"sites"}}
		}
	}
	lcol := l.col("_atom_site_label")
	scol := l.col("_atom_site_type_symbol")
	ocol := l.col("_atom_site_occupancy")
	if lcol < 0 && scol < 0 {
		return nil, false, Error{"atom_site loop has neither labels nor type symbols", 0, []string{"sites"}}
	}
	for n, row := range l.rows {
		var s site
		for i, c := range cols {
			v, known, err := number(row[c])
			if err != nil {
				return nil, false, errDecorate(err, "sites")
			}
			if !known {
				return nil, false, Error{fmt.Sprintf("Unknown coordinate for site %d", n+1), row[c].line, []string{"sites"}}
			}
			s.pos[i] = v
		}
		if lcol >= 0 {
			s.label = row[lcol].val
		}
		symsource := s.label
		if scol >= 0 {
			symsource = row[scol].val
		}
		s.symbol, err = symbolFrom(symsource)
		if err != nil {
			return nil, false, Error{err.Error(), row[0].line, []string{"sites"}}
		}
		if s.label == "" {
			s.label = fmt.Sprintf("%s%d", s.symbol, n+1)
		}
		s.occ = 1
		if ocol >= 0 {
			v, known, err := number(row[ocol])
			if err != nil {
				return nil, false, errDecorate(err, "sites")
			}
			if known {
				s.occ = v
			}
		}
		sites = append(sites, s)
	}
	if len(sites) == 0 {
		return nil, false, Error{"atom_site loop without sites", 0, []string{"sites"}}
	}
	return sites, frac, nil
}

// symbolFrom extracts the chemical symbol from a type symbol or label,
// like "Fe2+", "O1" or "Ca".
func symbolFrom(s string) (string, error) {
	end := 0
	for end < len(s) && end < 2 && (s[end] >= 'a' && s[end] <= 'z' || s[end] >= 'A' && s[end] <= 'Z') {
		end++
	}
	if end == 2 && chem.IsSymbol(s[:2]) {
		return chem.NormalizeSymbol(s[:2]), nil
	}
	if end >= 1 && chem.IsSymbol(s[:1]) {
		return chem.NormalizeSymbol(s[:1]), nil
	}
	return "", fmt.Errorf("Can't get a chemical symbol from '%s'", s)
}

// Read reads the first data block of a CIF and returns the structure in it, with the
// symmetry operations applied, or an error.
func Read(r io.Reader) (*chem.Structure, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	b, err := parse(toks)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	cell, err := b.cell()
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	sites, frac, err := b.sites()
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	if frac && cell == nil {
		return nil, Error{"Fractional coordinates but no cell", 0, []string{"Read"}}
	}
	ops, err := b.symops()
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	if cell == nil {
		// No way of applying symmetry without a cell, the positions are used as given
		return build(b.name, sites, nil)
	}
	if !frac {
		sites, err = toFrac(sites, cell)
		if err != nil {
			return nil, errDecorate(err, "Read")
		}
	}
	return build(b.name, expand(sites, ops), cell)
}

// ReadString reads a structure from the CIF in text.
func ReadString(text string) (*chem.Structure, error) {
	return Read(strings.NewReader(text))
}

// File reads a structure from the CIF file with the given name.
func File(name string) (*chem.Structure, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), 0, []string{"os.Open", "File"}}
	}
	defer f.Close()
	s, err := Read(f)
	if err != nil {
		return nil, errDecorate(err, "File")
	}
	return s, nil
}

func toFrac(sites []site, cell *chem.Cell) ([]site, error) {
	cart := v3.Zeros(len(sites))
	for i, s := range sites {
		copy(cart.RawRowView(i), s.pos[:])
	}
	fr, err := cell.CartToFrac(cart)
	if err != nil {
		return nil, Error{err.Error(), 0, []string{"toFrac"}}
	}
	for i := range sites {
		copy(sites[i].pos[:], fr.RawRowView(i))
	}
	return sites, nil
}

// expand applies all the symmetry operations to each site, and removes
// the duplicated positions. Positions are only wrapped into the cell if there is more
// than one operation.
func expand(sites []site, ops []SymOp) []site {
	if len(ops) == 1 && ops[0] == Identity {
		return sites
	}
	ret := make([]site, 0, len(sites)*len(ops))
	for _, s := range sites {
		mine := make([][3]float64, 0, len(ops))
		for _, op := range ops {
			p := op.Apply(s.pos)
			for i := range p {
				p[i] = wrap(p[i])
			}
			dup := false
			for _, q := range mine {
				if samePeriodic(p, q) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			mine = append(mine, p)
			n := s
			n.pos = p
			ret = append(ret, n)
		}
	}
	return ret
}

// build makes the structure. If cell is not nil, the positions in sites are fractional.
func build(name string, sites []site, cell *chem.Cell) (*chem.Structure, error) {
	atoms := make([]*chem.Atom, 0, len(sites))
	coords := v3.Zeros(len(sites))
	for i, s := range sites {
		at := &chem.Atom{Name: s.label, Symbol: s.symbol, Occupancy: s.occ}
		at.Mass, _ = chem.SymbolMass(s.symbol)
		atoms = append(atoms, at)
		copy(coords.RawRowView(i), s.pos[:])
	}
	if cell != nil {
		coords = cell.FracToCart(coords)
	}
	top := chem.NewTopology(atoms)
	top.ResetIds()
	S, err := chem.NewStructure(top, coords, cell)
	if err != nil {
		return nil, Error{err.Error(), 0, []string{"chem.NewStructure", "build"}}
	}
	S.Name = name
	return S, nil
}

// Errors

// Error is the error type for the cif package. It implements chem.Error.
type Error struct {
	message string
	line    int //line of the file where the problem was found, 0 if unknown
	deco    []string
}

func (err Error) Error() string {
	if err.line > 0 {
		return fmt.Sprintf("cif: line %d: %s", err.line, err.message)
	}
	return "cif: " + err.message
}

// Line returns the line of the input where the error was found, or 0 if unknown.
func (err Error) Line() int { return err.line }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// errDecorate decorates the error with the caller's name before returning it,
// if the error implements chem.Error.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(chem.Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}
