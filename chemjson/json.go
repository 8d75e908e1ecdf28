/*
 * json.go, part of gophonon.
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

package chemjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
	"github.com/rmera/gophonon/viewer"
)

// Frame is a ready-to-serialize container for one snapshot of a trajectory.
type Frame struct {
	Phase     float64     `json:"phase"`
	Positions [][]float64 `json:"positions"`
	Movement  [][]float64 `json:"movement"`
}

// Document is a ready-to-serialize container for a whole trajectory and its display settings.
type Document struct {
	Scene     *viewer.Scene `json:"scene,omitempty"`
	Name      string        `json:"name,omitempty"`
	Symbols   []string      `json:"symbols"`
	Labels    []string      `json:"labels"`
	Cell      []float64     `json:"cell,omitempty"` //lattice vectors, a, b and c, one after the other
	Amplitude float64       `json:"amplitude"`
	Scale     float64       `json:"scale"`
	Frames    []Frame       `json:"frames"`
}

// An easily JSON-serializable error type,
type Error struct {
	deco     []string
	IsError  bool //If this is false (no error) all the other fields will be at their zero-values.
	InInput  bool //If error, was it in reading the input?
	InOutput bool //was it in preparing the output?
	Frame    int  //Which frame, -1 if it doesn't apply
	Function string
	Message  string
}

// Error implements the error interface
func (J *Error) Error() string {
	return J.Message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (J *Error) Decorate(dec string) []string {
	if dec == "" {
		return J.deco
	}
	J.deco = append(J.deco, dec)
	return J.deco
}

// Serializes the error. Panics on failure.
func (J *Error) Marshal() []byte {
	ret, err2 := json.Marshal(J)
	if err2 != nil {
		panic(strings.Join([]string{J.Error(), err2.Error()}, " - "))
	}
	return ret
}

// Takes an error and some additional info to create a json-marshal-ble error
func NewError(where, function string, frame int, err error) *Error {
	jerr := new(Error)
	jerr.IsError = true
	switch where {
	case "input":
		jerr.InInput = true
	default:
		jerr.InOutput = true
	}
	jerr.Frame = frame
	jerr.Function = function
	jerr.Message = err.Error()
	return jerr
}

// NewDocument puts the trajectory and scene (which can be nil) in a Document.
func NewDocument(traj *mode.Trajectory, scene *viewer.Scene) (*Document, *Error) {
	const funcname = "NewDocument"
	if traj == nil || traj.NFrames() == 0 {
		return nil, NewError("output", funcname, -1, fmt.Errorf("empty trajectory"))
	}
	D := &Document{Amplitude: traj.Amplitude(), Scale: traj.Scale(), Frames: make([]Frame, 0, traj.NFrames())}
	if scene != nil {
		D.Scene = scene.Copy()
	}
	first := traj.Frame(0)
	D.Name = first.Name
	for i := 0; i < first.Len(); i++ {
		D.Symbols = append(D.Symbols, first.Atom(i).Symbol)
		D.Labels = append(D.Labels, first.Atom(i).Name)
	}
	D.Cell = first.Box()
	for i := 0; i < traj.NFrames(); i++ {
		mov := traj.Movement(i)
		if mov == nil {
			return nil, NewError("output", funcname, i, fmt.Errorf("frame without %s attribute", mode.MovementAttribute))
		}
		D.Frames = append(D.Frames, Frame{Phase: traj.Phase(i), Positions: traj.Frame(i).Coords.Rows(), Movement: mov.Rows()})
	}
	return D, nil
}

// EncodeTrajectory writes the trajectory and the scene (which can be nil) to out as one JSON document,
// followed by a newline.
func EncodeTrajectory(out io.Writer, traj *mode.Trajectory, scene *viewer.Scene) *Error {
	D, err := NewDocument(traj, scene)
	if err != nil {
		err.Decorate("EncodeTrajectory")
		return err
	}
	return D.Send(out)
}

// Send Marshals the document and writes it to out, returns an error or nil
func (D *Document) Send(out io.Writer) *Error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(D); err != nil {
		return NewError("output", "Document.Send", -1, err)
	}
	return nil
}

// DecodeTrajectory reads one line from stream and decodes the trajectory document in it.
// Successive calls on the same stream read successive documents. It returns io.EOF
// as the message of the error when the stream has no more documents.
func DecodeTrajectory(stream *bufio.Reader) (*Document, *Error) {
	const funcname = "DecodeTrajectory"
	line, err := stream.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(strings.TrimSpace(string(line))) == 0) {
		return nil, NewError("input", funcname, -1, err)
	}
	D := new(Document)
	if err := json.Unmarshal(line, D); err != nil {
		return nil, NewError("input", funcname, -1, err)
	}
	if err := D.check(); err != nil {
		err.Decorate(funcname)
		return nil, err
	}
	return D, nil
}

// check verifies that all the frames have one position and one movement vector per site.
func (D *Document) check() *Error {
	n := len(D.Symbols)
	if len(D.Labels) != n {
		return NewError("input", "check", -1, fmt.Errorf("%d labels for %d symbols", len(D.Labels), n))
	}
	if len(D.Cell) != 0 && len(D.Cell) != 9 {
		return NewError("input", "check", -1, fmt.Errorf("cell with %d numbers", len(D.Cell)))
	}
	for i, f := range D.Frames {
		if len(f.Positions) != n || len(f.Movement) != n {
			return NewError("input", "check", i, fmt.Errorf("%d positions and %d movement vectors for %d sites", len(f.Positions), len(f.Movement), n))
		}
		for j := range f.Positions {
			if len(f.Positions[j]) != 3 || len(f.Movement[j]) != 3 {
				return NewError("input", "check", i, fmt.Errorf("site %d doesn't have 3D vectors", j))
			}
		}
	}
	return nil
}

// Structure builds the ith frame of the document as a structure, with the movement of each
// site attached as the mode.MovementAttribute attribute. It panics if i is out of range.
func (D *Document) Structure(i int) (*chem.Structure, *Error) {
	const funcname = "Document.Structure"
	f := D.Frames[i]
	atoms := make([]*chem.Atom, 0, len(D.Symbols))
	for j, s := range D.Symbols {
		at := &chem.Atom{Name: D.Labels[j], Symbol: s, Occupancy: 1}
		at.Mass, _ = chem.SymbolMass(s)
		atoms = append(atoms, at)
	}
	top := chem.NewTopology(atoms)
	top.ResetIds()
	coords, err := v3.FromRows(f.Positions)
	if err != nil {
		return nil, NewError("input", funcname, i, err)
	}
	mov, err := v3.FromRows(f.Movement)
	if err != nil {
		return nil, NewError("input", funcname, i, err)
	}
	var cell *chem.Cell
	if len(D.Cell) == 9 {
		cell, err = cellFromBox(D.Cell)
		if err != nil {
			return nil, NewError("input", funcname, i, err)
		}
	}
	S, err := chem.NewStructure(top, coords, cell)
	if err != nil {
		return nil, NewError("input", funcname, i, err)
	}
	S.Name = D.Name
	if err := S.SetAttribute(mode.MovementAttribute, mov); err != nil {
		return nil, NewError("input", funcname, i, err)
	}
	return S, nil
}

// cellFromBox recovers the cell parameters from the three lattice vectors.
func cellFromBox(box []float64) (*chem.Cell, error) {
	lat, err := v3.NewMatrix(box)
	if err != nil {
		return nil, err
	}
	a, b, c := lat.VecNorm(0), lat.VecNorm(1), lat.VecNorm(2)
	angle := func(i, j int, ni, nj float64) float64 {
		dot := 0.0
		for k := 0; k < 3; k++ {
			dot += lat.At(i, k) * lat.At(j, k)
		}
		return chem.Rad2Deg(math.Acos(math.Max(-1, math.Min(1, dot/(ni*nj)))))
	}
	return chem.NewCell(a, b, c, angle(1, 2, b, c), angle(0, 2, a, c), angle(0, 1, a, b))
}

// Sink writes each trajectory it is shown to an io.Writer as a JSON document.
// It implements viewer.Sink.
type Sink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSink returns a Sink that writes to out.
func NewSink(out io.Writer) *Sink {
	return &Sink{out: out}
}

// Show writes the trajectory and scene as one line of JSON.
func (S *Sink) Show(traj *mode.Trajectory, scene *viewer.Scene) error {
	S.mu.Lock()
	defer S.mu.Unlock()
	if err := EncodeTrajectory(S.out, traj, scene); err != nil {
		err.Decorate("Sink.Show")
		return err
	}
	return nil
}

var _ viewer.Sink = (*Sink)(nil)
