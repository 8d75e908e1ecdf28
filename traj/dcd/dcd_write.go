/*
 * dcd_write.go, part of gophonon.
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

package dcd

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
)

// Container for an Charmm/NAMD binary trajectory file
// opened for writing
type DCDWObj struct {
	natoms    int32
	writable  bool //Is it ready to be written on
	filename  string
	cell      bool //are unit cells written?
	frames    int32
	dcd       *os.File //The DCD file
	dcdFields [][]float32
	endian    binary.ByteOrder
}

// NewWriter initializes a DCD trajectory for writing frames of natoms atoms.
// If cell is given and true, each frame will include the unit cell, so WNext will
// require a box.
func NewWriter(filename string, natoms int, cell ...bool) (*DCDWObj, error) {
	traj := new(DCDWObj)
	traj.natoms = int32(natoms)
	traj.filename = filename
	traj.cell = len(cell) > 0 && cell[0]
	if err := traj.initWrite(filename); err != nil {
		if traj.dcd != nil {
			traj.dcd.Close()
		}
		return nil, errDecorate(err, "NewWriter")
	}
	return traj, nil
}

// Close closes the file. The object can't be used after this call.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	if err := D.dcd.Close(); err != nil {
		return Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames written so far.
func (D *DCDWObj) Frames() int {
	return int(D.frames)
}

// initWrite writes the header. The number of frames is updated after every frame.
// Only little endian, charmm, files without fixed atoms are written.
func (D *DCDWObj) initWrite(name string) error {
	wrapbinerr := func(err error) error {
		return Error{err.Error(), D.filename, []string{"binary.Write", "initWrite"}, true}
	}
	if D.natoms <= 0 {
		return Error{"The number of atoms must be positive", D.filename, []string{"initWrite"}, true}
	}
	D.endian = binary.LittleEndian
	var err error
	D.dcd, err = os.Create(name)
	if err != nil {
		return Error{err.Error(), D.filename, []string{"os.Create", "initWrite"}, true}
	}
	hascell := int32(0)
	if D.cell {
		hascell = 1
	}
	// The header block: size, magic number and the 20 control integers
	header := []interface{}{
		int32(84),
		[]byte("CORD"),
		int32(0), //frames in the file, updated after every write.
		int32(0), //initial time step
		int32(1), //step interval (nsavc)
		[5]int32{},
		int32(0), //fixed atoms
		float32(1), //time step
		hascell,
		[8]int32{},
		int32(24), //charmm version
		int32(84),
	}
	for _, v := range header {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return wrapbinerr(err)
		}
	}
	// The title block, 2 lines.
	var ntitle int32 = 2
	title := make([]byte, ntitle*mAXTITLE)
	for j := range title {
		title[j] = ' '
	}
	copy(title, "Created by gophonon")
	copy(title[mAXTITLE:], "Vibrational mode animation")
	titleblock := []interface{}{4 + ntitle*mAXTITLE, ntitle, title, 4 + ntitle*mAXTITLE}
	for _, v := range titleblock {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return wrapbinerr(err)
		}
	}
	// ok, this is important, the number of atoms in each snapshot
	for _, v := range []int32{4, D.natoms, 4} {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return wrapbinerr(err)
		}
	}
	D.writable = true
	return nil
}

// WNext writes the next frame to the trajectory. If the trajectory was created with cells,
// box must be given, with the three lattice vectors, one after the other.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return Error{"Coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	if D.cell {
		if len(box) == 0 || len(box[0]) < 9 {
			return Error{"This trajectory needs a box for each frame", D.filename, []string{"WNext"}, true}
		}
		if err := D.writeCell(box[0]); err != nil {
			return errDecorate(err, "WNext")
		}
	}
	if D.dcdFields == nil {
		D.dcdFields = make([][]float32, 3)
		for i := range D.dcdFields {
			D.dcdFields[i] = make([]float32, int(D.natoms))
		}
	}
	// This is easier to write to the dcd
	for i := 0; i < int(D.natoms); i++ {
		D.dcdFields[0][i] = float32(towrite.At(i, 0))
		D.dcdFields[1][i] = float32(towrite.At(i, 1))
		D.dcdFields[2][i] = float32(towrite.At(i, 2))
	}
	if err := D.wnextRaw(D.dcdFields); err != nil {
		return errDecorate(err, "WNext")
	}
	D.frames++
	return errDecorate(D.updateFrames(), "WNext")
}

// writeCell writes the unit cell from the lattice vectors in box, in the order CHARMM uses:
// a, gamma, b, beta, alpha, c.
func (D *DCDWObj) writeCell(box []float64) error {
	norm := func(i int) float64 {
		return math.Sqrt(box[3*i]*box[3*i] + box[3*i+1]*box[3*i+1] + box[3*i+2]*box[3*i+2])
	}
	angle := func(i, j int) float64 {
		dot := box[3*i]*box[3*j] + box[3*i+1]*box[3*j+1] + box[3*i+2]*box[3*j+2]
		return chem.Rad2Deg(math.Acos(math.Max(-1, math.Min(1, dot/(norm(i)*norm(j))))))
	}
	a, b, c := norm(0), norm(1), norm(2)
	if a == 0 || b == 0 || c == 0 {
		return Error{"Degenerate box", D.filename, []string{"writeCell"}, true}
	}
	cell := [6]float64{a, angle(0, 1), b, angle(0, 2), angle(1, 2), c}
	for _, v := range []interface{}{int32(48), cell, int32(48)} {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "writeCell"}, true}
		}
	}
	return nil
}

// wnextRaw writes the x, y and z blocks of a frame.
func (D *DCDWObj) wnextRaw(blocks [][]float32) error {
	if len(blocks[0]) != int(D.natoms) || len(blocks[1]) != int(D.natoms) || len(blocks[2]) != int(D.natoms) {
		return Error{NotEnoughSpace, D.filename, []string{"wnextRaw"}, true}
	}
	for _, b := range blocks {
		if err := D.writeFloat32Block(b); err != nil {
			return errDecorate(err, "wnextRaw")
		}
	}
	return nil
}

// Writes a block of float32s to the file, with its size before and after it.
func (D *DCDWObj) writeFloat32Block(block []float32) error {
	var blocksize int32 = int32(len(block)) * 4
	for _, v := range []interface{}{blocksize, block, blocksize} {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "writeFloat32Block"}, true}
		}
	}
	return nil
}

// DCD requires the number of frames at the begining.
func (D *DCDWObj) updateFrames() error {
	currentoffset, err := D.dcd.Seek(0, io.SeekCurrent) //we'll need it to go back
	if err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	// the frame count goes right after the block size and the magic number.
	if _, err = D.dcd.Seek(8, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	if err := binary.Write(D.dcd, D.endian, D.frames); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Write", "updateFrames"}, true}
	}
	if _, err = D.dcd.Seek(currentoffset, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	return nil
}

// WriteTrajectory writes all the frames of traj, with their unit cells if they have one,
// to the file name, and returns the number of frames written.
func WriteTrajectory(name string, traj *mode.Trajectory) (int, error) {
	hascell := traj.NFrames() > 0 && traj.Frame(0).Cell != nil
	W, err := NewWriter(name, traj.Len(), hascell)
	if err != nil {
		return 0, errDecorate(err, "WriteTrajectory")
	}
	n, err := chem.CopyTraj(W, traj.Reader())
	if err != nil {
		W.Close()
		return n, errDecorate(err, "WriteTrajectory")
	}
	if err := W.Close(); err != nil {
		return n, errDecorate(err, "WriteTrajectory")
	}
	return n, nil
}
