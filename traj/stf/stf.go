/*
 * stf.go, part of gophonon.
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

package stf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
)

const (
	lzwLitwidth  int = 8
	defaultPrec  int = 2
	defaultLevel int = 11
)

// Write!
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
	prec      int
	frames    int
}

// Close flushes the compressed stream and closes the file. The handle can't be used after this.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.h.Close()
	err2 := S.f.Close()
	if err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// Frames returns the number of frames written so far.
func (S *StfW) Frames() int {
	return S.frames
}

// WNext writes coord as the next frame. If a box of at least 9 elements is given, it
// is written as the cell of the frame.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	v := coord.NVecs()
	if v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	var temp [3]int
	var floats [3]float64
	var b strings.Builder
	for i := 0; i < v; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		b.WriteString(coordsEncode(floats, temp, S.prec))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		c := box[0]
		fmt.Fprintf(&b, "* %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f %.6f\n", c[0], c[1], c[2], c[3], c[4], c[5], c[6], c[7], c[8])
	} else {
		b.WriteString("*\n")
	}
	if _, err := io.WriteString(S.h, b.String()); err != nil {
		return Error{err.Error(), S.filename, []string{"WNext"}, true}
	}
	S.frames++
	return nil
}

// NewWriter creates the file name and returns a handle to write natoms-atoms frames to it.
// The header pairs are written sorted by key. The "prec" key, if present, sets the precision,
// otherwise it is set to the default, 2. The compression is chosen from the last letter of the name,
// and compressionLevel, if given, sets its level.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := defaultLevel
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if natoms < 1 {
		return nil, Error{fmt.Sprintf("Can't write frames of %d atoms", natoms), name, []string{"NewWriter"}, true}
	}
	S := new(StfW)
	S.filename = name
	S.prec = defaultPrec
	if p, ok := header["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision %q for trajectory %s. Will use the default", p, S.filename)
		}
	}
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	flevel := level
	if flevel > flate.BestCompression {
		flevel = flate.BestCompression
	}
	zwriter := func(a io.Writer) (io.WriteCloser, error) { return flate.NewWriter(a, flevel) }
	gzipwriter := func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, flevel) }
	zstdwriter := func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}
	var AnyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return lzw.NewWriter(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		AnyNewWriter = gzipwriter
	case 'r':
		AnyNewWriter = zwriter
	default:
		AnyNewWriter = zstdwriter
	}
	S.h, err = AnyNewWriter(S.f)
	if err != nil {
		S.f.Close()
		return nil, Error{"Can't start compression " + err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	S.natoms = natoms
	S.writeable = true
	h := make(map[string]string, len(header)+1)
	for k, v := range header {
		h[k] = v
	}
	h["prec"] = strconv.Itoa(S.prec)
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var hs strings.Builder
	for _, k := range keys {
		if k == "" || strings.Contains(k, "=") || strings.Contains(k+h[k], "\n") || strings.Contains(k+h[k], "**") {
			S.Close()
			return nil, Error{fmt.Sprintf("Invalid header pair %q=%q", k, h[k]), S.filename, []string{"NewWriter"}, true}
		}
		fmt.Fprintf(&hs, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(&hs, "** %d\n", S.natoms)
	if _, err := io.WriteString(S.h, hs.String()); err != nil {
		S.Close()
		return nil, Error{err.Error(), S.filename, []string{"NewWriter"}, true}
	}
	return S, nil
}

// Header returns the header for a phonon trajectory: the precision, the symbols of
// all sites, the amplitude and the number of frames.
func Header(traj *mode.Trajectory, prec int) map[string]string {
	h := map[string]string{
		"prec":      strconv.Itoa(prec),
		"amplitude": strconv.FormatFloat(traj.Amplitude(), 'g', -1, 64),
		"frames":    strconv.Itoa(traj.NFrames()),
	}
	if traj.NFrames() > 0 {
		h["symbols"] = strings.Join(traj.Frame(0).Symbols(), ",")
	}
	return h
}

// WriteTrajectory writes all the frames of the phonon trajectory traj, with their cells, to the
// file name, with the given precision, and returns the number of frames written.
// traj itself is only read, through its own Reader.
func WriteTrajectory(name string, traj *mode.Trajectory, prec int, compressionLevel ...int) (int, error) {
	W, err := NewWriter(name, traj.Len(), Header(traj, prec), compressionLevel...)
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

// Read!
type StfR struct {
	f        *os.File
	lzw      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

// *zstd.Decoder doesn't implement io.ReadCloser, as its Close returns nothing.
type stdql struct {
	*zstd.Decoder
}

// Close Closes the object. It can not be used after this call
func (s stdql) Close() error {
	s.Decoder.Close()
	return nil
}

func coordsEncode(f [3]float64, temp [3]int, prec int) string {
	p := 100.0
	if prec > 0 && prec != 2 { //2 is the default, so we do nothing in that case
		p = math.Pow(10.0, float64(prec))
	}
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the metadata (empty if the file has no header pairs)
// and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	S := new(StfR)
	S.natoms = -1 //just so we know if things don't work
	S.prec = defaultPrec
	m := make(map[string]string)
	var err error
	S.filename = name
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	var AnyNewReader func(io.Reader) (io.ReadCloser, error)
	zreader := func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	zstdreader := func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return stdql{r}, nil
	}
	gzreader := func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		AnyNewReader = func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		AnyNewReader = gzreader
	case 'r':
		AnyNewReader = zreader
	default:
		AnyNewReader = zstdreader
	}
	S.lzw, err = AnyNewReader(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.lzw)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, Error{"Can't read header " + err.Error(), S.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), S.filename, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil {
				S.close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s': %s", nat[1], err.Error()), S.filename, []string{"New"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, Error{"Malformed header line: " + str, S.filename, []string{"New"}, true}
		}
		m[k] = v
	}
	S.readable = true
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			S.prec = prec
		} else {
			log.Printf("Invalid precision for trajectory %s. Will assume the default", S.filename)
		}
	}
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := 100.0
	if prec > 0 && prec != 2 { //2 is the default, so we can save the operation
		p = math.Pow(10.0, float64(prec))
	}
	s := strings.Fields(str)
	if len(s) < 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too few fields: %s", str)
	}
	if len(s) > 3 {
		return fmt.Errorf("Ill formated coordinates line in stf: Too many fields: %s", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s). Error: %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in the given matrix (c) the coordinates for the next frame of the trajectory
// and, if given, and the information is present, puts the box vector information in box
// Returns error if the operation is not successful. If the error implements chem.LastFrameError,
// the end of the trajectory has been reached, not an actual error.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			// EOF is only fine before the first atom of a frame.
			if err == io.EOF && i == 0 && b == "" {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{"Truncated frame: " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if strings.HasPrefix(b, "*") {
			return Error{fmt.Sprintf("Frame with %d atoms, %d expected", i, S.natoms), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(b, &temp, S.prec); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue //We ignore this whole frame, reading the content but not saving it.
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(err == io.EOF && s != "") {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if !strings.HasPrefix(s, "*") {
		return Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		fields := strings.Fields(s)
		if len(fields) >= 10 { // The "*" and the 9 numbers
			var errbox error
			for j, v := range fields[1:10] {
				box[0][j], errbox = strconv.ParseFloat(v, 64)
				if errbox != nil {
					break
				}
			}
			// If we got an error reading any of the values, we just set the whole thing to zero
			// and log, no error returned.
			if errbox != nil {
				log.Printf("Failed to read box in a frame from %s", S.filename)
				for i := range box[0] {
					box[0][i] = 0.0
				}
			}
		} else {
			log.Printf("Trajectory file %s does not contain (correct) box information: %s", S.filename, fields)
		}
	}
	return nil
}

func (S *StfR) close() {
	if S.lzw != nil {
		S.lzw.Close()
	}
	S.f.Close()
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.close()
	S.readable = false
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

// NextConc takes a slice of matrices and reads as many frames as elements the list has
// from the trajectory. The frames are discarded if the corresponding element of the slice
// is nil. The function returns a slice of channels, through each of which
// the corresponding matrix will be transmitted.
func (S *StfR) NextConc(frames []*v3.Matrix) ([]chan *v3.Matrix, error) {
	if !S.Readable() {
		return nil, Error{TrajUnIniRead, S.filename, []string{"NextConc"}, true}
	}
	framechans := make([]chan *v3.Matrix, len(frames)) //the slice of chans that will be returned
	for key, v := range frames {
		if err := S.Next(v); err != nil {
			return nil, errDecorate(err, "NextConc")
		}
		framechans[key] = make(chan *v3.Matrix)
		go func(keep *v3.Matrix, pipe chan *v3.Matrix) {
			pipe <- keep
		}(v, framechans[key])
	}
	return framechans, nil
}

// Symbols returns the chemical symbols in the header of a phonon trajectory, or nil if
// there are none.
func Symbols(header map[string]string) []string {
	s, ok := header["symbols"]
	if !ok || s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Errors

// errDecorate is a helper function that asserts that the error is
// implements chem.Error and decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(chem.Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}

// Error is the general structure for STF trajectory errors. It fullfills  chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	// Even thought this method does not use a pointer as a receiver, and tries to alter the received,
	// it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Filename returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "stf") associated to the error
func (err Error) Format() string { return "stf" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	NilCoordinates = "Given nil coordinates"
)

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// lastFrameError does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "stf" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
