/*
 * errors.go, part of gophonon.
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

	chem "github.com/rmera/gophonon"
)

// Error is the general error type for the mode package. It implements chem.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return "mode: " + err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// ShapeError is returned when a set of eigenvectors doesn't have the shape
// required, one 3D vector per site.
type ShapeError struct {
	Row      int //row with the wrong number of components, or -1 if the number of rows is wrong
	Rows     int
	Cols     int
	WantRows int //0 if any number of rows is fine
	WantCols int
	deco     []string
}

func (err *ShapeError) Error() string {
	if err.Row >= 0 {
		return fmt.Sprintf("mode: eigenvector %d has %d components, expected %d", err.Row, err.Cols, err.WantCols)
	}
	if err.WantRows == 0 {
		return fmt.Sprintf("mode: need at least one eigenvector, got %d", err.Rows)
	}
	return fmt.Sprintf("mode: got %d eigenvectors for %d sites", err.Rows, err.WantRows)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *ShapeError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// Critical always returns true, a trajectory can't be built from eigenvectors with the wrong shape.
func (err *ShapeError) Critical() bool { return true }

// lastFrameError signals the end of a Trajectory. It implements chem.LastFrameError.
type lastFrameError struct {
	deco []string
}

func (err lastFrameError) Error() string { return "mode: no more frames" }

func (err lastFrameError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

func (err lastFrameError) Critical() bool               { return false }
func (err lastFrameError) FileName() string             { return "" }
func (err lastFrameError) Format() string               { return "phonon" }
func (err lastFrameError) NormalLastFrameTermination() {}

var _ chem.LastFrameError = lastFrameError{}

func errDecorate(err error, caller string) error {
	if err2, ok := err.(chem.Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}
