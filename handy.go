/*
 * handy.go, part of gophonon.
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
	"math"

	v3 "github.com/rmera/gophonon/v3"
)

// Deg2Rad converts degrees to radians
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

// Rad2Deg converts radians to degrees
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

// CopyTraj reads every frame of the trajectory src and writes it to dst,
// returning the number of frames copied. The box of each frame is passed along.
// It stops without error when src signals its last frame.
func CopyTraj(dst TrajWriter, src Traj) (int, error) {
	if src.Len() != dst.Len() {
		return 0, CError{"Source and destination trajectories have different number of atoms", []string{"CopyTraj"}, true}
	}
	coords := v3.Zeros(src.Len())
	box := make([]float64, 9)
	i := 0
	for ; ; i++ {
		for j := range box {
			box[j] = 0
		}
		err := src.Next(coords, box)
		if err != nil {
			if _, ok := err.(LastFrameError); ok {
				break
			}
			return i, errDecorate(err, "CopyTraj")
		}
		if isZero(box) {
			err = dst.WNext(coords)
		} else {
			err = dst.WNext(coords, box)
		}
		if err != nil {
			return i, errDecorate(err, "CopyTraj")
		}
	}
	return i, nil
}

func isZero(f []float64) bool {
	for _, v := range f {
		if v != 0 {
			return false
		}
	}
	return true
}
