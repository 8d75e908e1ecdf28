/*
 * doc.go, part of gophonon.
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

// Package stf implements the simple trajectory format, a compressed text format for trajectories.
// stf aims to produce reasonably small files and to be very easy to read and write, so readers and
// writers can be easily implemented in other programing languages, while also being reasonably
// fast to write and, especially, to read. Phonon trajectories are stored with the chemical
// symbols, the amplitude and the number of frames in the header, so a reader can rebuild the
// animation without the original structure file.

/******************** Format Specification   ***************************************************

An STF file has the extension stf, and it is compressed with z-standard (zstd). Other compression
methods are chosen with the last letter of the extension: "stz" for gzip, "str" for raw deflate
and "stl" for lzw.

A STF file may only contain ASCII symbols.

A STF file has a "header" starting in the first line, and ending with a line that starts with the
characters "**" followed by one or more spaces, and the number of atoms per frame.

Each line of the header must be a pair key=value. The precision (an integer greater than 0,
see below) must be included in the header, with the corresponding key "prec", for instance:

prec=2

Phonon trajectories also carry the keys "symbols" (the chemical symbols of all sites, separated
by commas), "amplitude" and "frames".

After the header, the file has one line per atom, per frame. Each line contains 3 integers,
the x y and z cartesian coordinates in Angstrom, multiplied by 10 to the power of the precision
and rounded.

Each frame ends with a line starting with the character "*" (no whitespaces before), optionally
followed by one or more whitespace and 9 floating-point numbers separated by spaces. If present,
these numbers are the three vectors defining the cell, in Angstrom.

The "**" sequence may only be used as a header termination, as described above and can not appear
anywhere else in the file.

***************************************************************************************************/

package stf
