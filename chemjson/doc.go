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

// Package chemjson serializes phonon trajectories, and the settings to display them,
// as JSON. Its planned use is the communication of gophonon programs with viewers
// and other independent programs, which can be written in languages other than Go,
// for instance through UNIX pipes: each trajectory is written as one JSON document
// in a single line, so a stream of them can be read one line at a time.
package chemjson
