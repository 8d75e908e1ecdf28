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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package chem is the main package of the gophonon library. It provides the site, topology,
cell and structure types, and the interfaces shared by the trajectory readers and writers.

	**gophonon Capabilities**

    Reads crystal structures from CIF files, expanding the symmetry operations
	given in the file (see the cif package).

    Reads phonon eigenvectors either as a JSON nested array or from phonopy
	band.yaml/mesh.yaml/qpoints.yaml files (see the mode package).

    Generates the trajectory of a phonon mode: one period of the oscillation of
	every site along its eigenvector, sampled in a given number of frames
	(see the mode package).

    Writes those trajectories as JSON documents for web viewers, extended XYZ,
	STF and DCD files, and plots the displacement of every site along the trajectory.

    Keeps a long-lived viewer session that regenerates the trajectory whenever
	one of its inputs changes and hands it to a viewer sink (see the viewer package).

Structures store their cartesian coordinates in a v3.Matrix (one row per site) and can carry
named per-site vector attributes, such as the "movement" of each site in a phonon trajectory.*/
package chem
