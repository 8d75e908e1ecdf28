/*
 * root.go, part of gophonon.
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

package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gophonon",
		Short: "gophonon animates the vibrational modes of crystal structures.",
		Long: `gophonon reads a structure in CIF format and an eigenvector (given as JSON or taken
from a phonopy band.yaml, mesh.yaml or qpoints.yaml file) and writes the trajectory
of the structure vibrating along it, with the movement of each site in every frame.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error), overrides the config")
	root.AddCommand(newAnimateCmd(), newInspectCmd(), newConfigCmd(), newVersionCmd())
	return root
}
