/*
 * inspect.go, part of gophonon.
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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/mode"
)

func newInspectCmd() *cobra.Command {
	var cifName, phonopyName string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "inspect prints the structure in a CIF file and the modes in a phonopy file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cifName == "" && phonopyName == "" {
				return errors.New("nothing to inspect, give --cif and/or --phonopy")
			}
			w := cmd.OutOrStdout()
			if cifName != "" {
				S, err := readStructure(cifName)
				if err != nil {
					return err
				}
				printStructure(w, S)
			}
			if phonopyName != "" {
				f, err := os.Open(phonopyName)
				if err != nil {
					return errors.Wrap(err, "opening phonopy file")
				}
				defer f.Close()
				P, err := mode.ReadPhonopy(f)
				if err != nil {
					return errors.Wrapf(err, "reading %s", phonopyName)
				}
				printModes(w, P)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cifName, "cif", "", "structure file, in CIF format")
	cmd.Flags().StringVar(&phonopyName, "phonopy", "", "phonopy band.yaml, mesh.yaml or qpoints.yaml file")
	return cmd
}

func printStructure(w io.Writer, S *chem.Structure) {
	fmt.Fprintf(w, "Structure %s: %s, %d sites\n", lo.Ternary(S.Name == "", "(unnamed)", S.Name), S.Formula(), S.Len())
	fmt.Fprintf(w, "Elements: %s\n", strings.Join(lo.Uniq(S.Symbols()), " "))
	coords := S.Coords
	kind := "cartesian"
	if S.Cell != nil {
		fmt.Fprintf(w, "Cell: %s (volume %.4f)\n", S.Cell, S.Cell.Volume())
		if frac, err := S.FracCoords(); err == nil {
			coords, kind = frac, "fractional"
		}
	}
	fmt.Fprintf(w, "%-8s %-4s %10s %10s %10s  (%s)\n", "label", "sym", "x", "y", "z", kind)
	for i := 0; i < S.Len(); i++ {
		at := S.Atom(i)
		fmt.Fprintf(w, "%-8s %-4s %10.5f %10.5f %10.5f\n", at.Name, at.Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
	}
}

func printModes(w io.Writer, P *mode.PhonopyModes) {
	fmt.Fprintf(w, "Phonopy modes: %d sites (%s), %d q-points\n", P.NAtoms(), strings.Join(P.Symbols, " "), P.NQPoints())
	for q := 0; q < P.NQPoints(); q++ {
		pos := P.QPosition(q)
		freqs := lo.Map(P.Frequencies(q), func(f float64, _ int) string { return fmt.Sprintf("%.4f", f) })
		fmt.Fprintf(w, "q %d (%.4f %.4f %.4f): %d bands: %s\n", q, pos[0], pos[1], pos[2], P.NBands(q), strings.Join(freqs, " "))
	}
}
