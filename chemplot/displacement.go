/*
 * displacement.go, part of gophonon.
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

// Package chemplot plots how much each site moves along a vibrational mode trajectory,
// either to an image file or as text for a terminal.
package chemplot

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/guptarohit/asciigraph"
	"github.com/rmera/gophonon/mode"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Displacements returns, for each site of traj, the length of its displacement from
// the equilibrium position in each frame. The length takes the sign of the sine of
// the phase of the frame, so a site that moves back and forth traces a sine curve.
// The first index is the site, the second the frame.
func Displacements(traj *mode.Trajectory) [][]float64 {
	if traj == nil || traj.NFrames() == 0 {
		return nil
	}
	ret := make([][]float64, traj.Len())
	for j := range ret {
		ret[j] = make([]float64, traj.NFrames())
	}
	for i := 0; i < traj.NFrames(); i++ {
		mov := traj.Movement(i)
		if mov == nil {
			continue
		}
		sign := math.Sin(traj.Phase(i))
		for j := range ret {
			ret[j][i] = math.Copysign(mov.VecNorm(j)*traj.Scale(), sign)
		}
	}
	return ret
}

// PlotDisplacements plots the displacement of every site along the frames of traj, and saves the
// plot to filename. The format is taken from the extension of filename; PNG is used if there is none.
func PlotDisplacements(traj *mode.Trajectory, title, filename string) error {
	data := Displacements(traj)
	if data == nil {
		return fmt.Errorf("chemplot: empty trajectory")
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Displacement (A)"
	p.Add(plotter.NewGrid())
	first := traj.Frame(0)
	for j, d := range data {
		pts := make(plotter.XYs, len(d))
		for i, v := range d {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.LineStyle.Color = plotutil.Color(j)
		l.LineStyle.Dashes = plotutil.Dashes(j)
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(first.Atom(j).Name, l)
	}
	p.Legend.Top = true
	if filepath.Ext(filename) == "" {
		filename += ".png"
	}
	// here I  intentionally shadow err.
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return err
	}
	return nil
}

// ASCIIDisplacements returns a text plot, height lines tall, of the displacement of every
// site along the frames of traj. It returns an empty string for an empty trajectory.
func ASCIIDisplacements(traj *mode.Trajectory, height int) string {
	data := Displacements(traj)
	if data == nil {
		return ""
	}
	if height < 1 {
		height = 10
	}
	colors := make([]asciigraph.AnsiColor, len(data))
	for j := range colors {
		colors[j] = palette[j%len(palette)]
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("Displacement (A) of %d sites over %d frames", len(data), traj.NFrames())))
}

var palette = []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Yellow, asciigraph.Magenta, asciigraph.Cyan}
