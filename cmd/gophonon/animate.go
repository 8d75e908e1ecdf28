/*
 * animate.go, part of gophonon.
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
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	chem "github.com/rmera/gophonon"
	"github.com/rmera/gophonon/chemplot"
	"github.com/rmera/gophonon/chemstat"
	"github.com/rmera/gophonon/cif"
	"github.com/rmera/gophonon/internal/config"
	"github.com/rmera/gophonon/mode"
	v3 "github.com/rmera/gophonon/v3"
	"github.com/rmera/gophonon/viewer"
)

type animateOptions struct {
	cif          string
	eigenvector  string
	evecFile     string
	phonopy      string
	qpoint       int
	band         int
	massWeighted bool
	frames       int
	amplitude    float64
	scale        float64
	format       string
	out          string
	plot         string
	preview      bool
	config       string
}

func newAnimateCmd() *cobra.Command {
	o := new(animateOptions)
	cmd := &cobra.Command{
		Use:   "animate",
		Short: "animate writes the trajectory of a structure vibrating along a mode.",
		Long: `animate builds the frames of a structure displaced along an eigenvector, and writes
them as JSON lines (with the display settings), extended XYZ, STF or DCD. Without
--cif and an eigenvector, the default two-iron structure and mode are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnimate(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.cif, "cif", "", "structure file, in CIF format")
	f.StringVar(&o.eigenvector, "eigenvector", "", "eigenvector as a JSON array with one [x, y, z] per site")
	f.StringVar(&o.evecFile, "eigenvector-file", "", "file with the eigenvector as a JSON array")
	f.StringVar(&o.phonopy, "phonopy", "", "phonopy band.yaml, mesh.yaml or qpoints.yaml file with eigenvectors")
	f.IntVar(&o.qpoint, "qpoint", 0, "q-point of the mode in the phonopy file (0-based)")
	f.IntVar(&o.band, "band", 0, "band of the mode in the phonopy file (0-based)")
	f.BoolVar(&o.massWeighted, "mass-weighted", false, "divide the phonopy eigenvector by the square root of the masses")
	f.IntVar(&o.frames, "frames", viewer.DefaultFrames, "number of frames")
	f.Float64Var(&o.amplitude, "amplitude", viewer.DefaultAmplitude, "amplitude of the oscillation")
	f.Float64Var(&o.scale, "scale", mode.DisplacementScale, "displacement scale applied to the movement of each site")
	f.StringVar(&o.format, "format", config.DefaultFormat, fmt.Sprintf("output format, one of %v. Guessed from --out if not given", config.Formats))
	f.StringVarP(&o.out, "out", "o", "", "output file. JSON and XYZ go to the standard output if not given")
	f.StringVar(&o.plot, "plot", "", "also plot the displacement of each site to this file (png, svg or pdf)")
	f.BoolVar(&o.preview, "preview", false, "print a text plot of the displacement of each site")
	f.StringVar(&o.config, "config", "", "YAML config file, flags override its values")
	return cmd
}

// applyFlags overrides the configuration with the flags that were given in the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, o *animateOptions) {
	f := cmd.Flags()
	if f.Changed("frames") {
		cfg.Frames = o.frames
	}
	if f.Changed("amplitude") {
		cfg.Amplitude = o.amplitude
	}
	if f.Changed("scale") {
		cfg.Scale = o.scale
	}
	if f.Changed("mass-weighted") {
		cfg.MassWeighted = o.massWeighted
	}
	if f.Changed("format") {
		cfg.Format = o.format
	} else if guess := formatFromName(o.out); guess != "" {
		cfg.Format = guess
	}
}

func runAnimate(cmd *cobra.Command, o *animateOptions) error {
	cfg, err := loadConfig(cmd, o.config)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, o)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid settings")
	}
	level, _ := cfg.Level()
	log := newLogger(cmd.ErrOrStderr(), level)
	export, err := newExport(cfg.Format, o.out, cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}
	sink := &exportSink{export: export}
	session, err := viewer.NewSession(sink, &cfg.Scene, log)
	if err != nil {
		return err
	}
	S := session.Structure()
	if o.cif != "" {
		if S, err = readStructure(o.cif); err != nil {
			return err
		}
	}
	evecs, err := readEigenvectors(o, cfg, S, log)
	if err != nil {
		return err
	}
	if err := session.SetMode(S, evecs); err != nil {
		return errors.Wrap(err, "setting the structure and mode")
	}
	if err := session.SetFrames(cfg.Frames); err != nil {
		return err
	}
	if err := session.SetAmplitude(cfg.Amplitude); err != nil {
		return err
	}
	if err := session.SetScale(cfg.Scale); err != nil {
		return err
	}
	sink.armed = true
	if err := session.Update(); err != nil {
		return err
	}
	traj := session.Trajectory()
	log.WithFields(logrus.Fields{
		"format": cfg.Format,
		"out":    lo.Ternary(o.out == "", "stdout", o.out),
		"frames": traj.NFrames(),
		"sites":  traj.Len(),
	}).Info("trajectory written")
	logPeriod(log, traj, evecs)
	if o.plot != "" {
		title := fmt.Sprintf("%s, amplitude %g", lo.Ternary(S.Name == "", "structure", S.Name), cfg.Amplitude)
		if err := chemplot.PlotDisplacements(traj, title, o.plot); err != nil {
			return errors.Wrap(err, "plotting")
		}
		log.WithField("file", o.plot).Info("displacements plotted")
	}
	if o.preview {
		w := cmd.OutOrStdout()
		if o.out == "" {
			w = cmd.ErrOrStderr()
		}
		fmt.Fprintln(w, chemplot.ASCIIDisplacements(traj, 10))
	}
	return nil
}

func readStructure(name string) (*chem.Structure, error) {
	S, err := cif.File(name)
	return S, errors.Wrapf(err, "reading %s", name)
}

// readEigenvectors returns the eigenvector from whichever of the sources was given, or the default
// one if none was. It is an error to give more than one.
func readEigenvectors(o *animateOptions, cfg *config.Config, S *chem.Structure, log logrus.FieldLogger) (*v3.Matrix, error) {
	given := lo.Filter([]string{o.eigenvector, o.evecFile, o.phonopy}, func(s string, _ int) bool { return s != "" })
	if len(given) > 1 {
		return nil, errors.New("give only one of --eigenvector, --eigenvector-file and --phonopy")
	}
	switch {
	case o.eigenvector != "":
		evecs, err := mode.ParseEigenvectors([]byte(o.eigenvector), S.Len())
		return evecs, errors.Wrap(err, "parsing --eigenvector")
	case o.evecFile != "":
		text, err := os.ReadFile(o.evecFile)
		if err != nil {
			return nil, errors.Wrap(err, "reading eigenvector file")
		}
		evecs, err := mode.ParseEigenvectors(text, S.Len())
		return evecs, errors.Wrapf(err, "parsing %s", o.evecFile)
	case o.phonopy != "":
		return phonopyMode(o, cfg, S, log)
	}
	evecs, err := mode.ParseEigenvectors([]byte(viewer.DefaultEigenvectors), S.Len())
	return evecs, errors.Wrap(err, "the default eigenvector only fits two-site structures, give one with --eigenvector")
}

func phonopyMode(o *animateOptions, cfg *config.Config, S *chem.Structure, log logrus.FieldLogger) (*v3.Matrix, error) {
	f, err := os.Open(o.phonopy)
	if err != nil {
		return nil, errors.Wrap(err, "opening phonopy file")
	}
	defer f.Close()
	P, err := mode.ReadPhonopy(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", o.phonopy)
	}
	if P.NAtoms() != S.Len() {
		return nil, errors.Errorf("phonopy file has %d sites, the structure %d", P.NAtoms(), S.Len())
	}
	symbols := S.Symbols()
	if diff := lo.Filter(lo.Range(len(symbols)), func(i, _ int) bool { return P.Symbols[i] != symbols[i] }); len(diff) > 0 {
		log.WithFields(logrus.Fields{"sites": diff, "phonopy": P.Symbols, "structure": symbols}).Warn("the elements in the phonopy file and the structure differ")
	}
	M, err := P.Mode(o.qpoint, o.band)
	if err != nil {
		return nil, errors.Wrapf(err, "mode at q-point %d band %d", o.qpoint, o.band)
	}
	log.WithFields(logrus.Fields{
		"q":         M.QPosition,
		"band":      o.band,
		"frequency": M.Frequency,
	}).Info("using phonopy mode")
	evecs, err := M.Displacements(cfg.MassWeighted)
	return evecs, errors.Wrap(err, "phonopy displacements")
}

// logPeriod logs the period and the range of the oscillation as recovered from the frames.
func logPeriod(log logrus.FieldLogger, traj *mode.Trajectory, evecs *v3.Matrix) {
	moving := lo.SomeBy(lo.Range(evecs.NVecs()), func(i int) bool { return evecs.VecNorm(i) > 0 })
	if !moving {
		return
	}
	series, err := chemstat.Series(traj.Reader(), chemstat.ModeCoordinateFunc(traj.Frame(0).Coords, evecs))
	if err != nil {
		log.WithError(err).Warn("couldn't analyse the trajectory")
		return
	}
	period, fraction := chemstat.DominantPeriod(series)
	log.WithFields(logrus.Fields{
		"period_frames": period,
		"power":         fraction,
		"max":           lo.Max(series),
		"min":           lo.Min(series),
	}).Debug("oscillation")
}
