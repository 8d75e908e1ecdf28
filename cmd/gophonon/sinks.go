/*
 * sinks.go, part of gophonon.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/rmera/gophonon/chemjson"
	"github.com/rmera/gophonon/internal/config"
	"github.com/rmera/gophonon/mode"
	"github.com/rmera/gophonon/traj/dcd"
	"github.com/rmera/gophonon/traj/stf"
	"github.com/rmera/gophonon/traj/xyz"
	"github.com/rmera/gophonon/viewer"
)

type exportFunc func(traj *mode.Trajectory, scene *viewer.Scene) error

// exportSink writes the trajectories a session shows, but only once it's armed, so the
// intermediate trajectories built while the inputs are set are not written.
type exportSink struct {
	armed   bool
	written int
	export  exportFunc
}

func (e *exportSink) Show(traj *mode.Trajectory, scene *viewer.Scene) error {
	if !e.armed {
		return nil
	}
	if err := e.export(traj, scene); err != nil {
		return err
	}
	e.written++
	return nil
}

var stfExtensions = []string{".stf", ".stz", ".str", ".stl"}

// formatFromName guesses the output format from the extension of name. It returns an
// empty string if the extension is not known.
func formatFromName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".json" || ext == ".jsonl":
		return "json"
	case ext == ".xyz" || ext == ".extxyz":
		return "xyz"
	case ext == ".dcd":
		return "dcd"
	case lo.Contains(stfExtensions, ext):
		return "stf"
	}
	return ""
}

// newExport returns the function that writes a trajectory in format to out. Text formats
// go to stdout if out is empty, binary ones need a file.
func newExport(format, out string, stdout io.Writer, cfg *config.Config) (exportFunc, error) {
	text := func(write func(io.Writer, *mode.Trajectory, *viewer.Scene) error) exportFunc {
		return func(traj *mode.Trajectory, scene *viewer.Scene) error {
			if out == "" {
				return write(stdout, traj, scene)
			}
			f, err := os.Create(out)
			if err != nil {
				return errors.Wrap(err, "creating output")
			}
			if err := write(f, traj, scene); err != nil {
				f.Close()
				return err
			}
			return errors.Wrap(f.Close(), "closing output")
		}
	}
	switch format {
	case "json":
		return text(func(w io.Writer, traj *mode.Trajectory, scene *viewer.Scene) error {
			if err := chemjson.EncodeTrajectory(w, traj, scene); err != nil {
				return errors.Wrap(err, "writing JSON")
			}
			return nil
		}), nil
	case "xyz":
		return text(func(w io.Writer, traj *mode.Trajectory, _ *viewer.Scene) error {
			_, err := xyz.WriteTrajectory(w, traj)
			return errors.Wrap(err, "writing XYZ")
		}), nil
	}
	if out == "" {
		return nil, errors.Errorf("format %s needs an output file (--out)", format)
	}
	switch format {
	case "stf":
		if !lo.Contains(stfExtensions, strings.ToLower(filepath.Ext(out))) {
			return nil, errors.Errorf("stf output %s must have one of the extensions %v", out, stfExtensions)
		}
		return func(traj *mode.Trajectory, _ *viewer.Scene) error {
			_, err := stf.WriteTrajectory(out, traj, cfg.Stf.Precision, cfg.Stf.Compression)
			return errors.Wrap(err, "writing STF")
		}, nil
	case "dcd":
		return func(traj *mode.Trajectory, _ *viewer.Scene) error {
			_, err := dcd.WriteTrajectory(out, traj)
			return errors.Wrap(err, "writing DCD")
		}, nil
	}
	return nil, errors.Errorf("unknown format %q", format)
}
