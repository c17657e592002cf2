// Package rcwa drives an S4-style rigorous coupled-wave analysis solver.
// Each call writes a standalone Lua driver script into a fresh scratch
// directory, runs the solver executable on it and parses the numeric rows it
// prints. Calls share nothing, so one Engine may be used from many
// goroutines at once.
package rcwa

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/materials"
)

const name = "rcwa"

type Engine struct {
	cfg engine.Config
	ill entity.Illumination
	geo entity.Geometry
	opt entity.Options
	lib *materials.Library
}

// New binds the solver location and the structure under study. All material
// names are resolved against the library here so sweeps fail fast instead of
// per worker.
func New(cfg engine.Config, c entity.Config, lib *materials.Library) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, m := range []string{c.Geometry.Inclusion, c.Geometry.Background,
		c.Geometry.Substrate, c.Geometry.Superstrate} {
		if _, err := lib.Lookup(m); err != nil {
			return nil, err
		}
	}
	return &Engine{cfg: cfg, ill: c.Illumination, geo: c.Geometry, opt: c.Options, lib: lib}, nil
}

func (e *Engine) Name() string { return name }

// Spectrum runs one solver invocation and reduces it to R/T/A. R and T come
// from the power fluxes above and below the stack; A is their deficit.
func (e *Engine) Spectrum(ctx context.Context, pt engine.Point) (engine.Sample, error) {
	script, err := e.spectrumScript(pt)
	if err != nil {
		return engine.Sample{}, err
	}
	out, err := e.run(ctx, script)
	if err != nil {
		return engine.Sample{}, err
	}
	rows, err := parseRows(out, 2)
	if err != nil {
		return engine.Sample{}, fmt.Errorf("rcwa: bad solver output at %g nm: %w", pt.Wavelength, err)
	}
	if len(rows) != 1 {
		return engine.Sample{}, fmt.Errorf("rcwa: expected 1 result row at %g nm, got %d", pt.Wavelength, len(rows))
	}
	r, t := rows[0][0], rows[0][1]
	return engine.Sample{Point: pt, R: r, T: t, A: 1 - r - t}, nil
}

// NearField samples |E| on an Nx by Ny grid across one unit cell at height
// req.Z.
func (e *Engine) NearField(ctx context.Context, req engine.NearFieldRequest) (*engine.NearField, error) {
	if req.Nx < 2 || req.Ny < 2 {
		return nil, fmt.Errorf("rcwa: near-field grid must be at least 2x2, got %dx%d", req.Nx, req.Ny)
	}
	script, err := e.nearFieldScript(req)
	if err != nil {
		return nil, err
	}
	out, err := e.run(ctx, script)
	if err != nil {
		return nil, err
	}
	rows, err := parseRows(out, 3)
	if err != nil {
		return nil, fmt.Errorf("rcwa: bad near-field output: %w", err)
	}
	if len(rows) != req.Nx*req.Ny {
		return nil, fmt.Errorf("rcwa: expected %d field samples, got %d", req.Nx*req.Ny, len(rows))
	}
	nf := &engine.NearField{
		X: cellAxis(req.Nx, e.geo.PeriodX),
		Y: cellAxis(req.Ny, e.geo.PeriodY),
		E: sparse.ZerosDense(req.Nx, req.Ny),
	}
	// Rows come out in the loop order of the script: x outer, y inner.
	for i, row := range rows {
		nf.E.Elements[i] = row[2]
	}
	return nf, nil
}

// cellAxis returns n cell-centered coordinates spanning one period centered
// on the inclusion.
func cellAxis(n int, period float64) []float64 {
	ax := make([]float64, n)
	step := period / float64(n)
	floats.Span(ax, -period/2+step/2, period/2-step/2)
	return ax
}

// run executes the solver on a generated script inside a per-call scratch
// directory.
func (e *Engine) run(ctx context.Context, script string) (string, error) {
	dir, err := os.MkdirTemp(e.cfg.WorkDir, "rcwa-*")
	if err != nil {
		return "", fmt.Errorf("rcwa: failed to create scratch dir: %w", err)
	}
	if !e.cfg.KeepFiles {
		defer os.RemoveAll(dir)
	}
	path := filepath.Join(dir, "driver.lua")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("rcwa: failed to write driver script: %w", err)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.cfg.Executable, path)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("rcwa: solver failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	log.WithFields(log.Fields{
		"engine": name,
		"time":   time.Since(start),
	}).Debug("Solver call finished")
	return stdout.String(), nil
}

// parseRows extracts the lines of exactly ncol whitespace-separated floats,
// skipping anything else the solver prints.
func parseRows(out string, ncol int) ([][]float64, error) {
	var rows [][]float64
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != ncol {
			continue
		}
		row := make([]float64, ncol)
		ok := true
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				ok = false
				break
			}
			row[i] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no numeric rows in solver output")
	}
	return rows, nil
}
