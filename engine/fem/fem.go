// Package fem drives an EMUstack-style finite-element multilayer stack
// solver through its Python interface. Each call generates a standalone
// driver script, runs the configured interpreter on it in a fresh scratch
// directory and parses the tagged result lines it prints. As with the rcwa
// backend, calls are fully isolated from each other.
package fem

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

const name = "fem"

// resultTag prefixes the rows of numbers the generated driver prints, so
// parsing is immune to whatever else the solver logs on stdout.
const resultTag = "EMUS4"

type Engine struct {
	cfg engine.Config
	ill entity.Illumination
	geo entity.Geometry
	opt entity.Options
	lib *materials.Library
}

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

func (e *Engine) Spectrum(ctx context.Context, pt engine.Point) (engine.Sample, error) {
	script, err := e.spectrumScript(pt)
	if err != nil {
		return engine.Sample{}, err
	}
	out, err := e.run(ctx, script)
	if err != nil {
		return engine.Sample{}, err
	}
	rows, err := parseTagged(out, 3)
	if err != nil {
		return engine.Sample{}, fmt.Errorf("fem: bad solver output at %g nm: %w", pt.Wavelength, err)
	}
	if len(rows) != 1 {
		return engine.Sample{}, fmt.Errorf("fem: expected 1 result row at %g nm, got %d", pt.Wavelength, len(rows))
	}
	return engine.Sample{Point: pt, R: rows[0][0], T: rows[0][1], A: rows[0][2]}, nil
}

func (e *Engine) NearField(ctx context.Context, req engine.NearFieldRequest) (*engine.NearField, error) {
	if req.Nx < 2 || req.Ny < 2 {
		return nil, fmt.Errorf("fem: near-field grid must be at least 2x2, got %dx%d", req.Nx, req.Ny)
	}
	script, err := e.nearFieldScript(req)
	if err != nil {
		return nil, err
	}
	out, err := e.run(ctx, script)
	if err != nil {
		return nil, err
	}
	rows, err := parseTagged(out, 1)
	if err != nil {
		return nil, fmt.Errorf("fem: bad near-field output: %w", err)
	}
	if len(rows) != req.Nx*req.Ny {
		return nil, fmt.Errorf("fem: expected %d field samples, got %d", req.Nx*req.Ny, len(rows))
	}
	nf := &engine.NearField{
		X: cellAxis(req.Nx, e.geo.PeriodX),
		Y: cellAxis(req.Ny, e.geo.PeriodY),
		E: sparse.ZerosDense(req.Nx, req.Ny),
	}
	for i, row := range rows {
		nf.E.Elements[i] = row[0]
	}
	return nf, nil
}

func cellAxis(n int, period float64) []float64 {
	ax := make([]float64, n)
	step := period / float64(n)
	floats.Span(ax, -period/2+step/2, period/2-step/2)
	return ax
}

func (e *Engine) run(ctx context.Context, script string) (string, error) {
	dir, err := os.MkdirTemp(e.cfg.WorkDir, "fem-*")
	if err != nil {
		return "", fmt.Errorf("fem: failed to create scratch dir: %w", err)
	}
	if !e.cfg.KeepFiles {
		defer os.RemoveAll(dir)
	}
	path := filepath.Join(dir, "driver.py")
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("fem: failed to write driver script: %w", err)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.cfg.Executable, path)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("fem: solver failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	log.WithFields(log.Fields{
		"engine": name,
		"time":   time.Since(start),
	}).Debug("Solver call finished")
	return stdout.String(), nil
}

// parseTagged extracts the rows of ncol floats prefixed with the result tag.
func parseTagged(out string, ncol int) ([][]float64, error) {
	var rows [][]float64
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != ncol+1 || fields[0] != resultTag {
			continue
		}
		row := make([]float64, ncol)
		var err error
		for i, f := range fields[1:] {
			if row[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, fmt.Errorf("bad value %q: %w", f, err)
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no %s rows in solver output", resultTag)
	}
	return rows, nil
}
