// Package engine defines the interface shared by the external
// electromagnetic solver backends. The solvers themselves are separate
// executables; the backends in engine/rcwa and engine/fem generate a driver
// script per call, run it, and reduce its output to power fractions or a
// field map.
package engine

import (
	"context"
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
)

// Point is one sample of a sweep: a wavelength, an incidence direction and a
// polarization state. Wavelength in nanometers, angles in degrees.
type Point struct {
	Wavelength float64
	Theta      float64
	Phi        float64
	Pol        polarization.Polarization
}

// Sample is the reduced output of one solver call: the reflected,
// transmitted and absorbed power fractions at a Point.
type Sample struct {
	Point
	R float64
	T float64
	A float64
}

// NearFieldRequest asks for a 2-D map of |E| on an Nx by Ny grid spanning
// one unit cell at height Z (nanometers above the substrate interface).
type NearFieldRequest struct {
	Point
	Nx, Ny int
	Z      float64
}

// NearField is the computed map together with its coordinate axes.
type NearField struct {
	X, Y []float64          // nm, cell-centered
	E    *sparse.DenseArray // |E|, shape [Nx][Ny]
}

// Engine is one solver backend. Implementations must be safe for concurrent
// use: every call builds and tears down its own solver state, nothing is
// shared between calls.
type Engine interface {
	Name() string
	Spectrum(ctx context.Context, pt Point) (Sample, error)
	NearField(ctx context.Context, req NearFieldRequest) (*NearField, error)
}

// Config locates the external solver executable. It replaces any
// process-global path configuration: backends receive it explicitly at
// construction and never touch global state.
type Config struct {
	// Executable is the solver binary (rcwa) or interpreter (fem).
	Executable string
	// ModulePath, for interpreter-based solvers, is prepended to the
	// interpreter's module search path inside the generated driver.
	ModulePath string
	// WorkDir is where per-call script and scratch directories are
	// created. Empty means the system temp directory.
	WorkDir string
	// KeepFiles leaves the per-call scratch directory behind for
	// debugging.
	KeepFiles bool
}

func (c Config) Validate() error {
	if c.Executable == "" {
		return fmt.Errorf("engine: executable not configured")
	}
	return nil
}

// SPAmplitudes maps a polarization state onto the (s, p) complex excitation
// amplitudes used by plane-wave solvers. Amplitudes are returned as
// magnitude and phase in degrees, the convention both backends share.
func SPAmplitudes(pol polarization.Polarization) (sAmp, sPhase, pAmp, pPhase float64) {
	const isq2 = 0.7071067811865476
	switch pol {
	case polarization.S:
		return 1, 0, 0, 0
	case polarization.P:
		return 0, 0, 1, 0
	case polarization.LCP:
		return isq2, 0, isq2, 90
	case polarization.RCP:
		return isq2, 0, isq2, -90
	default:
		return 1, 0, 0, 0
	}
}
