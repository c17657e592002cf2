// Package entity holds the configuration model shared by both solver
// backends: illumination, geometry and per-engine options. Values are
// assembled once at load time and passed by value into solver calls.
package entity

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/shape"
)

// Illumination describes the incident field and the sweep axes.
// Wavelengths and angles are in nanometers and degrees.
type Illumination struct {
	WavelengthMin   float64 `toml:"wavelength_min"`
	WavelengthMax   float64 `toml:"wavelength_max"`
	WavelengthCount int     `toml:"wavelength_count"`

	Thetas []float64 `toml:"thetas"`
	Phi    float64   `toml:"phi"`

	Polarizations []polarization.Polarization `toml:"polarizations"`

	// Orders is the number of plane-wave (RCWA) or Bloch-mode (FEM)
	// expansion orders kept by the solver.
	Orders int `toml:"orders"`
}

// Geometry describes one period of the nanostructured slab. Lengths are in
// nanometers.
type Geometry struct {
	Shape   shape.Shape `toml:"shape"`
	Radius  float64     `toml:"radius"`
	RadiusY float64     `toml:"radius_y"` // ellipse/rectangle minor half-axis; 0 means Radius
	Height  float64     `toml:"height"`
	PeriodX float64     `toml:"period_x"`
	PeriodY float64     `toml:"period_y"`

	Inclusion   string `toml:"inclusion"`
	Background  string `toml:"background"`
	Substrate   string `toml:"substrate"`
	Superstrate string `toml:"superstrate"`

	Lossy bool `toml:"lossy"`
}

// Options carries the solver-specific knobs that do not change the physical
// structure: the Fourier factorization rule of the RCWA engine and the mesh
// controls of the FEM engine, plus the sweep worker count.
type Options struct {
	Formulation string `toml:"formulation"` // "default", "normal-vector", "pol-decomp"

	MeshRefine  int  `toml:"mesh_refine"`
	ForceRemesh bool `toml:"force_remesh"`

	Workers int `toml:"workers"`
}

type Config struct {
	Illumination Illumination `toml:"illumination"`
	Geometry     Geometry     `toml:"geometry"`
	Options      Options      `toml:"options"`
}

// Default is the gold nanodisk array the tutorials are built around.
func Default() Config {
	return Config{
		Illumination: Illumination{
			WavelengthMin:   500,
			WavelengthMax:   900,
			WavelengthCount: 81,
			Thetas:          []float64{0},
			Phi:             0,
			Polarizations:   []polarization.Polarization{polarization.S},
			Orders:          81,
		},
		Geometry: Geometry{
			Shape:       shape.Disk,
			Radius:      110,
			Height:      40,
			PeriodX:     450,
			PeriodY:     450,
			Inclusion:   "Au",
			Background:  "Air",
			Substrate:   "SiO2",
			Superstrate: "Air",
			Lossy:       true,
		},
		Options: Options{
			Formulation: "default",
			MeshRefine:  1,
			ForceRemesh: false,
			Workers:     4,
		},
	}
}

// Load reads a TOML configuration file over the defaults, so a file only
// needs the keys it changes.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	ill, geo, opt := c.Illumination, c.Geometry, c.Options
	if ill.WavelengthCount < 1 {
		return fmt.Errorf("wavelength_count must be at least 1, got %d", ill.WavelengthCount)
	}
	if ill.WavelengthCount > 1 && ill.WavelengthMax <= ill.WavelengthMin {
		return fmt.Errorf("wavelength_max (%g) must exceed wavelength_min (%g)",
			ill.WavelengthMax, ill.WavelengthMin)
	}
	if len(ill.Thetas) == 0 {
		return fmt.Errorf("at least one incidence angle is required")
	}
	for _, th := range ill.Thetas {
		if th < 0 || th >= 90 {
			return fmt.Errorf("incidence angle %g deg out of range [0, 90)", th)
		}
	}
	if len(ill.Polarizations) == 0 {
		return fmt.Errorf("at least one polarization is required")
	}
	if ill.Orders < 1 {
		return fmt.Errorf("orders must be positive, got %d", ill.Orders)
	}
	if geo.Radius <= 0 || geo.Height <= 0 || geo.PeriodX <= 0 || geo.PeriodY <= 0 {
		return fmt.Errorf("geometry lengths must be positive")
	}
	ry := geo.RadiusY
	if ry == 0 {
		ry = geo.Radius
	}
	if 2*geo.Radius > geo.PeriodX || 2*ry > geo.PeriodY {
		return fmt.Errorf("inclusion (r=%g, ry=%g) does not fit in the unit cell %gx%g",
			geo.Radius, ry, geo.PeriodX, geo.PeriodY)
	}
	switch opt.Formulation {
	case "default", "normal-vector", "pol-decomp":
	default:
		return fmt.Errorf("invalid formulation: %q", opt.Formulation)
	}
	if opt.MeshRefine < 1 {
		return fmt.Errorf("mesh_refine must be at least 1, got %d", opt.MeshRefine)
	}
	if opt.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", opt.Workers)
	}
	return nil
}

// SemiAxisY returns the minor half-axis, falling back to Radius for
// circularly symmetric inclusions.
func (g Geometry) SemiAxisY() float64 {
	if g.RadiusY != 0 {
		return g.RadiusY
	}
	return g.Radius
}
