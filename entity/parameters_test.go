package entity

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/shape"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default configuration is invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	src := `
[illumination]
wavelength_min = 400.0
wavelength_max = 800.0
wavelength_count = 41
thetas = [0.0, 30.0]
polarizations = ["lcp", "rcp"]

[geometry]
shape = "ellipse"
radius = 90.0
radius_y = 60.0

[options]
workers = 8
`
	path := filepath.Join(t.TempDir(), "run.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Illumination.WavelengthCount != 41 {
		t.Errorf("wavelength_count = %d, want 41", cfg.Illumination.WavelengthCount)
	}
	wantPols := []polarization.Polarization{polarization.LCP, polarization.RCP}
	if !reflect.DeepEqual(cfg.Illumination.Polarizations, wantPols) {
		t.Errorf("polarizations = %v, want %v", cfg.Illumination.Polarizations, wantPols)
	}
	if cfg.Geometry.Shape != shape.Ellipse {
		t.Errorf("shape = %v, want ellipse", cfg.Geometry.Shape)
	}
	if cfg.Geometry.SemiAxisY() != 60 {
		t.Errorf("SemiAxisY = %g, want 60", cfg.Geometry.SemiAxisY())
	}
	// Untouched keys keep their defaults.
	if cfg.Geometry.Height != Default().Geometry.Height {
		t.Errorf("height = %g, want default %g", cfg.Geometry.Height, Default().Geometry.Height)
	}
	if cfg.Illumination.Orders != Default().Illumination.Orders {
		t.Errorf("orders = %d, want default %d", cfg.Illumination.Orders, Default().Illumination.Orders)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero wavelength count", func(c *Config) { c.Illumination.WavelengthCount = 0 }},
		{"inverted wavelength range", func(c *Config) { c.Illumination.WavelengthMax = c.Illumination.WavelengthMin - 1 }},
		{"no angles", func(c *Config) { c.Illumination.Thetas = nil }},
		{"grazing angle", func(c *Config) { c.Illumination.Thetas = []float64{90} }},
		{"no polarizations", func(c *Config) { c.Illumination.Polarizations = nil }},
		{"zero orders", func(c *Config) { c.Illumination.Orders = 0 }},
		{"negative radius", func(c *Config) { c.Geometry.Radius = -5 }},
		{"inclusion too large", func(c *Config) { c.Geometry.Radius = c.Geometry.PeriodX }},
		{"bad formulation", func(c *Config) { c.Options.Formulation = "magic" }},
		{"zero workers", func(c *Config) { c.Options.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid configuration")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestEnumRoundTrips(t *testing.T) {
	for _, s := range []shape.Shape{shape.Disk, shape.Ellipse, shape.Rectangle} {
		got, err := shape.UnmarshalText(s.String())
		if err != nil || got != s {
			t.Errorf("shape %v does not round-trip: got %v, err %v", s, got, err)
		}
	}
	for _, p := range []polarization.Polarization{polarization.S, polarization.P,
		polarization.LCP, polarization.RCP} {
		got, err := polarization.UnmarshalText(p.String())
		if err != nil || got != p {
			t.Errorf("polarization %v does not round-trip: got %v, err %v", p, got, err)
		}
	}
}
