package rcwa

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/shape"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/materials"
)

func testEngine(t *testing.T, executable string) *Engine {
	t.Helper()
	lib, err := materials.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	eng, err := New(engine.Config{Executable: executable}, entity.Default(), lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

// fakeSolver writes an executable shell script that ignores its driver
// argument and prints the given output.
func fakeSolver(t *testing.T, output string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-s4")
	script := "#!/bin/sh\nprintf '%s\\n' \"" + output + "\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpectrumScript(t *testing.T) {
	eng := testEngine(t, "S4")
	script, err := eng.spectrumScript(engine.Point{
		Wavelength: 600, Theta: 30, Phi: 0, Pol: polarization.P,
	})
	if err != nil {
		t.Fatalf("spectrumScript: %v", err)
	}

	for _, want := range []string{
		"S:SetLattice({450, 0}, {0, 450})",
		"S:SetNumG(81)",
		`S:SetLayerPatternCircle('slab', "Au", {0, 0}, 110)`,
		`S:AddLayer('slab', 40, "Air")`,
		"S:SetExcitationPlanewave({30, 0}, {0, 0}, {1, 0})",
		"GetPowerFlux('superstrate')",
		"GetPowerFlux('substrate')",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script is missing %q:\n%s", want, script)
		}
	}
	// SetFrequency(1/600)
	if !strings.Contains(script, "S:SetFrequency(0.00166666") {
		t.Errorf("script has wrong frequency:\n%s", script)
	}
}

func TestSpectrumScriptFormulation(t *testing.T) {
	lib, err := materials.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	cfg := entity.Default()
	cfg.Options.Formulation = "pol-decomp"
	eng, err := New(engine.Config{Executable: "S4"}, cfg, lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	script, err := eng.spectrumScript(engine.Point{Wavelength: 600, Pol: polarization.S})
	if err != nil {
		t.Fatalf("spectrumScript: %v", err)
	}
	if !strings.Contains(script, "S:UsePolarizationDecomposition()") {
		t.Errorf("script is missing the factorization call:\n%s", script)
	}
}

func TestSpectrumScriptEllipse(t *testing.T) {
	lib, err := materials.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	cfg := entity.Default()
	cfg.Geometry.Shape = shape.Ellipse
	cfg.Geometry.RadiusY = 70
	eng, err := New(engine.Config{Executable: "S4"}, cfg, lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	script, err := eng.spectrumScript(engine.Point{Wavelength: 600, Pol: polarization.S})
	if err != nil {
		t.Fatalf("spectrumScript: %v", err)
	}
	if !strings.Contains(script, `S:SetLayerPatternEllipse('slab', "Au", {0, 0}, 0, {110, 70})`) {
		t.Errorf("script is missing the ellipse pattern:\n%s", script)
	}
}

func TestSpectrumScriptRejectsOutOfRangeWavelength(t *testing.T) {
	eng := testEngine(t, "S4")
	if _, err := eng.spectrumScript(engine.Point{Wavelength: 5000, Pol: polarization.S}); err == nil {
		t.Error("spectrumScript accepted a wavelength outside the Au table")
	}
}

func TestSpectrumRunsSolver(t *testing.T) {
	eng := testEngine(t, fakeSolver(t, "0.25 0.55"))
	s, err := eng.Spectrum(context.Background(), engine.Point{
		Wavelength: 600, Pol: polarization.S,
	})
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}
	if s.R != 0.25 || s.T != 0.55 {
		t.Errorf("R, T = %g, %g; want 0.25, 0.55", s.R, s.T)
	}
	if diff := s.A - 0.2; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("A = %g, want 0.2", s.A)
	}
}

func TestSpectrumMissingSolver(t *testing.T) {
	eng := testEngine(t, filepath.Join(t.TempDir(), "no-such-solver"))
	if _, err := eng.Spectrum(context.Background(), engine.Point{
		Wavelength: 600, Pol: polarization.S,
	}); err == nil {
		t.Error("Spectrum succeeded without a solver executable")
	}
}

func TestParseRows(t *testing.T) {
	out := "Solver banner\nG vectors: 81\n0.1 0.2\nnot numbers here\n0.3 0.4\n"
	rows, err := parseRows(out, 2)
	if err != nil {
		t.Fatalf("parseRows: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != 0.1 || rows[1][1] != 0.4 {
		t.Errorf("rows = %v", rows)
	}

	if _, err := parseRows("nothing numeric", 2); err == nil {
		t.Error("parseRows accepted output without numeric rows")
	}
}

func TestNearFieldScriptAndAxes(t *testing.T) {
	eng := testEngine(t, "S4")
	script, err := eng.nearFieldScript(engine.NearFieldRequest{
		Point: engine.Point{Wavelength: 600, Pol: polarization.S},
		Nx:    8, Ny: 8, Z: 20,
	})
	if err != nil {
		t.Fatalf("nearFieldScript: %v", err)
	}
	if !strings.Contains(script, "GetEField") {
		t.Errorf("script is missing GetEField:\n%s", script)
	}

	ax := cellAxis(8, 450)
	if len(ax) != 8 {
		t.Fatalf("axis length %d, want 8", len(ax))
	}
	if ax[0] >= 0 || ax[7] <= 0 || ax[0] != -ax[7] {
		t.Errorf("axis is not symmetric about 0: %v", ax)
	}
}
