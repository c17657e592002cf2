package fem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/materials"
)

func testEngine(t *testing.T, executable string) *Engine {
	t.Helper()
	lib, err := materials.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	eng, err := New(engine.Config{
		Executable: executable,
		ModulePath: "/opt/emustack",
	}, entity.Default(), lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func fakeSolver(t *testing.T, output string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-python")
	script := "#!/bin/sh\nprintf '%s\\n' \"" + output + "\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSpectrumScript(t *testing.T) {
	eng := testEngine(t, "python3")
	script, err := eng.spectrumScript(engine.Point{
		Wavelength: 700, Theta: 15, Pol: polarization.LCP,
	})
	if err != nil {
		t.Fatalf("spectrumScript: %v", err)
	}

	for _, want := range []string{
		`sys.path.insert(0, "/opt/emustack")`,
		"objects.Light(700, max_order_PWs=81, theta=15, phi=0)",
		"objects.NanoStruct('2D_array', period=450, period_y=450,",
		"diameter1=220",
		"height_nm=40",
		"Stack((sim_substrate, sim_slab, sim_superstrate))",
		`stack.calc_scat(pol="LCP")`,
		"superstrate.calc_modes(light)",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script is missing %q:\n%s", want, script)
		}
	}
	// The superstrate is defined before the substrate, both semi-infinite.
	if strings.Index(script, "superstrate = objects.ThinFilm") >
		strings.Index(script, "substrate = objects.ThinFilm") {
		t.Errorf("half-space definitions out of order:\n%s", script)
	}
}

func TestSpectrumScriptMeshOptions(t *testing.T) {
	lib, err := materials.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	cfg := entity.Default()
	cfg.Options.MeshRefine = 4
	cfg.Options.ForceRemesh = true
	eng, err := New(engine.Config{Executable: "python3"}, cfg, lib)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	script, err := eng.spectrumScript(engine.Point{Wavelength: 700, Pol: polarization.S})
	if err != nil {
		t.Fatalf("spectrumScript: %v", err)
	}
	if !strings.Contains(script, "lc2=0.025") {
		t.Errorf("script does not refine the mesh:\n%s", script)
	}
	if !strings.Contains(script, "force_mesh=True") {
		t.Errorf("script does not force remeshing:\n%s", script)
	}
}

func TestSpectrumRunsSolver(t *testing.T) {
	eng := testEngine(t, fakeSolver(t,
		"meshing unit cell...\nEMUS4 0.2 0.7 0.1"))
	s, err := eng.Spectrum(context.Background(), engine.Point{
		Wavelength: 700, Pol: polarization.S,
	})
	if err != nil {
		t.Fatalf("Spectrum: %v", err)
	}
	if s.R != 0.2 || s.T != 0.7 || s.A != 0.1 {
		t.Errorf("R, T, A = %g, %g, %g; want 0.2, 0.7, 0.1", s.R, s.T, s.A)
	}
}

func TestParseTagged(t *testing.T) {
	out := "noise\nEMUS4 0.1 0.2 0.7\nEMUS4 0.3 0.3 0.4\nEMUS4X 1 2 3\n"
	rows, err := parseTagged(out, 3)
	if err != nil {
		t.Fatalf("parseTagged: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != 0.4 {
		t.Errorf("rows = %v", rows)
	}

	if _, err := parseTagged("EMUS4 not a number", 1); err == nil {
		t.Error("parseTagged accepted a malformed row")
	}
	if _, err := parseTagged("plain output", 1); err == nil {
		t.Error("parseTagged accepted output without tagged rows")
	}
}

func TestNearFieldParsesGrid(t *testing.T) {
	var out strings.Builder
	for i := 0; i < 4; i++ {
		out.WriteString("EMUS4 1.5\n")
	}
	eng := testEngine(t, fakeSolver(t, strings.TrimSpace(out.String())))
	nf, err := eng.NearField(context.Background(), engine.NearFieldRequest{
		Point: engine.Point{Wavelength: 700, Pol: polarization.S},
		Nx:    2, Ny: 2, Z: 10,
	})
	if err != nil {
		t.Fatalf("NearField: %v", err)
	}
	if len(nf.X) != 2 || len(nf.Y) != 2 {
		t.Fatalf("axes %dx%d, want 2x2", len(nf.X), len(nf.Y))
	}
	for _, v := range nf.E.Elements {
		if v != 1.5 {
			t.Errorf("field value %g, want 1.5", v)
		}
	}
}
