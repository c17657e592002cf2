package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/compare"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/format"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/mode"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/result"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/sweep"
)

type App struct {
	Config    entity.Config
	Engine    engine.Engine
	OutputDir string
	Mode      mode.Mode
	Format    format.Format

	// Compare mode inputs.
	CompareA string
	CompareB string

	// Near-field controls.
	FieldGrid int
	FieldZ    float64
}

func New(eng engine.Engine, cfg entity.Config, outputDir string) *App {
	return &App{
		Config:    cfg,
		Engine:    eng,
		OutputDir: outputDir,
		FieldGrid: 64,
	}
}

func (a *App) Run(ctx context.Context) error {
	appTime := time.Now()
	defer func() {
		log.WithField("time", time.Since(appTime)).Debug("App finished")
	}()
	fields := log.Fields{
		"mode":   a.Mode,
		"output": a.OutputDir,
	}
	if a.Engine != nil {
		fields["engine"] = a.Engine.Name()
	}
	log.WithFields(fields).Debug("App started")

	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	switch a.Mode {
	case mode.Spectrum:
		return a.runSpectrum(ctx)
	case mode.Angle:
		return a.runAngle(ctx)
	case mode.NearField:
		return a.runNearField(ctx)
	case mode.Compare:
		return a.runCompare()
	default:
		return fmt.Errorf("unsupported mode %v", a.Mode)
	}
}

func (a *App) runSpectrum(ctx context.Context) error {
	g, err := sweep.NewGrid(a.Config.Illumination)
	if err != nil {
		return fmt.Errorf("failed to build sweep grid: %w", err)
	}
	samples, err := sweep.Run(ctx, a.Engine, g, a.Config.Options.Workers)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	mat, err := g.SpectrumMatrix(samples)
	if err != nil {
		return fmt.Errorf("failed to assemble spectrum: %w", err)
	}
	ds, err := result.NewSpectrum(a.Engine.Name(), a.Config, g.Wavelengths, sweep.Kinds, mat)
	if err != nil {
		return err
	}
	name := result.Filename(a.Engine.Name(), "spectrum", a.Config.Geometry, ds.Created, "nc")
	return ds.WriteFile(filepath.Join(a.OutputDir, name))
}

func (a *App) runAngle(ctx context.Context) error {
	if !hasCircularPair(a.Config.Illumination.Polarizations) {
		return fmt.Errorf("angle mode needs both lcp and rcp polarizations, got %v",
			a.Config.Illumination.Polarizations)
	}
	g, err := sweep.NewGrid(a.Config.Illumination)
	if err != nil {
		return fmt.Errorf("failed to build sweep grid: %w", err)
	}
	samples, err := sweep.Run(ctx, a.Engine, g, a.Config.Options.Workers)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	full, err := g.Assemble(samples)
	if err != nil {
		return fmt.Errorf("failed to assemble samples: %w", err)
	}
	cd, err := g.DichroismArray(samples)
	if err != nil {
		return fmt.Errorf("failed to compute dichroism: %w", err)
	}

	ds, err := result.NewAngleSpectrum(a.Engine.Name(), a.Config, g.Wavelengths, g.Thetas, sweep.Kinds, cd)
	if err != nil {
		return err
	}
	name := result.Filename(a.Engine.Name(), "angle", a.Config.Geometry, ds.Created, "nc")
	if err := ds.WriteFile(filepath.Join(a.OutputDir, name)); err != nil {
		return err
	}

	tablePath := filepath.Join(a.OutputDir,
		result.Filename(a.Engine.Name(), "angle", a.Config.Geometry, ds.Created, "txt"))
	f, err := os.Create(tablePath)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer f.Close()
	if err := result.WriteAngleTable(f, a.Engine.Name(), a.Config,
		g.Wavelengths, g.Thetas, g.Pols, sweep.Kinds, full, cd); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	log.WithField("path", tablePath).Info("Table written")
	return nil
}

func (a *App) runNearField(ctx context.Context) error {
	ill := a.Config.Illumination
	req := engine.NearFieldRequest{
		Point: engine.Point{
			Wavelength: ill.WavelengthMin,
			Theta:      ill.Thetas[0],
			Phi:        ill.Phi,
			Pol:        ill.Polarizations[0],
		},
		Nx: a.FieldGrid,
		Ny: a.FieldGrid,
		Z:  a.FieldZ,
	}
	startTime := time.Now()
	nf, err := a.Engine.NearField(ctx, req)
	if err != nil {
		return fmt.Errorf("near-field calculation failed: %w", err)
	}
	log.WithFields(log.Fields{
		"time": time.Since(startTime),
		"grid": a.FieldGrid,
	}).Info("Near field computed")

	ds, err := result.NewNearField(a.Engine.Name(), a.Config, nf.X, nf.Y, nf.E)
	if err != nil {
		return err
	}
	name := result.Filename(a.Engine.Name(), "nearfield", a.Config.Geometry, ds.Created, "nc")
	return ds.WriteFile(filepath.Join(a.OutputDir, name))
}

func (a *App) runCompare() error {
	pair, err := compare.LoadPair(a.CompareA, a.CompareB)
	if err != nil {
		return err
	}

	if pair.A.Name == "efield" {
		if a.Format != format.HTML {
			return fmt.Errorf("near-field comparison supports html output only, got %v", a.Format)
		}
		return a.renderToFile("comparison_field.html", func(f *os.File) error {
			return compare.RenderFieldHTML(f, pair)
		})
	}

	al, err := pair.AlignSpectra()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"shared": len(al.Wavelengths),
		"kinds":  al.Kinds,
	}).Info("Spectra aligned")

	switch a.Format {
	case format.HTML:
		return a.renderToFile("comparison.html", func(f *os.File) error {
			return compare.RenderHTML(f, al)
		})
	case format.Png:
		return compare.SavePNG(filepath.Join(a.OutputDir, "comparison.png"), al)
	case format.Csv:
		return a.renderToFile("comparison.csv", func(f *os.File) error {
			return compare.WriteCSV(f, al)
		})
	default:
		return fmt.Errorf("unsupported format %v", a.Format)
	}
}

func (a *App) renderToFile(name string, render func(*os.File) error) error {
	path := filepath.Join(a.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	renderTime := time.Now()
	if err := render(f); err != nil {
		return fmt.Errorf("failed to render comparison: %w", err)
	}
	log.WithFields(log.Fields{
		"time": time.Since(renderTime),
		"path": path,
	}).Info("Comparison rendered and saved")
	return nil
}

func hasCircularPair(pols []polarization.Polarization) bool {
	var l, r bool
	for _, p := range pols {
		switch p {
		case polarization.LCP:
			l = true
		case polarization.RCP:
			r = true
		}
	}
	return l && r
}
