// Package sweep expands an illumination configuration into an ordered list
// of solver points, maps an engine over them with a bounded worker pool and
// reshapes the collected samples into arrays aligned with the sweep axes.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ctessum/sparse"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
)

var (
	// ErrEmptySweep is returned when the illumination expands to no points.
	ErrEmptySweep = errors.New("sweep: no points to evaluate")

	// ErrZeroDichroismSum is returned when a dichroism ratio is requested
	// for a pair of values summing to zero.
	ErrZeroDichroismSum = errors.New("sweep: dichroism undefined, L+R is zero")
)

// Kinds are the quantities stored along the last axis of every assembled
// array, in order.
var Kinds = []string{"R", "T", "A"}

// Grid is the ordered cartesian product of the sweep axes. Points are laid
// out with wavelength as the slowest axis and polarization as the fastest.
type Grid struct {
	Wavelengths []float64
	Thetas      []float64
	Phi         float64
	Pols        []polarization.Polarization
}

// NewGrid expands the illumination into concrete axes.
func NewGrid(ill entity.Illumination) (Grid, error) {
	if ill.WavelengthCount < 1 || len(ill.Thetas) == 0 || len(ill.Polarizations) == 0 {
		return Grid{}, ErrEmptySweep
	}
	wl := make([]float64, ill.WavelengthCount)
	if ill.WavelengthCount == 1 {
		wl[0] = ill.WavelengthMin
	} else {
		floats.Span(wl, ill.WavelengthMin, ill.WavelengthMax)
	}
	g := Grid{
		Wavelengths: wl,
		Thetas:      append([]float64(nil), ill.Thetas...),
		Phi:         ill.Phi,
		Pols:        append([]polarization.Polarization(nil), ill.Polarizations...),
	}
	return g, nil
}

// Size is the total number of points, the product of the axis lengths.
func (g Grid) Size() int {
	return len(g.Wavelengths) * len(g.Thetas) * len(g.Pols)
}

// Points returns the ordered sweep points.
func (g Grid) Points() []engine.Point {
	pts := make([]engine.Point, 0, g.Size())
	for _, wl := range g.Wavelengths {
		for _, th := range g.Thetas {
			for _, pol := range g.Pols {
				pts = append(pts, engine.Point{
					Wavelength: wl,
					Theta:      th,
					Phi:        g.Phi,
					Pol:        pol,
				})
			}
		}
	}
	return pts
}

// index maps axis indices onto the flat point order.
func (g Grid) index(iw, it, ip int) int {
	return (iw*len(g.Thetas)+it)*len(g.Pols) + ip
}

// Run evaluates the engine at every point of the grid using at most workers
// concurrent solver calls. Results are returned in point order. The first
// failing call cancels the rest of the batch and its error is returned;
// there are no partial results.
func Run(ctx context.Context, eng engine.Engine, g Grid, workers int) ([]engine.Sample, error) {
	pts := g.Points()
	if len(pts) == 0 {
		return nil, ErrEmptySweep
	}
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	log.WithFields(log.Fields{
		"engine":  eng.Name(),
		"points":  len(pts),
		"workers": workers,
	}).Info("Sweep started")

	samples := make([]engine.Sample, len(pts))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i := range pts {
		i := i
		group.Go(func() error {
			s, err := eng.Spectrum(gctx, pts[i])
			if err != nil {
				return fmt.Errorf("point %d (%g nm, %g deg, %s): %w",
					i, pts[i].Wavelength, pts[i].Theta, pts[i].Pol, err)
			}
			samples[i] = s
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"engine": eng.Name(),
		"points": len(pts),
		"time":   time.Since(start),
	}).Info("Sweep finished")
	return samples, nil
}

// Dichroism is the ratio (l - r) / (l + r). It is exactly zero for equal
// inputs and undefined when the sum vanishes.
func Dichroism(l, r float64) (float64, error) {
	if l+r == 0 {
		return 0, ErrZeroDichroismSum
	}
	return (l - r) / (l + r), nil
}

// Assemble reshapes the flat ordered samples into an array with shape
// [wavelength][theta][polarization][kind].
func (g Grid) Assemble(samples []engine.Sample) (*sparse.DenseArray, error) {
	if len(samples) != g.Size() {
		return nil, fmt.Errorf("sweep: got %d samples for a %d-point grid", len(samples), g.Size())
	}
	arr := sparse.ZerosDense(len(g.Wavelengths), len(g.Thetas), len(g.Pols), len(Kinds))
	for iw := range g.Wavelengths {
		for it := range g.Thetas {
			for ip := range g.Pols {
				s := samples[g.index(iw, it, ip)]
				arr.Set(s.R, iw, it, ip, 0)
				arr.Set(s.T, iw, it, ip, 1)
				arr.Set(s.A, iw, it, ip, 2)
			}
		}
	}
	return arr, nil
}

// SpectrumMatrix is the single-angle, single-polarization reduction of
// Assemble: an array with shape [wavelength][kind].
func (g Grid) SpectrumMatrix(samples []engine.Sample) (*sparse.DenseArray, error) {
	if len(g.Thetas) != 1 || len(g.Pols) != 1 {
		return nil, fmt.Errorf("sweep: spectrum matrix needs 1 angle and 1 polarization, grid has %d and %d",
			len(g.Thetas), len(g.Pols))
	}
	full, err := g.Assemble(samples)
	if err != nil {
		return nil, err
	}
	arr := sparse.ZerosDense(len(g.Wavelengths), len(Kinds))
	copy(arr.Elements, full.Elements)
	return arr, nil
}

// DichroismArray reduces an LCP/RCP sweep to circular-dichroism ratios with
// shape [wavelength][theta][kind], one ratio per R/T/A quantity.
func (g Grid) DichroismArray(samples []engine.Sample) (*sparse.DenseArray, error) {
	il, ir := -1, -1
	for i, p := range g.Pols {
		switch p {
		case polarization.LCP:
			il = i
		case polarization.RCP:
			ir = i
		}
	}
	if il < 0 || ir < 0 {
		return nil, fmt.Errorf("sweep: dichroism needs both lcp and rcp in the sweep, got %v", g.Pols)
	}
	if len(samples) != g.Size() {
		return nil, fmt.Errorf("sweep: got %d samples for a %d-point grid", len(samples), g.Size())
	}
	arr := sparse.ZerosDense(len(g.Wavelengths), len(g.Thetas), len(Kinds))
	for iw, wl := range g.Wavelengths {
		for it, th := range g.Thetas {
			l := samples[g.index(iw, it, il)]
			r := samples[g.index(iw, it, ir)]
			pairs := [][2]float64{{l.R, r.R}, {l.T, r.T}, {l.A, r.A}}
			for ik, pair := range pairs {
				cd, err := Dichroism(pair[0], pair[1])
				if err != nil {
					return nil, fmt.Errorf("%w at %g nm, %g deg, kind %s",
						err, wl, th, Kinds[ik])
				}
				arr.Set(cd, iw, it, ik)
			}
		}
	}
	return arr, nil
}
