// Package compare loads two previously written result files, one per solver
// engine, aligns them on their shared coordinate axes and renders
// side-by-side views for visual cross-validation. It never modifies the
// files it reads.
package compare

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/result"
)

// axisTolerance is the absolute wavelength difference below which two
// coordinate values are treated as the same sample.
const axisTolerance = 1e-6

// Pair is two datasets of the same kind from two engines.
type Pair struct {
	A, B *result.Dataset
}

// LoadPair reads two result files and checks they hold the same kind of
// data.
func LoadPair(pathA, pathB string) (*Pair, error) {
	a, err := result.ReadFile(pathA)
	if err != nil {
		return nil, err
	}
	b, err := result.ReadFile(pathB)
	if err != nil {
		return nil, err
	}
	if a.Name != b.Name {
		return nil, fmt.Errorf("compare: cannot compare %s against %s data", a.Name, b.Name)
	}
	log.WithFields(log.Fields{
		"a":       pathA,
		"b":       pathB,
		"name":    a.Name,
		"engineA": a.Engine,
		"engineB": b.Engine,
	}).Debug("Result pair loaded")
	return &Pair{A: a, B: b}, nil
}

// AlignedSpectra is a pair of spectra restricted to the wavelengths both
// engines computed. Values is indexed [engine][kind][wavelength] with
// engine 0 = A and 1 = B.
type AlignedSpectra struct {
	Wavelengths []float64
	Kinds       []string
	Values      [2][][]float64
	Engines     [2]string
}

// AlignSpectra intersects the wavelength axes of a spectrum pair.
func (p *Pair) AlignSpectra() (*AlignedSpectra, error) {
	if p.A.Name != "spectrum" {
		return nil, fmt.Errorf("compare: %s data cannot be aligned as spectra", p.A.Name)
	}
	wlA, wlB := p.A.Coords["wavelength"], p.B.Coords["wavelength"]
	if len(wlA) == 0 || len(wlB) == 0 {
		return nil, fmt.Errorf("compare: missing wavelength axis")
	}
	kinds := p.A.Labels["kind"]
	if len(kinds) == 0 {
		return nil, fmt.Errorf("compare: missing kind labels")
	}

	var wl []float64
	var idxA, idxB []int
	ib := 0
	for ia, v := range wlA {
		for ib < len(wlB) && wlB[ib] < v-axisTolerance {
			ib++
		}
		if ib < len(wlB) && math.Abs(wlB[ib]-v) <= axisTolerance {
			wl = append(wl, v)
			idxA = append(idxA, ia)
			idxB = append(idxB, ib)
			ib++
		}
	}
	if len(wl) == 0 {
		return nil, fmt.Errorf("compare: the two files share no wavelengths")
	}

	al := &AlignedSpectra{
		Wavelengths: wl,
		Kinds:       kinds,
		Engines:     [2]string{p.A.Engine, p.B.Engine},
	}
	for e, src := range []*result.Dataset{p.A, p.B} {
		idx := idxA
		if e == 1 {
			idx = idxB
		}
		series := make([][]float64, len(kinds))
		for ik, kind := range kinds {
			col, err := src.KindIndex(kind)
			if err != nil {
				return nil, err
			}
			series[ik] = make([]float64, len(idx))
			for j, iw := range idx {
				series[ik][j] = src.Data.Get(iw, col)
			}
		}
		al.Values[e] = series
	}
	return al, nil
}

// FieldPair checks a near-field pair shares its sampling grid and returns it.
func (p *Pair) FieldPair() (*Pair, error) {
	if p.A.Name != "efield" {
		return nil, fmt.Errorf("compare: %s data is not a near-field map", p.A.Name)
	}
	for _, ax := range []string{"x", "y"} {
		a, b := p.A.Coords[ax], p.B.Coords[ax]
		if len(a) != len(b) {
			return nil, fmt.Errorf("compare: %s axes differ in length (%d vs %d)", ax, len(a), len(b))
		}
	}
	return p, nil
}
