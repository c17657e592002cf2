// Package materials provides tabulated optical constants (n, k) with linear
// interpolation between the tabulated wavelengths. Tables for the default
// nanodisk stack (Au, SiO2, Air) are embedded; additional materials can be
// loaded from CSV files with wavelength, n and k columns.
package materials

import (
	"embed"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

//go:embed data/*.csv
var builtins embed.FS

// ErrWavelengthRange is returned when a lookup falls outside the span of the
// tabulated dispersion data.
var ErrWavelengthRange = fmt.Errorf("materials: wavelength outside tabulated range")

// Material is one dispersion table. Wavelengths are in nanometers and sorted
// ascending.
type Material struct {
	Name string

	wl []float64
	n  []float64
	k  []float64
}

// Library maps material names, case-insensitively, to their tables.
type Library struct {
	byName map[string]*Material
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{byName: make(map[string]*Material)}
}

// Builtin loads the embedded dispersion tables.
func Builtin() (*Library, error) {
	lib := NewLibrary()
	entries, err := builtins.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded tables: %w", err)
	}
	for _, e := range entries {
		f, err := builtins.Open(path.Join("data", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded table %s: %w", e.Name(), err)
		}
		name := canonicalName(strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
		m, err := LoadCSV(name, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded table %s: %w", e.Name(), err)
		}
		lib.Add(m)
	}
	return lib, nil
}

// canonicalName maps table file names onto the material names used in
// configuration files.
func canonicalName(base string) string {
	switch strings.ToLower(base) {
	case "au":
		return "Au"
	case "sio2":
		return "SiO2"
	case "air":
		return "Air"
	default:
		return base
	}
}

// LoadCSV parses a dispersion table with a header row and columns
// wavelength, n, k.
func LoadCSV(name string, r io.Reader) (*Material, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(','),
		dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse dispersion table for %s: %w", name, df.Err)
	}
	for _, col := range []string{"wavelength", "n", "k"} {
		if !hasColumn(df, col) {
			return nil, fmt.Errorf("dispersion table for %s is missing column %q", name, col)
		}
	}
	m := &Material{
		Name: name,
		wl:   df.Col("wavelength").Float(),
		n:    df.Col("n").Float(),
		k:    df.Col("k").Float(),
	}
	if len(m.wl) < 2 {
		return nil, fmt.Errorf("dispersion table for %s needs at least 2 rows, got %d", name, len(m.wl))
	}
	if !sort.Float64sAreSorted(m.wl) {
		return nil, fmt.Errorf("dispersion table for %s is not sorted by wavelength", name)
	}
	return m, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, c := range df.Names() {
		if c == name {
			return true
		}
	}
	return false
}

func (l *Library) Add(m *Material) {
	l.byName[strings.ToLower(m.Name)] = m
}

// Lookup returns the material with the given name, case-insensitively.
func (l *Library) Lookup(name string) (*Material, error) {
	m, ok := l.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("materials: unknown material %q", name)
	}
	return m, nil
}

// Range returns the wavelength span covered by the table.
func (m *Material) Range() (min, max float64) {
	return m.wl[0], m.wl[len(m.wl)-1]
}

// Index returns the complex refractive index n + ik at the given wavelength
// in nanometers, linearly interpolated between tabulated points.
func (m *Material) Index(wl float64) (complex128, error) {
	if wl < m.wl[0] || wl > m.wl[len(m.wl)-1] {
		return 0, fmt.Errorf("%w: %g nm for %s (tabulated %g-%g nm)",
			ErrWavelengthRange, wl, m.Name, m.wl[0], m.wl[len(m.wl)-1])
	}
	i := sort.SearchFloat64s(m.wl, wl)
	if i < len(m.wl) && m.wl[i] == wl {
		return complex(m.n[i], m.k[i]), nil
	}
	// wl is strictly between m.wl[i-1] and m.wl[i]
	t := (wl - m.wl[i-1]) / (m.wl[i] - m.wl[i-1])
	n := m.n[i-1] + t*(m.n[i]-m.n[i-1])
	k := m.k[i-1] + t*(m.k[i]-m.k[i-1])
	return complex(n, k), nil
}

// Permittivity returns the relative permittivity (n + ik)^2 at the given
// wavelength. When lossless is set the imaginary part is dropped before
// squaring.
func (m *Material) Permittivity(wl float64, lossless bool) (complex128, error) {
	nk, err := m.Index(wl)
	if err != nil {
		return 0, err
	}
	if lossless {
		nk = complex(real(nk), 0)
	}
	return nk * nk, nil
}
