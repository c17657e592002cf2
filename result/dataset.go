// Package result persists sweep outputs as self-describing labeled arrays.
// A Dataset pairs a dense numeric array with named dimensions, coordinate
// axes and the full run configuration, and is written to a NetCDF file that
// a later reader can interpret without any external records.
package result

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
)

// SchemaVersion tags the attribute layout of written files. Readers refuse
// files written with a different version.
const SchemaVersion = "1"

// Dataset is one labeled array with provenance.
type Dataset struct {
	// Name of the data variable, e.g. "spectrum" or "efield".
	Name string
	// Dims are the dimension names in storage order.
	Dims []string
	// Coords holds the numeric coordinate axis for dimensions that have
	// one (wavelength, theta, x, y).
	Coords map[string][]float64
	// Labels holds the string-valued axis for dimensions indexed by name
	// rather than number (the spectrum kind axis).
	Labels map[string][]string

	Data *sparse.DenseArray

	Engine  string
	Created time.Time
	Config  entity.Config
}

// NewSpectrum wraps a [wavelength][kind] array.
func NewSpectrum(engineName string, cfg entity.Config, wavelengths []float64, kinds []string, data *sparse.DenseArray) (*Dataset, error) {
	if len(data.Shape) != 2 || data.Shape[0] != len(wavelengths) || data.Shape[1] != len(kinds) {
		return nil, fmt.Errorf("result: spectrum shape %v does not match %d wavelengths x %d kinds",
			data.Shape, len(wavelengths), len(kinds))
	}
	return &Dataset{
		Name:    "spectrum",
		Dims:    []string{"wavelength", "kind"},
		Coords:  map[string][]float64{"wavelength": wavelengths},
		Labels:  map[string][]string{"kind": kinds},
		Data:    data,
		Engine:  engineName,
		Created: time.Now(),
		Config:  cfg,
	}, nil
}

// NewAngleSpectrum wraps a [wavelength][theta][kind] array.
func NewAngleSpectrum(engineName string, cfg entity.Config, wavelengths, thetas []float64, kinds []string, data *sparse.DenseArray) (*Dataset, error) {
	if len(data.Shape) != 3 || data.Shape[0] != len(wavelengths) ||
		data.Shape[1] != len(thetas) || data.Shape[2] != len(kinds) {
		return nil, fmt.Errorf("result: angle spectrum shape %v does not match %dx%dx%d",
			data.Shape, len(wavelengths), len(thetas), len(kinds))
	}
	return &Dataset{
		Name: "dichroism",
		Dims: []string{"wavelength", "theta", "kind"},
		Coords: map[string][]float64{
			"wavelength": wavelengths,
			"theta":      thetas,
		},
		Labels:  map[string][]string{"kind": kinds},
		Data:    data,
		Engine:  engineName,
		Created: time.Now(),
		Config:  cfg,
	}, nil
}

// NewNearField wraps a [x][y] field magnitude map.
func NewNearField(engineName string, cfg entity.Config, x, y []float64, e *sparse.DenseArray) (*Dataset, error) {
	if len(e.Shape) != 2 || e.Shape[0] != len(x) || e.Shape[1] != len(y) {
		return nil, fmt.Errorf("result: near-field shape %v does not match %dx%d grid",
			e.Shape, len(x), len(y))
	}
	return &Dataset{
		Name:    "efield",
		Dims:    []string{"x", "y"},
		Coords:  map[string][]float64{"x": x, "y": y},
		Data:    e,
		Engine:  engineName,
		Created: time.Now(),
		Config:  cfg,
	}, nil
}

// KindIndex returns the position of a named kind on the kind axis.
func (d *Dataset) KindIndex(kind string) (int, error) {
	for i, k := range d.Labels["kind"] {
		if k == kind {
			return i, nil
		}
	}
	return 0, fmt.Errorf("result: no kind %q in dataset %s", kind, d.Name)
}
