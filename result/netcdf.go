package result

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	log "github.com/sirupsen/logrus"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
)

// Write serializes the dataset to w as a NetCDF file. Coordinate axes are
// stored as 1-D variables over their dimension, string-labeled axes as a
// space-joined "<dim>_labels" attribute and the run configuration as JSON
// string attributes, so the file is fully self-describing.
func (d *Dataset) Write(w *os.File) error {
	h := cdf.NewHeader(d.Dims, d.Data.Shape)
	h.AddAttribute("", "schema_version", SchemaVersion)
	h.AddAttribute("", "engine", d.Engine)
	h.AddAttribute("", "created", d.Created.UTC().Format(time.RFC3339))

	for attr, v := range map[string]any{
		"illumination": d.Config.Illumination,
		"geometry":     d.Config.Geometry,
		"options":      d.Config.Options,
	} {
		enc, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("result: failed to encode %s attribute: %w", attr, err)
		}
		h.AddAttribute("", attr, string(enc))
	}

	for dim, labels := range d.Labels {
		h.AddAttribute("", dim+"_labels", strings.Join(labels, " "))
	}

	coordNames := make([]string, 0, len(d.Coords))
	for dim := range d.Coords {
		coordNames = append(coordNames, dim)
	}
	sort.Strings(coordNames)
	for _, dim := range coordNames {
		h.AddVariable(dim, []string{dim}, []float64{0})
	}
	h.AddVariable(d.Name, d.Dims, []float64{0})
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("result: failed to create netcdf file: %w", err)
	}
	for _, dim := range coordNames {
		if err := writeVariable(f, dim, d.Coords[dim]); err != nil {
			return err
		}
	}
	if err := writeVariable(f, d.Name, d.Data.Elements); err != nil {
		return err
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return fmt.Errorf("result: failed to finalize netcdf file: %w", err)
	}
	return nil
}

func writeVariable(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	begin := make([]int, len(end))
	w := f.Writer(name, begin, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("result: failed to write variable %s: %w", name, err)
	}
	return nil
}

// WriteFile writes the dataset to path and logs the destination.
func (d *Dataset) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("result: failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := d.Write(f); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"path":   path,
		"name":   d.Name,
		"shape":  d.Data.Shape,
		"engine": d.Engine,
	}).Info("Dataset written")
	return nil
}

// Read loads a dataset previously written with Write. The file's schema
// version must match SchemaVersion.
func Read(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("result: failed to open netcdf file: %w", err)
	}

	version, ok := f.Header.GetAttribute("", "schema_version").(string)
	if !ok {
		return nil, fmt.Errorf("result: file has no schema_version attribute")
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("result: schema version %s is incompatible with %s", version, SchemaVersion)
	}

	d := &Dataset{
		Coords: make(map[string][]float64),
		Labels: make(map[string][]string),
	}
	if d.Engine, ok = f.Header.GetAttribute("", "engine").(string); !ok {
		return nil, fmt.Errorf("result: file has no engine attribute")
	}
	created, ok := f.Header.GetAttribute("", "created").(string)
	if !ok {
		return nil, fmt.Errorf("result: file has no created attribute")
	}
	if d.Created, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("result: bad created attribute: %w", err)
	}
	if err := decodeConfig(f, &d.Config); err != nil {
		return nil, err
	}

	// Variables named after their own single dimension are coordinate
	// axes; the remaining one is the data.
	for _, v := range f.Header.Variables() {
		dims := f.Header.Dimensions(v)
		vals, err := readVariable(f, v)
		if err != nil {
			return nil, err
		}
		if len(dims) == 1 && dims[0] == v {
			d.Coords[v] = vals
			continue
		}
		if d.Name != "" {
			return nil, fmt.Errorf("result: more than one data variable (%s, %s)", d.Name, v)
		}
		d.Name = v
		d.Dims = dims
		d.Data = sparse.ZerosDense(f.Header.Lengths(v)...)
		copy(d.Data.Elements, vals)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("result: no data variable in file")
	}

	for _, dim := range d.Dims {
		if labels, ok := f.Header.GetAttribute("", dim+"_labels").(string); ok {
			d.Labels[dim] = strings.Fields(labels)
		}
	}
	return d, nil
}

func decodeConfig(f *cdf.File, cfg *entity.Config) error {
	for attr, dst := range map[string]any{
		"illumination": &cfg.Illumination,
		"geometry":     &cfg.Geometry,
		"options":      &cfg.Options,
	} {
		enc, ok := f.Header.GetAttribute("", attr).(string)
		if !ok {
			return fmt.Errorf("result: file has no %s attribute", attr)
		}
		if err := json.Unmarshal([]byte(enc), dst); err != nil {
			return fmt.Errorf("result: failed to decode %s attribute: %w", attr, err)
		}
	}
	return nil
}

func readVariable(f *cdf.File, name string) ([]float64, error) {
	n := 1
	for _, l := range f.Header.Lengths(name) {
		n *= l
	}
	buf := make([]float64, n)
	r := f.Reader(name, nil, nil)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("result: failed to read variable %s: %w", name, err)
	}
	return buf, nil
}

// ReadFile loads a dataset from path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("result: failed to open %s: %w", path, err)
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
