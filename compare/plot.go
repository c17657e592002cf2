package compare

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var kindColors = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
}

func kindColor(i int) color.RGBA {
	return kindColors[i%len(kindColors)]
}

// SavePNG renders the aligned spectra to a static image, solid lines for the
// first engine and dashed for the second.
func SavePNG(path string, al *AlignedSpectra) error {
	p := plot.New()
	p.Title.Text = pageTitle
	p.X.Label.Text = "Wavelength, nm"
	p.Y.Label.Text = "Power fraction"
	p.Add(plotter.NewGrid())

	for e, engineName := range al.Engines {
		for ik, kind := range al.Kinds {
			xy := make(plotter.XYs, len(al.Wavelengths))
			for j, wl := range al.Wavelengths {
				xy[j].X = wl
				xy[j].Y = al.Values[e][ik][j]
			}
			l, err := plotter.NewLine(xy)
			if err != nil {
				return fmt.Errorf("compare: failed to build line %s %s: %w", kind, engineName, err)
			}
			l.LineStyle.Color = kindColor(ik)
			if e == 1 {
				l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			}
			p.Add(l)
			p.Legend.Add(fmt.Sprintf("%s %s", kind, engineName), l)
		}
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("compare: failed to save plot: %w", err)
	}
	return nil
}

// WriteCSV exports the aligned spectra, one row per wavelength with a column
// per (kind, engine).
func WriteCSV(w io.Writer, al *AlignedSpectra) error {
	cw := csv.NewWriter(w)

	header := []string{"wavelength"}
	for _, engineName := range al.Engines {
		for _, kind := range al.Kinds {
			header = append(header, fmt.Sprintf("%s_%s", kind, engineName))
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("compare: failed to write csv header: %w", err)
	}

	for j, wl := range al.Wavelengths {
		row := []string{strconv.FormatFloat(wl, 'g', -1, 64)}
		for e := range al.Engines {
			for ik := range al.Kinds {
				row = append(row, strconv.FormatFloat(al.Values[e][ik][j], 'g', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("compare: failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
