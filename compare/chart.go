package compare

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/result"
)

const pageTitle = "Cross-validation of RCWA and FEM multilayer solvers"

// RenderHTML renders the aligned spectra as an interactive chart, one series
// per (kind, engine).
func RenderHTML(w io.Writer, al *AlignedSpectra) error {
	line := charts.NewLine()

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#ffffff",
			Width:           "100%",
			Height:          "600px",
			PageTitle:       pageTitle,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "slider",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithLegendOpts(opts.Legend{
			Orient:       "horizontal",
			Show:         opts.Bool(true),
			SelectedMode: "multiple",
			Type:         "scroll",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "cross",
				Snap: opts.Bool(true),
			},
		}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Top:  "0%",
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show:  opts.Bool(true),
					Type:  "png",
					Name:  "chart",
					Title: "Save as image",
				},
				DataZoom: &opts.ToolBoxFeatureDataZoom{
					Show:       opts.Bool(true),
					YAxisIndex: "default",
					Title: map[string]string{
						"zoom": "area zooming",
						"back": "restore area zooming",
					},
				},
				DataView: &opts.ToolBoxFeatureDataView{
					Show:  opts.Bool(true),
					Title: "Data view",
					Lang:  []string{"data view", "turn off", "refresh"},
				},
				Restore: &opts.ToolBoxFeatureRestore{
					Show:  opts.Bool(true),
					Title: "refresh",
				},
			},
		}),
		// AXIS
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Wavelength, nm",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "Power fraction",
			Type:  "value",
			Show:  opts.Bool(true),
			Scale: opts.Bool(true),
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)

	line.SetXAxis(al.Wavelengths)
	for e, engineName := range al.Engines {
		for ik, kind := range al.Kinds {
			series := make([]opts.LineData, len(al.Wavelengths))
			for j, v := range al.Values[e][ik] {
				series[j] = opts.LineData{Value: v}
			}
			line.AddSeries(fmt.Sprintf("%s %s", kind, engineName), series)
		}
	}

	return line.Render(w)
}

// RenderFieldHTML renders two near-field magnitude maps side by side on one
// page.
func RenderFieldHTML(w io.Writer, p *Pair) error {
	pair, err := p.FieldPair()
	if err != nil {
		return err
	}
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(
		fieldHeatMap(pair.A),
		fieldHeatMap(pair.B),
	)
	return page.Render(w)
}

func fieldHeatMap(d *result.Dataset) *charts.HeatMap {
	hm := charts.NewHeatMap()

	min, max := d.Data.Elements[0], d.Data.Elements[0]
	for _, v := range d.Data.Elements {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	xs := d.Coords["x"]
	ys := d.Coords["y"]
	xLabels := make([]string, len(xs))
	for i, v := range xs {
		xLabels[i] = fmt.Sprintf("%.0f", v)
	}
	yLabels := make([]string, len(ys))
	for i, v := range ys {
		yLabels[i] = fmt.Sprintf("%.0f", v)
	}

	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#ffffff",
			Width:           "48%",
			Height:          "500px",
			PageTitle:       pageTitle,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("|E| %s", d.Engine),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "x, nm",
			Type: "category",
			Data: xLabels,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "y, nm",
			Type: "category",
			Data: yLabels,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(min),
			Max:        float32(max),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#000004", "#721f81", "#f1605d", "#fcfdbf"},
			},
		}),
	)

	data := make([]opts.HeatMapData, 0, len(xs)*len(ys))
	for ix := range xs {
		for iy := range ys {
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{ix, iy, d.Data.Get(ix, iy)},
			})
		}
	}
	hm.SetXAxis(xLabels).AddSeries("|E|", data)
	return hm
}
