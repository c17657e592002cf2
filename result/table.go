package result

import (
	"fmt"
	"io"
	"time"

	"github.com/ctessum/sparse"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/polarization"
)

// WriteAngleTable writes the plain-text companion of an angle sweep: a
// commented header block describing the run followed by one fixed-width row
// per (wavelength, theta) sample, with R/T/A columns for every polarization
// basis and, when available, the circular-dichroism ratios.
//
// data has shape [wavelength][theta][polarization][kind]; cd, which may be
// nil, has shape [wavelength][theta][kind].
func WriteAngleTable(w io.Writer, engineName string, cfg entity.Config,
	wavelengths, thetas []float64, pols []polarization.Polarization,
	kinds []string, data, cd *sparse.DenseArray) error {

	geo := cfg.Geometry
	fmt.Fprintf(w, "# EmuS4Tutorials angle sweep\n")
	fmt.Fprintf(w, "# engine: %s\n", engineName)
	fmt.Fprintf(w, "# created: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "# shape: %s  period_x: %g  period_y: %g  radius: %g  height: %g\n",
		geo.Shape, geo.PeriodX, geo.PeriodY, geo.Radius, geo.Height)
	fmt.Fprintf(w, "# stack: %s in %s on %s under %s\n",
		geo.Inclusion, geo.Background, geo.Substrate, geo.Superstrate)
	fmt.Fprintf(w, "# orders: %d  formulation: %s\n",
		cfg.Illumination.Orders, cfg.Options.Formulation)

	fmt.Fprintf(w, "# %13s %12s", "wavelength_nm", "theta_deg")
	for _, p := range pols {
		for _, k := range kinds {
			fmt.Fprintf(w, " %12s", fmt.Sprintf("%s_%s", k, p))
		}
	}
	if cd != nil {
		for _, k := range kinds {
			fmt.Fprintf(w, " %12s", "CD_"+k)
		}
	}
	fmt.Fprintln(w)

	for iw, wl := range wavelengths {
		for it, th := range thetas {
			fmt.Fprintf(w, "%15.4f %12.4f", wl, th)
			for ip := range pols {
				for ik := range kinds {
					fmt.Fprintf(w, " %12.8f", data.Get(iw, it, ip, ik))
				}
			}
			if cd != nil {
				for ik := range kinds {
					fmt.Fprintf(w, " %12.8f", cd.Get(iw, it, ik))
				}
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
