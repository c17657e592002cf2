package fem

import (
	"fmt"
	"strings"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
)

// spectrumScript builds the Python driver for one sweep point. The stack is
// superstrate / patterned slab / substrate, matching the Lua driver of the
// rcwa backend, and the script prints one tagged "R T A" row.
func (e *Engine) spectrumScript(pt engine.Point) (string, error) {
	var b strings.Builder
	if err := e.writePreamble(&b, pt); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, `
stack = Stack((sim_substrate, sim_slab, sim_superstrate))
stack.calc_scat(pol=%q)
R = float(stack.R_net[0, 0].real)
T = float(stack.T_net[0, 0].real)
print("%s %%.12g %%.12g %%.12g" %% (R, T, 1.0 - R - T))
`, stackPol(pt), resultTag)
	return b.String(), nil
}

// nearFieldScript builds the Python driver sampling |E| on a grid at height
// z inside the slab. One tagged value per grid point, x outer loop, matching
// the row order the backend reassembles.
func (e *Engine) nearFieldScript(req engine.NearFieldRequest) (string, error) {
	var b strings.Builder
	if err := e.writePreamble(&b, req.Point); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, `
stack = Stack((sim_substrate, sim_slab, sim_superstrate))
stack.calc_scat(pol=%q)
E = plotting.fields_in_plane(stack, lay_interest=1, z_fraction=%.9g,
                             n_points=(%d, %d))
for row in np.abs(E).reshape(%d, %d):
    for v in row:
        print("%s %%.12g" %% v)
`, stackPol(req.Point), req.Z/e.geo.Height, req.Nx, req.Ny, req.Nx, req.Ny, resultTag)
	return b.String(), nil
}

// writePreamble emits the imports, light object and per-layer mode
// calculations shared by both drivers. The module path comes from the engine
// configuration rather than any interpreter-global setting.
func (e *Engine) writePreamble(b *strings.Builder, pt engine.Point) error {
	fmt.Fprintf(b, "import sys\n")
	if e.cfg.ModulePath != "" {
		fmt.Fprintf(b, "sys.path.insert(0, %q)\n", e.cfg.ModulePath)
	}
	fmt.Fprintf(b, "import numpy as np\n")
	fmt.Fprintf(b, "from emustack import objects, materials, plotting\n")
	fmt.Fprintf(b, "from emustack.stack import Stack\n\n")

	fmt.Fprintf(b, "light = objects.Light(%g, max_order_PWs=%d, theta=%g, phi=%g)\n",
		pt.Wavelength, e.ill.Orders, pt.Theta, pt.Phi)

	halfSpaces := []struct{ layer, material string }{
		{"superstrate", e.geo.Superstrate},
		{"substrate", e.geo.Substrate},
	}
	for _, hs := range halfSpaces {
		nk, err := e.index(hs.material, pt.Wavelength)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%s = objects.ThinFilm(period=%g, height_nm='semi_inf',\n"+
			"    world_1d=False, material=materials.Material(%.9g + %.9gj))\n",
			hs.layer, e.geo.PeriodX, real(nk), imag(nk))
	}

	incNK, err := e.index(e.geo.Inclusion, pt.Wavelength)
	if err != nil {
		return err
	}
	bgNK, err := e.index(e.geo.Background, pt.Wavelength)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, "slab = objects.NanoStruct('2D_array', period=%g, period_y=%g,\n"+
		"    diameter1=%g, inc_shape=%q, height_nm=%g,\n"+
		"    inclusion_a=materials.Material(%.9g + %.9gj),\n"+
		"    background=materials.Material(%.9g + %.9gj),\n"+
		"    lc_bkg=0.1, lc2=%g, force_mesh=%s)\n",
		e.geo.PeriodX, e.geo.PeriodY,
		2*e.geo.Radius, e.geo.Shape.String(), e.geo.Height,
		real(incNK), imag(incNK), real(bgNK), imag(bgNK),
		0.1/float64(e.opt.MeshRefine), pyBool(e.opt.ForceRemesh))

	fmt.Fprintf(b, "\nsim_superstrate = superstrate.calc_modes(light)\n")
	fmt.Fprintf(b, "sim_slab = slab.calc_modes(light)\n")
	fmt.Fprintf(b, "sim_substrate = substrate.calc_modes(light)\n")
	return nil
}

func (e *Engine) index(material string, wl float64) (complex128, error) {
	m, err := e.lib.Lookup(material)
	if err != nil {
		return 0, err
	}
	nk, err := m.Index(wl)
	if err != nil {
		return 0, err
	}
	if !e.geo.Lossy {
		nk = complex(real(nk), 0)
	}
	return nk, nil
}

// stackPol maps the polarization onto the names the stack solver accepts:
// "S", "P", "LCP", "RCP".
func stackPol(pt engine.Point) string {
	return strings.ToUpper(pt.Pol.String())
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
