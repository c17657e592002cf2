package rcwa

import (
	"fmt"
	"strings"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/engine"
	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity/shape"
)

// spectrumScript builds the Lua driver for one (wavelength, angle,
// polarization) point. The script prints a single row "R T" normalized to
// the incident power.
func (e *Engine) spectrumScript(pt engine.Point) (string, error) {
	var b strings.Builder
	if err := e.writePreamble(&b, pt); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, `
local inc, refl = S:GetPowerFlux('superstrate')
local fwd, _ = S:GetPowerFlux('substrate')
print(string.format("%%.12g %%.12g", -refl / inc, fwd / inc))
`)
	return b.String(), nil
}

// nearFieldScript builds the Lua driver sampling |E| on a grid across one
// unit cell at height z. One "x y |E|" row per grid point, x outer loop.
func (e *Engine) nearFieldScript(req engine.NearFieldRequest) (string, error) {
	var b strings.Builder
	if err := e.writePreamble(&b, req.Point); err != nil {
		return "", err
	}
	fmt.Fprintf(&b, `
local nx, ny = %d, %d
local px, py = %g, %g
local z = %g
for i = 0, nx - 1 do
	local x = -px/2 + px/nx * (i + 0.5)
	for j = 0, ny - 1 do
		local y = -py/2 + py/ny * (j + 0.5)
		local exr, eyr, ezr, exi, eyi, ezi = S:GetEField({x, y, z})
		local e2 = exr*exr + eyr*eyr + ezr*ezr + exi*exi + eyi*eyi + ezi*ezi
		print(string.format("%%.6g %%.6g %%.12g", x, y, math.sqrt(e2)))
	end
end
`, req.Nx, req.Ny, e.geo.PeriodX, e.geo.PeriodY, req.Z)
	return b.String(), nil
}

// writePreamble emits the lattice, materials, layer stack and excitation
// common to both drivers. Lengths are kept in nanometers throughout, so the
// frequency is 1/wavelength in the solver's reduced units.
func (e *Engine) writePreamble(b *strings.Builder, pt engine.Point) error {
	fmt.Fprintf(b, "S = S4.NewSimulation()\n")
	fmt.Fprintf(b, "S:SetLattice({%g, 0}, {0, %g})\n", e.geo.PeriodX, e.geo.PeriodY)
	fmt.Fprintf(b, "S:SetNumG(%d)\n", e.ill.Orders)

	switch e.opt.Formulation {
	case "normal-vector":
		fmt.Fprintf(b, "S:UseNormalVectorBasis()\n")
	case "pol-decomp":
		fmt.Fprintf(b, "S:UsePolarizationDecomposition()\n")
	}

	seen := map[string]bool{}
	for _, m := range []string{e.geo.Superstrate, e.geo.Background,
		e.geo.Inclusion, e.geo.Substrate} {
		if seen[m] {
			continue
		}
		seen[m] = true
		mat, err := e.lib.Lookup(m)
		if err != nil {
			return err
		}
		eps, err := mat.Permittivity(pt.Wavelength, !e.geo.Lossy)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "S:AddMaterial(%q, {%.9g, %.9g})\n", m, real(eps), imag(eps))
	}

	fmt.Fprintf(b, "S:AddLayer('superstrate', 0, %q)\n", e.geo.Superstrate)
	fmt.Fprintf(b, "S:AddLayer('slab', %g, %q)\n", e.geo.Height, e.geo.Background)
	switch e.geo.Shape {
	case shape.Disk:
		fmt.Fprintf(b, "S:SetLayerPatternCircle('slab', %q, {0, 0}, %g)\n",
			e.geo.Inclusion, e.geo.Radius)
	case shape.Ellipse:
		fmt.Fprintf(b, "S:SetLayerPatternEllipse('slab', %q, {0, 0}, 0, {%g, %g})\n",
			e.geo.Inclusion, e.geo.Radius, e.geo.SemiAxisY())
	case shape.Rectangle:
		fmt.Fprintf(b, "S:SetLayerPatternRectangle('slab', %q, {0, 0}, 0, {%g, %g})\n",
			e.geo.Inclusion, e.geo.Radius, e.geo.SemiAxisY())
	default:
		return fmt.Errorf("rcwa: unsupported shape %v", e.geo.Shape)
	}
	fmt.Fprintf(b, "S:AddLayer('substrate', 0, %q)\n", e.geo.Substrate)

	sAmp, sPhase, pAmp, pPhase := engine.SPAmplitudes(pt.Pol)
	fmt.Fprintf(b, "S:SetExcitationPlanewave({%g, %g}, {%g, %g}, {%g, %g})\n",
		pt.Theta, pt.Phi, sAmp, sPhase, pAmp, pPhase)
	fmt.Fprintf(b, "S:SetFrequency(%.12g)\n", 1/pt.Wavelength)
	return nil
}
