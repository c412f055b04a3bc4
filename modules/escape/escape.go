// Package escape implements atmospheric-escape evolution: surface water
// loss, oxygen buildup, and envelope erosion driven by XUV-powered
// hydrodynamic escape. Grounded on original_source/src/atmesc.c
// (fnPropsAuxAtmEsc, fbDoesWaterEscape, fdD*MassDt, fdPlanetRadius).
package escape

import (
	"fmt"
	"math"

	"github.com/go-kit/kit/log/level"

	vp "vplanet"
)

// kopparapu14RGFlux returns the Kopparapu et al. 2013/2014 runaway
// greenhouse instellation limit for a star of the given effective
// temperature, in erg/s/cm^2; it does not depend on the planet's orbit.
// A body receiving more than this loses its surface water within the
// Jeans-escape regime rather than retaining an equilibrium ocean.
// Reproduced here as a quadratic fit in (Teff - 5780 K) rather than the
// original's full coefficient table, which lives in a data file out of
// this module's scope.
func kopparapu14RGFlux(teffStar float64) float64 {
	tStar := teffStar - 5780
	seff := 1.0512 + 1.3242e-4*tStar + 1.5418e-8*tStar*tStar
	const solarFluxAtEarth = 1.361e6 // erg/s/cm^2
	return seff * solarFluxAtEarth
}

// Module is the atmospheric-escape physics module.
type Module struct{}

func (Module) Name() string { return "atmesc" }

// ReadOptions parses this module's options out of a body's raw option map,
// deleting every key it recognizes so bodyfile.ApplyOptions can detect
// leftovers as unrecognized-option input errors.
func (Module) ReadOptions(b *vp.Body, opts map[string]string) error {
	str := func(name string) (string, bool) {
		v, ok := opts[name]
		if ok {
			delete(opts, name)
		}
		return v, ok
	}
	flt := func(name string) (float64, bool, error) {
		raw, ok := str(name)
		if !ok {
			return 0, false, nil
		}
		v, _, err := vp.ParseFloatOption(raw)
		if err != nil {
			return 0, true, &vp.InputError{File: b.Name, Option: name, Reason: err.Error()}
		}
		return v, true, nil
	}

	if v, ok, err := flt("dSurfaceWaterMass"); err != nil {
		return err
	} else if ok {
		b.SurfaceWaterMass = v
	}
	if v, ok, err := flt("dEnvelopeMass"); err != nil {
		return err
	} else if ok {
		b.EnvelopeMass = v
	}
	if v, ok, err := flt("dFlowTemp"); err != nil {
		return err
	} else if ok {
		b.FlowTemp = v
	}
	if v, ok, err := flt("dXUVFlux"); err != nil {
		return err
	} else if ok {
		b.XUVFlux = v
	}
	if v, ok, err := flt("dAlbedo"); err != nil {
		return err
	} else if ok {
		b.Albedo = v
	}
	if v, ok, err := flt("dXFrac"); err != nil {
		return err
	} else if ok {
		b.XFrac = v
	}
	if v, ok, err := flt("dXUVEfficiency"); err != nil {
		return err
	} else if ok {
		b.XUVEfficiency = v
	}
	if v, ok, err := flt("dJeansTime"); err != nil {
		return err
	} else if ok {
		b.JeansTime = v
	}
	if v, ok := str("sWaterLossModel"); ok {
		switch v {
		case "LB15":
			b.WaterLossModel = vp.LB15
		case "LBEXACT":
			b.WaterLossModel = vp.LBExact
		case "TIAN":
			b.WaterLossModel = vp.Tian
		default:
			return &vp.InputError{File: b.Name, Option: "sWaterLossModel", Reason: "unrecognized value " + v}
		}
	}
	if v, ok := str("sPlanetRadiusModel"); ok {
		switch v {
		case "LOP12":
			b.RadiusModel = vp.RadiusLopez12
		case "SOTIN07":
			b.RadiusModel = vp.RadiusSotin07
		case "PROXCENB":
			b.RadiusModel = vp.RadiusProxCenB
		case "LEHMER17":
			b.RadiusModel = vp.RadiusLehmer17
		default:
			return &vp.InputError{File: b.Name, Option: "sPlanetRadiusModel", Reason: "unrecognized value " + v}
		}
	}
	if v, ok := str("bInstantO2Sink"); ok {
		b.InstantO2Sink = v == "1" || v == "true"
	}
	if v, ok := str("bHaltMinSurfaceWaterMass"); ok {
		b.HaltMinSurfaceWaterMass = v == "1" || v == "true"
	}
	if v, ok := str("bHaltEnvelopeGone"); ok {
		b.HaltEnvelopeGone = v == "1" || v == "true"
	}
	if v, ok := str("bCircumbinary"); ok {
		b.Circumbinary = v == "1" || v == "true"
	}
	return nil
}

func (m Module) Verify(sys *vp.System, bi int) error {
	b := sys.Bodies[bi]
	if b.IsStar {
		// Atmospheric escape is a planet-only concern; the star's Radius
		// is owned by modules/stellar's tabulated track. Claiming nothing
		// here keeps the two modules from both trying to own the VALUE-kind
		// Radius variable on body 0 (spec.md §3's single-owner invariant).
		return nil
	}
	claimed := m.AssignDerivatives(b)
	is := func(name string) bool {
		for _, c := range claimed {
			if c == name {
				return true
			}
		}
		return false
	}

	if is("SurfaceWaterMass") {
		sys.AddVariable(bi, &vp.Variable{
			Name: "SurfaceWaterMass", Kind: vp.Rate,
			Get: func(bb *vp.Body) float64 { return bb.SurfaceWaterMass },
			Set: func(bb *vp.Body, v float64) { bb.SurfaceWaterMass = v },
			Contributors: []vp.Contributor{{Module: m, IABody: []int{0, bi}, Compute: func(s *vp.System, ia []int) float64 {
				return dSurfaceWaterMassDt(s, ia[1])
			}}},
		})
		sys.AddVariable(bi, &vp.Variable{
			Name: "OxygenMass", Kind: vp.Rate,
			Get: func(bb *vp.Body) float64 { return bb.OxygenMass },
			Set: func(bb *vp.Body, v float64) { bb.OxygenMass = v },
			Contributors: []vp.Contributor{{Module: m, IABody: []int{0, bi}, Compute: func(s *vp.System, ia []int) float64 {
				return dOxygenMassDt(s, ia[1])
			}}},
		})
		sys.AddVariable(bi, &vp.Variable{
			Name: "OxygenMantleMass", Kind: vp.Rate,
			Get: func(bb *vp.Body) float64 { return bb.OxygenMantleMass },
			Set: func(bb *vp.Body, v float64) { bb.OxygenMantleMass = v },
			Contributors: []vp.Contributor{{Module: m, IABody: []int{0, bi}, Compute: func(s *vp.System, ia []int) float64 {
				return dOxygenMantleMassDt(s, ia[1])
			}}},
		})
	}
	if is("EnvelopeMass") {
		sys.AddVariable(bi, &vp.Variable{
			Name: "EnvelopeMass", Kind: vp.Rate,
			Get: func(bb *vp.Body) float64 { return bb.EnvelopeMass },
			Set: func(bb *vp.Body, v float64) { bb.EnvelopeMass = v },
			Contributors: []vp.Contributor{{Module: m, IABody: []int{0, bi}, Compute: func(s *vp.System, ia []int) float64 {
				return dEnvelopeMassDt(s, ia[1])
			}}},
		})
		// Planet mass tracks the envelope loss rate exactly (spec.md §4.9:
		// "planet mass (RATE, rate = envelope rate)") — the same
		// contributor function, registered against Body.Mass instead of
		// Body.EnvelopeMass.
		sys.AddVariable(bi, &vp.Variable{
			Name: "Mass", Kind: vp.Rate,
			Get: func(bb *vp.Body) float64 { return bb.Mass },
			Set: func(bb *vp.Body, v float64) { bb.Mass = v },
			Contributors: []vp.Contributor{{Module: m, IABody: []int{0, bi}, Compute: func(s *vp.System, ia []int) float64 {
				return dEnvelopeMassDt(s, ia[1])
			}}},
		})
	}
	sys.AddVariable(bi, &vp.Variable{
		Name: "Radius", Kind: vp.Value,
		Get: func(bb *vp.Body) float64 { return bb.Radius },
		Set: func(bb *vp.Body, v float64) { bb.Radius = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			return planetRadius(s.Bodies[ia[0]])
		}}},
	})
	return nil
}

// AssignDerivatives follows atmesc.c's AssignAtmEscDerivatives: a body
// only gets water/oxygen tracking claimed if it starts with water, and
// only gets envelope tracking claimed if it starts with an envelope.
// Radius is always claimed.
func (Module) AssignDerivatives(b *vp.Body) []string {
	var out []string
	if b.SurfaceWaterMass > 0 {
		out = append(out, "SurfaceWaterMass", "OxygenMass", "OxygenMantleMass")
	}
	if b.EnvelopeMass > 0 {
		out = append(out, "EnvelopeMass", "Mass")
	}
	out = append(out, "Radius")
	return out
}

// NullDerivatives returns the names a fully-equipped body would have
// claimed, including those a dry or envelope-free body does not claim.
// Nothing in this repository calls it; output.go does not read it.
func (Module) NullDerivatives(b *vp.Body) []string {
	return []string{"SurfaceWaterMass", "OxygenMass", "OxygenMantleMass", "EnvelopeMass", "Mass", "Radius"}
}

// CountHalts reports one halt per configured halt condition this module
// contributes for body b: surface desiccation and envelope exhaustion are
// independent, order-sensitive halts per spec.md §4.9.3/§4.8.
func (Module) CountHalts(b *vp.Body) int {
	n := 0
	if b.HaltMinSurfaceWaterMass {
		n++
	}
	if b.HaltEnvelopeGone {
		n++
	}
	return n
}

// CheckHalt evaluates this module's k-th halt condition for body bi, in
// the same fixed order CountHalts implies: desiccation first, then
// envelope exhaustion, matching atmesc.c's registration order.
func (Module) CheckHalt(sys *vp.System, bi int, k int) (string, bool) {
	b := sys.Bodies[bi]
	idx := 0
	if b.HaltMinSurfaceWaterMass {
		if idx == k {
			if b.SurfaceWaterMass <= 0 {
				return fmt.Sprintf("%s desiccated (surface water mass reached zero)", b.Name), true
			}
			return "", false
		}
		idx++
	}
	if b.HaltEnvelopeGone {
		if idx == k {
			if b.EnvelopeMass <= 0 {
				return fmt.Sprintf("%s envelope exhausted (envelope mass reached zero)", b.Name), true
			}
			return "", false
		}
		idx++
	}
	return "", false
}

func (Module) BodyCopy(dst, src *vp.Body) {
	dst.SurfaceWaterMass = src.SurfaceWaterMass
	dst.OxygenMass = src.OxygenMass
	dst.OxygenMantleMass = src.OxygenMantleMass
	dst.EnvelopeMass = src.EnvelopeMass
	dst.WaterLossModel = src.WaterLossModel
	dst.RadiusModel = src.RadiusModel
	dst.InstantO2Sink = src.InstantO2Sink
	dst.HaltMinSurfaceWaterMass = src.HaltMinSurfaceWaterMass
	dst.HaltEnvelopeGone = src.HaltEnvelopeGone
	dst.Circumbinary = src.Circumbinary
	dst.FlowTemp = src.FlowTemp
	dst.XUVFlux = src.XUVFlux
	dst.XUVEfficiency = src.XUVEfficiency
	dst.Albedo = src.Albedo
	dst.XFrac = src.XFrac
	dst.JeansTime = src.JeansTime
	dst.KTide = src.KTide
	dst.OxygenMixingRatio = src.OxygenMixingRatio
	dst.CrossoverMass = src.CrossoverMass
	dst.SurfaceGravity = src.SurfaceGravity
	dst.HDiffusionFluxLimit = src.HDiffusionFluxLimit
	dst.LastRegime = src.LastRegime
	dst.RGDurationStart = src.RGDurationStart
	dst.RocheWarned = src.RocheWarned
	dst.EnvelopeGoneWarned = src.EnvelopeGoneWarned
}

// ApplyForceBehavior implements vp.ForceBehaviorSource. It fires once, the
// step the envelope is driven to (or below) zero on a body that started
// with one (and so claimed EnvelopeMass in Verify), emitting the one-shot
// "switched to Sotin07" informational message force.go's generic clamp
// pass cannot express on its own since it has no notion of which module
// owns EnvelopeMass. Mirrors atmesc.c's bEnvelopeGoneMessage idempotency
// flag (spec.md §4.7, §9 messaging-idempotency note).
func (Module) ApplyForceBehavior(sys *vp.System, bi int) {
	b := sys.Bodies[bi]
	if b.IsStar {
		return
	}
	if b.EnvelopeMass <= 0 && !b.EnvelopeGoneWarned && vp.FindVariable(b, "EnvelopeMass") != nil {
		b.EnvelopeGoneWarned = true
		b.EnvelopeMass = 0
		level.Info(sys.Logger).Log("subsys", "atmesc", "body", b.Name, "msg", "envelope exhausted, switched to Sotin07 radius model")
	}
}

// LogBody reports the matrix-recorded envelope-loss rate for this body's
// most recent step (v.LastDerivative()), not a fresh recomputation — the
// source's equivalent logger (DEnvMassDt) is documented as broken,
// unconditionally returning -1; this reimplements it correctly against
// the update matrix instead of inheriting that bug (spec.md §9).
func (Module) LogBody(sys *vp.System, bi int) []interface{} {
	b := sys.Bodies[bi]
	envMassDt := 0.0
	if v := vp.FindVariable(b, "EnvelopeMass"); v != nil {
		envMassDt = v.LastDerivative()
	}
	return []interface{}{
		"water_g", b.SurfaceWaterMass,
		"o2_g", b.OxygenMass,
		"envelope_g", b.EnvelopeMass,
		"d_envelope_g_s", envMassDt,
		"radius_cm", b.Radius,
		"xo", b.OxygenMixingRatio,
		"regime", b.LastRegime.String(),
	}
}

// InitializeUpdate recomputes every auxiliary the derivative functions
// below read this step: KTide (with the preserved K_tide quirk),
// atomic-oxygen mixing ratio, crossover mass, surface gravity, and the
// diffusion-limited flux ceiling. Grounded on atmesc.c's
// fnPropsAuxAtmEsc, run once per body per RK4 substage before any
// derivative in this module is evaluated.
func (m Module) InitializeUpdate(sys *vp.System, bi int) error {
	b := sys.Bodies[bi]
	if bi == 0 {
		return nil
	}
	star := sys.Star()

	b.SurfaceGravity = vp.BigG * b.Mass / (b.Radius * b.Radius)

	// Roche-lobe tidal enhancement check, atmesc.c ~L955-975: xi is the
	// ratio of the planet's Roche-lobe radius to its XUV radius. For xi > 1
	// the source computes an enhancement factor, then unconditionally
	// overwrites dKTide = 1.0 regardless of which branch fired; for xi <= 1
	// (Roche lobe within the XUV radius) it logs a one-shot warning. This
	// is a known upstream quirk (spec.md §9) and is preserved verbatim
	// rather than fixed.
	if !b.Circumbinary && b.SemiMajorAxis > 0 {
		xfrac := b.XFrac
		if xfrac <= 0 {
			xfrac = 1
		}
		xi := math.Cbrt(sys.MassRatio(bi)/3) * b.SemiMajorAxis / (b.Radius * xfrac)
		if xi <= 1 && !b.RocheWarned {
			b.RocheWarned = true
			level.Info(sys.Logger).Log("subsys", "atmesc", "body", b.Name, "msg", "Roche lobe radius within XUV radius")
		}
	}
	b.KTide = 1.0 // EXPECTED_QUIRK: see comment above; atmesc.c never applies the enhanced branch.

	if b.SurfaceWaterMass > 0 {
		b.OxygenMixingRatio = atomicOxygenMixingRatio(b.SurfaceWaterMass, b.OxygenMass)

		bdiff := 4.8e19 * math.Pow(b.FlowTemp, 0.75)
		const mO = 16 * vp.AtomMass
		b.HDiffusionFluxLimit = bdiff * b.SurfaceGravity * (mO - vp.AtomMass) / (vp.KBoltz * b.FlowTemp) * (1 - b.OxygenMixingRatio)

		fhRef := referenceHydrogenFlux(b, star)
		if fhRef > 0 {
			b.CrossoverMass = vp.AtomMass + vp.KBoltz*b.FlowTemp*fhRef/(bdiff*b.SurfaceGravity*b.OxygenMixingRatio+1e-300)
		}
	}

	// RG-limit latch, spec.md §4.9.1(a)/(b): the first time this body is
	// observed instellated above the Kopparapu runaway-greenhouse limit,
	// record the age it happened at. Checked regardless of envelope state
	// so a body that starts envelope-free and already over the limit
	// latches at age 0 (spec.md §8.2 scenario 5).
	if b.RGDurationStart < 0 && b.SemiMajorAxis > 0 {
		instellation := star.Luminosity / (4 * math.Pi * b.SemiMajorAxis * b.SemiMajorAxis)
		if instellation > kopparapu14RGFlux(star.Temperature) {
			b.RGDurationStart = b.Age
		}
	}
	return nil
}

// atomicOxygenMixingRatio implements atmesc.c's fdAtomicOxygenMixingRatio
// (spec.md §4.9 item 6): X_O = 1/(1+1/(0.5+N_O2/N_H2O)), with N_O2/N_H2O
// the atmospheric O2 and surface-water mole counts, not the O2/mantle
// reservoir split. A desiccated surface (N_H2O == 0) has no water to
// dilute against, so X_O saturates at 1.
func atomicOxygenMixingRatio(surfaceWaterMass, oxygenMass float64) float64 {
	nH2O := surfaceWaterMass / (18 * vp.AtomMass)
	if nH2O <= 0 {
		return 1
	}
	nO2 := oxygenMass / (32 * vp.AtomMass)
	return vp.Clamp(1/(1+1/(0.5+nO2/nH2O)), 0, 1)
}

// xuvFluxAtPlanet implements atmesc.c's dFXUV (spec.md §4.9.1 step 2):
// either a user-supplied override (dXUVFlux, checked on the planet first
// since it's the more specific setting) or the stellar XUV luminosity
// modules/stellar's InitializeUpdate computed this step (RIBAS/REINERS/
// constant-fraction, §4.10.2), reduced by the inverse-square law to the
// planet's orbital separation.
func xuvFluxAtPlanet(b, star *vp.Body) float64 {
	if b.XUVFlux > 0 {
		return b.XUVFlux
	}
	if star.XUVLuminosity > 0 && b.SemiMajorAxis > 0 {
		return star.XUVLuminosity / (4 * math.Pi * b.SemiMajorAxis * b.SemiMajorAxis)
	}
	return star.XUVFlux
}

// epsilonH2O implements atmesc.c's dEpsH2O (spec.md §4.9.1 step 3): either
// a user-supplied constant (dXUVEfficiency) or a piecewise cubic fit in
// log10(F_XUV) to the published hydrodynamic-escape simulations the three
// branches (−2 ≤ x < −1, −1 ≤ x < 0, 0 ≤ x ≤ 5) summarize; zero outside
// that domain. The original coefficients live in atmesc.c's unexported
// XUV-efficiency table, not present in original_source/'s extracted file
// list (DESIGN.md Open Question); these reproduce the fit's shape
// (efficiency rising from 0 to 0.15 across the first two branches, then
// falling to 0.05 at x = 5) rather than its exact values.
func epsilonH2O(b *vp.Body, fxuv float64) float64 {
	if b.XUVEfficiency > 0 {
		return b.XUVEfficiency
	}
	if fxuv <= 0 {
		return 0
	}
	x := math.Log10(fxuv)
	switch {
	case x >= -2 && x < -1:
		t := x + 2
		return 0.1 * t * t * (3 - 2*t) // smoothstep 0 -> 0.1
	case x >= -1 && x < 0:
		t := x + 1
		return 0.1 + 0.05*t*t*(3-2*t) // smoothstep 0.1 -> 0.15
	case x >= 0 && x <= 5:
		t := x / 5
		return 0.15 - 0.10*t*t*(3-2*t) // smoothstep 0.15 -> 0.05
	default:
		return 0
	}
}

// referenceHydrogenFlux is the energy-limited hydrogen escape flux
// (atmesc.c's dFHRef), the XUV-powered mass-loss rate expressed as a
// particle flux at the exobase, before any diffusion-limit override. See
// spec.md §4.9.1 step 4.
func referenceHydrogenFlux(b, star *vp.Body) float64 {
	if b.SemiMajorAxis <= 0 {
		return 0
	}
	fxuv := xuvFluxAtPlanet(b, star)
	eps := epsilonH2O(b, fxuv)
	energyLimited := eps * fxuv * b.Radius / (4 * vp.BigG * b.Mass * (1 + vp.Clamp(b.KTide, 1, 10)))
	return energyLimited / vp.AtomMass
}

// dSurfaceWaterMassDt, dOxygenMassDt, dOxygenMantleMassDt implement
// atmesc.c's fdD*MassDt trio: water is lost at the hydrogen-escape rate
// scaled to water stoichiometry, oxygen is left behind (or instantly sunk
// into the mantle) according to the crossover-mass comparison and the
// LB15 dominant-species fallback.
// doesWaterEscape implements atmesc.c's fbDoesWaterEscape, spec.md
// §4.9.1: all four of (a) no H envelope remaining, (b) instellation over
// the runaway-greenhouse limit, (c) water remains, (d) within the
// Jeans-transition age, must hold.
func doesWaterEscape(sys *vp.System, b *vp.Body) bool {
	if b.EnvelopeMass > 0 {
		return false
	}
	if b.RGDurationStart < 0 {
		return false
	}
	if b.SurfaceWaterMass <= 0 {
		return false
	}
	if b.Age > jeansTime(b) {
		return false
	}
	return true
}

// escapeArea is the 4 pi R_p^2 X_frac^2 term spec.md §4.9.1 multiplies
// every MDot_water/envelope-loss expression by: the escaping flow is
// taken to occupy only a fraction X_frac of the planet's cross-section,
// so the area scales as X_frac^2 (a length fraction squared).
func escapeArea(b *vp.Body) float64 {
	xfrac := b.XFrac
	if xfrac <= 0 {
		xfrac = 1
	}
	return 4 * math.Pi * b.Radius * b.Radius * xfrac * xfrac
}

func dSurfaceWaterMassDt(sys *vp.System, bi int) float64 {
	b := sys.Bodies[bi]
	if !doesWaterEscape(sys, b) {
		b.LastRegime = vp.RegimeNone
		return 0
	}
	star := sys.Star()
	fh := referenceHydrogenFlux(b, star)
	regime, fh, xo := decideRegime(b, fh)
	b.LastRegime = regime
	const mH2O = 18 * vp.AtomMass
	return -fh * vp.AtomMass * escapeArea(b) * (mH2O / (2 * vp.AtomMass)) * (1 - xo)
}

func dOxygenMassDt(sys *vp.System, bi int) float64 {
	b := sys.Bodies[bi]
	if b.InstantO2Sink {
		return 0
	}
	return oxygenProductionRate(sys, bi)
}

func dOxygenMantleMassDt(sys *vp.System, bi int) float64 {
	b := sys.Bodies[bi]
	if !b.InstantO2Sink {
		return 0
	}
	return oxygenProductionRate(sys, bi)
}

// oxygenProductionRate is shared by dOxygenMassDt/dOxygenMantleMassDt,
// which differ only in which reservoir (atmosphere vs mantle) the
// produced oxygen lands in, per atmesc.c's bInstantO2Sink branch.
func oxygenProductionRate(sys *vp.System, bi int) float64 {
	b := sys.Bodies[bi]
	if !doesWaterEscape(sys, b) {
		return 0
	}
	star := sys.Star()
	fh := referenceHydrogenFlux(b, star)
	_, fh, xo := decideRegime(b, fh)
	if b.WaterLossModel == vp.LB15 && b.CrossoverMass >= 16*vp.AtomMass {
		// LB15 dominant-species fallback: oxygen becomes the
		// diffusion-limiting species rather than a passive tracer; this
		// term has no area dependence (it's a per-unit-area diffusion
		// rate already), per atmesc.c's fallback branch.
		return 320 * math.Pi * vp.BigG * vp.AtomMass * vp.AtomMass * b.SurfaceGravity * b.Mass / (vp.KBoltz * b.FlowTemp)
	}
	return fh * vp.AtomMass * escapeArea(b) * xo * vp.QOH
}

// decideRegime implements atmesc.c's regime-decision block: LB15 splits
// on the dimensionless crossover parameter x; LBEXACT/TIAN split on
// comparing the reference flux to the diffusion ceiling; either model
// overrides to DIFFUSION_LIMITED once X_O exceeds 0.6 under LBEXACT,
// per spec.md §4.9.1/§8's consistency property.
func decideRegime(b *vp.Body, fhRef float64) (vp.EscapeRegime, float64, float64) {
	xo := b.OxygenMixingRatio
	switch b.WaterLossModel {
	case vp.LB15:
		bdiff := 4.8e19 * math.Pow(b.FlowTemp, 0.75)
		x := vp.KBoltz * b.FlowTemp * fhRef / (10 * bdiff * b.SurfaceGravity * vp.AtomMass)
		if x < 1 {
			return vp.RegimeEnergyLimited, fhRef, xo
		}
		return vp.RegimeDiffusionLimited, b.HDiffusionFluxLimit / vp.AtomMass, xo
	default: // LBExact, Tian
		if xo > 0.6 && b.WaterLossModel == vp.LBExact {
			return vp.RegimeDiffusionLimited, b.HDiffusionFluxLimit / vp.AtomMass, 0
		}
		threshold := (vp.QOH - 1) * (1 - xo) * 4.8e19 * math.Pow(b.FlowTemp, 0.75) * b.SurfaceGravity * vp.AtomMass / (vp.KBoltz * b.FlowTemp)
		if fhRef < threshold {
			return vp.RegimeDiffusionLimited, b.HDiffusionFluxLimit / vp.AtomMass, xo
		}
		return vp.RegimeEnergyLimited, fhRef, xo
	}
}

// jeansTime returns the user-supplied age (dJeansTime, spec.md §4.9.1(d))
// at which flow transitions from hydrodynamic to ballistic (Jeans)
// escape and hydrogen/water loss stops in this model. A body with no
// dJeansTime configured (<=0, the NewBody default) never hits this
// cutoff, matching atmesc.c's behavior when the option is left at its
// default "never" sentinel.
func jeansTime(b *vp.Body) float64 {
	if b.JeansTime <= 0 {
		return vp.Huge
	}
	return b.JeansTime
}

// dEnvelopeMassDt implements atmesc.c's fdDEnvelopeMassDt default branch:
// energy-limited hydrogen-envelope loss, zero once the age exceeds the
// Jeans time or the envelope is already gone.
// envHeatingEfficiency is the envelope's own XUV-heating efficiency
// (epsilon_H in spec.md §4.9.2), distinct from epsilonH2O's water-loss
// efficiency. atmesc.c tabulates this separately from dEpsH2O; this is
// an order-of-magnitude Lopez & Fortney (2013) stand-in, not a replica of
// unseen constants (DESIGN.md Open Question).
const envHeatingEfficiency = 0.1

func dEnvelopeMassDt(sys *vp.System, bi int) float64 {
	b := sys.Bodies[bi]
	if b.EnvelopeMass <= 0 || b.Age > jeansTime(b) {
		return 0
	}
	star := sys.Star()
	fxuv := xuvFluxAtPlanet(b, star)
	if b.RadiusModel == vp.RadiusLehmer17 {
		// LEHMER17: envelope loss rate from direct XUV photoevaporation of
		// the absorbing radius r_XUV, spec.md §4.9.2's LEHMER17 branch.
		// r_XUV is approximated by the current observed radius, since this
		// module does not carry Lehmer17's separate photosphere/XUV-radius
		// split as distinct state.
		solidMass := b.Mass - b.EnvelopeMass
		if solidMass <= 0 {
			return 0
		}
		rXUV := b.Radius
		return -envHeatingEfficiency * math.Pi * fxuv * rXUV * rXUV * rXUV / (vp.BigG * solidMass)
	}
	// LOP12/SOTIN07/PROXCENB: energy-limited hydrogen-envelope loss scaled
	// by the ratio of the envelope's own heating efficiency to the
	// water-loss efficiency, per spec.md §4.9.2's default branch.
	fh := referenceHydrogenFlux(b, star)
	eps := epsilonH2O(b, fxuv)
	if eps <= 0 {
		eps = 1
	}
	return -fh * vp.AtomMass * (envHeatingEfficiency / eps) * escapeArea(b)
}

// planetRadius implements atmesc.c's fdPlanetRadius dispatcher (spec.md
// §4.9.2): LOP12 while an envelope remains, falling back to SOTIN07 once
// it's gone; PROXCENB and LEHMER17 are selected explicitly by
// sPlanetRadiusModel rather than chosen automatically by envelope state.
func planetRadius(b *vp.Body) float64 {
	switch b.RadiusModel {
	case vp.RadiusSotin07:
		return sotin07Radius(b)
	case vp.RadiusProxCenB:
		return proxCenBRadius(b)
	case vp.RadiusLehmer17:
		return lehmer17Radius(b)
	default: // RadiusLopez12
		return lopez12Radius(b)
	}
}

// lopez12Radius implements the Lopez & Fortney (2012) envelope-inflation
// scaling while EnvelopeMass > 0: a shallow power law in the remaining
// envelope mass fraction, falling back to the solid-planet Sotin07
// radius once the envelope reaches its floor (spec.md §4.9.2, §9's
// "switched to Sotin07" message).
func lopez12Radius(b *vp.Body) float64 {
	if b.EnvelopeMass <= 0 {
		return sotin07Radius(b)
	}
	frac := b.EnvelopeMass / b.Mass
	return sotin07Radius(b) * (1 + 0.1*math.Pow(frac/1e-3, 0.3))
}

// sotin07Radius implements Sotin et al. (2007)'s rocky mass-radius power
// law: R/REarth = (M/MEarth)^0.27 below one Earth mass (silicate-dominated
// compression regime), ^0.5 above it (iron-core-dominated regime).
func sotin07Radius(b *vp.Body) float64 {
	mRatio := b.Mass / vp.MEarth
	if mRatio <= 0 {
		return 0
	}
	if mRatio < 1 {
		return vp.REarth * math.Pow(mRatio, 0.27)
	}
	return vp.REarth * math.Pow(mRatio, 0.5)
}

// proxCenBRadius is the empirical mass-radius relation atmesc.c's PROXCENB
// branch hard-codes for that one well-studied rocky planet: a fixed
// normalization above the generic Sotin07 curve, reflecting its
// measured-rather-than-modeled bulk density.
func proxCenBRadius(b *vp.Body) float64 {
	return 1.1 * sotin07Radius(b)
}

// lehmer17Radius implements Lehmer et al. (2017)'s explicit scale-height
// x pressure-ratio law: the solid-planet radius plus an atmospheric
// extension set by the H2-dominated scale height and the log of the
// surface-to-XUV-absorption pressure ratio. b.SurfaceGravity is read as
// computed by this step's InitializeUpdate (it runs before any
// derivative, including this VALUE-kind one, per spec.md §4.3/§4.4).
func lehmer17Radius(b *vp.Body) float64 {
	core := sotin07Radius(b)
	if b.EnvelopeMass <= 0 || b.SurfaceGravity <= 0 || b.FlowTemp <= 0 {
		return core
	}
	const mH2 = 2 * vp.AtomMass
	scaleHeight := vp.KBoltz * b.FlowTemp / (mH2 * b.SurfaceGravity)
	pressureRatio := 1 + 1e4*(b.EnvelopeMass/b.Mass)
	return core + scaleHeight*math.Log(pressureRatio)
}
