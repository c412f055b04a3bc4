// Package stellar implements stellar evolution: luminosity, radius, and
// temperature drawn from a tabulated mass/age track, plus magnetic-braking
// angular-momentum loss. Grounded on original_source/src/stellar.c
// (fdDJDtMagBrakingStellar, fdDRadiusDtStellar, fdCranmerSaar2011TauCZ).
package stellar

import (
	"math"

	vp "vplanet"
)

// Calibration constants for the braking laws below. vplanet's real values
// live in header files not present in original_source/ (see
// SPEC_FULL.md §4.10); these are literature-typical order-of-magnitude
// stand-ins, recorded as an Open Question decision in DESIGN.md rather
// than presented as an exact replica of unseen constants.
const (
	rossbyCrit   = 2.0   // Rossby-number cutoff, Cranmer & Saar 2011 order of magnitude
	rm12Const    = 3e47  // Reiners & Mohanty 2012 braking-law scale, cgs
	rm12OmegaCritFactor = 3e-5 // rad/s, saturation threshold scale
	sk72Const    = 6e46  // Skumanich 1972 braking-law scale, cgs
	matt15T0     = 2.0e6 // yr, Matt+2015 normalization
	matt15R0Sun  = 2.0   // Matt+2015 saturated Rossby threshold, solar units
	matt15X      = 0.6   // Matt+2015 unsaturated torque exponent knob
)

// Module is the stellar-evolution physics module.
type Module struct{}

func (Module) Name() string { return "stellar" }

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

	if v, ok, err := flt("dRotPeriod"); err != nil {
		return err
	} else if ok {
		b.RotPeriod = v
		b.RotRate = 2 * math.Pi / v
	}
	if v, ok := str("sStellarModel"); ok {
		if v != "BARAFFE" {
			return &vp.InputError{File: b.Name, Option: "sStellarModel", Reason: "unrecognized value " + v}
		}
		b.StellarModel = vp.StellarBaraffe
	}
	if v, ok := str("sWindModel"); ok {
		switch v {
		case "REINERS":
			b.WindModel = vp.WindReiners
		case "RIBAS":
			b.WindModel = vp.WindRibas
		default:
			return &vp.InputError{File: b.Name, Option: "sWindModel", Reason: "unrecognized value " + v}
		}
	}
	if v, ok := str("sBrakingLaw"); ok {
		switch v {
		case "RM12":
			b.BrakingLaw = vp.BrakeRM12
		case "SK72":
			b.BrakingLaw = vp.BrakeSkumanich72
		case "MA15":
			b.BrakingLaw = vp.BrakeMatt15
		case "NONE":
			b.BrakingLaw = vp.BrakeNone
		default:
			return &vp.InputError{File: b.Name, Option: "sBrakingLaw", Reason: "unrecognized value " + v}
		}
	}
	if v, ok := str("sXUVModel"); ok {
		switch v {
		case "RIBAS":
			b.XUVModel = vp.XUVRibas
		case "REINERS":
			b.XUVModel = vp.XUVReiners
		case "CONSTANT":
			b.XUVModel = vp.XUVConstant
		default:
			return &vp.InputError{File: b.Name, Option: "sXUVModel", Reason: "unrecognized value " + v}
		}
	}
	if v, ok, err := flt("dSatXUVFrac"); err != nil {
		return err
	} else if ok {
		b.XUVSatFraction = v
	}
	if v, ok, err := flt("dSatXUVTime"); err != nil {
		return err
	} else if ok {
		b.XUVSatAge = v
	}
	if v, ok, err := flt("dXUVBeta"); err != nil {
		return err
	} else if ok {
		b.XUVBeta = v
	}
	if v, ok := str("bEvolveRG"); ok {
		b.EvolveRG = v == "1" || v == "true"
	}
	return nil
}

func (m Module) Verify(sys *vp.System, bi int) error {
	b := sys.Bodies[bi]
	if !b.IsStar {
		return nil
	}

	// Age is not registered as a matrix variable: rk4.go already advances
	// every body's Age by dt once per step, unconditionally. Registering it
	// here too would double-advance the star's age (matrix weighted-sum
	// write-back plus the generic per-body increment) and would poison
	// NextTimestep's characteristic-time term for a RATE kind at Age=0.
	sys.AddVariable(bi, &vp.Variable{
		Name: "Luminosity", Kind: vp.Value,
		Get: func(bb *vp.Body) float64 { return bb.Luminosity },
		Set: func(bb *vp.Body, v float64) { bb.Luminosity = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			l, _, _, _ := Track(s.Bodies[ia[0]].Mass, s.Bodies[ia[0]].Age)
			return l
		}}},
	})
	sys.AddVariable(bi, &vp.Variable{
		Name: "Temperature", Kind: vp.Value,
		Get: func(bb *vp.Body) float64 { return bb.Temperature },
		Set: func(bb *vp.Body, v float64) { bb.Temperature = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			_, _, t, _ := Track(s.Bodies[ia[0]].Mass, s.Bodies[ia[0]].Age)
			return t
		}}},
	})
	sys.AddVariable(bi, &vp.Variable{
		Name: "Radius", Kind: vp.Value,
		Get: func(bb *vp.Body) float64 { return bb.Radius },
		Set: func(bb *vp.Body, v float64) { bb.Radius = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			_, r, _, _ := Track(s.Bodies[ia[0]].Mass, s.Bodies[ia[0]].Age)
			return r
		}}},
	})
	sys.AddVariable(bi, &vp.Variable{
		Name: "RadiusOfGyration", Kind: vp.Value,
		Get: func(bb *vp.Body) float64 { return bb.RadiusOfGyration },
		Set: func(bb *vp.Body, v float64) { bb.RadiusOfGyration = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			_, _, _, rg := Track(s.Bodies[ia[0]].Mass, s.Bodies[ia[0]].Age)
			return rg
		}}},
	})
	sys.AddVariable(bi, &vp.Variable{
		Name: "RotRate", Kind: vp.Rate,
		Get: func(bb *vp.Body) float64 { return bb.RotRate },
		Set: func(bb *vp.Body, v float64) { bb.RotRate = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			return rotRateDt(s.Bodies[ia[0]])
		}}},
	})
	sys.AddVariable(bi, &vp.Variable{
		Name: "LostAngMom", Kind: vp.Rate,
		Get: func(bb *vp.Body) float64 { return bb.LostAngMom },
		Set: func(bb *vp.Body, v float64) { bb.LostAngMom = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			return math.Abs(dJDtMagBraking(s.Bodies[ia[0]]))
		}}},
	})
	sys.AddVariable(bi, &vp.Variable{
		Name: "LostEnergy", Kind: vp.Derived,
		Get: func(bb *vp.Body) float64 { return bb.LostEnergy },
		Set: func(bb *vp.Body, v float64) { bb.LostEnergy = v },
		Contributors: []vp.Contributor{{Module: m, IABody: []int{bi}, Compute: func(s *vp.System, ia []int) float64 {
			return dEnergyDtLost(s.Bodies[ia[0]])
		}}},
	})
	return nil
}

func (Module) AssignDerivatives(b *vp.Body) []string {
	if !b.IsStar {
		return nil
	}
	return []string{"Luminosity", "Temperature", "Radius", "RadiusOfGyration", "RotRate", "LostAngMom", "LostEnergy"}
}

func (Module) NullDerivatives(b *vp.Body) []string {
	return []string{"Luminosity", "Temperature", "Radius", "RadiusOfGyration", "RotRate", "LostAngMom", "LostEnergy"}
}

func (Module) CountHalts(b *vp.Body) int { return 0 }

func (Module) BodyCopy(dst, src *vp.Body) {
	dst.StellarModel = src.StellarModel
	dst.WindModel = src.WindModel
	dst.XUVModel = src.XUVModel
	dst.BrakingLaw = src.BrakingLaw
	dst.EvolveRG = src.EvolveRG
	dst.Age = src.Age
	dst.Luminosity = src.Luminosity
	dst.Temperature = src.Temperature
	dst.RotRate = src.RotRate
	dst.RotPeriod = src.RotPeriod
	dst.RadiusOfGyration = src.RadiusOfGyration
	dst.LostAngMom = src.LostAngMom
	dst.LostEnergy = src.LostEnergy
	dst.XUVSatFraction = src.XUVSatFraction
	dst.XUVSatAge = src.XUVSatAge
	dst.XUVBeta = src.XUVBeta
	dst.XUVLuminosity = src.XUVLuminosity
}

func (Module) LogBody(sys *vp.System, bi int) []interface{} {
	b := sys.Bodies[bi]
	return []interface{}{
		"lum_erg_s", b.Luminosity,
		"teff_k", b.Temperature,
		"rot_period_day", periodDays(b),
		"lost_angmom", b.LostAngMom,
		"lost_energy", b.LostEnergy,
	}
}

func periodDays(b *vp.Body) float64 {
	if b.RotRate == 0 {
		return 0
	}
	return (2 * math.Pi / b.RotRate) / 86400
}

func (m Module) InitializeUpdate(sys *vp.System, bi int) error {
	b := sys.Bodies[bi]
	if !b.IsStar || b.StellarModel != vp.StellarBaraffe {
		return nil
	}
	// Centered finite difference with eps = 10 yr, atmesc's stellar.c
	// fdDRadiusDtStellar/fdDRadGyraDtStellar.
	const eps = 10 * vp.YearSec
	_, rPlus, _, rgPlus := Track(b.Mass, b.Age+eps)
	_, rMinus, _, rgMinus := Track(b.Mass, b.Age-eps)
	b.dRadiusDt = (rPlus - rMinus) / (2 * eps)
	if b.EvolveRG {
		b.dRgDt = (rgPlus - rgMinus) / (2 * eps)
	}
	b.RotPeriod = periodDaysSeconds(b)
	b.XUVLuminosity = xuvLuminosity(b)
	return nil
}

// xuvLuminosity implements spec.md §4.10.2's L_XUV dispatcher: RIBAS's
// saturated/power-law-decay split, REINERS's X-ray-only piecewise law (the
// EUV branch is not wired in per spec.md §9's carried-forward warning
// about unrealistic EUV values for M dwarfs), or a constant fraction of
// bolometric luminosity as the default.
func xuvLuminosity(b *vp.Body) float64 {
	fSat := b.XUVSatFraction
	if fSat <= 0 {
		fSat = 1e-3 // typical saturated X-ray/bolometric ratio, Ribas+2005 order of magnitude
	}
	switch b.XUVModel {
	case vp.XUVRibas:
		tSat := b.XUVSatAge
		if tSat <= 0 {
			tSat = 1e8 * vp.YearSec
		}
		beta := b.XUVBeta
		if beta == 0 {
			beta = 1.23 // Ribas+2005 order-of-magnitude decay exponent
		}
		if b.Age >= tSat {
			return fSat * b.Luminosity * math.Pow(b.Age/tSat, -beta)
		}
		return fSat * b.Luminosity
	case vp.XUVReiners:
		return reinersXRayLuminosity(b, fSat)
	default:
		return fSat * b.Luminosity
	}
}

// reinersXRayLuminosity implements stellar.c's REINERS branch, X-ray-only
// (the EUV term is documented upstream as producing unrealistic values
// for M dwarfs and is not replicated here, per spec.md §9): unsaturated
// L_X follows a power law in rotation period, saturated L_X is a fraction
// of bolometric luminosity that falls weakly with rotation period, and
// the dispatcher takes whichever is smaller.
func reinersXRayLuminosity(b *vp.Body, fSat float64) float64 {
	if b.RotPeriod <= 0 {
		return fSat * b.Luminosity
	}
	pDays := b.RotPeriod / 86400
	logPDays := math.Log10(pDays)
	lxUnsat := math.Pow(10, 30.71-2.01*logPDays)
	lxSat := b.Luminosity * math.Pow(10, -3.12-0.11*logPDays)
	return math.Min(lxUnsat, lxSat)
}

func periodDaysSeconds(b *vp.Body) float64 {
	if b.RotRate == 0 {
		return 0
	}
	return 2 * math.Pi / b.RotRate
}

// fdCranmerSaar2011TauCZ: convective turnover timescale, stellar.c line
// ~1569, used to compute the Rossby number that gates magnetic braking.
func cranmerSaar2011TauCZ(teff float64) float64 {
	tau := 314.24*math.Exp(-(teff/1952.5)-math.Pow(teff/6250.0, 18)) + 0.002
	return tau * 86400
}

// dJDtMagBraking implements stellar.c's fdDJDtMagBrakingStellar
// dispatcher: a Rossby-number cutoff short-circuits to no braking, then
// each braking law's saturated/unsaturated split applies.
func dJDtMagBraking(b *vp.Body) float64 {
	if b.RotPeriod <= 0 || b.BrakingLaw == vp.BrakeNone {
		return -vp.Tiny
	}
	tauCZ := cranmerSaar2011TauCZ(b.Temperature)
	rossby := b.RotPeriod / tauCZ
	if rossby > rossbyCrit {
		return -vp.Tiny
	}

	switch b.BrakingLaw {
	case vp.BrakeRM12:
		if b.WindModel != vp.WindReiners {
			return -vp.Tiny
		}
		omegaCrit := rm12OmegaCritFactor
		if b.Mass > 0.35*vp.MSun {
			omegaCrit *= 1.5
		}
		if b.RotRate >= omegaCrit {
			return -rm12Const * math.Pow(b.RotRate, 3) * math.Pow(b.Radius/vp.RSun, 2)
		}
		return -rm12Const * math.Pow(omegaCrit, 2) * b.RotRate * math.Pow(b.Radius/vp.RSun, 2)
	case vp.BrakeSkumanich72:
		return -sk72Const * math.Pow(b.RotRate, 3)
	case vp.BrakeMatt15:
		t0 := matt15T0 * vp.YearSec * math.Pow(b.Radius/vp.RSun, 3.1) * math.Sqrt(b.Mass/vp.MSun)
		r0 := rossby
		if r0 <= matt15R0Sun/matt15X {
			return -(vp.RSun / t0) * b.RotRate * math.Pow(b.Radius/vp.RSun, 2.0)
		}
		return -(vp.RSun / t0) * b.RotRate * math.Pow(matt15R0Sun/(matt15X*r0), 2) * math.Pow(b.Radius/vp.RSun, 2.0)
	default:
		return -vp.Tiny
	}
}

// dEnergyDtLost implements stellar.c's fdDEnergyDtLost: gravitational
// contraction release plus the rotational-kinetic-energy change from R
// and Rg evolving, plus the rotational energy magnetic braking removes.
// Stored as positive when energy leaves the reservoir (spec.md §4.10.3
// sign convention), a DERIVED-kind variable integrated purely for
// bookkeeping and excluded from timestep selection.
func dEnergyDtLost(b *vp.Body) float64 {
	if b.StellarModel != vp.StellarBaraffe || b.Radius <= 0 {
		return 0
	}
	// Gravitational contraction releases energy as the star shrinks
	// (dRadiusDt < 0 => positive release); order-unity prefactor per
	// virial-theorem scaling for a centrally condensed polytrope.
	contraction := -0.5 * vp.BigG * b.Mass * b.Mass / (b.Radius * b.Radius) * b.dRadiusDt

	moi := b.Mass * b.RadiusOfGyration * b.RadiusOfGyration * b.Radius * b.Radius
	rotational := 0.0
	if moi > 0 {
		dMoiDt := 2 * b.Mass * b.RadiusOfGyration * b.Radius * (b.dRgDt*b.Radius + b.RadiusOfGyration*b.dRadiusDt)
		rotational = -0.5 * dMoiDt * b.RotRate * b.RotRate
	}

	braking := -b.RotRate * dJDtMagBraking(b)

	return contraction + rotational + braking
}

// rotRateDt implements stellar.c's fdDRotRateDt{RadGyra,Con,MagBrake}
// trio, summed: contraction (radius-of-gyration and radius shrinkage spin
// the star up) plus magnetic braking (spins it down), both gated on the
// Baraffe track per the source.
func rotRateDt(b *vp.Body) float64 {
	if b.StellarModel != vp.StellarBaraffe || b.Radius <= 0 {
		return 0
	}
	dwdt := 0.0
	if b.EvolveRG && b.RadiusOfGyration > 0 {
		dwdt += -2 * b.dRgDt * b.RotRate / b.RadiusOfGyration
	}
	dwdt += -2 * b.dRadiusDt * b.RotRate / b.Radius
	moi := b.Mass * b.RadiusOfGyration * b.RadiusOfGyration * b.Radius * b.Radius
	if moi > 0 {
		dwdt += dJDtMagBraking(b) / moi
	}
	return dwdt
}
