package vplanet

import "math"

// Physical constants, kept as true compile-time constants rather than
// hidden behind a singleton (per the source's dHUGE/dTINY/BIGG globals).
const (
	// BigG is the gravitational constant in cgs (cm^3 g^-1 s^-2).
	BigG = 6.67428e-8
	// AtomMass is the mass of a hydrogen atom in grams.
	AtomMass = 1.67353269e-24
	// KBoltz is Boltzmann's constant in erg/K.
	KBoltz = 1.380658e-16
	// QOH is the fractionation factor for O dragged along by escaping H.
	QOH = 8.0

	// MSun, RSun in grams/cm.
	MSun = 1.98892e33
	RSun = 6.955e10
	// LSun in erg/s.
	LSun = 3.846e33
	// MEarth, REarth in grams/cm, used by the escape module's rocky
	// mass-radius relations (Sotin07, ProxCenB).
	MEarth = 5.9722e27
	REarth = 6.371e8

	// AU in cm.
	AU = 1.49598e13
	// YearSec is one Julian year in seconds.
	YearSec = 365.25 * 86400

	// Huge and Tiny mirror the source's dHUGE/dTINY sentinel values: Huge
	// stands in for an infinite characteristic timescale, Tiny for a
	// derivative that should not influence step selection at all.
	Huge = 1e300
	Tiny = 1e-300

	// EpsFloor is the smallest dt NextTimestep returns: a smaller candidate
	// step is raised to EpsFloor. Nothing aborts evolution when steps stay
	// at this floor; only Evolution.MaxSteps bounds the step count.
	EpsFloor = 1e-10
)

// Deg2Rad and Rad2Deg convert between angle units without forcing a
// modulo, unlike the teacher's Deg2rad/Rad2deg which fold negative inputs
// into [0, 360). Most of this module's angles are intermediate RK4 state
// and must NOT be folded mid-step (see mission.go's warning in Func).
func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }
func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }
