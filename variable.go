package vplanet

import "math"

// Kind tags a primary variable with how it participates in timestep
// selection and RK4 substep advancement. See spec.md §4.1.
type Kind uint8

const (
	// Value: the contributor returns the new value directly.
	Value Kind = iota
	// Rate: the contributor returns dx/dt.
	Rate
	// Polar: a sinusoidal component (h, k in orbital theory).
	Polar
	// Derived: integrated for bookkeeping only, excluded from dt selection.
	Derived
	// Explicit: a closed-form function of time.
	Explicit
	// Floor: a minimum step is enforced in addition to the rate-based one.
	Floor
	// NBody: 6-D position/velocity state (admitted, not used by the two
	// reference modules, but the matrix must dispatch it correctly).
	NBody
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "VALUE"
	case Rate:
		return "RATE"
	case Polar:
		return "POLAR"
	case Derived:
		return "DERIVED"
	case Explicit:
		return "EXPLICIT"
	case Floor:
		return "FLOOR"
	case NBody:
		return "NBODY"
	default:
		panic("unknown variable kind")
	}
}

// integratesBySum reports whether RK4 advances this kind by summing
// weighted derivative contributions (true) or by assigning the stage-0
// value outright (false). See spec.md §4.6.
func (k Kind) integratesBySum() bool {
	switch k {
	case Value, Explicit:
		return false
	default:
		return true
	}
}

// excludedFromDt reports whether this kind contributes no characteristic
// time to the timestep selector.
func (k Kind) excludedFromDt() bool {
	return k == Derived
}

// DerivFunc computes either a rate (dx/dt) or, for VALUE/EXPLICIT kinds, the
// new value directly, given the full system state and the body this
// contributor is attached to. iaBody lists every body index this
// contributor needs to read (cross-body reads only; body 0 by convention).
type DerivFunc func(sys *System, iaBody []int) float64

// Contributor is one module's claim on a variable: which module owns it,
// which bodies it needs to read, and the function computing its
// contribution. Mirrors the source's (module, body-set, pointer-to-primary,
// scratch-slot) triple, with the scratch slot owned by the Variable that
// holds this Contributor (see matrix.go).
type Contributor struct {
	Module  Module
	IABody  []int
	Compute DerivFunc
}

// Variable is one primary state variable belonging to a body: its kind, how
// to read/write it on the Body, and the ordered list of module contributors
// claiming it. Scratch slots (per-contributor results, per-RK4-stage sums)
// are preallocated once at Verify time and reused every step — no
// allocation happens in Get/Set/the derivative pass.
type Variable struct {
	Name   string
	Kind   Kind
	Get    func(b *Body) float64
	Set    func(b *Body, v float64)
	Contributors []Contributor

	// Floor is the minimum step enforced for FLOOR-kind variables.
	Floor float64

	// scratch[k] holds contributor k's most recent result.
	scratch []float64
	// stage is not written by RK4Step, which keeps each substage's summed
	// contribution in rk4.go's stepState.k instead.
	stage [4]float64
}

// LastDerivative returns the most recently evaluated summed contribution
// for this variable (its scratch, summed) — the value the last
// derivative-evaluation pass (deriv.go) actually recorded for this
// variable, as opposed to a logger recomputing it from scratch and
// potentially disagreeing with what the stepper used. See
// modules/escape's LogBody, which reads this instead of inlining its own
// (previously buggy, upstream) envelope-rate computation.
func (v *Variable) LastDerivative() float64 {
	return v.sumScratch()
}

// sumScratch returns the sum of all contributor results currently held in
// scratch — the "near-cancellation enlarges the step" rule of §4.5 depends
// on this being a true sum, not e.g. a max.
func (v *Variable) sumScratch() float64 {
	s := 0.0
	for _, c := range v.scratch {
		s += c
	}
	return s
}

// ensureScratch (re)allocates the scratch slice to match the contributor
// count. Called once from Verify; a no-op if the size already matches.
func (v *Variable) ensureScratch() {
	if len(v.scratch) != len(v.Contributors) {
		v.scratch = make([]float64, len(v.Contributors))
	}
}

// characteristicTime implements the τ rule of spec.md §4.5 for a single
// variable given its current value and summed rate.
func characteristicTime(k Kind, x, rate float64) float64 {
	switch k {
	case Value, Derived:
		return Huge
	case Explicit:
		return Huge // caller substitutes t_next_output - t_now
	case NBody:
		if rate == 0 {
			return Huge
		}
		return math.Abs(x / rate)
	case Polar:
		if rate == 0 {
			return Huge
		}
		return math.Abs(1 / rate)
	default: // Rate, Floor
		if x == 0 && rate == 0 {
			return Huge
		}
		if math.Abs(rate) <= Tiny {
			return Huge
		}
		return math.Abs(x / rate)
	}
}
