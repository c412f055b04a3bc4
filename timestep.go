package vplanet

import "math"

// EtaDefault is the safety factor spec.md §4.5 applies to the smallest
// characteristic timescale across all non-excluded variables: dt =
// Eta * min(tau_i). 0.01 matches the source's conservative default.
const EtaDefault = 0.01

// NextTimestep computes the system-wide dt for the upcoming RK4 step,
// following spec.md §4.5: evaluate every non-DERIVED variable's
// characteristic timescale from its current value and current rate
// (already evaluated this step via EvalSystem), take the minimum across
// the whole system, and scale by eta. A floor is additionally enforced
// for any FLOOR-kind variable, and an EXPLICIT-kind variable's
// characteristic time is capped by the time remaining until the next
// scheduled output, passed in as tNextOutput.
func NextTimestep(sys *System, results []DerivResult, eta, tNextOutput float64) float64 {
	if eta <= 0 {
		eta = EtaDefault
	}
	minTau := Huge
	for _, r := range results {
		if r.Kind.excludedFromDt() {
			continue
		}
		b := sys.Bodies[r.Body]
		v := FindVariable(b, r.Variable)
		if v == nil {
			panicInternal("NextTimestep: body %d has no variable %q", r.Body, r.Variable)
		}
		x := v.Get(b)
		var tau float64
		if v.Kind == Explicit {
			tau = math.Max(tNextOutput-sys.Time, Tiny)
		} else {
			tau = characteristicTime(v.Kind, x, r.Value)
		}
		if v.Kind == Floor && v.Floor > 0 {
			tau = math.Max(tau, v.Floor)
		}
		if tau < minTau {
			minTau = tau
		}
	}
	if minTau >= Huge {
		// Nothing bounds the step (e.g. a single-body run with only
		// DERIVED/EXPLICIT variables): fall back to the output cadence.
		return math.Max(tNextOutput-sys.Time, EpsFloor)
	}
	dt := eta * minTau
	if dt < EpsFloor {
		dt = EpsFloor
	}
	return dt
}
