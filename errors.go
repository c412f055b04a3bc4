package vplanet

import "fmt"

// The five-way error taxonomy of spec.md §7. InputError and NumericalError
// are returned; RegimeChange is informational (not an error, carried in
// RK4Step's regimes return value); HaltError is returned by evolve.go when a halt
// condition fires; InternalError follows the teacher's panic(fmt.Errorf(...))
// idiom for invariant violations that indicate a programming bug rather
// than bad input or bad physics.

// InputError reports a problem with a primary or per-body input file: an
// option no module recognizes, a missing or non-positive required
// setting, or a value that cannot be parsed or is not an accepted name.
// Duplicate ownership of a variable is an InternalError panic, not this.
type InputError struct {
	File   string
	Option string
	Reason string
}

func (e *InputError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("input error in %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("input error in %s: option %q: %s", e.File, e.Option, e.Reason)
}

// NumericalError reports the integrator failing: a NaN/Inf state after an
// RK4 step, or a step count exceeding Evolution.MaxSteps. A small dt is
// not reported here: NextTimestep raises it to EpsFloor.
type NumericalError struct {
	Body   string
	Reason string
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error on body %s: %s", e.Body, e.Reason)
}

// RegimeChange is not an error. RK4Step returns a slice of them alongside a
// successful step for the caller to log (e.g. ENERGY_LIMITED ->
// DIFFUSION_LIMITED). No derivative function or module in this repository
// produces one, so that slice is always empty; escape-regime transitions
// show only in Body.LastRegime.
type RegimeChange struct {
	Body   string
	Module string
	From   string
	To     string
}

func (r RegimeChange) String() string {
	return fmt.Sprintf("%s/%s: %s -> %s", r.Body, r.Module, r.From, r.To)
}

// HaltError is returned by evolve.go's Run when a halt condition fires.
// It is not a failure: the caller is expected to write final output and
// exit 0, per spec.md §7's halt-is-not-error rule.
type HaltError struct {
	Body   string
	Module string
	Reason string
	Step   int64
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halt at step %d on body %s (%s): %s", e.Step, e.Body, e.Module, e.Reason)
}

// InternalError indicates a dispatch-matrix or invariant violation: a
// second owner for a VALUE-kind variable, a derivative result with no
// matching variable on its body. These are programming bugs, not user
// errors, so panicInternal raises them as a panic rather than a returned
// error, following the teacher's panic(fmt.Errorf(...)) idiom.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}

func panicInternal(format string, args ...interface{}) {
	panic(&InternalError{Reason: fmt.Sprintf(format, args...)})
}
