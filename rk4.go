package vplanet

import "math"

// stepState snapshots one variable's starting value, for restoring between
// RK4 substages and for the final weighted-sum update. Grounded on the
// teacher's src/integrator/rk4.go Integrable pattern (GetState/SetState
// staged into a scratch []float64 across k1..k4) and on mission.go's Func
// kind-dispatch, generalized from the teacher's two Propagator kinds to
// this module's seven Kind values.
type stepState struct {
	body  *Body
	bi    int
	v     *Variable
	x0    float64
	k     [4]float64
}

// RK4Step advances sys by one adaptive step. It runs the auxiliary pass
// four times (the classical RK4 stage count), computing a fresh dt from
// NextTimestep before the first stage and holding it fixed across all four
// stages of this step, per spec.md §4.6. It returns the dt actually used
// and a regimes slice that nothing in this package fills, so it is always
// empty.
//
// VALUE and EXPLICIT kind variables are not weighted-sum integrated: per
// spec.md §4.1/4.6 their contributor returns the new value directly, so
// RK4Step assigns the stage-1 evaluation outright and never re-evaluates
// them at stages 2-4.
func RK4Step(sys *System, eta, tNextOutput float64) (dt float64, regimes []RegimeChange, err error) {
	if err := ModuleAux(sys); err != nil {
		return 0, nil, err
	}
	k1 := EvalSystem(sys)
	dt = NextTimestep(sys, k1, eta, tNextOutput)

	states := collectStates(sys, k1)
	evalRates := func(stage int) {
		for i := range states {
			if states[i].v.Kind.integratesBySum() {
				states[i].k[stage] = EvalVariable(sys, states[i].v)
			}
		}
	}

	// Stage 1 already evaluated (k1). VALUE/EXPLICIT vars are resolved now
	// and frozen; RATE-like vars advance to the midpoint for stage 2.
	for i := range states {
		st := &states[i]
		st.k[0] = valueFor(st, k1)
		if !st.v.Kind.integratesBySum() {
			continue
		}
		st.v.Set(st.body, st.x0+dt/2*st.k[0])
	}

	if err := ModuleAux(sys); err != nil {
		return 0, nil, err
	}
	evalRates(1)
	for i := range states {
		st := &states[i]
		if !st.v.Kind.integratesBySum() {
			continue
		}
		st.v.Set(st.body, st.x0+dt/2*st.k[1])
	}

	if err := ModuleAux(sys); err != nil {
		return 0, nil, err
	}
	evalRates(2)
	for i := range states {
		st := &states[i]
		if !st.v.Kind.integratesBySum() {
			continue
		}
		st.v.Set(st.body, st.x0+dt*st.k[2])
	}

	if err := ModuleAux(sys); err != nil {
		return 0, nil, err
	}
	evalRates(3)
	for i := range states {
		st := &states[i]
		if !st.v.Kind.integratesBySum() {
			continue
		}
		final := st.x0 + dt/6*(st.k[0]+2*st.k[1]+2*st.k[2]+st.k[3])
		if math.IsNaN(final) || math.IsInf(final, 0) {
			return dt, regimes, &NumericalError{Body: st.body.Name, Reason: "non-finite state after RK4 step on " + st.v.Name}
		}
		st.v.Set(st.body, final)
	}
	// VALUE/EXPLICIT variables keep their stage-1 assignment.
	for i := range states {
		st := &states[i]
		if st.v.Kind.integratesBySum() {
			continue
		}
		st.v.Set(st.body, st.k[0])
	}

	sys.Time += dt
	sys.Age += dt
	for _, b := range sys.Bodies {
		b.Age += dt
	}
	return dt, regimes, nil
}

func collectStates(sys *System, results []DerivResult) []stepState {
	states := make([]stepState, len(results))
	for i, r := range results {
		b := sys.Bodies[r.Body]
		v := FindVariable(b, r.Variable)
		if v == nil {
			panicInternal("collectStates: body %s missing variable %q", b.Name, r.Variable)
		}
		states[i] = stepState{body: b, bi: r.Body, v: v, x0: v.Get(b)}
	}
	return states
}

// valueFor finds the DerivResult for st's (body, variable) pair in a
// results slice by a linear search on body index and variable name, and
// panics if there is none. RK4Step uses it for the stage-1 results.
func valueFor(st *stepState, results []DerivResult) float64 {
	for _, r := range results {
		if r.Body == st.bi && r.Variable == st.v.Name {
			return r.Value
		}
	}
	panicInternal("valueFor: no result for %s/%s", st.body.Name, st.v.Name)
	return 0
}
