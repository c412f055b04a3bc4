package vplanet

// DerivResult carries one body-variable's evaluated rate/value from one
// derivative pass. It carries no RegimeChange.
type DerivResult struct {
	Body     int
	Variable string
	Kind     Kind
	Value    float64 // the summed contribution (rate, or new value for VALUE/EXPLICIT)
}

// EvalSystem runs the derivative pass (§4.4) over every body after
// ModuleAux has already run this step, returning one DerivResult per
// (body, variable) pair in body/variable registration order. RK4Step calls
// it once per step, for stage 1. The returned slice aliases sys.derivBuf,
// preallocated once in System.Verify: each step consumes one call's
// results before the next call overwrites them, so the shared backing
// array never needs a fresh allocation once the system is verified.
func EvalSystem(sys *System) []DerivResult {
	out := sys.derivBuf[:0]
	for bi := range sys.Bodies {
		vars, sums := EvalBody(sys, bi)
		for i, v := range vars {
			out = append(out, DerivResult{Body: bi, Variable: v.Name, Kind: v.Kind, Value: sums[i]})
		}
	}
	sys.derivBuf = out
	return out
}
