package vplanet

// HaltChecker is one module's single halt condition for one body. It
// returns a non-empty reason when the condition fires. Modules report how
// many of these they contribute via CountHalts, and BuildHaltCheckers
// collects them from every module once the system is verified, mirroring
// the way variable
// Contributors are registered onto a Variable.
type HaltChecker struct {
	Module string
	Body   int
	Check  func(sys *System) (reason string, fired bool)
}

// CheckHalts runs every registered halt checker in registration order and
// returns the first one that fires, or nil. Registration order matters:
// spec.md §8.2's "halt-matches-non-halting-run-up-to-that-step" property
// requires a deterministic first-match, not an arbitrary one.
func CheckHalts(sys *System, checkers []HaltChecker) *HaltError {
	for _, c := range checkers {
		if reason, fired := c.Check(sys); fired {
			return &HaltError{
				Body:   sys.Bodies[c.Body].Name,
				Module: c.Module,
				Reason: reason,
			}
		}
	}
	return nil
}

// BuildHaltCheckers asks every module attached to sys for its halt
// checkers, in module/body registration order.
func BuildHaltCheckers(sys *System) []HaltChecker {
	var out []HaltChecker
	for bi := range sys.Bodies {
		for _, m := range sys.Modules {
			n := m.CountHalts(sys.Bodies[bi])
			for k := 0; k < n; k++ {
				out = append(out, haltCheckerFor(sys, m, bi, k))
			}
		}
	}
	return out
}

// haltCheckerFor looks up module m's k-th halt checker for body bi. Modules
// implementing more than one halt condition expose them through the
// HaltSource interface below; modules with exactly one (the common case)
// can instead implement HaltSource with CountHalts returning 0 or 1 and a
// single Check.
func haltCheckerFor(sys *System, m Module, bi int, k int) HaltChecker {
	hs, ok := m.(HaltSource)
	if !ok {
		panicInternal("module %s declares CountHalts>0 but does not implement HaltSource", m.Name())
	}
	return HaltChecker{
		Module: m.Name(),
		Body:   bi,
		Check: func(sys *System) (string, bool) {
			return hs.CheckHalt(sys, bi, k)
		},
	}
}

// HaltSource is implemented by modules whose CountHalts(b) > 0 for some
// body. CheckHalt evaluates the k-th halt condition for body bi.
type HaltSource interface {
	CheckHalt(sys *System, bi int, k int) (reason string, fired bool)
}
