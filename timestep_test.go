package vplanet

import "testing"

func TestNextTimestepScalesWithEta(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	b := sys.Bodies[1]
	b.Mass = 1
	v := &Variable{Name: "x", Kind: Rate, Get: func(bb *Body) float64 { return 10 }, Set: func(bb *Body, f float64) {}}
	sys.AddVariable(1, v)
	results := []DerivResult{{Body: 1, Variable: "x", Kind: Rate, Value: 2}}

	dt1 := NextTimestep(sys, results, 0.01, 1e30)
	dt2 := NextTimestep(sys, results, 0.02, 1e30)

	if dt2 <= dt1 {
		t.Fatalf("expected larger eta to produce a larger step: dt1=%g dt2=%g", dt1, dt2)
	}
	wantTau := 10.0 / 2.0
	if got, want := dt1, 0.01*wantTau; got != want {
		t.Fatalf("dt1 = %g, want %g", got, want)
	}
}

func TestNextTimestepExcludesDerived(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	sys.AddVariable(1, &Variable{Name: "bookkeeping", Kind: Derived, Get: func(b *Body) float64 { return 1 }, Set: func(b *Body, f float64) {}})
	results := []DerivResult{{Body: 1, Variable: "bookkeeping", Kind: Derived, Value: 1e20}}

	dt := NextTimestep(sys, results, 0.01, 5)
	if dt != 5 {
		t.Fatalf("expected fallback to output cadence when only DERIVED variables exist, got %g", dt)
	}
}

func TestNextTimestepNeverBelowFloor(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	sys.AddVariable(1, &Variable{Name: "x", Kind: Rate, Get: func(b *Body) float64 { return 0 }, Set: func(b *Body, f float64) {}})
	results := []DerivResult{{Body: 1, Variable: "x", Kind: Rate, Value: 1e300}}

	dt := NextTimestep(sys, results, 1, 1e30)
	if dt < EpsFloor {
		t.Fatalf("dt=%g below EpsFloor", dt)
	}
}
