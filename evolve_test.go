package vplanet

import "testing"

// fakeRunModule is a minimal Module used to drive Evolution.Run end to
// end without pulling in the full escape/stellar physics: a single
// RATE-kind variable on the planet decaying toward zero, used to check
// the driver's step/output/halt wiring in isolation.
type fakeRunModule struct {
	haltFloor float64
}

func (fakeRunModule) Name() string                                    { return "fake" }
func (fakeRunModule) ReadOptions(b *Body, opts map[string]string) error { return nil }

func (m fakeRunModule) Verify(sys *System, bi int) error {
	if bi != 1 {
		return nil
	}
	b := sys.Bodies[bi]
	sys.AddVariable(bi, &Variable{
		Name: "Reservoir", Kind: Rate,
		Get: func(bb *Body) float64 { return bb.SurfaceWaterMass },
		Set: func(bb *Body, v float64) { bb.SurfaceWaterMass = v },
		Contributors: []Contributor{{Compute: func(s *System, ia []int) float64 {
			r := s.Bodies[1].SurfaceWaterMass
			if r <= 0 {
				return 0
			}
			return -0.1 * r
		}}},
	})
	_ = b
	return nil
}

func (fakeRunModule) CountHalts(b *Body) int     { return 1 }
func (m fakeRunModule) CheckHalt(sys *System, bi int, k int) (string, bool) {
	if bi != 1 {
		return "", false
	}
	if sys.Bodies[bi].SurfaceWaterMass <= m.haltFloor {
		return "reservoir exhausted", true
	}
	return "", false
}
func (fakeRunModule) InitializeUpdate(sys *System, bi int) error { return nil }
func (fakeRunModule) AssignDerivatives(b *Body) []string         { return []string{"Reservoir"} }
func (fakeRunModule) NullDerivatives(b *Body) []string           { return []string{"Reservoir"} }
func (fakeRunModule) BodyCopy(dst, src *Body)                    { dst.SurfaceWaterMass = src.SurfaceWaterMass }
func (fakeRunModule) LogBody(sys *System, bi int) []interface{}  { return nil }

// TestEvolutionRunHaltsAndReportsStep covers spec.md §8.2 scenario 4's
// shape: a halt condition stops the run, and the reported step count is
// consistent (positive, bounded by MaxSteps if set).
func TestEvolutionRunHaltsAndReportsStep(t *testing.T) {
	star := NewBody("star")
	planet := NewBody("planet")
	planet.SurfaceWaterMass = 1.0
	sys := NewSystem(star, planet)
	sys.Modules = []Module{fakeRunModule{haltFloor: 0.01}}

	ev, err := NewEvolution(sys, 1e6, 1e5, 0.05, nil)
	if err != nil {
		t.Fatalf("NewEvolution: %v", err)
	}
	ev.MaxSteps = 100000

	err = ev.Run()
	halt, ok := err.(*HaltError)
	if !ok {
		t.Fatalf("expected *HaltError, got %v (%T)", err, err)
	}
	if halt.Step <= 0 {
		t.Fatalf("expected a positive step count at halt, got %d", halt.Step)
	}
	if planet.SurfaceWaterMass > 0.01 {
		t.Fatalf("expected the reservoir to have reached the halt floor, got %g", planet.SurfaceWaterMass)
	}
}

// TestEvolutionRunCompletesWithoutHalt covers the ordinary stop-time path
// when no halt ever fires.
func TestEvolutionRunCompletesWithoutHalt(t *testing.T) {
	star := NewBody("star")
	planet := NewBody("planet")
	planet.SurfaceWaterMass = 1.0
	sys := NewSystem(star, planet)
	sys.Modules = []Module{fakeRunModule{haltFloor: -1}} // never halts

	ev, err := NewEvolution(sys, 10, 1, 0.1, nil)
	if err != nil {
		t.Fatalf("NewEvolution: %v", err)
	}
	ev.MaxSteps = 100000

	if err := ev.Run(); err != nil {
		t.Fatalf("expected a clean completion, got %v", err)
	}
	if sys.Time < 10 {
		t.Fatalf("expected sys.Time to reach StopTime, got %g", sys.Time)
	}
}
