package vplanet

import "testing"

// TestDispatchBodyCopyRoundTrip covers spec.md §8's dispatch invariant:
// every registered module's BodyCopy hook, composed over all active
// modules on a body, restores an independent copy field-by-field.
func TestDispatchBodyCopyRoundTrip(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	planet := sys.Bodies[1]
	planet.Mass = 3.0
	planet.SurfaceWaterMass = 42.0
	planet.EnvelopeMass = 7.0

	dst := NewBody("scratch")
	bc := testBodyCopyModule{}
	bc.BodyCopy(dst, planet)

	if dst.Mass != planet.Mass || dst.SurfaceWaterMass != planet.SurfaceWaterMass || dst.EnvelopeMass != planet.EnvelopeMass {
		t.Fatalf("BodyCopy did not restore fields: got %+v, want fields matching %+v", dst, planet)
	}
}

// testBodyCopyModule is a minimal Module stand-in exercising just the
// BodyCopy hook, mirroring the shape modules/escape.Module.BodyCopy uses.
type testBodyCopyModule struct{}

func (testBodyCopyModule) Name() string                                      { return "test" }
func (testBodyCopyModule) ReadOptions(b *Body, opts map[string]string) error { return nil }
func (testBodyCopyModule) Verify(sys *System, bi int) error                  { return nil }
func (testBodyCopyModule) CountHalts(b *Body) int                            { return 0 }
func (testBodyCopyModule) InitializeUpdate(sys *System, bi int) error        { return nil }
func (testBodyCopyModule) AssignDerivatives(b *Body) []string                { return nil }
func (testBodyCopyModule) NullDerivatives(b *Body) []string                  { return nil }
func (testBodyCopyModule) LogBody(sys *System, bi int) []interface{}         { return nil }
func (testBodyCopyModule) BodyCopy(dst, src *Body) {
	dst.Mass = src.Mass
	dst.SurfaceWaterMass = src.SurfaceWaterMass
	dst.EnvelopeMass = src.EnvelopeMass
}

// TestAddVariableMergesContributors covers spec.md §3's "rate-driven
// variables may be contributed to by any number of modules" invariant:
// registering a second Contributor for an existing variable name appends
// rather than replacing, so EvalVariable sums both.
func TestAddVariableMergesContributors(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	v1 := &Variable{
		Name: "x", Kind: Rate,
		Get: func(b *Body) float64 { return 0 }, Set: func(b *Body, f float64) {},
		Contributors: []Contributor{{Compute: func(s *System, ia []int) float64 { return 2 }}},
	}
	v2 := &Variable{
		Name: "x", Kind: Rate,
		Contributors: []Contributor{{Compute: func(s *System, ia []int) float64 { return 3 }}},
	}
	sys.AddVariable(1, v1)
	sys.AddVariable(1, v2)

	b := sys.Bodies[1]
	if len(b.vars) != 1 {
		t.Fatalf("expected variables to merge into one entry, got %d", len(b.vars))
	}
	got := EvalVariable(sys, b.vars[0])
	if got != 5 {
		t.Fatalf("EvalVariable summed contributors = %g, want 5", got)
	}
}

// TestAddVariableDuplicateValueOwnerPanics covers spec.md §3's
// single-owner invariant for VALUE-kind variables: a second module
// claiming the same VALUE variable on the same body is a verification-
// time fatal, not a silent merge.
func TestAddVariableDuplicateValueOwnerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on duplicate VALUE-variable ownership")
		}
	}()
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	mk := func() *Variable {
		return &Variable{
			Name: "Radius", Kind: Value,
			Get: func(b *Body) float64 { return 0 }, Set: func(b *Body, f float64) {},
			Contributors: []Contributor{{Compute: func(s *System, ia []int) float64 { return 1 }}},
		}
	}
	sys.AddVariable(1, mk())
	sys.AddVariable(1, mk())
}

// TestFindVariableMissingReturnsNil exercises the lookup miss path
// NextTimestep and collectStates rely on panicking instead of silently
// reading a nil variable.
func TestFindVariableMissingReturnsNil(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	if v := FindVariable(sys.Bodies[1], "nonexistent"); v != nil {
		t.Fatalf("expected nil for unregistered variable, got %+v", v)
	}
}
