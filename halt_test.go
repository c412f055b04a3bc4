package vplanet

import "testing"

type fakeHaltModule struct {
	name  string
	count int
	fire  func(k int) (string, bool)
}

func (m fakeHaltModule) Name() string                                      { return m.name }
func (fakeHaltModule) ReadOptions(b *Body, opts map[string]string) error   { return nil }
func (fakeHaltModule) Verify(sys *System, bi int) error                   { return nil }
func (m fakeHaltModule) CountHalts(b *Body) int                            { return m.count }
func (fakeHaltModule) InitializeUpdate(sys *System, bi int) error          { return nil }
func (fakeHaltModule) AssignDerivatives(b *Body) []string                  { return nil }
func (fakeHaltModule) NullDerivatives(b *Body) []string                   { return nil }
func (fakeHaltModule) LogBody(sys *System, bi int) []interface{}          { return nil }
func (fakeHaltModule) BodyCopy(dst, src *Body)                            {}
func (m fakeHaltModule) CheckHalt(sys *System, bi int, k int) (string, bool) {
	return m.fire(k)
}

// TestCheckHaltsFirstMatchWins covers spec.md §8.2 scenario 4's
// determinism requirement: when multiple halts could fire, the first in
// registration order wins, not an arbitrary one.
func TestCheckHaltsFirstMatchWins(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	first := fakeHaltModule{name: "first", count: 1, fire: func(k int) (string, bool) { return "first fired", true }}
	second := fakeHaltModule{name: "second", count: 1, fire: func(k int) (string, bool) { return "second fired", true }}
	sys.Modules = []Module{first, second}

	checkers := BuildHaltCheckers(sys)
	if len(checkers) != 4 { // 2 bodies * 2 modules * 1 halt each
		t.Fatalf("expected 4 halt checkers, got %d", len(checkers))
	}

	halt := CheckHalts(sys, checkers)
	if halt == nil {
		t.Fatalf("expected a halt to fire")
	}
	if halt.Module != "first" {
		t.Fatalf("expected the first-registered module's halt to win, got %q", halt.Module)
	}
}

// TestCheckHaltsNoneFiredReturnsNil covers the common non-halting path.
func TestCheckHaltsNoneFiredReturnsNil(t *testing.T) {
	sys := NewSystem(NewBody("star"), NewBody("planet"))
	m := fakeHaltModule{name: "quiet", count: 1, fire: func(k int) (string, bool) { return "", false }}
	sys.Modules = []Module{m}

	checkers := BuildHaltCheckers(sys)
	if halt := CheckHalts(sys, checkers); halt != nil {
		t.Fatalf("expected no halt, got %v", halt)
	}
}
