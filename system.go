package vplanet

import (
	"fmt"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
	kitlog "github.com/go-kit/kit/log"
)

// System is the whole world: an ordered body list (body 0 is the star, per
// spec.md's invariant) plus the modules attached to it and the shared
// logger. Mirrors the teacher's Mission struct as the top-level state
// container, generalized from a single spacecraft to N bodies.
type System struct {
	Bodies  []*Body
	Modules []Module

	Time float64 // s, since simulation start
	Age  float64 // s, equivalent to Time unless a body's Age is offset

	// massVec is refreshed only in Verify and read by TotalMass. The escape
	// module's Roche-lobe term does not read it; it calls MassRatio, which
	// reads Bodies directly. See SPEC_FULL.md §3.
	massVec *mat64.Vector

	// derivBuf is EvalSystem's preallocated result buffer, reused on every
	// step of the run: within one EvalSystem
	// call its entries are consumed (copied into rk4.go's stepState.k)
	// before the next call overwrites them, so one shared backing array is
	// safe. Sized in Verify to the total variable count across all bodies.
	derivBuf []DerivResult

	Logger kitlog.Logger
}

// NewSystem builds a System from a star plus its planets, in that order.
func NewSystem(star *Body, planets ...*Body) *System {
	star.IsStar = true
	bodies := append([]*Body{star}, planets...)
	return &System{
		Bodies: bodies,
		Logger: kitlog.NewNopLogger(),
	}
}

// Star returns body 0.
func (s *System) Star() *Body { return s.Bodies[0] }

// refreshMassVec rebuilds the coupled-mass vector. Called only from Verify.
func (s *System) refreshMassVec() {
	masses := make([]float64, len(s.Bodies))
	for i, b := range s.Bodies {
		masses[i] = b.Mass
	}
	s.massVec = mat64.NewVector(len(masses), masses)
}

// TotalMass sums every body's mass via gonum/floats, exercised the same way
// the escape module's Roche term needs M_body/M_star but generalized to an
// arbitrary body count.
func (s *System) TotalMass() float64 {
	n := s.massVec.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = s.massVec.At(i, 0)
	}
	return floats.Sum(vals)
}

// MassRatio returns body[i].Mass / star.Mass, the form every escape-module
// Roche-lobe computation needs.
func (s *System) MassRatio(i int) float64 {
	return s.Bodies[i].Mass / s.Star().Mass
}

// BodyIndex returns the index of the named body, or -1.
func (s *System) BodyIndex(name string) int {
	for i, b := range s.Bodies {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Verify wires every attached module's variable claims into each body's
// dispatch-matrix row, preallocates scratch and the derivative buffers the
// derivative pass reuses every step, and refreshes the mass vector. The
// step loop still allocates: RK4Step's collectStates builds a new
// stepState slice on every step.
func (s *System) Verify() error {
	s.refreshMassVec()

	total := 0
	for bi, b := range s.Bodies {
		b.vars = nil
		for _, m := range s.Modules {
			if err := m.Verify(s, bi); err != nil {
				return fmt.Errorf("verify: module %s on body %s: %w", m.Name(), b.Name, err)
			}
		}
		for _, v := range b.vars {
			v.ensureScratch()
		}
		if cap(b.sumsBuf) < len(b.vars) {
			b.sumsBuf = make([]float64, len(b.vars))
		}
		b.sumsBuf = b.sumsBuf[:len(b.vars)]
		total += len(b.vars)
	}
	if cap(s.derivBuf) < total {
		s.derivBuf = make([]DerivResult, 0, total)
	}
	return nil
}

// AddVariable registers v on body[bi]'s dispatch row. Modules call this
// from Verify, once per variable they claim (possibly appending a
// Contributor to a variable another module already registered, when two
// modules both affect the same state — e.g. a tidal-heating module and the
// stellar module could both claim luminosity; neither reference module
// here actually shares a variable, but the matrix must support it).
//
// spec.md §3's single-owner invariant ("exactly one module contributes a
// value-driven entry for any given value-driven variable") is enforced
// here: a second Contributor merging onto an existing VALUE-kind variable
// is a verification-time fatal, not silently allowed like it is for
// RATE-kind variables (which sum any number of contributions).
func (s *System) AddVariable(bi int, v *Variable) {
	b := s.Bodies[bi]
	for _, existing := range b.vars {
		if existing.Name == v.Name {
			if existing.Kind == Value && (len(existing.Contributors)+len(v.Contributors)) > 1 {
				panicInternal("duplicate ownership of VALUE variable %q on body %s", v.Name, b.Name)
			}
			existing.Contributors = append(existing.Contributors, v.Contributors...)
			return
		}
	}
	b.vars = append(b.vars, v)
}
