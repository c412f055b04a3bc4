package vplanet

import "math"

// GeneralAux runs the non-module auxiliary computations every body needs
// before any module's InitializeUpdate: each planet's mean motion (no
// orbital period is stored), generalized from the teacher's orbit.go Period()/mean-motion helpers
// into a step that operates on System directly rather than a single Orbit
// value. See spec.md §4.3.
func GeneralAux(sys *System) {
	star := sys.Star()
	for i, b := range sys.Bodies {
		if i == 0 {
			continue
		}
		if b.SemiMajorAxis <= 0 {
			continue
		}
		mu := BigG * (star.Mass + b.Mass)
		b.MeanMotion = math.Sqrt(mu / (b.SemiMajorAxis * b.SemiMajorAxis * b.SemiMajorAxis))
	}
}

// ModuleAux runs every attached module's InitializeUpdate for every body,
// in module-registration order, matching the source's fixed aux-function
// iteration order (spec.md §4.3: auxiliaries must run before derivatives,
// and every module's aux must run before any module's derivative).
func ModuleAux(sys *System) error {
	GeneralAux(sys)
	for bi := range sys.Bodies {
		for _, m := range sys.Modules {
			if err := m.InitializeUpdate(sys, bi); err != nil {
				return err
			}
		}
	}
	return nil
}
