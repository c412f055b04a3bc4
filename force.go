package vplanet

// ForceBehavior is the per-variable post-step correction spec.md §4.7
// describes: clamping a value back into its physical domain after RK4 has
// advanced it (e.g. a mixing ratio drifting fractionally outside [0, 1], a
// mass that would otherwise go negative once its reservoir is exhausted).
// Force behaviors run after every successful RK4 step, before halts are
// checked, so a halt condition sees the corrected value.
type ForceBehavior func(b *Body)

// ClampOxygenMixingRatio keeps X_O in [0, 1] after each step, guarding
// against the floating-point overshoot the auxiliary X_O computation can
// introduce near the LBEXACT/DIFFUSION_LIMITED switch at X_O = 0.6.
func ClampOxygenMixingRatio(b *Body) {
	b.OxygenMixingRatio = Clamp(b.OxygenMixingRatio, 0, 1)
}

// ClampNonNegativeMass forces a reservoir variable (surface water, envelope
// mass, oxygen mass) to floor at zero rather than go negative once a halt
// condition should have already fired but the step overshot.
func ClampNonNegativeMass(b *Body) {
	if b.SurfaceWaterMass < 0 {
		b.SurfaceWaterMass = 0
	}
	if b.EnvelopeMass < 0 {
		b.EnvelopeMass = 0
	}
	if b.OxygenMass < 0 {
		b.OxygenMass = 0
	}
	if b.OxygenMantleMass < 0 {
		b.OxygenMantleMass = 0
	}
}

// DefaultForceBehaviors is the fixed post-step correction list every
// Evolution runs, in order, mirroring the source's forceBehavior loop
// running once per body after every accepted step.
var DefaultForceBehaviors = []ForceBehavior{
	ClampOxygenMixingRatio,
	ClampNonNegativeMass,
}

// ApplyForceBehaviors runs every registered generic force behavior on
// every body, then gives every attached module a chance to run its own
// per-(body, module) force behavior (spec.md §4.7) through the optional
// ForceBehaviorSource interface — mirrors HaltSource's opt-in shape in
// halt.go for modules whose post-step correction needs module-private
// state (e.g. the escape module's one-shot envelope-exhaustion message).
func ApplyForceBehaviors(sys *System, behaviors []ForceBehavior) {
	for _, b := range sys.Bodies {
		for _, fb := range behaviors {
			fb(b)
		}
	}
	for bi := range sys.Bodies {
		for _, m := range sys.Modules {
			if fbs, ok := m.(ForceBehaviorSource); ok {
				fbs.ApplyForceBehavior(sys, bi)
			}
		}
	}
}

// ForceBehaviorSource is implemented by modules whose force-behavior pass
// needs module-private body state beyond a generic clamp. See spec.md
// §4.7 and the escape module's envelope-exhaustion message.
type ForceBehaviorSource interface {
	ApplyForceBehavior(sys *System, bi int)
}
