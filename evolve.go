package vplanet

import (
	"fmt"

	"github.com/go-kit/kit/log/level"
)

// Evolution is the top-level driver, generalized from the teacher's
// Mission: a System plus run configuration (stop time, output cadence,
// safety factor) and the channel-fed output writer. See SPEC_FULL.md §5.
type Evolution struct {
	Sys *System

	StopTime   float64 // s
	OutputTime float64 // s, cadence between snapshot rows
	Eta        float64

	Output   *OutputDriver
	haltChk  []HaltChecker
	behaviors []ForceBehavior

	StepCount int64
	MaxSteps  int64 // 0 means unbounded
}

// NewEvolution wires up an Evolution ready to Run: verifies the system and
// builds halt checkers. out's writer goroutine was already started by
// NewOutputDriver.
func NewEvolution(sys *System, stopTime, outputTime, eta float64, out *OutputDriver) (*Evolution, error) {
	if err := sys.Verify(); err != nil {
		return nil, err
	}
	ev := &Evolution{
		Sys:        sys,
		StopTime:   stopTime,
		OutputTime: outputTime,
		Eta:        eta,
		Output:     out,
		haltChk:    BuildHaltCheckers(sys),
		behaviors:  DefaultForceBehaviors,
	}
	return ev, nil
}

// Run drives the system from its current Time to StopTime, writing output
// rows at OutputTime cadence, halting early if a HaltChecker fires.
// Mirrors mission.Propagate's loop structure: step, log, check stop,
// repeat — generalized from a fixed-step single-spacecraft loop to an
// adaptive multi-body one. A returned *HaltError is not a failure: the
// caller should still treat Run's partial output as the final result, per
// spec.md §7.
func (ev *Evolution) Run() error {
	if ev.Output != nil {
		ev.Output.WriteHeader(ev.Sys)
		defer ev.Output.WriteFooter(ev.Sys)
	}

	nextOutput := ev.Sys.Time + ev.OutputTime

	for ev.Sys.Time < ev.StopTime {
		if ev.MaxSteps > 0 && ev.StepCount >= ev.MaxSteps {
			return &NumericalError{Body: "system", Reason: "exceeded max step count without reaching stop time"}
		}

		dt, regimes, err := RK4Step(ev.Sys, ev.Eta, nextOutput)
		if err != nil {
			return err
		}
		ev.StepCount++

		ApplyForceBehaviors(ev.Sys, ev.behaviors)

		for _, rc := range regimes {
			level.Info(ev.Sys.Logger).Log("subsys", "regime", "transition", rc.String())
		}

		if ev.Sys.Time >= nextOutput && ev.Output != nil {
			if err := ModuleAux(ev.Sys); err != nil {
				return err
			}
			ev.Output.WriteSnapshot(ev.Sys)
			nextOutput += ev.OutputTime
		}

		if halt := CheckHalts(ev.Sys, ev.haltChk); halt != nil {
			halt.Step = ev.StepCount
			if ev.Output != nil {
				if err := ModuleAux(ev.Sys); err != nil {
					return err
				}
				ev.Output.WriteSnapshot(ev.Sys)
			}
			return halt
		}

		if dt <= 0 {
			panicInternal("RK4Step returned non-positive dt %g", dt)
		}
	}
	return nil
}

// String implements fmt.Stringer for quick debugging/log context.
func (ev *Evolution) String() string {
	return fmt.Sprintf("Evolution(t=%.3e/%.3e, steps=%d)", ev.Sys.Time, ev.StopTime, ev.StepCount)
}
