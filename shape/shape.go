// Package shape implements the post-growth shape phase: a sequence of
// timed steps (Spacer, Joiner, Vulcanize, Centralize, PointDownwards) that
// run in order against a live fabric, each driven by its own Progress
// window.
package shape

import (
	"github.com/tensegral/fabricator/fabric"
	"github.com/tensegral/fabricator/units"
)

// CommandKind tells the plan runner what to do after a Phase.Tick call.
type CommandKind int

const (
	CommandNoop CommandKind = iota
	CommandStartProgress
	CommandTerminate
)

// Command is the phase's response to one driver tick.
type Command struct {
	Kind     CommandKind
	Duration units.Seconds
}

// Action is one shape step's behavior: set up at Begin, ticked every
// driver batch while the step's Progress is busy, torn down at End.
type Action interface {
	Begin(f *fabric.Fabric, now units.Age, duration units.Seconds)
	Step(f *fabric.Fabric, now units.Age)
	End(f *fabric.Fabric, now units.Age)
}

// Step pairs an Action with the duration its Progress window runs for.
type Step struct {
	During units.Seconds
	Action Action
}

// Phase runs a sequence of Steps in order, one Progress window at a time.
type Phase struct {
	steps   []Step
	current int
	started bool
	progress units.Progress
}

// NewPhase builds a phase over the given ordered steps.
func NewPhase(steps ...Step) *Phase {
	return &Phase{steps: steps}
}

// Empty reports whether the phase has no steps at all.
func (p *Phase) Empty() bool { return len(p.steps) == 0 }

// Tick advances the phase by one driver batch and reports what the caller
// should do next: start a new Progress window (a step just began), do
// nothing (a step is still busy), or terminate (every step is exhausted).
func (p *Phase) Tick(f *fabric.Fabric, now units.Age) Command {
	if p.current >= len(p.steps) {
		return Command{Kind: CommandTerminate}
	}
	step := p.steps[p.current]

	if !p.started {
		step.Action.Begin(f, now, step.During)
		p.progress.Start(now, step.During)
		p.started = true
		return Command{Kind: CommandStartProgress, Duration: step.During}
	}

	if p.progress.IsBusy(now) {
		step.Action.Step(f, now)
		return Command{Kind: CommandNoop}
	}

	step.Action.End(f, now)
	p.current++
	p.started = false
	if p.current >= len(p.steps) {
		return Command{Kind: CommandTerminate}
	}
	return Command{Kind: CommandNoop}
}
