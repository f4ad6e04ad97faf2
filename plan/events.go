package plan

import "github.com/tensegral/fabricator/units"

// EventKind discriminates the execution-event stream the plan runner emits.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStageTransition
	EventGrowthStep
	EventGrowthComplete
	EventFacesRemoved
	EventPretensionApplied
	EventPhysicsChanged
	EventCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "Started"
	case EventStageTransition:
		return "StageTransition"
	case EventGrowthStep:
		return "GrowthStep"
	case EventGrowthComplete:
		return "GrowthComplete"
	case EventFacesRemoved:
		return "FacesRemoved"
	case EventPretensionApplied:
		return "PretensionApplied"
	case EventPhysicsChanged:
		return "PhysicsChanged"
	case EventCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Event is one entry in the plan runner's execution-event stream. Fields
// not meaningful for a given Kind are left zero.
type Event struct {
	Kind       EventKind
	Tick       int64
	FabricTime units.Seconds

	From, To   string // StageTransition
	JointCount int    // GrowthStep
	Count      int    // FacesRemoved
	Percent    units.Percent
	Label      string // PhysicsChanged
	Message    string // terminal Disabled transition carries the soft-error text in To="Disabled"
}

// EventSink receives events as the runner produces them. A nil sink is
// valid; events are simply dropped.
type EventSink func(Event)

func (r *Runner) emit(e Event) {
	e.Tick = int64(r.Fabric.Age)
	e.FabricTime = r.Fabric.Age.Seconds()
	if r.Events != nil {
		r.Events(e)
	}
}
