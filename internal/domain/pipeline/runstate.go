package pipeline

import "github.com/felixgeelhaar/statekit"

// RunState is the lifecycle state of one pipeline run.
type RunState string

const (
	// RunStatePending indicates the run has not started.
	RunStatePending RunState = "pending"
	// RunStateRunning indicates steps are executing.
	RunStateRunning RunState = "running"
	// RunStateCompleted indicates the run finished without a fatal failure.
	RunStateCompleted RunState = "completed"
	// RunStateHalted indicates a fatal step failure stopped the run.
	RunStateHalted RunState = "halted"
	// RunStateCancelled indicates cooperative cancellation stopped the run.
	RunStateCancelled RunState = "cancelled"
)

// Events for the run lifecycle state machine.
const (
	eventRunStart    = "START"
	eventRunComplete = "COMPLETE"
	eventRunHalt     = "HALT"
	eventRunCancel   = "CANCEL"
	eventRunReset    = "RESET"
)

// runLifecycleContext is the statekit context for the run machine.
// The machine carries no mutable data; all run state lives in the report.
type runLifecycleContext struct{}

// runLifecycle tracks one run's lifecycle on a statekit machine.
// A zero lifecycle (nil interpreter) degrades to a no-op tracker.
type runLifecycle struct {
	interp *statekit.Interpreter[runLifecycleContext]
}

// newRunLifecycle builds and starts the lifecycle machine for a fresh run.
func newRunLifecycle() *runLifecycle {
	machine, err := statekit.NewMachine[runLifecycleContext]("relay-run").
		WithInitial(statekit.StateID(RunStatePending)).
		WithContext(runLifecycleContext{}).
		State(statekit.StateID(RunStatePending)).
		On(eventRunStart).Target(statekit.StateID(RunStateRunning)).Done().
		State(statekit.StateID(RunStateRunning)).
		On(eventRunComplete).Target(statekit.StateID(RunStateCompleted)).
		On(eventRunHalt).Target(statekit.StateID(RunStateHalted)).
		On(eventRunCancel).Target(statekit.StateID(RunStateCancelled)).Done().
		State(statekit.StateID(RunStateCompleted)).
		On(eventRunReset).Target(statekit.StateID(RunStatePending)).Done().
		State(statekit.StateID(RunStateHalted)).
		On(eventRunReset).Target(statekit.StateID(RunStatePending)).Done().
		State(statekit.StateID(RunStateCancelled)).
		On(eventRunReset).Target(statekit.StateID(RunStatePending)).Done().
		Build()
	if err != nil {
		return &runLifecycle{}
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &runLifecycle{interp: interp}
}

func (l *runLifecycle) send(event string) {
	if l.interp == nil {
		return
	}
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (l *runLifecycle) start()    { l.send(eventRunStart) }
func (l *runLifecycle) complete() { l.send(eventRunComplete) }
func (l *runLifecycle) halt()     { l.send(eventRunHalt) }
func (l *runLifecycle) cancel()   { l.send(eventRunCancel) }

// state returns the machine's current state, or empty when unavailable.
func (l *runLifecycle) state() RunState {
	if l.interp == nil {
		return ""
	}
	return RunState(l.interp.State().Value)
}

func (l *runLifecycle) stop() {
	if l.interp != nil {
		l.interp.Stop()
	}
}

// Status converts a terminal lifecycle state into a report status.
func (s RunState) Status() RunStatus {
	switch s {
	case RunStateHalted:
		return RunHaltedFatal
	case RunStateCancelled:
		return RunCancelled
	default:
		return RunCompleted
	}
}
