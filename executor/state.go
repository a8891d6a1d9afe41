package executor

import "fmt"

// State is the executor's run state (spec.md §4.4).
type State int

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Halted:
		return "Halted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultMaxInstructions bounds a run that never hits Exit or an IP past
// the data segment, matching the teacher's DefaultMaxCycles safety valve
// (vm/constants.go) sized down for an instruction set with no external
// I/O-driven loops.
const DefaultMaxInstructions = 1_000_000

// RunOptions configures a single Machine.Run call.
type RunOptions struct {
	Debug bool // annotate Output with the source register name

	// MaxInstructions caps the number of instructions a single Run executes
	// before it aborts with ErrInstructionBudgetExceeded. Zero means
	// DefaultMaxInstructions.
	MaxInstructions uint64

	// Inspector, if set, is invoked after every instruction with the
	// machine's state at that point — wired by the inspector package's
	// terminal UI to drive a live view of a running program.
	Inspector StepHook
}

// StepHook observes one completed instruction.
type StepHook func(m *Machine)
