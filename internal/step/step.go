// Package step defines the provisioning step descriptors executed by the
// runner and the results it produces for them.
package step

import "context"

// Condition is a skip predicate evaluated before a step runs. Implementations
// must be pure queries: evaluating a condition never changes what a later
// evaluation returns.
type Condition interface {
	Evaluate(ctx context.Context) (bool, error)
}

// Action is the custom, in-process work of a CustomAction step.
type Action interface {
	// Describe returns a human-readable summary of the action.
	Describe() string
	// Perform does the work and reports success or failure explicitly.
	Perform(ctx context.Context) Outcome
}

// Outcome is the explicit result of an Action.
type Outcome struct {
	OK      bool
	Message string
}

// Succeeded returns a successful Outcome.
func Succeeded() Outcome { return Outcome{OK: true} }

// Failed returns a failed Outcome carrying msg.
func Failed(msg string) Outcome { return Outcome{Message: msg} }

// FromError converts err into an Outcome; nil is success.
func FromError(err error) Outcome {
	if err == nil {
		return Succeeded()
	}
	return Failed(err.Error())
}

// Info holds the fields shared by every step kind.
type Info struct {
	Name     string
	SkipIf   Condition // nil means never skip
	Optional bool      // failure is recorded but does not halt the run
}

// Meta returns the shared step fields.
func (i Info) Meta() Info { return i }

// Step is one named unit of provisioning work. The only implementations are
// CommandSequence and CustomAction.
type Step interface {
	Meta() Info
	isStep()
}

// CommandSequence runs shell commands in order, stopping at the first failure.
type CommandSequence struct {
	Info
	Commands []string
	// ShowOutput streams command output to the terminal instead of capturing
	// it for diagnostics.
	ShowOutput bool
}

// CustomAction runs a single in-process Action.
type CustomAction struct {
	Info
	Action Action
}

func (CommandSequence) isStep() {}
func (CustomAction) isStep()    {}

// Kind returns "commands" or "action" for display.
func Kind(s Step) string {
	switch s.(type) {
	case CommandSequence, *CommandSequence:
		return "commands"
	case CustomAction, *CustomAction:
		return "action"
	default:
		return "unknown"
	}
}

// ConditionFunc adapts a plain function to Condition.
type ConditionFunc func(ctx context.Context) (bool, error)

func (f ConditionFunc) Evaluate(ctx context.Context) (bool, error) { return f(ctx) }
