package actions

import (
	"context"

	"github.com/atomikpanda/provision/internal/step"
)

// Func wraps a Go function as an action, for steps built in code rather
// than loaded from a plan.
type Func struct {
	Description string
	Fn          func(ctx context.Context) error
}

func (f Func) Describe() string { return f.Description }

func (f Func) Perform(ctx context.Context) step.Outcome {
	return step.FromError(f.Fn(ctx))
}
