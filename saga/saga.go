// Package saga implements the generic forward/compensating-action pipeline Create is
// built from: run a sequence of steps, and on the first failure, undo every step that
// already succeeded, in reverse order, best-effort. Image import does not run through it.
package saga

import (
	"context"
	"log/slog"

	"github.com/hashicorp/go-multierror"
)

// Step is one forward action plus its compensation. Forward receives the pipeline's
// current state and returns the updated state or an error. Backward receives the state as
// it stood when the failing step was reached (the output of the last successful Forward),
// and undoes its own step; its own failure is logged and
// swallowed, never surfaced to the caller, per spec §4.9.
type Step[S any] struct {
	Name     string
	Forward  func(ctx context.Context, state S) (S, error)
	Backward func(ctx context.Context, state S) error
}

// Saga is an ordered sequence of steps sharing one state type.
type Saga[S any] struct {
	Steps []Step[S]
}

// Tell runs every step's Forward in order. On the first failure, it runs the Backward of
// every step that already succeeded, in reverse order, then returns the original cause —
// compensation failures are aggregated via multierror for the log line but never replace
// the cause the caller sees.
func (s Saga[S]) Tell(ctx context.Context, initial S) (S, error) {
	state := initial
	succeeded := make([]Step[S], 0, len(s.Steps))

	for _, step := range s.Steps {
		next, err := step.Forward(ctx, state)
		if err != nil {
			s.compensate(ctx, succeeded, state)
			return state, err
		}
		state = next
		succeeded = append(succeeded, step)
	}
	return state, nil
}

func (s Saga[S]) compensate(ctx context.Context, succeeded []Step[S], state S) {
	var merr *multierror.Error
	for i := len(succeeded) - 1; i >= 0; i-- {
		step := succeeded[i]
		if step.Backward == nil {
			continue
		}
		if err := step.Backward(ctx, state); err != nil {
			merr = multierror.Append(merr, err)
			slog.WarnContext(ctx, "saga: compensation failed", "step", step.Name, "error", err)
		}
	}
	if merr != nil {
		slog.WarnContext(ctx, "saga: one or more compensations failed", "errors", merr.Error())
	}
}
