package dispatch

import (
	"context"
	"time"

	"github.com/kilianp07/gridpulse/core/scheduler"
)

// BriefGenerator produces the operator brief for a selection.
type BriefGenerator interface {
	Name() string
	GenerateBrief(ctx context.Context, in BriefInput) (string, error)
}

// ConfirmRequest is sent to the validation service before a dispatch is
// accepted.
type ConfirmRequest struct {
	Command Command
	Brief   string
}

// Confirmer validates a dispatch command. A nil error means accepted.
type Confirmer interface {
	Name() string
	ConfirmDispatch(ctx context.Context, req ConfirmRequest) error
}

// LocalBriefer builds the brief locally after a fixed delay. It is used
// when no remote credentials are configured.
type LocalBriefer struct {
	Delay time.Duration
	Clock scheduler.Clock
}

func (LocalBriefer) Name() string { return "local" }

func (l LocalBriefer) GenerateBrief(ctx context.Context, in BriefInput) (string, error) {
	if err := wait(ctx, scheduler.OrReal(l.Clock), l.Delay); err != nil {
		return "", err
	}
	return LocalBriefText(in), nil
}

// LocalConfirmer accepts every command after a fixed delay.
type LocalConfirmer struct {
	Delay time.Duration
	Clock scheduler.Clock
}

func (LocalConfirmer) Name() string { return "local" }

func (l LocalConfirmer) ConfirmDispatch(ctx context.Context, _ ConfirmRequest) error {
	return wait(ctx, scheduler.OrReal(l.Clock), l.Delay)
}

// wait blocks for d on clock or until ctx ends.
func wait(ctx context.Context, clock scheduler.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	t := clock.AfterFunc(d, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}
