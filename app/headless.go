package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/gridpulse/core/dispatch"
	"github.com/kilianp07/gridpulse/core/events"
)

// RunHeadless drives one full session for sel without the HTTP surface:
// select, brief, confirm, then wait for the accrual window to close. The
// final snapshot is returned.
func (s *Service) RunHeadless(ctx context.Context, sel dispatch.Selection) (dispatch.Snapshot, error) {
	sub := s.Bus.Subscribe()
	defer s.Bus.Unsubscribe(sub)

	if _, err := s.Orchestrator.Select(sel); err != nil {
		return dispatch.Snapshot{}, err
	}
	snap, err := s.Orchestrator.RequestBrief(ctx)
	if err != nil {
		return snap, err
	}
	snap, err = s.Orchestrator.Confirm(ctx)
	if err != nil {
		return snap, err
	}
	gen := snap.Generation
	for {
		select {
		case <-ctx.Done():
			return s.Orchestrator.Snapshot(), ctx.Err()
		case ev, ok := <-sub:
			if !ok {
				return s.Orchestrator.Snapshot(), fmt.Errorf("event bus closed before accrual finished")
			}
			if a, ok := ev.(events.AccrualEvent); ok && a.Generation == gen && a.Closed {
				return s.Orchestrator.Snapshot(), nil
			}
		}
	}
}
