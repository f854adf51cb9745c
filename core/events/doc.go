// Package events defines the session events emitted on the event bus.
//
// Available event types:
//   - PriceEvent: new market price sample
//   - SelectionEvent: the selected date or event changed
//   - BriefEvent: a brief request completed or failed
//   - ConfirmEvent: a dispatch confirmation was accepted or rejected
//   - ClusterActivatedEvent: one battery cluster joined the rollout
//   - PhaseEvent: the rollout reached a later phase
//   - AccrualEvent: revenue accrued during the dispatch window
package events
