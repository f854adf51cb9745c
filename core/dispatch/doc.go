// Package dispatch implements the session state machine that takes the
// selected date (or event) from brief generation through confirmation, the
// timed cluster rollout and the revenue accrual window.
//
// Every mutation happens under the orchestrator lock. Remote calls (brief and
// confirmation) run outside it and re-check the session generation on
// return. Timer callbacks carry the generation they were scheduled for and
// do nothing once the selection has moved on, even if stopping the timer
// lost the race.
package dispatch
