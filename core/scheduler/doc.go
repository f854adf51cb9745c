// Package scheduler abstracts timers so session logic can run against the
// wall clock in production and against a virtual clock in tests.
//
// RealClock delegates to the time package. ManualClock keeps a min-heap of
// pending callbacks and only fires them when Advance moves virtual time past
// their deadline.
package scheduler
