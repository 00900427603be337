// Package lifecycle tracks the run state of a receive group and the
// goroutines it owns.
//
// States move Stopped → Starting → Running → Stopping → Stopped, with
// Crashed reachable from any active state. A Manager also counts named
// workers so shutdown can wait for every listener with a deadline and
// report which ones are still running.
package lifecycle
