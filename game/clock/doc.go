// Package clock schedules delayed and repeating callbacks behind a small
// interface so game timing can be driven by a manual clock in tests.
//
// Real wraps time.AfterFunc and time.Ticker. Manual runs callbacks only when
// Advance is called:
//
//	sched := clock.NewManual()
//	h := sched.AfterFunc(time.Second, resolve)
//	sched.Advance(999 * time.Millisecond) // nothing yet
//	sched.Advance(time.Millisecond)       // resolve runs
//	h.Stop()                              // false, already fired
package clock
