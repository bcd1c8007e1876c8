// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() or time.NewTicker() directly. Business logic such as countdowns
// and idle eviction can then be driven deterministically by the Fake clock in
// tests.
package clock
