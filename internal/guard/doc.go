// Package guard detects runaway iteration counts in hot loops.
//
// A Guard compares loop bounds or running counters against a threshold held
// in Settings and, on the first overflow of an armed session, emits a single
// alert (with an optional call stack) to a Sink. Checks run on the caller's
// goroutine and cost one atomic load on the common path.
//
// Pre-loop check, used whenever the bound is known before entering:
//
//	if !g.CheckBound(uint64(len(items)), "sync-items") {
//		return
//	}
//	for _, item := range items {
//		...
//	}
//
// Per-iteration check, used when the bound is unknown:
//
//	var n uint64
//	for node := head; node != nil; node = node.next {
//		if !g.CheckIncrement(&n, "walk-list") {
//			break
//		}
//	}
//
// The boolean result is false only when break-on-overflow is enabled and the
// threshold was exceeded. Threshold and one-shot state can be changed at any
// time with SetThreshold and ResetAlertFlag.
package guard
