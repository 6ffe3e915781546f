// Package autoload turns sentinel visibility into page fetches. A
// rendering layer reports how visible its end-of-list sentinel is; the
// trigger fetches the next page whenever the sentinel is sufficiently
// visible, more data exists and no fetch is in flight.
//
// The decision itself is the pure function ShouldFetch, so the policy is
// testable without any machinery. The Trigger is level-triggered, not
// edge-triggered: every change to visibility, availability or in-flight
// state re-runs the decision, so while the sentinel stays visible each
// completed fetch immediately starts the next one, producing continuous
// loading until no more pages exist or the sentinel leaves view.
package autoload
