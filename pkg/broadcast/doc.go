// Package broadcast delivers state-change notifications to multiple
// subscribers. The auth session store publishes session transitions through
// it and the page cache publishes fetch lifecycle events, so observers
// (typically a rendering layer) can react without polling.
//
// Delivery is non-blocking: a subscriber that stops draining its channel
// has messages dropped rather than stalling the publisher. A closed
// subscription silently discards anything published afterwards, which is
// how results arriving for a torn-down view are thrown away.
package broadcast
