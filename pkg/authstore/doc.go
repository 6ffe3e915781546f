// Package authstore holds the session authentication state: the current
// user, the bearer credential, and the authenticated flag. It is a two-state
// machine over Unauthenticated and Authenticated with three operations:
//
//   - Initialize restores a persisted credential from session storage,
//     synthesizing a local user profile without a network round-trip.
//   - Login calls the auth service, persists the returned credential and
//     transitions atomically to Authenticated. Failures propagate to the
//     caller unchanged and leave the store Unauthenticated.
//   - Logout wipes all session storage, returns the store to its zero
//     state, and redirects to the public login route. It cannot fail.
//
// The store implements httpx.TokenSource, so wiring it into a transport
// client attaches the current credential to every outgoing request. State
// transitions are published to subscribers for re-rendering.
//
// Stores are created per client instance, not as a process-global, so tests
// can run isolated instances side by side.
package authstore
