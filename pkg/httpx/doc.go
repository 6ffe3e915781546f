// Package httpx is the HTTP transport used by the directory and auth
// service clients. It wraps net/http with the two cross-cutting behaviors
// every outgoing call needs:
//
//   - A bearer credential from a TokenSource is attached to each request,
//     read at call time so a login or logout between calls is always
//     reflected in the very next request.
//   - Failures are classified (transient network, client error, server
//     error) and each classification is logged once. The original error is
//     propagated unchanged: sentinel and typed errors remain reachable via
//     errors.Is and errors.As.
//
// Calls accept a retry policy per request. Directory queries use three
// retries with exponential backoff; the login mutation uses one.
package httpx
