// Package mockapi is the development and test backend for dirkit: a chi
// router serving the login endpoint and a deterministic user directory,
// mirroring the mock service the client was built against.
//
// POST /api/auth/login validates the credential shape (both fields at
// least 8 characters, email well-formed) and answers 400 with a Spanish
// validation message, matching what the login form renders. Any
// well-formed credential is accepted unless registered accounts are
// configured, in which case passwords are verified against bcrypt hashes.
// The issued token is a fixed opaque string by default, or a signed HS256
// JWT when a token secret is set.
//
// GET /api/users serves a synthetic directory: the same seed, page and
// page size always produce the same records, so paginated tests are
// reproducible.
//
//	srv := httptest.NewServer(mockapi.New().Handler())
package mockapi
