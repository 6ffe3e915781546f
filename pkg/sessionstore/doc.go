// Package sessionstore provides key-value storage scoped to one user
// session, mirroring browser sessionStorage semantics: string keys, string
// values, and a Clear operation that wipes everything at once.
//
// Two implementations are included. MemoryStore keeps values in-process and
// is the natural choice for a single client instance. RedisStore namespaces
// keys per session and applies a TTL so abandoned sessions disappear on
// their own, for hosts that share session state across processes.
//
// The auth session store persists its bearer credential here under the
// "auth-token" key and wipes the whole store on logout.
package sessionstore
