// Package session houses concrete implementations of core.SessionStore. The
// interface itself (and the Session/Message types) live in core to
// centralize domain contracts; keeping only implementations here prevents
// higher level packages (coordinator, grounding) from depending on concrete
// storage.
//
// Two backends are provided: a volatile in-memory store suited to tests and
// demos, and a SQLite store for single-node durable deployments. Additional
// backends (Postgres, Firestore, ...) can be added without changing any
// calling code; only the wiring layer decides which implementation to
// instantiate.
package session
