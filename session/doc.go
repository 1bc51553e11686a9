// Package session provides Redis-backed session persistence and compact binary
// session encoding for the redaction engine's per-client isolation.
//
// # Binary encoding
//
// Sessions are stored in Redis as a compact binary format (schema versions
// v1–v2) with forward migration on read. The encoder is append-only: new
// versions add fields but never reinterpret old ones.
//
// # Ownership model
//
// A session exclusively owns one optional reference-embedding blob and a set
// of artifact IDs, each stored under its own key in the session's namespace.
// Every artifact operation verifies ownership; an artifact belonging to a
// different session is reported as denied, never returned.
//
// # Expiry
//
// TTL is sliding: every successful Resolve updates last-accessed and renews
// the keys. Logically expired sessions are kept for a retention window so
// callers can distinguish "expired" from "never existed"; the Sweep pass
// cascades their reference and artifact state.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the [Session] model. It
// does NOT decode images, score faces, or touch artifact files on disk —
// those responsibilities belong to the Engine.
package session
