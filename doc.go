// Package goRedact provides a privacy-redaction engine with graduated feathered
// blur rendering, reference-face selective redaction, and Redis-backed session
// scoping of reference material and rendered artifacts.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goRedact is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (ProcessingResult, SessionInfo, etc.). Rendering math lives in blur/, embedding and
// matching in facematch/, Redis state in session/, and detection transport in detect/.
// Orchestration helpers live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Perform I/O outside of Engine methods (construction via Builder is allocation-only
//     until Build).
//   - Import any sub-package that re-imports goRedact (no import cycles).
//
// # Performance contract
//
// Session resolution is the fail-fast gate: every redaction entry point resolves the
// session in one Redis round-trip before any pixel work starts. Render work is
// request-local and lock-free; no renderer state is shared between calls.
package goRedact
