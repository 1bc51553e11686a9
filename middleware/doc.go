// Package middleware exposes HTTP middleware adapters that gate artifact
// downloads behind goRedact access tokens.
//
// # Guards
//
//   - [ArtifactGuard] — verifies a bearer token against the session and
//     artifact named by the request.
//   - [PathResolver] — extracts the session and artifact identifiers from
//     "/<prefix>/{session}/{artifact}" style URLs.
//
// Each guard reads the Authorization header, calls Engine.VerifyArtifactToken,
// and injects the verified grant into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT verify
// tokens itself — all decisions are delegated to Engine.VerifyArtifactToken.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis or artifact storage (Engine handles I/O).
//   - Make access decisions beyond pass/reject from the Engine.
package middleware
