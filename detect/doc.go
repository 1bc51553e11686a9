// Package detect defines the object-detection boundary of the redaction
// engine and ships a remote HTTP adapter for an external inference service.
//
// The engine never runs a model in-process. It hands the encoded image bytes
// to a Provider and gets back class-labelled bounding boxes; everything after
// that line (filtering, blurring, matching) is deterministic Go.
//
// # Architecture boundaries
//
// This package must remain free of rendering and session concerns. It may
// depend only on the standard library.
//
// # What this package must NOT do
//
//   - Decode or mutate image pixels.
//   - Decide which detections get redacted; that is engine policy.
package detect
