// Package facematch extracts fixed-length face embeddings, scores similarity
// against a stored reference, and drives the selective (identity-preserving)
// redaction path.
//
// # Embedding pipeline
//
// A face crop is converted to grayscale, resized to 128x128, histogram
// equalized, mean-centered, and L2 normalized. The resulting 16384-dim float32
// vector is tagged with the extractor version so persisted references from an
// incompatible extractor are rejected at load time instead of silently
// misread.
//
// # Binary encoding
//
// Persisted embeddings use a compact versioned binary format. The encoder is
// append-only: new format versions add fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package does NOT detect faces (bounding boxes come from the external
// detector via the Engine) and does NOT persist anything — session-scoped
// storage belongs to the session package.
package facematch
