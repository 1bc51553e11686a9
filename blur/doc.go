// Package blur implements the graduated feather blur used to redact detected
// regions, plus the fixed-kernel region blur used by the selective face path.
//
// # Rendering model
//
// Each region is blurred twice (a light and a strong Gaussian pass) and the two
// variants are blended per pixel by a weight derived from the pixel's
// normalized elliptical distance to the region center. The center always
// receives the strong blur; the boundary always receives the configured base
// weight.
//
// # Architecture boundaries
//
// This package is pure image math. It does NOT decode images, talk to
// detectors, or touch sessions or storage — those responsibilities belong to
// the Engine. Rendering is deterministic: identical inputs produce
// byte-identical output.
package blur
