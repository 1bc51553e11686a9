// Package internal contains helper utilities that are intentionally private to
// goRedact, including secure random identifier generation.
//
// # Sub-packages
//
//   - artifact — session-scoped output file storage with atomic publication
//
// # What this package must NOT do
//
//   - Export types that appear in the public goRedact API.
//   - Be imported by any package outside the goRedact module.
package internal
