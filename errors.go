package goRedact

import (
	"errors"

	"github.com/MrEthical07/goRedact/detect"
	"github.com/MrEthical07/goRedact/facematch"
	"github.com/MrEthical07/goRedact/session"
)

var (
	// ErrEngineNotReady is an exported constant or variable used by the redaction engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrImageInvalid is an exported constant or variable used by the redaction engine.
	ErrImageInvalid = errors.New("image data could not be decoded")
	// ErrImageTooLarge is an exported constant or variable used by the redaction engine.
	ErrImageTooLarge = errors.New("image exceeds configured pixel limit")
	// ErrSessionNotFound is an exported constant or variable used by the redaction engine.
	ErrSessionNotFound = session.ErrSessionNotFound
	// ErrSessionExpired is an exported constant or variable used by the redaction engine.
	ErrSessionExpired = session.ErrSessionExpired
	// ErrReferenceNotFound is an exported constant or variable used by the redaction engine.
	ErrReferenceNotFound = session.ErrReferenceNotFound
	// ErrArtifactDenied is an exported constant or variable used by the redaction engine.
	ErrArtifactDenied = session.ErrArtifactDenied
	// ErrArtifactNotFound is an exported constant or variable used by the redaction engine.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrNoFaceDetected is an exported constant or variable used by the redaction engine.
	ErrNoFaceDetected = facematch.ErrNoFaceDetected
	// ErrReferenceMissing is an exported constant or variable used by the redaction engine.
	ErrReferenceMissing = facematch.ErrReferenceMissing
	// ErrDimensionMismatch is an exported constant or variable used by the redaction engine.
	ErrDimensionMismatch = facematch.ErrDimensionMismatch
	// ErrReferenceCorrupt is an exported constant or variable used by the redaction engine.
	ErrReferenceCorrupt = facematch.ErrEncodingInvalid
	// ErrDetectorUnavailable is an exported constant or variable used by the redaction engine.
	ErrDetectorUnavailable = detect.ErrProviderUnavailable
	// ErrRedisUnavailable is an exported constant or variable used by the redaction engine.
	ErrRedisUnavailable = session.ErrRedisUnavailable
	// ErrTokensDisabled is an exported constant or variable used by the redaction engine.
	ErrTokensDisabled = errors.New("artifact tokens disabled")
)

// ErrorKind defines a public type used by goRedact APIs. It classifies every
// error an Engine method returns into one of three callers-side categories.
type ErrorKind uint8

const (
	// KindInternal covers backend and encoding failures the caller cannot fix.
	KindInternal ErrorKind = iota
	// KindInput covers malformed caller input (undecodable image, bad IDs).
	KindInput
	// KindState covers valid requests against missing or expired state.
	KindState
)

// Kind maps err to its [ErrorKind]. Unrecognized errors are internal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrImageInvalid),
		errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrNoFaceDetected):
		return KindInput
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionExpired),
		errors.Is(err, ErrReferenceNotFound),
		errors.Is(err, ErrReferenceMissing),
		errors.Is(err, ErrDimensionMismatch),
		errors.Is(err, ErrReferenceCorrupt),
		errors.Is(err, ErrArtifactDenied),
		errors.Is(err, ErrArtifactNotFound),
		errors.Is(err, ErrTokensDisabled):
		return KindState
	default:
		return KindInternal
	}
}
