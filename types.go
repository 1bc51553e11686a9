package goRedact

import (
	"time"

	"github.com/MrEthical07/goRedact/blur"
	"github.com/MrEthical07/goRedact/detect"
)

// Detection is one class-labelled bounding box returned by a [Detector].
type Detection = detect.Detection

// Detector is the inference boundary callers must supply through
// [Builder.WithDetector]. [detect.NewRemote] is the shipped implementation.
type Detector = detect.Provider

const (
	// ClassFace is an exported constant or variable used by the redaction engine.
	ClassFace = detect.ClassFace
	// ClassLicensePlate is an exported constant or variable used by the redaction engine.
	ClassLicensePlate = detect.ClassLicensePlate
)

// BlurParameters defines a public type used by goRedact APIs. Zero values fall
// back to configured defaults; out-of-range values are sanitized, and the
// sanitized set is echoed back in [ProcessingResult.Parameters].
type BlurParameters struct {
	MinKernelSize int
	MaxKernelSize int
	FocusExponent float64
	BaseWeight    float64
}

// RedactOptions selects which detection classes a redaction call acts on.
// The zero value redacts both faces and license plates.
type RedactOptions struct {
	SkipFaces         bool
	SkipLicensePlates bool
}

// ProcessingResult is returned by [Engine.Redact] and [Engine.SelectiveRedact].
//
// ProcessingResult instances are intended to be treated as immutable.
type ProcessingResult struct {
	ArtifactID string
	// AccessToken is set when artifact tokens are enabled in [Config.Token].
	AccessToken string

	Width  int
	Height int
	Format string

	// RegionsDetected counts detections accepted for processing; a box with
	// non-finite coordinates is dropped and never enters this total.
	RegionsDetected int
	RegionsRedacted int
	// RegionsSkipped counts detections that clipped to zero area.
	RegionsSkipped int
	// FacesBlurred and PlatesBlurred count only regions actually rendered.
	FacesBlurred  int
	PlatesBlurred int
	// FacesPreserved counts reference matches left untouched by the
	// selective path; always zero for Redact.
	FacesPreserved int

	Parameters BlurParameters
	Elapsed    time.Duration
}

// SessionInfo is a read-only snapshot returned by [Engine.SessionInfo].
type SessionInfo struct {
	SessionID     string
	CreatedAt     time.Time
	LastAccessed  time.Time
	ArtifactCount uint32
	HasReference  bool
	// TTL is the configured idle lifetime; each successful access
	// restarts this window.
	TTL time.Duration
}

// ReferenceInfo describes the stored reference embedding for a session,
// returned by [Engine.ReferenceStatus].
type ReferenceInfo struct {
	HasReference     bool
	ExtractorVersion uint8
	Dimension        int
}

func toBlurParams(p BlurParameters, d BlurConfig) blur.Params {
	// The zero value means "use configured defaults"; any explicit set is
	// taken as-is and sanitized.
	if p == (BlurParameters{}) {
		p = BlurParameters{
			MinKernelSize: d.MinKernelSize,
			MaxKernelSize: d.MaxKernelSize,
			FocusExponent: d.FocusExponent,
			BaseWeight:    d.BaseWeight,
		}
	}
	return blur.Params{
		MinKernelSize: p.MinKernelSize,
		MaxKernelSize: p.MaxKernelSize,
		FocusExponent: p.FocusExponent,
		BaseWeight:    p.BaseWeight,
	}.Sanitize()
}

func fromBlurParams(p blur.Params) BlurParameters {
	return BlurParameters{
		MinKernelSize: p.MinKernelSize,
		MaxKernelSize: p.MaxKernelSize,
		FocusExponent: p.FocusExponent,
		BaseWeight:    p.BaseWeight,
	}
}
