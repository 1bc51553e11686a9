package internaldefs

import (
	goRedact "github.com/MrEthical07/goRedact"
)

// CounterDef defines a public type used by goRedact APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goRedact.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goRedact APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goRedact.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the redaction engine.
var CounterDefs = []CounterDef{
	{ID: goRedact.MetricRedactionSuccess, Name: "goredact_redaction_success_total", Help: "Successful full-image redactions."},
	{ID: goRedact.MetricRedactionFailure, Name: "goredact_redaction_failure_total", Help: "Failed full-image redactions."},
	{ID: goRedact.MetricImageRejected, Name: "goredact_image_rejected_total", Help: "Images rejected as undecodable or oversized."},
	{ID: goRedact.MetricDetectionFailure, Name: "goredact_detection_failure_total", Help: "Detection backend failures."},
	{ID: goRedact.MetricRegionsBlurred, Name: "goredact_regions_blurred_total", Help: "Regions blurred across all renders."},
	{ID: goRedact.MetricSelectiveSuccess, Name: "goredact_selective_success_total", Help: "Successful selective redactions."},
	{ID: goRedact.MetricSelectiveFailure, Name: "goredact_selective_failure_total", Help: "Failed selective redactions."},
	{ID: goRedact.MetricFacesPreserved, Name: "goredact_faces_preserved_total", Help: "Reference-matching faces left unblurred."},
	{ID: goRedact.MetricReferenceUploaded, Name: "goredact_reference_uploaded_total", Help: "Stored reference embeddings."},
	{ID: goRedact.MetricReferenceRejected, Name: "goredact_reference_rejected_total", Help: "Reference uploads rejected without a usable face."},
	{ID: goRedact.MetricReferenceCleared, Name: "goredact_reference_cleared_total", Help: "Cleared reference slots."},
	{ID: goRedact.MetricSessionCreated, Name: "goredact_session_created_total", Help: "Created sessions."},
	{ID: goRedact.MetricSessionExpired, Name: "goredact_session_expired_total", Help: "Sessions reported as expired."},
	{ID: goRedact.MetricSessionDeleted, Name: "goredact_session_deleted_total", Help: "Deleted sessions."},
	{ID: goRedact.MetricArtifactStored, Name: "goredact_artifact_stored_total", Help: "Published artifacts."},
	{ID: goRedact.MetricArtifactDeleted, Name: "goredact_artifact_deleted_total", Help: "Deleted artifacts."},
	{ID: goRedact.MetricSweepReaped, Name: "goredact_sweep_reaped_total", Help: "Sessions reaped by the background sweeper."},
	{ID: goRedact.MetricTokenIssued, Name: "goredact_token_issued_total", Help: "Issued artifact access tokens."},
	{ID: goRedact.MetricTokenRejected, Name: "goredact_token_rejected_total", Help: "Rejected artifact access tokens."},
}

// HistogramDefs is an exported constant or variable used by the redaction engine.
var HistogramDefs = []HistogramDef{
	{ID: goRedact.MetricRenderLatency, Name: "goredact_render_latency_seconds", Help: "End-to-end render latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the redaction engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the redaction engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to Prometheus-style cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
