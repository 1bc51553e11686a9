package goRedact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MrEthical07/goRedact/facematch"
	"github.com/MrEthical07/goRedact/session"
)

// SelectiveRedact blurs every detected face except those matching the
// session's reference embedding. Faces scoring at or above the configured
// tolerance are preserved; all others get a fixed-kernel blur. A session
// without a stored reference fails with [ErrReferenceMissing].
//
// SelectiveRedact may return an error when input validation, dependency calls, or session checks fail.
// SelectiveRedact does not mutate shared global state beyond the session's artifact index and can be used concurrently.
func (e *Engine) SelectiveRedact(ctx context.Context, sessionID string, imageData []byte) (*ProcessingResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()

	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		e.metricInc(MetricSelectiveFailure)
		e.emitAudit(ctx, "redact.selective", sessionID, "", false, err, nil)
		return nil, err
	}

	blob, err := e.sessionStore.GetReference(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrReferenceNotFound) {
			err = facematch.ErrReferenceMissing
		}
		e.metricInc(MetricSelectiveFailure)
		e.emitAudit(ctx, "redact.selective", sessionID, "", false, err, nil)
		return nil, err
	}
	ref, err := facematch.Decode(blob)
	if err != nil {
		err = fmt.Errorf("decode reference: %w", err)
		e.metricInc(MetricSelectiveFailure)
		e.emitAudit(ctx, "redact.selective", sessionID, "", false, err, nil)
		return nil, err
	}

	img, err := e.decodeImage(imageData)
	if err != nil {
		e.metricInc(MetricImageRejected)
		e.metricInc(MetricSelectiveFailure)
		e.emitAudit(ctx, "redact.selective", sessionID, "", false, err, nil)
		return nil, err
	}

	faces, err := e.detectFaces(ctx, imageData)
	if err != nil {
		e.metricInc(MetricDetectionFailure)
		e.metricInc(MetricSelectiveFailure)
		e.emitAudit(ctx, "redact.selective", sessionID, "", false, err, nil)
		return nil, err
	}

	out, matched, err := facematch.SelectiveRedact(
		img, faces, ref,
		e.config.FaceMatch.Tolerance,
		e.config.FaceMatch.SelectiveKernelSize,
	)
	if err != nil {
		e.metricInc(MetricSelectiveFailure)
		return nil, err
	}

	blurred := len(faces) - matched
	result := &ProcessingResult{
		Width:           out.Bounds().Dx(),
		Height:          out.Bounds().Dy(),
		Format:          e.config.Storage.OutputFormat,
		RegionsDetected: len(faces),
		RegionsRedacted: blurred,
		FacesBlurred:    blurred,
		FacesPreserved:  matched,
		Parameters: BlurParameters{
			MinKernelSize: e.config.FaceMatch.SelectiveKernelSize,
			MaxKernelSize: e.config.FaceMatch.SelectiveKernelSize,
		},
	}

	if err := e.publishArtifact(ctx, sessionID, result, func(w io.Writer) error {
		return e.encodeArtifact(w, out)
	}); err != nil {
		e.metricInc(MetricSelectiveFailure)
		e.emitAudit(ctx, "redact.selective", sessionID, "", false, err, nil)
		return nil, err
	}

	result.Elapsed = time.Since(start)
	e.metricInc(MetricSelectiveSuccess)
	e.metricAdd(MetricFacesPreserved, matched)
	e.metricAdd(MetricRegionsBlurred, blurred)
	if e.metrics != nil {
		e.metrics.Observe(MetricRenderLatency, result.Elapsed)
	}
	e.emitAudit(ctx, "redact.selective", sessionID, result.ArtifactID, true, nil, map[string]string{
		"faces":     strconv.Itoa(len(faces)),
		"preserved": strconv.Itoa(matched),
	})
	return result, nil
}
