package goRedact

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MrEthical07/goRedact/blur"
	"github.com/MrEthical07/goRedact/detect"
	"github.com/google/uuid"
)

// Redact runs the full pipeline on one image: resolve session, detect,
// graduated feathered blur over every selected region, publish the rendered
// artifact, and register it against the session.
//
// A zero-value params uses the configured defaults; anything else is
// sanitized and the sanitized set echoed in the result. An empty detection
// list is a success whose output equals the input.
//
// Redact may return an error when input validation, dependency calls, or session checks fail.
// Redact does not mutate shared global state beyond the session's artifact index and can be used concurrently.
func (e *Engine) Redact(ctx context.Context, sessionID string, imageData []byte, params BlurParameters, opts RedactOptions) (*ProcessingResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()

	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		e.metricInc(MetricRedactionFailure)
		e.emitAudit(ctx, "redact", sessionID, "", false, err, nil)
		return nil, err
	}

	img, err := e.decodeImage(imageData)
	if err != nil {
		e.metricInc(MetricImageRejected)
		e.metricInc(MetricRedactionFailure)
		e.emitAudit(ctx, "redact", sessionID, "", false, err, nil)
		return nil, err
	}

	detections, err := e.detector.Detect(ctx, imageData)
	if err != nil {
		e.metricInc(MetricDetectionFailure)
		e.metricInc(MetricRedactionFailure)
		e.emitAudit(ctx, "redact", sessionID, "", false, err, nil)
		return nil, err
	}

	selected := e.selectDetections(detections, opts)

	p := toBlurParams(params, e.config.Blur)
	regions := make([]blur.Region, 0, len(selected))
	for _, d := range selected {
		regions = append(regions, blur.Region{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height})
	}

	out, stats := blur.Render(img, regions, p)

	// Per-class counts cover only regions that actually rendered, and a
	// malformed box never enters the detected total.
	faces, plates := 0, 0
	for i, d := range selected {
		if stats.Outcomes[i] != blur.OutcomeRendered {
			continue
		}
		switch d.Class {
		case ClassFace:
			faces++
		case ClassLicensePlate:
			plates++
		}
	}

	result := &ProcessingResult{
		Width:           out.Bounds().Dx(),
		Height:          out.Bounds().Dy(),
		Format:          e.config.Storage.OutputFormat,
		RegionsDetected: len(selected) - stats.Malformed,
		RegionsRedacted: stats.Rendered,
		RegionsSkipped:  stats.ZeroArea,
		FacesBlurred:    faces,
		PlatesBlurred:   plates,
		Parameters:      fromBlurParams(p),
	}

	if err := e.publishArtifact(ctx, sessionID, result, func(w io.Writer) error {
		return e.encodeArtifact(w, out)
	}); err != nil {
		e.metricInc(MetricRedactionFailure)
		e.emitAudit(ctx, "redact", sessionID, "", false, err, nil)
		return nil, err
	}

	result.Elapsed = time.Since(start)
	e.metricInc(MetricRedactionSuccess)
	e.metricAdd(MetricRegionsBlurred, stats.Rendered)
	if e.metrics != nil {
		e.metrics.Observe(MetricRenderLatency, result.Elapsed)
	}
	e.emitAudit(ctx, "redact", sessionID, result.ArtifactID, true, nil, map[string]string{
		"regions": strconv.Itoa(stats.Rendered),
	})
	return result, nil
}

// selectDetections applies the configured confidence floor and class list,
// then the per-call class toggles.
func (e *Engine) selectDetections(in []Detection, opts RedactOptions) []Detection {
	filtered := detect.FilterDetections(in, e.config.Detection.Classes, e.config.Detection.MinConfidence)
	out := filtered[:0]
	for _, d := range filtered {
		if opts.SkipFaces && d.Class == ClassFace {
			continue
		}
		if opts.SkipLicensePlates && d.Class == ClassLicensePlate {
			continue
		}
		out = append(out, d)
	}
	return out
}

// publishArtifact writes the rendered image atomically, registers it in the
// session's artifact index, and fills ArtifactID (and AccessToken when
// enabled) on result.
func (e *Engine) publishArtifact(ctx context.Context, sessionID string, result *ProcessingResult, write func(io.Writer) error) error {
	ext := ".png"
	if e.config.Storage.OutputFormat == "jpeg" {
		ext = ".jpg"
	}
	artifactID := uuid.NewString() + ext

	if err := e.artifacts.Save(sessionID, artifactID, write); err != nil {
		return err
	}
	if err := e.sessionStore.RegisterArtifact(ctx, sessionID, artifactID); err != nil {
		// Keep disk and index consistent when registration loses the race
		// with session expiry.
		_ = e.artifacts.Delete(sessionID, artifactID)
		return err
	}

	result.ArtifactID = artifactID
	e.metricInc(MetricArtifactStored)

	if e.tokens != nil {
		tok, err := e.tokens.CreateArtifactToken(sessionID, artifactID)
		if err != nil {
			return fmt.Errorf("issue artifact token: %w", err)
		}
		result.AccessToken = tok
		e.metricInc(MetricTokenIssued)
	}
	return nil
}
