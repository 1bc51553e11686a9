package goRedact

import (
	"context"
	"errors"
	"image"
	"math"
	"strconv"

	"github.com/MrEthical07/goRedact/facematch"
	"github.com/MrEthical07/goRedact/session"
)

// UploadReference extracts a face embedding from the supplied image and
// stores it as the session's single reference slot, overwriting any previous
// one. With multiple detected faces the largest usable one wins; with none
// the call fails with [ErrNoFaceDetected] and the slot is left untouched.
//
// UploadReference may return an error when input validation, dependency calls, or session checks fail.
// UploadReference does not mutate shared global state beyond the session's reference slot and can be used concurrently.
func (e *Engine) UploadReference(ctx context.Context, sessionID string, imageData []byte) (*ReferenceInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		e.emitAudit(ctx, "reference.upload", sessionID, "", false, err, nil)
		return nil, err
	}

	img, err := e.decodeImage(imageData)
	if err != nil {
		e.metricInc(MetricReferenceRejected)
		e.emitAudit(ctx, "reference.upload", sessionID, "", false, err, nil)
		return nil, err
	}

	faces, err := e.detectFaces(ctx, imageData)
	if err != nil {
		e.metricInc(MetricDetectionFailure)
		e.emitAudit(ctx, "reference.upload", sessionID, "", false, err, nil)
		return nil, err
	}

	emb, err := facematch.ExtractReference(img, faces)
	if err != nil {
		e.metricInc(MetricReferenceRejected)
		e.emitAudit(ctx, "reference.upload", sessionID, "", false, err, nil)
		return nil, err
	}

	blob, err := facematch.Encode(emb)
	if err != nil {
		return nil, err
	}
	if err := e.sessionStore.PutReference(ctx, sessionID, blob); err != nil {
		e.emitAudit(ctx, "reference.upload", sessionID, "", false, err, nil)
		return nil, err
	}

	e.metricInc(MetricReferenceUploaded)
	e.emitAudit(ctx, "reference.upload", sessionID, "", true, nil, map[string]string{
		"faces": strconv.Itoa(len(faces)),
	})
	return &ReferenceInfo{
		HasReference:     true,
		ExtractorVersion: emb.ExtractorVersion,
		Dimension:        len(emb.Vector),
	}, nil
}

// ReferenceStatus reports whether the session holds a reference embedding,
// without touching the session's TTL.
func (e *Engine) ReferenceStatus(ctx context.Context, sessionID string) (*ReferenceInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if _, err := e.sessionStore.Info(ctx, sessionID); err != nil {
		return nil, err
	}

	blob, err := e.sessionStore.GetReference(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrReferenceNotFound) {
			return &ReferenceInfo{HasReference: false}, nil
		}
		return nil, err
	}

	emb, err := facematch.Decode(blob)
	if err != nil {
		return nil, err
	}
	return &ReferenceInfo{
		HasReference:     true,
		ExtractorVersion: emb.ExtractorVersion,
		Dimension:        len(emb.Vector),
	}, nil
}

// ClearReference drops the session's reference embedding. Clearing an empty
// slot fails with [ErrReferenceNotFound].
func (e *Engine) ClearReference(ctx context.Context, sessionID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if _, err := e.sessionStore.Resolve(ctx, sessionID); err != nil {
		return err
	}
	if err := e.sessionStore.ClearReference(ctx, sessionID); err != nil {
		e.emitAudit(ctx, "reference.clear", sessionID, "", false, err, nil)
		return err
	}

	e.metricInc(MetricReferenceCleared)
	e.emitAudit(ctx, "reference.clear", sessionID, "", true, nil, nil)
	return nil
}

// detectFaces returns pixel rectangles for face detections above the
// configured confidence floor.
func (e *Engine) detectFaces(ctx context.Context, imageData []byte) ([]image.Rectangle, error) {
	detections, err := e.detector.Detect(ctx, imageData)
	if err != nil {
		return nil, err
	}
	rects := make([]image.Rectangle, 0, len(detections))
	for _, d := range detections {
		if d.Class != ClassFace || d.Confidence < e.config.Detection.MinConfidence {
			continue
		}
		rects = append(rects, rectFromDetection(d))
	}
	return rects, nil
}

func rectFromDetection(d Detection) image.Rectangle {
	return image.Rect(
		int(math.Floor(d.X)),
		int(math.Floor(d.Y)),
		int(math.Ceil(d.X+d.Width)),
		int(math.Ceil(d.Y+d.Height)),
	)
}
