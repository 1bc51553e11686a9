package goRedact

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	// Register the decoders every entry point accepts.
	_ "image/jpeg"
	_ "image/png"

	"github.com/MrEthical07/goRedact/internal/artifact"
	"github.com/MrEthical07/goRedact/session"
	"github.com/MrEthical07/goRedact/token"
	"github.com/disintegration/imaging"
)

// Engine defines a public type used by goRedact APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	sessionStore *session.Store
	artifacts    *artifact.Store
	detector     Detector
	tokens       *token.Manager
	audit        *auditDispatcher
	metrics      *Metrics

	sweepStop chan struct{}
	sweepWG   sync.WaitGroup
	closeOnce sync.Once
}

// Close stops the background sweeper and drains the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if e.sweepStop != nil {
			close(e.sweepStop)
			e.sweepWG.Wait()
		}
		if e.audit != nil {
			e.audit.Close()
		}
	})
}

// Ping verifies the Redis and detector backends are reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if _, err := e.sessionStore.Ping(ctx); err != nil {
		return err
	}
	return e.detector.Ping(ctx)
}

// AuditDropped reports how many audit events were discarded under buffer
// pressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time deep copy of all metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricAdd(id MetricID, n int) {
	if e == nil || e.metrics == nil || n <= 0 {
		return
	}
	e.metrics.Add(id, uint64(n))
}

func (e *Engine) emitAudit(ctx context.Context, eventType, sessionID, artifactID string, success bool, opErr error, meta map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:  time.Now(),
		EventType:  eventType,
		SessionID:  sessionID,
		ArtifactID: artifactID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   meta,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	e.audit.Emit(ctx, event)
}

// decodeImage parses caller-supplied bytes. Any decode failure is an input
// error; dimensions over the configured pixel budget are rejected before a
// full decode.
func (e *Engine) decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrImageInvalid
	}
	if e.config.Storage.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageInvalid, err)
		}
		if cfg.Width*cfg.Height > e.config.Storage.MaxPixels {
			return nil, ErrImageTooLarge
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageInvalid, err)
	}
	return img, nil
}

func (e *Engine) encodeArtifact(w io.Writer, img image.Image) error {
	switch e.config.Storage.OutputFormat {
	case "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(e.config.Storage.JPEGQuality))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}

func (e *Engine) startSweeper() {
	if e.config.Session.SweepInterval <= 0 {
		return
	}
	e.sweepStop = make(chan struct{})
	e.sweepWG.Add(1)
	go func() {
		defer e.sweepWG.Done()
		ticker := time.NewTicker(e.config.Session.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.sweepOnce(context.Background())
			case <-e.sweepStop:
				return
			}
		}
	}()
}

// sweepOnce reaps expired and orphaned session state and the artifact files
// it referenced.
func (e *Engine) sweepOnce(ctx context.Context) {
	reaped, err := e.sessionStore.Sweep(ctx)
	if err != nil {
		e.emitAudit(ctx, "session.sweep", "", "", false, err, nil)
		return
	}
	for _, r := range reaped {
		if r.SessionID != "" {
			_ = e.artifacts.DeleteAll(r.SessionID)
		}
		e.metricInc(MetricSweepReaped)
		e.emitAudit(ctx, "session.sweep", r.SessionID, "", true, nil, map[string]string{
			"artifacts": fmt.Sprintf("%d", len(r.ArtifactIDs)),
		})
	}
}
