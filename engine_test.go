package goRedact

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubDetector struct {
	detections []Detection
	detectErr  error
	pingErr    error
	calls      int
}

func (s *stubDetector) Detect(ctx context.Context, imageData []byte) ([]Detection, error) {
	s.calls++
	if s.detectErr != nil {
		return nil, s.detectErr
	}
	out := make([]Detection, len(s.detections))
	copy(out, s.detections)
	return out, nil
}

func (s *stubDetector) Ping(ctx context.Context) error {
	return s.pingErr
}

func newTestEngine(t *testing.T, det Detector, mutate func(*Config)) *Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := defaultConfig()
	cfg.Storage.Root = filepath.Join(t.TempDir(), "artifacts")
	cfg.Session.TTL = time.Hour
	cfg.Session.Retention = time.Hour
	cfg.Session.SweepInterval = 0
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	if det == nil {
		det = &stubDetector{}
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDetector(det).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// noisePNG renders a deterministic noise image and returns both the decoded
// form and its PNG bytes.
func noisePNG(t *testing.T, w, h int, seed int64) (*image.NRGBA, []byte) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return img, buf.Bytes()
}

func mustCreateSession(t *testing.T, e *Engine) string {
	t.Helper()
	id, err := e.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return id
}
