package facematch

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"testing"
)

func noiseImage(t testing.TB, w, h int, seed int64) *image.NRGBA {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(seed))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func TestSelfSimilarityIsOne(t *testing.T) {
	img := noiseImage(t, 200, 200, 7)
	rect := image.Rect(20, 20, 150, 150)

	a, err := Extract(img, rect)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	b, err := Extract(img, rect)
	if err != nil {
		t.Fatalf("extract again: %v", err)
	}

	score, err := Similarity(a, b)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if score < 0.999 {
		t.Fatalf("self similarity = %v, want ~1.0", score)
	}

	reversed, err := Similarity(b, a)
	if err != nil {
		t.Fatalf("reversed similarity: %v", err)
	}
	if math.Abs(score-reversed) > 1e-12 {
		t.Fatalf("similarity not symmetric: %v vs %v", score, reversed)
	}
}

func TestUnrelatedFacesScoreLow(t *testing.T) {
	a, err := Extract(noiseImage(t, 160, 160, 1), image.Rect(0, 0, 160, 160))
	if err != nil {
		t.Fatalf("extract a: %v", err)
	}
	b, err := Extract(noiseImage(t, 160, 160, 2), image.Rect(0, 0, 160, 160))
	if err != nil {
		t.Fatalf("extract b: %v", err)
	}

	score, err := Similarity(a, b)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if score >= DefaultTolerance {
		t.Fatalf("unrelated noise crops scored %v, expected below tolerance %v", score, DefaultTolerance)
	}
}

func TestExtractReferencePicksLargestFace(t *testing.T) {
	img := noiseImage(t, 300, 200, 11)
	small := image.Rect(10, 10, 60, 60)
	large := image.Rect(100, 20, 280, 180)

	ref, err := ExtractReference(img, []image.Rectangle{small, large})
	if err != nil {
		t.Fatalf("extract reference: %v", err)
	}

	fromLarge, err := Extract(img, large)
	if err != nil {
		t.Fatalf("extract large: %v", err)
	}
	score, err := Similarity(ref, fromLarge)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if score < 0.999 {
		t.Fatalf("reference should come from the largest face, score = %v", score)
	}
}

func TestExtractReferenceNoFaces(t *testing.T) {
	img := noiseImage(t, 100, 100, 3)

	if _, err := ExtractReference(img, nil); !errors.Is(err, ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected, got %v", err)
	}

	// Boxes entirely outside the image are unusable too.
	outside := []image.Rectangle{image.Rect(500, 500, 600, 600)}
	if _, err := ExtractReference(img, outside); !errors.Is(err, ErrNoFaceDetected) {
		t.Fatalf("expected ErrNoFaceDetected for out-of-bounds boxes, got %v", err)
	}
}

func TestExtractZeroVariance(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.NRGBA{R: 90, G: 90, B: 90, A: 255}}, image.Point{}, draw.Src)

	if _, err := Extract(img, img.Bounds()); !errors.Is(err, ErrZeroVariance) {
		t.Fatalf("expected ErrZeroVariance, got %v", err)
	}
}

func TestSelectiveRedactPreservesOnlyMatches(t *testing.T) {
	scene := noiseImage(t, 400, 200, 21)
	matchBox := image.Rect(30, 30, 150, 170)
	strangerBox := image.Rect(230, 30, 350, 170)

	// The reference is the literal pixels of the first face, so its score is
	// exactly 1.0; the second face is independent noise and scores ~0.5.
	ref, err := Extract(scene, matchBox)
	if err != nil {
		t.Fatalf("extract reference: %v", err)
	}

	out, matched, err := SelectiveRedact(scene, []image.Rectangle{matchBox, strangerBox}, ref, DefaultTolerance, 51)
	if err != nil {
		t.Fatalf("selective redact: %v", err)
	}
	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}

	for y := matchBox.Min.Y; y < matchBox.Max.Y; y++ {
		for x := matchBox.Min.X; x < matchBox.Max.X; x++ {
			if scene.NRGBAAt(x, y) != out.NRGBAAt(x, y) {
				t.Fatalf("matched face pixel (%d, %d) was modified", x, y)
			}
		}
	}

	changed := false
	for y := strangerBox.Min.Y; y < strangerBox.Max.Y && !changed; y++ {
		for x := strangerBox.Min.X; x < strangerBox.Max.X; x++ {
			if scene.NRGBAAt(x, y) != out.NRGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Fatal("non-matching face was not blurred")
	}
}

func TestSelectiveRedactBlursEverythingWhenNothingMatches(t *testing.T) {
	scene := noiseImage(t, 200, 100, 31)
	faces := []image.Rectangle{image.Rect(10, 10, 90, 90), image.Rect(110, 10, 190, 90)}

	ref, err := Extract(noiseImage(t, 120, 120, 99), image.Rect(0, 0, 120, 120))
	if err != nil {
		t.Fatalf("extract reference: %v", err)
	}

	out, matched, err := SelectiveRedact(scene, faces, ref, DefaultTolerance, 31)
	if err != nil {
		t.Fatalf("selective redact: %v", err)
	}
	if matched != 0 {
		t.Fatalf("matched = %d, want 0", matched)
	}

	for _, face := range faces {
		changed := false
		for y := face.Min.Y; y < face.Max.Y && !changed; y++ {
			for x := face.Min.X; x < face.Max.X; x++ {
				if scene.NRGBAAt(x, y) != out.NRGBAAt(x, y) {
					changed = true
					break
				}
			}
		}
		if !changed {
			t.Fatalf("face %v should have been blurred", face)
		}
	}
}

func TestSelectiveRedactRequiresReference(t *testing.T) {
	scene := noiseImage(t, 100, 100, 5)
	if _, _, err := SelectiveRedact(scene, nil, nil, DefaultTolerance, 51); !errors.Is(err, ErrReferenceMissing) {
		t.Fatalf("expected ErrReferenceMissing, got %v", err)
	}
}

func BenchmarkExtractReference(b *testing.B) {
	img := noiseImage(b, 640, 480, 31)
	faces := []image.Rectangle{image.Rect(100, 80, 260, 240)}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ExtractReference(img, faces); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSelectiveRedact(b *testing.B) {
	img := noiseImage(b, 640, 480, 37)
	faces := []image.Rectangle{
		image.Rect(100, 80, 260, 240),
		image.Rect(360, 200, 480, 340),
	}
	ref, err := ExtractReference(img, faces[:1])
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := SelectiveRedact(img, faces, ref, DefaultTolerance, 51); err != nil {
			b.Fatal(err)
		}
	}
}
