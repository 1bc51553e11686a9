package blur

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(42))
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

func TestSanitizeAlwaysOddAndOrdered(t *testing.T) {
	cases := []struct {
		name     string
		in       Params
		wantMin  int
		wantMax  int
	}{
		{"valid odd pair", Params{MinKernelSize: 9, MaxKernelSize: 45, FocusExponent: 2.5, BaseWeight: 0.35}, 9, 45},
		{"even kernels rounded up", Params{MinKernelSize: 8, MaxKernelSize: 44, FocusExponent: 1, BaseWeight: 0.5}, 9, 45},
		{"swapped pair corrected", Params{MinKernelSize: 31, MaxKernelSize: 7, FocusExponent: 1, BaseWeight: 0.5}, 31, 31},
		{"zero kernels get defaults", Params{FocusExponent: 1, BaseWeight: 0.5}, DefaultMinKernelSize, DefaultMaxKernelSize},
		{"tiny kernels floored", Params{MinKernelSize: 1, MaxKernelSize: 2, FocusExponent: 1, BaseWeight: 0.5}, 3, 3},
		{"negative kernels get defaults", Params{MinKernelSize: -5, MaxKernelSize: -1, FocusExponent: 1, BaseWeight: 0.5}, DefaultMinKernelSize, DefaultMaxKernelSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Sanitize()
			if got.MinKernelSize != tc.wantMin || got.MaxKernelSize != tc.wantMax {
				t.Fatalf("kernels = (%d, %d), want (%d, %d)",
					got.MinKernelSize, got.MaxKernelSize, tc.wantMin, tc.wantMax)
			}
			if got.MinKernelSize%2 == 0 || got.MaxKernelSize%2 == 0 {
				t.Fatalf("sanitized kernels must be odd, got (%d, %d)", got.MinKernelSize, got.MaxKernelSize)
			}
			if got.MinKernelSize > got.MaxKernelSize {
				t.Fatalf("sanitized min %d > max %d", got.MinKernelSize, got.MaxKernelSize)
			}
		})
	}
}

func TestSanitizeClampsWeightAndExponent(t *testing.T) {
	got := Params{MinKernelSize: 9, MaxKernelSize: 45, FocusExponent: -3, BaseWeight: 1.7}.Sanitize()
	if got.FocusExponent != 0 {
		t.Fatalf("negative exponent should clamp to 0, got %v", got.FocusExponent)
	}
	if got.BaseWeight != 1 {
		t.Fatalf("overweight base should clamp to 1, got %v", got.BaseWeight)
	}

	got = Params{MinKernelSize: 9, MaxKernelSize: 45, FocusExponent: math.NaN(), BaseWeight: math.Inf(1)}.Sanitize()
	if got.FocusExponent != DefaultFocusExponent || got.BaseWeight != DefaultBaseWeight {
		t.Fatalf("non-finite fields should fall back to defaults, got %+v", got)
	}
}

func TestWeightCenterAndEdgeInvariants(t *testing.T) {
	exponents := []float64{0, 0.5, 1, 2.5, 10}
	bases := []float64{0, 0.35, 0.5, 1}

	for _, exp := range exponents {
		for _, base := range bases {
			if w := Weight(0, exp, base); w != 1 {
				t.Fatalf("Weight(0, %v, %v) = %v, want 1", exp, base, w)
			}
			if w := Weight(1, exp, base); w != base {
				t.Fatalf("Weight(1, %v, %v) = %v, want %v", exp, base, w, base)
			}
			for _, d := range []float64{0.1, 0.5, 0.9} {
				w := Weight(d, exp, base)
				if w < base || w > 1 {
					t.Fatalf("Weight(%v, %v, %v) = %v outside [base, 1]", d, exp, base, w)
				}
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	img := testImage(120, 90)
	regions := []Region{{X: 10, Y: 10, Width: 50, Height: 50}, {X: 40, Y: 30, Width: 60, Height: 40}}
	p := Params{MinKernelSize: 9, MaxKernelSize: 45, FocusExponent: 2.5, BaseWeight: 0.35}

	first, _ := Render(img, regions, p)
	second, _ := Render(img, regions, p)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("two renders of identical input produced different bytes")
	}
}

func TestRenderTouchesOnlyTheBox(t *testing.T) {
	img := testImage(120, 90)
	box := Region{X: 10, Y: 10, Width: 50, Height: 50}
	p := Params{MinKernelSize: 9, MaxKernelSize: 45, FocusExponent: 2.5, BaseWeight: 0.35}

	out, st := Render(img, []Region{box}, p)
	if st.Rendered != 1 {
		t.Fatalf("rendered = %d, want 1", st.Rendered)
	}

	rect := image.Rect(10, 10, 60, 60)
	changed := false
	for y := 0; y < 90; y++ {
		for x := 0; x < 120; x++ {
			same := img.NRGBAAt(x, y) == out.NRGBAAt(x, y)
			if image.Pt(x, y).In(rect) {
				if !same {
					changed = true
				}
				continue
			}
			if !same {
				t.Fatalf("pixel (%d, %d) outside the box changed", x, y)
			}
		}
	}
	if !changed {
		t.Fatal("no pixel inside the box changed")
	}
}

func TestRenderEmptyRegionsReturnsInput(t *testing.T) {
	img := testImage(40, 40)
	out, st := Render(img, nil, DefaultParams())
	if st.Rendered != 0 || st.ZeroArea != 0 || st.Malformed != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if !bytes.Equal(img.Pix, out.Pix) {
		t.Fatal("output should equal input when there is nothing to redact")
	}
}

func TestRenderSkipsMalformedAndZeroArea(t *testing.T) {
	img := testImage(40, 40)
	regions := []Region{
		{X: math.NaN(), Y: 5, Width: 10, Height: 10},
		{X: 5, Y: 5, Width: 0, Height: 10},
		{X: 200, Y: 200, Width: 10, Height: 10}, // fully outside
		{X: 5, Y: 5, Width: 10, Height: 10},
	}

	out, st := Render(img, regions, DefaultParams())
	if st.Malformed != 1 {
		t.Fatalf("malformed = %d, want 1", st.Malformed)
	}
	if st.ZeroArea != 2 {
		t.Fatalf("zero-area = %d, want 2", st.ZeroArea)
	}
	if st.Rendered != 1 {
		t.Fatalf("rendered = %d, want 1", st.Rendered)
	}
	want := []Outcome{OutcomeMalformed, OutcomeZeroArea, OutcomeZeroArea, OutcomeRendered}
	if len(st.Outcomes) != len(want) {
		t.Fatalf("outcomes = %v, want %v", st.Outcomes, want)
	}
	for i, o := range want {
		if st.Outcomes[i] != o {
			t.Fatalf("outcome[%d] = %v, want %v", i, st.Outcomes[i], o)
		}
	}
	if out == nil {
		t.Fatal("render returned nil image")
	}
}

func TestFixedBlurClipsAndMutatesInPlace(t *testing.T) {
	img := testImage(60, 60)
	before := append([]uint8(nil), img.Pix...)

	if ok := FixedBlur(img, image.Rect(-10, -10, 0, 0), 51); ok {
		t.Fatal("fully-outside rect should be a no-op")
	}
	if !bytes.Equal(before, img.Pix) {
		t.Fatal("no-op blur must not mutate the image")
	}

	if ok := FixedBlur(img, image.Rect(10, 10, 40, 40), 51); !ok {
		t.Fatal("in-bounds blur should report pixels changed")
	}
	if bytes.Equal(before, img.Pix) {
		t.Fatal("in-place blur did not change any pixels")
	}
}

func BenchmarkRender(b *testing.B) {
	img := testImage(640, 480)
	regions := []Region{
		{X: 100, Y: 80, Width: 160, Height: 160},
		{X: 360, Y: 200, Width: 120, Height: 140},
	}
	p := DefaultParams()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Render(img, regions, p)
	}
}
