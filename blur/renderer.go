package blur

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Region is one rectangular area to redact, in source-image pixel space.
// Coordinates are float64 because upstream detectors report sub-pixel boxes.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Outcome records what a render pass did with one input region.
type Outcome uint8

const (
	// OutcomeRendered means the region was blurred into the output.
	OutcomeRendered Outcome = iota
	// OutcomeZeroArea means the region clipped to nothing.
	OutcomeZeroArea
	// OutcomeMalformed means the region carried non-finite coordinates and
	// was dropped entirely.
	OutcomeMalformed
)

// Stats reports what a render pass did with its input regions.
//
//	Rendered:  regions blurred into the output.
//	ZeroArea:  regions that clipped to nothing (counted, not rendered).
//	Malformed: regions with non-finite coordinates (dropped entirely).
//	Outcomes:  per-region verdicts, parallel to the input slice.
type Stats struct {
	Rendered  int
	ZeroArea  int
	Malformed int
	Outcomes  []Outcome
}

// Render applies the graduated feather blur to every region of src and returns
// the composited result. src is never mutated. Params are sanitized before
// use; pass the result of [Params.Sanitize] if the echoed values must match.
//
// Overlapping regions are composited in input order: a later region overwrites
// earlier output inside the overlap (last-writer-wins). An empty region list
// returns a clone of src.
//
// Render does not mutate shared global state and is safe for concurrent use.
func Render(src image.Image, regions []Region, p Params) (*image.NRGBA, Stats) {
	p = p.Sanitize()
	out := imaging.Clone(src)

	st := Stats{Outcomes: make([]Outcome, 0, len(regions))}
	for _, r := range regions {
		if !r.finite() {
			st.Malformed++
			st.Outcomes = append(st.Outcomes, OutcomeMalformed)
			continue
		}
		rect := r.clip(out.Bounds())
		if rect.Empty() {
			st.ZeroArea++
			st.Outcomes = append(st.Outcomes, OutcomeZeroArea)
			continue
		}
		featherRegion(out, rect, p)
		st.Rendered++
		st.Outcomes = append(st.Outcomes, OutcomeRendered)
	}

	return out, st
}

// FixedBlur applies a single uniform Gaussian blur with the given kernel size
// to rect, in place. The kernel is sanitized to odd >= 3. Regions clipping to
// nothing are a no-op. Returns whether any pixels changed.
func FixedBlur(img *image.NRGBA, rect image.Rectangle, kernel int) bool {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return false
	}

	kernel = sanitizeKernel(kernel, DefaultMaxKernelSize)
	blurred := imaging.Blur(imaging.Crop(img, rect), kernelSigma(kernel))
	pasteNRGBA(img, blurred, rect)
	return true
}

// Weight computes the strong-blur blend share for a normalized elliptical
// distance d in [0, 1]. Weight(0) is always 1 (the center is maximally
// blurred); Weight(1) is always base (the boundary never drops below the
// configured floor), for any exponent >= 0.
func Weight(d, exponent, base float64) float64 {
	if d <= 0 {
		return 1
	}
	if d >= 1 {
		return base
	}
	w := base + (1-base)*math.Pow(1-d, exponent)
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

func featherRegion(img *image.NRGBA, rect image.Rectangle, p Params) {
	crop := imaging.Crop(img, rect)
	light := imaging.Blur(crop, kernelSigma(p.MinKernelSize))
	strong := imaging.Blur(crop, kernelSigma(p.MaxKernelSize))

	halfW := float64(rect.Dx()) / 2
	halfH := float64(rect.Dy()) / 2
	cx := float64(rect.Min.X) + halfW
	cy := float64(rect.Min.Y) + halfH

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			// Distance is measured from pixel center, scaled per axis so
			// non-square regions feather symmetrically.
			dx := (float64(x) + 0.5 - cx) / halfW
			dy := (float64(y) + 0.5 - cy) / halfH
			d := math.Sqrt(dx*dx + dy*dy)
			if d > 1 {
				d = 1
			}
			w := Weight(d, p.FocusExponent, p.BaseWeight)

			dst := img.PixOffset(x, y)
			src := light.PixOffset(x-rect.Min.X, y-rect.Min.Y)
			for c := 0; c < 4; c++ {
				lv := float64(light.Pix[src+c])
				sv := float64(strong.Pix[src+c])
				img.Pix[dst+c] = uint8(math.Round(w*sv + (1-w)*lv))
			}
		}
	}
}

func pasteNRGBA(dst *image.NRGBA, src *image.NRGBA, rect image.Rectangle) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		di := dst.PixOffset(rect.Min.X, y)
		si := src.PixOffset(0, y-rect.Min.Y)
		copy(dst.Pix[di:di+rect.Dx()*4], src.Pix[si:si+rect.Dx()*4])
	}
}

func (r Region) finite() bool {
	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (r Region) clip(bounds image.Rectangle) image.Rectangle {
	rect := image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
	return rect.Intersect(bounds)
}
