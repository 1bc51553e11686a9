package facematch

import (
	"errors"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const (
	// ExtractorVersion tags every embedding produced by this package. Bump it
	// whenever the pipeline below changes in a way that breaks comparability.
	ExtractorVersion = 1

	// EmbeddingDim is the fixed vector length of the current extractor.
	EmbeddingDim = embeddingEdge * embeddingEdge

	embeddingEdge = 128
)

// ErrNoFaceDetected is an exported constant or variable used by the redaction engine.
var ErrNoFaceDetected = errors.New("no face detected in reference image")

// ErrEmptyFaceRegion is an exported constant or variable used by the redaction engine.
var ErrEmptyFaceRegion = errors.New("face region is empty after clipping")

// ErrZeroVariance is an exported constant or variable used by the redaction engine.
var ErrZeroVariance = errors.New("face region has zero variance")

// Embedding is a fixed-length numeric face descriptor tagged with the
// extractor version that produced it.
//
// Embedding instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Embedding struct {
	ExtractorVersion uint8
	Vector           []float32
}

// Extract computes an embedding for the face inside rect. The rect is clipped
// to the image bounds first; a rect that clips to nothing fails with
// [ErrEmptyFaceRegion], and a crop with no pixel variance (which cannot be
// normalized) fails with [ErrZeroVariance].
func Extract(src image.Image, rect image.Rectangle) (*Embedding, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, ErrEmptyFaceRegion
	}

	gray := imaging.Grayscale(imaging.Crop(src, rect))
	resized := imaging.Resize(gray, embeddingEdge, embeddingEdge, imaging.Linear)
	pixels := equalize(resized)

	vec := make([]float32, EmbeddingDim)
	var mean float64
	for i, p := range pixels {
		vec[i] = float32(p)
		mean += float64(p)
	}
	mean /= EmbeddingDim

	var norm float64
	for i := range vec {
		v := float64(vec[i]) - mean
		vec[i] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		return nil, ErrZeroVariance
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return &Embedding{ExtractorVersion: ExtractorVersion, Vector: vec}, nil
}

// ExtractReference picks the reference face out of the detector's face boxes
// and embeds it. Zero usable boxes fail with [ErrNoFaceDetected]; when several
// faces are present the largest box wins.
func ExtractReference(src image.Image, faces []image.Rectangle) (*Embedding, error) {
	best := image.Rectangle{}
	bestArea := 0
	for _, f := range faces {
		clipped := f.Intersect(src.Bounds())
		area := clipped.Dx() * clipped.Dy()
		if area > bestArea {
			best = clipped
			bestArea = area
		}
	}
	if bestArea == 0 {
		return nil, ErrNoFaceDetected
	}

	return Extract(src, best)
}

// equalize performs histogram equalization over the grayscale 128x128 crop and
// returns one intensity byte per pixel.
func equalize(img *image.NRGBA) []uint8 {
	var hist [256]int
	out := make([]uint8, EmbeddingDim)

	for y := 0; y < embeddingEdge; y++ {
		row := img.PixOffset(0, y)
		for x := 0; x < embeddingEdge; x++ {
			// Grayscale output carries the intensity in every channel.
			v := img.Pix[row+x*4]
			out[y*embeddingEdge+x] = v
			hist[v]++
		}
	}

	// Classic CDF remap, anchored at the first non-empty bin.
	var cdf [256]int
	running := 0
	cdfMin := 0
	for i, count := range hist {
		running += count
		cdf[i] = running
		if cdfMin == 0 && count > 0 {
			cdfMin = running
		}
	}

	denom := EmbeddingDim - cdfMin
	if denom <= 0 {
		// Single-intensity crop; leave values as-is and let normalization
		// report zero variance.
		return out
	}

	var lut [256]uint8
	for i := range lut {
		scaled := float64(cdf[i]-cdfMin) / float64(denom) * 255
		if scaled < 0 {
			scaled = 0
		}
		lut[i] = uint8(math.Round(scaled))
	}
	for i, v := range out {
		out[i] = lut[v]
	}

	return out
}
