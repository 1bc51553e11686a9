package facematch

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
	"github.com/MrEthical07/goRedact/blur"
)

// DefaultTolerance is the minimum similarity score at which a candidate face
// is treated as the reference person.
const DefaultTolerance = 0.75

// ErrReferenceMissing is an exported constant or variable used by the redaction engine.
var ErrReferenceMissing = errors.New("reference embedding missing")

// Similarity scores two embeddings on [0, 1]. The metric is symmetric and a
// self-comparison of any valid embedding yields 1.0 up to float rounding.
// Embeddings from different extractors or dimensions fail with
// [ErrDimensionMismatch].
func Similarity(a, b *Embedding) (float64, error) {
	if a == nil || b == nil {
		return 0, ErrReferenceMissing
	}
	if a.ExtractorVersion != b.ExtractorVersion || len(a.Vector) != len(b.Vector) {
		return 0, ErrDimensionMismatch
	}

	var dot float64
	for i := range a.Vector {
		dot += float64(a.Vector[i]) * float64(b.Vector[i])
	}

	// Vectors are L2 normalized, so dot is cosine in [-1, 1]; remap to [0, 1].
	score := (dot + 1) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

// SelectiveRedact blurs every face box whose similarity to ref falls below
// tolerance and leaves matching faces untouched. Faces that cannot be embedded
// (empty crop, zero variance) count as non-matching and are blurred. The blur
// here is a single fixed kernel, not the graduated feather — this path is
// intentionally simpler.
//
// Returns the composited image and how many faces matched the reference.
// If no face reaches tolerance every face is blurred; that is expected
// behavior, not an error. src is never mutated.
func SelectiveRedact(src image.Image, faces []image.Rectangle, ref *Embedding, tolerance float64, kernel int) (*image.NRGBA, int, error) {
	if ref == nil {
		return nil, 0, ErrReferenceMissing
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	out := imaging.Clone(src)
	matched := 0

	for _, face := range faces {
		// Embed from the unmodified source so an earlier blur in this pass
		// cannot poison a later face's score.
		emb, err := Extract(src, face)
		if err == nil {
			score, simErr := Similarity(ref, emb)
			if simErr != nil {
				return nil, 0, simErr
			}
			if score >= tolerance {
				matched++
				continue
			}
		} else if !errors.Is(err, ErrEmptyFaceRegion) && !errors.Is(err, ErrZeroVariance) {
			return nil, 0, err
		}

		blur.FixedBlur(out, face, kernel)
	}

	return out, matched, nil
}
