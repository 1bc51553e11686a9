package facematch

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTripPreservesBits(t *testing.T) {
	img := noiseImage(t, 150, 150, 13)
	orig, err := Extract(img, img.Bounds())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	blob, err := Encode(orig)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ExtractorVersion != orig.ExtractorVersion {
		t.Fatalf("extractor version = %d, want %d", decoded.ExtractorVersion, orig.ExtractorVersion)
	}
	if len(decoded.Vector) != len(orig.Vector) {
		t.Fatalf("vector length = %d, want %d", len(decoded.Vector), len(orig.Vector))
	}
	for i := range orig.Vector {
		if decoded.Vector[i] != orig.Vector[i] {
			t.Fatalf("value %d changed across round trip: %v != %v", i, decoded.Vector[i], orig.Vector[i])
		}
	}

	score, err := Similarity(orig, decoded)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if score < 0.999999 {
		t.Fatalf("round-tripped embedding should self-match, score = %v", score)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"too short":      {1, 1, 0, 0},
		"unknown format": {99, ExtractorVersion, 0, 0, 0, 1, 0, 0, 0, 0},
		"truncated body": {1, ExtractorVersion, 0, 0, 1, 0, 0, 0},
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(blob); !errors.Is(err, ErrEncodingInvalid) {
				t.Fatalf("expected ErrEncodingInvalid, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsDimensionMismatch(t *testing.T) {
	// Well-formed blob with the wrong vector length.
	short := &Embedding{ExtractorVersion: ExtractorVersion, Vector: make([]float32, 16)}
	blob, err := Encode(short)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(blob); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for short vector, got %v", err)
	}

	// Well-formed blob from a future extractor.
	img := noiseImage(t, 140, 140, 17)
	emb, err := Extract(img, img.Bounds())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	blob, err = Encode(emb)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	blob[1] = ExtractorVersion + 1
	if _, err := Decode(blob); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for stale extractor, got %v", err)
	}
}

func TestSimilarityRejectsIncompatibleEmbeddings(t *testing.T) {
	a := &Embedding{ExtractorVersion: 1, Vector: make([]float32, EmbeddingDim)}
	b := &Embedding{ExtractorVersion: 2, Vector: make([]float32, EmbeddingDim)}
	if _, err := Similarity(a, b); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	c := &Embedding{ExtractorVersion: 1, Vector: make([]float32, 8)}
	if _, err := Similarity(a, c); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEncodedLayout(t *testing.T) {
	emb := &Embedding{ExtractorVersion: ExtractorVersion, Vector: make([]float32, EmbeddingDim)}
	blob, err := Encode(emb)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if blob[0] != embeddingFormatVersionCurrent {
		t.Fatalf("format byte = %d", blob[0])
	}
	if blob[1] != ExtractorVersion {
		t.Fatalf("extractor byte = %d", blob[1])
	}
	if dim := binary.BigEndian.Uint32(blob[2:6]); dim != EmbeddingDim {
		t.Fatalf("encoded dim = %d, want %d", dim, EmbeddingDim)
	}
	if len(blob) != 6+EmbeddingDim*4 {
		t.Fatalf("blob length = %d", len(blob))
	}
}
