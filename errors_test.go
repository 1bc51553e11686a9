package goRedact

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindInternal},
		{"image invalid", ErrImageInvalid, KindInput},
		{"image too large", ErrImageTooLarge, KindInput},
		{"no face", ErrNoFaceDetected, KindInput},
		{"session not found", ErrSessionNotFound, KindState},
		{"session expired", ErrSessionExpired, KindState},
		{"reference missing", ErrReferenceMissing, KindState},
		{"dimension mismatch", ErrDimensionMismatch, KindState},
		{"reference corrupt", ErrReferenceCorrupt, KindState},
		{"wrapped dimension mismatch", fmt.Errorf("decode reference: %w", ErrDimensionMismatch), KindState},
		{"wrapped corrupt reference", fmt.Errorf("decode reference: %w", ErrReferenceCorrupt), KindState},
		{"artifact denied", ErrArtifactDenied, KindState},
		{"tokens disabled", ErrTokensDisabled, KindState},
		{"detector unavailable", ErrDetectorUnavailable, KindInternal},
		{"redis unavailable", ErrRedisUnavailable, KindInternal},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Kind(tc.err); got != tc.want {
				t.Fatalf("Kind(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
