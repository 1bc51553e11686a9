package detect

import (
	"context"
	"errors"
)

// Detection class labels recognised by the redaction engine.
const (
	// ClassFace is the detection class for human faces.
	ClassFace = "face"
	// ClassLicensePlate is the detection class for vehicle license plates.
	ClassLicensePlate = "license_plate"
)

// ErrProviderUnavailable indicates the inference backend could not be
// reached or answered with a non-success status.
var ErrProviderUnavailable = errors.New("detection provider unavailable")

// ErrBadResponse indicates the backend answered but the payload could not be
// interpreted as a detection list.
var ErrBadResponse = errors.New("malformed detection response")

// Detection defines a public type used by goRedact APIs. It is one
// class-labelled bounding box in source-image pixel coordinates, as reported
// by the inference backend.
type Detection struct {
	// Class is the detection label, typically ClassFace or ClassLicensePlate.
	Class string `json:"class"`
	// Confidence is the model score in [0,1].
	Confidence float64 `json:"confidence"`
	// X and Y locate the top-left corner of the box.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Width and Height are the box extent in pixels.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Provider defines a public type used by goRedact APIs. Implementations run
// object detection over an encoded image and return every raw detection; the
// engine applies confidence and class filtering afterwards.
type Provider interface {
	// Detect runs inference over encoded image bytes.
	Detect(ctx context.Context, imageData []byte) ([]Detection, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// FilterDetections keeps detections whose class is in classes (all classes
// when the set is empty) and whose confidence meets minConfidence.
func FilterDetections(in []Detection, classes []string, minConfidence float64) []Detection {
	want := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		want[c] = struct{}{}
	}
	out := make([]Detection, 0, len(in))
	for _, d := range in {
		if d.Confidence < minConfidence {
			continue
		}
		if len(want) > 0 {
			if _, ok := want[d.Class]; !ok {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}
