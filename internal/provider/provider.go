package provider

import (
	"context"
	"errors"
)

// ErrNoFace is returned by EncodeFace when the image contains no detectable
// face. Implementations wrap it so callers can branch with errors.Is.
var ErrNoFace = errors.New("no face detected in image")

// FaceProvider is the boundary to the external face encoding service.
type FaceProvider interface {
	// DetectFaces detects faces in the image and returns one entry per face
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// EncodeFace extracts the embedding of the single largest face in the
	// image (kiosk policy: one subject per frame, extra faces are ignored).
	// Returns ErrNoFace wrapped by the implementation when nothing is detected.
	EncodeFace(ctx context.Context, image []byte) ([]float64, error)

	// Distance computes the distance between two embeddings. Lower is more
	// similar; a match is accepted when distance <= the configured tolerance.
	Distance(ctx context.Context, embedding1, embedding2 []float64) (float64, error)
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area used to pick the dominant face in a frame.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}
