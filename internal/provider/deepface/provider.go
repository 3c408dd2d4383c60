package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/hajiri-labs/hajiri/internal/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements provider.FaceProvider using DeepFace API
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// DetectFaces detects faces in the image
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		faceArea := float64(result.FacialArea.W * result.FacialArea.H)

		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
			Confidence: calculateConfidence(faceArea),
		})
	}

	return faces, nil
}

// calculateConfidence estimates confidence based on face area
// DeepFace doesn't return confidence, so we estimate based on face size
// Larger faces are more likely to be accurately detected
func calculateConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5 // Low confidence for very small faces
	}
	// Scale from 0.7 to 0.99 based on face area
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}

// EncodeFace extracts the embedding of the largest face in the image.
// DeepFace returns one result per detected face; when a frame contains
// several people only the dominant face (largest bounding box) is encoded.
func (p *Provider) EncodeFace(ctx context.Context, image []byte) ([]float64, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("encode face: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: empty represent response", provider.ErrNoFace)
	}

	best := resp.Results[0]
	bestArea := best.FacialArea.W * best.FacialArea.H
	for _, result := range resp.Results[1:] {
		if area := result.FacialArea.W * result.FacialArea.H; area > bestArea {
			best, bestArea = result, area
		}
	}

	return best.Embedding, nil
}

// Distance calculates the Euclidean distance between two embeddings.
// DeepFace has no comparison endpoint, so it is computed locally.
func (p *Provider) Distance(ctx context.Context, embedding1, embedding2 []float64) (float64, error) {
	d := EuclideanDistance(embedding1, embedding2)
	if d < 0 {
		return 0, ErrDimensionMismatch
	}
	return d, nil
}

// Ensure Provider implements provider.FaceProvider
var _ provider.FaceProvider = (*Provider)(nil)
