package mock

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"

	"github.com/hajiri-labs/hajiri/internal/domain"
	"github.com/hajiri-labs/hajiri/internal/provider"
)

const embeddingDimension = 128

// ErrDimensionMismatch is returned by Distance when the embeddings differ in length
var ErrDimensionMismatch = errors.New("embedding dimensions do not match")

// Provider implements provider.FaceProvider for tests and local development.
// Embeddings are derived deterministically from the image bytes, so the same
// image always matches itself with distance 0.
type Provider struct{}

// New creates a new mock provider
func New() *Provider {
	return &Provider{}
}

// DetectFaces reports a single centered face for any plausible image.
// Images under 1000 bytes simulate "no face detected".
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}
	if len(image) < 1000 {
		return []provider.DetectedFace{}, nil
	}

	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      0.1,
				Y:      0.1,
				Width:  0.8,
				Height: 0.8,
			},
			Confidence: 0.99,
		},
	}, nil
}

// EncodeFace generates a deterministic embedding from the image hash
func (p *Provider) EncodeFace(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}
	if len(image) < 1000 {
		return nil, provider.ErrNoFace
	}

	return generateEmbedding(image), nil
}

// Distance calculates the Euclidean distance between embeddings
func (p *Provider) Distance(ctx context.Context, embedding1, embedding2 []float64) (float64, error) {
	if len(embedding1) != len(embedding2) || len(embedding1) == 0 {
		return 0, ErrDimensionMismatch
	}

	var sum float64
	for i := range embedding1 {
		d := embedding1[i] - embedding2[i]
		sum += d * d
	}

	return math.Sqrt(sum), nil
}

// generateEmbedding derives a unit-length vector from the image hash
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var _ provider.FaceProvider = (*Provider)(nil)
