package deepface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hajiri-labs/hajiri/internal/provider"
)

// TestProviderImplementsInterface verifies that Provider implements FaceProvider
func TestProviderImplementsInterface(t *testing.T) {
	var _ provider.FaceProvider = (*Provider)(nil)
}

func newTestProvider(t *testing.T, response RepresentResponse) (*Provider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(response)
	}))

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.RetryCount = 0

	return NewProvider(config), server
}

func TestProvider_DetectFaces(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse RepresentResponse
		wantCount      int
	}{
		{
			name: "single face detected",
			serverResponse: RepresentResponse{
				Results: []RepresentResult{
					{Embedding: make([]float64, 512), FacialArea: FacialArea{X: 10, Y: 20, W: 200, H: 200}},
				},
			},
			wantCount: 1,
		},
		{
			name: "multiple faces detected",
			serverResponse: RepresentResponse{
				Results: []RepresentResult{
					{Embedding: make([]float64, 512), FacialArea: FacialArea{X: 10, Y: 10, W: 100, H: 100}},
					{Embedding: make([]float64, 512), FacialArea: FacialArea{X: 200, Y: 10, W: 100, H: 100}},
				},
			},
			wantCount: 2,
		},
		{
			name:           "no faces",
			serverResponse: RepresentResponse{Results: []RepresentResult{}},
			wantCount:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, server := newTestProvider(t, tt.serverResponse)
			defer server.Close()

			faces, err := p.DetectFaces(context.Background(), []byte("image"))
			require.NoError(t, err)
			assert.Len(t, faces, tt.wantCount)

			for _, f := range faces {
				assert.Greater(t, f.Confidence, 0.0)
				assert.Greater(t, f.BoundingBox.Area(), 0.0)
			}
		})
	}
}

func TestProvider_EncodeFace(t *testing.T) {
	t.Run("single face returns its embedding", func(t *testing.T) {
		want := []float64{0.1, 0.2, 0.3}
		p, server := newTestProvider(t, RepresentResponse{
			Results: []RepresentResult{
				{Embedding: want, FacialArea: FacialArea{W: 100, H: 100}},
			},
		})
		defer server.Close()

		got, err := p.EncodeFace(context.Background(), []byte("image"))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("multiple faces returns the largest", func(t *testing.T) {
		small := []float64{0.1, 0.1}
		large := []float64{0.9, 0.9}
		p, server := newTestProvider(t, RepresentResponse{
			Results: []RepresentResult{
				{Embedding: small, FacialArea: FacialArea{W: 80, H: 80}},
				{Embedding: large, FacialArea: FacialArea{W: 300, H: 300}},
				{Embedding: small, FacialArea: FacialArea{W: 50, H: 50}},
			},
		})
		defer server.Close()

		got, err := p.EncodeFace(context.Background(), []byte("image"))
		require.NoError(t, err)
		assert.Equal(t, large, got)
	})

	t.Run("no face is a sentinel error", func(t *testing.T) {
		p, server := newTestProvider(t, RepresentResponse{Results: []RepresentResult{}})
		defer server.Close()

		_, err := p.EncodeFace(context.Background(), []byte("image"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, provider.ErrNoFace))
	})
}

func TestProvider_Distance(t *testing.T) {
	p := NewProvider(DefaultConfig())

	t.Run("identical embeddings", func(t *testing.T) {
		d, err := p.Distance(context.Background(), []float64{1, 2, 3}, []float64{1, 2, 3})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, d, 0.0001)
	})

	t.Run("known distance", func(t *testing.T) {
		d, err := p.Distance(context.Background(), []float64{0, 0}, []float64{3, 4})
		require.NoError(t, err)
		assert.InDelta(t, 5.0, d, 0.0001)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := p.Distance(context.Background(), []float64{1, 2}, []float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name       string
		embedding1 []float64
		embedding2 []float64
		want       float64
	}{
		{
			name:       "identical vectors",
			embedding1: []float64{1.0, 0.0, 0.0},
			embedding2: []float64{1.0, 0.0, 0.0},
			want:       0.0,
		},
		{
			name:       "unit apart",
			embedding1: []float64{1.0, 0.0},
			embedding2: []float64{0.0, 0.0},
			want:       1.0,
		},
		{
			name:       "different lengths",
			embedding1: []float64{1.0, 0.0},
			embedding2: []float64{1.0, 0.0, 0.0},
			want:       -1,
		},
		{
			name:       "empty vectors",
			embedding1: []float64{},
			embedding2: []float64{},
			want:       -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EuclideanDistance(tt.embedding1, tt.embedding2), 0.0001)
		})
	}
}

func TestNormalizeEmbedding(t *testing.T) {
	got := NormalizeEmbedding([]float64{3, 4})
	assert.InDelta(t, 0.6, got[0], 0.0001)
	assert.InDelta(t, 0.8, got[1], 0.0001)

	assert.Empty(t, NormalizeEmbedding(nil))
	assert.Equal(t, []float64{0, 0}, NormalizeEmbedding([]float64{0, 0}))
}
