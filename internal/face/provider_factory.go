package face

import (
	"fmt"
	"time"

	"github.com/hajiri-labs/hajiri/internal/config"
	"github.com/hajiri-labs/hajiri/internal/provider"
	"github.com/hajiri-labs/hajiri/internal/provider/deepface"
	"github.com/hajiri-labs/hajiri/internal/provider/mock"
)

// ProviderType defines supported face encoder types
type ProviderType string

const (
	// ProviderTypeDeepFace is the DeepFace HTTP encoder (default)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeMock is the deterministic in-process encoder for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewFaceProvider creates a FaceProvider instance based on configuration
//
// Environment variables:
//   - FACE_PROVIDER: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5000")
func NewFaceProvider(cfg *config.Config) (provider.FaceProvider, error) {
	providerType := ProviderType(cfg.FaceProvider)

	switch providerType {
	case ProviderTypeMock:
		return mock.New(), nil

	case ProviderTypeDeepFace, "":
		dfConfig := deepface.DefaultConfig()
		dfConfig.BaseURL = cfg.DeepFaceURL
		dfConfig.Timeout = 30 * time.Second
		return deepface.NewProvider(dfConfig), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.FaceProvider, ProviderTypeDeepFace, ProviderTypeMock)
	}
}
