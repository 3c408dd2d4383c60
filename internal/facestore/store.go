// Package facestore owns the enrollment directory: one reference image per
// enrolled person, named <label>.<ext> where the label is a student UUID or a
// roll number, and the in-memory list of embeddings derived from it.
package facestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajiri-labs/hajiri/internal/provider"
)

// ErrBadLabel is returned by Put when the label is not a plain file stem.
// Labels come from request input, so anything that would resolve outside the
// enrollment directory is refused before any file is touched.
var ErrBadLabel = errors.New("enrollment label must be a plain file name")

// imageExts are the file extensions Reload considers enrollment images
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// EnrolledFace pairs an enrollment label with its reference embedding
type EnrolledFace struct {
	Label     string
	Embedding []float64
}

// Store keeps the enrollment directory and its decoded embeddings. The slice
// of faces is a copy-on-write snapshot: Reload builds a full replacement and
// swaps it in, so stale entries from deleted files never linger.
type Store struct {
	dir     string
	encoder provider.FaceProvider
	logger  *slog.Logger

	mu    sync.RWMutex
	faces []EnrolledFace
}

func New(dir string, encoder provider.FaceProvider, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create faces dir: %w", err)
	}

	return &Store{
		dir:     dir,
		encoder: encoder,
		logger:  logger,
	}, nil
}

// Reload rescans the enrollment directory and rebuilds the embedding list
// from scratch. Files with no detectable face, or that fail to encode, are
// skipped with a warning; a bad file never aborts the whole reload.
func (s *Store) Reload(ctx context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("scan faces dir: %w", err)
	}

	next := make([]EnrolledFace, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExts[ext] {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("failed to read enrollment image, skipping",
				slog.String("file", entry.Name()),
				slog.Any("error", err),
			)
			continue
		}

		embedding, err := s.encoder.EncodeFace(ctx, data)
		if err != nil {
			s.logger.Warn("no usable face in enrollment image, skipping",
				slog.String("file", entry.Name()),
				slog.Any("error", err),
			)
			continue
		}

		next = append(next, EnrolledFace{
			Label:     strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Embedding: embedding,
		})
	}

	s.mu.Lock()
	s.faces = next
	s.mu.Unlock()

	s.logger.Info("face store reloaded", slog.Int("faces", len(next)))
	return nil
}

// Snapshot returns the current candidate list. The returned slice is shared
// with no writer: Reload replaces the slice instead of mutating it.
func (s *Store) Snapshot() []EnrolledFace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faces
}

// Count returns the number of enrolled faces in the current snapshot
func (s *Store) Count() int {
	return len(s.Snapshot())
}

// Put writes a reference image for label, overwriting any previous enrollment
// regardless of its extension. format is the decoded image format name
// ("jpeg", "png", "webp"). Returns the stored file name.
func (s *Store) Put(label, format string, data []byte) (string, error) {
	if !validLabel(label) {
		return "", fmt.Errorf("%w: %q", ErrBadLabel, label)
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	if !imageExts[ext] {
		return "", fmt.Errorf("unsupported image format %q", format)
	}

	// A person has at most one reference image: drop old files stored under
	// a different extension before writing the new one.
	for old := range imageExts {
		if old == ext {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, label+old))
	}

	name := label + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write enrollment image: %w", err)
	}

	return name, nil
}

// validLabel reports whether label can only name a file directly inside the
// enrollment directory: no separators, no traversal components.
func validLabel(label string) bool {
	if label == "" || label == "." || label == ".." {
		return false
	}
	if strings.ContainsAny(label, `/\`) {
		return false
	}
	return filepath.Base(label) == label
}

// Dir returns the enrollment directory path
func (s *Store) Dir() string {
	return s.dir
}
