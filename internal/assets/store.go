// Package assets stores uploaded project images on the local filesystem.
// The store has no notion of ownership; it persists named blobs and the
// project lifecycle service owns the one-project-one-asset rule.
package assets

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/folio-api/folio/internal/platform/httpx"
)

// DefaultMaxBytes caps uploads at 5 MiB.
const DefaultMaxBytes = 5 << 20

// Store persists image blobs under a single directory, exposed to clients
// through a fixed public URL prefix.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStore creates the upload directory when missing.
func NewStore(dir, baseURL string, maxBytes int64) (*Store, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create upload dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Save validates and writes the upload under a freshly generated,
// collision-resistant name and returns its public reference path.
// Rejections happen before anything touches the disk.
func (s *Store) Save(filename string, content []byte) (string, error) {
	if int64(len(content)) > s.maxBytes {
		return "", fmt.Errorf("%w: image exceeds maximum size of %d bytes", httpx.ErrValidation, s.maxBytes)
	}
	detected := http.DetectContentType(content)
	if !strings.HasPrefix(detected, "image/") {
		return "", fmt.Errorf("%w: only image files are allowed", httpx.ErrValidation)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = extensionFor(detected)
	}
	name := "project-" + uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("assets: write %s: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}

// Remove deletes the asset behind a reference. A missing file is not an
// error; callers treat removal as best-effort cleanup.
func (s *Store) Remove(ref string) error {
	name, ok := s.localName(ref)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("assets: remove %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the reference resolves to a stored asset.
func (s *Store) Exists(ref string) bool {
	name, ok := s.localName(ref)
	if !ok {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// Dir returns the backing directory, used to mount the static file server.
func (s *Store) Dir() string {
	return s.dir
}

// localName maps a public reference back to a file name inside the store,
// refusing anything outside the managed prefix.
func (s *Store) localName(ref string) (string, bool) {
	if ref == "" || !strings.HasPrefix(ref, s.baseURL+"/") {
		return "", false
	}
	name := path.Base(ref)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return "", false
	}
	return name, true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
