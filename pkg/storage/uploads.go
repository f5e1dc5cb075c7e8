package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// UploadStore persists photo and signature assets on disk under a base
// directory, enforcing an extension allow-list and a maximum size before any
// byte is written.
type UploadStore struct {
	baseDir    string
	maxSize    int64
	extensions map[string]struct{}
}

// NewUploadStore ensures the base directory exists and returns a handle.
func NewUploadStore(baseDir string, maxSize int64, allowedExtensions []string) (*UploadStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	extensions := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}
	return &UploadStore{baseDir: baseDir, maxSize: maxSize, extensions: extensions}, nil
}

// Save validates and writes an uploaded asset, returning its relative URL path.
// The declared extension must be on the allow-list and the sniffed content type
// must agree with it; a .png payload renamed to .jpg is rejected.
func (s *UploadStore) Save(kind, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.extensions[ext]; !ok {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}
	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSize)
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("file content %q is not an image", mime.String())
	}

	name := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), ext)
	path := filepath.Join(s.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/" + filepath.ToSlash(name), nil
}

// Read returns the stored bytes for a previously returned URL path.
func (s *UploadStore) Read(url string) ([]byte, error) {
	rel := strings.TrimPrefix(url, "/")
	if strings.Contains(rel, "..") {
		return nil, fmt.Errorf("invalid upload path %q", url)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// Delete removes a stored asset if present.
func (s *UploadStore) Delete(url string) error {
	rel := strings.TrimPrefix(url, "/")
	if strings.Contains(rel, "..") {
		return fmt.Errorf("invalid upload path %q", url)
	}
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
