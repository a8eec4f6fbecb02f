package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps uploaded binaries in a local directory, served under
// /uploads/ by the HTTP layer.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures the upload directory exists and returns a store over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("disk storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the content under the provided name and returns its public path.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := s.safeName(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file %s: %w", name, err)
	}

	return s.URL(name), nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *DiskStore) Delete(_ context.Context, name string) error {
	name, err := s.safeName(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload file %s: %w", name, err)
	}
	return nil
}

// URL returns the public path under which the file is served.
func (s *DiskStore) URL(name string) string {
	return "/uploads/" + name
}

// Handler serves the upload directory for the disk-backed deployment.
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.dir)))
}

// safeName rejects names that would escape the upload directory.
func (s *DiskStore) safeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("disk storage: invalid file name %q", name)
	}
	return name, nil
}

var _ BlobStore = (*DiskStore)(nil)
