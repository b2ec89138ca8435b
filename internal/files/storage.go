package files

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"redguardian/infrastructure"
)

// MaxUploadSize caps report and comment attachments at 1 GiB.
const MaxUploadSize = 1 << 30

// Storage is the blob store attachments are uploaded to. Save returns the
// public URL of the stored object.
type Storage interface {
	Save(prefix, userID string, r io.Reader) (string, error)
}

// DiskStorage keeps blobs on the local filesystem under
// <root>/<prefix>/<userID>/<uuid> and serves them from baseURL.
type DiskStorage struct {
	root    string
	baseURL string
}

func NewDiskStorage(root, baseURL string) *DiskStorage {
	return &DiskStorage{root: root, baseURL: baseURL}
}

func (s *DiskStorage) Save(prefix, userID string, r io.Reader) (string, error) {
	name := uuid.New().String()
	dir := filepath.Join(s.root, prefix, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	defer f.Close()

	// One byte past the cap distinguishes "exactly the cap" from "too big".
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if n > MaxUploadSize {
		_ = os.Remove(f.Name())
		return "", infrastructure.ErrFileTooLarge
	}

	return s.baseURL + "/" + path.Join(prefix, userID, name), nil
}
