package images

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Thumbnail bounds for stored profile images.
const (
	MaxWidth  = 200
	MaxHeight = 350
)

// ErrUnsupportedFormat is returned for uploads that are not jpg or png.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Store writes resized profile images into a directory served as static files.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveProfileImage decodes the upload, shrinks it to fit the thumbnail bounds
// and stores it under a random filename, preserving the original extension.
// Returns the stored filename.
func (s *Store) SaveProfileImage(file multipart.File, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", ErrUnsupportedFormat
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("error decoding image: %w", err)
	}

	thumb := imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	path := filepath.Join(s.dir, name)
	if err := imaging.Save(thumb, path); err != nil {
		return "", fmt.Errorf("error saving image: %w", err)
	}
	return name, nil
}
