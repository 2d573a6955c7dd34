package utils

import (
	"errors"        // Sentinel errors
	"path/filepath" // Extension and base name handling
	"strings"       // Case folding

	"github.com/google/uuid"   // Unique suffix for stored names
	"github.com/gosimple/slug" // URL-safe base names
)

var (
	// ErrUnsafeFilename is returned for names that could escape the upload directory
	ErrUnsafeFilename = errors.New("unsafe filename")
	// ErrUnsupportedImage is returned for extensions outside the image allow-list
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// StoredImageName derives the on-disk name for an uploaded image: slug of the client base name,
// a random suffix, and the lower-cased original extension. Client names are never used verbatim.
func StoredImageName(clientName string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(clientName, "\\", "/")) // Drop any client directories
	ext := strings.ToLower(filepath.Ext(base))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedImage
	}
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "image"
	}
	return stem + "-" + uuid.NewString() + ext, nil
}

// ValidateStoredName rejects names that are empty, contain separators or point outside the directory
func ValidateStoredName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrUnsafeFilename
	}
	if filepath.Base(name) != name {
		return ErrUnsafeFilename
	}
	return nil
}
