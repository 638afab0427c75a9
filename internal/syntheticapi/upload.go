package syntheticapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateUpload accepts only file names with a .csv extension.
func ValidateUpload(name string) error {
	if !strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".csv") {
		return fmt.Errorf("%w: %q", ErrInvalidFileType, filepath.Base(name))
	}
	return nil
}

// OpenUpload validates and opens the file at path. The caller closes the
// returned file once the upload has been sent.
func OpenUpload(path string) (Upload, *os.File, error) {
	if err := ValidateUpload(path); err != nil {
		return Upload{}, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Upload{}, nil, fmt.Errorf("open upload: %w", err)
	}
	return Upload{Name: filepath.Base(path), Content: f}, f, nil
}
