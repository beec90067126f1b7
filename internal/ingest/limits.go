package ingest

import (
	"errors"
	"fmt"
)

// ErrArchiveTooLarge is returned when the uploaded archive exceeds the limit
var ErrArchiveTooLarge = errors.New("archive too large")

// UploadLimits defines the limits for report uploads
type UploadLimits struct {
	MaxArchiveBytes int64 // Maximum size of the uploaded archive in bytes
}

// DefaultUploadLimits returns the default upload limits
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		MaxArchiveBytes: 100 * 1024 * 1024, // 100MB
	}
}

// NewUploadLimits creates upload limits from configuration
func NewUploadLimits(maxArchiveBytes int64) UploadLimits {
	return UploadLimits{
		MaxArchiveBytes: maxArchiveBytes,
	}
}

// ValidateArchiveSize checks if the archive size is within limits
func (l UploadLimits) ValidateArchiveSize(size int64) error {
	if size > l.MaxArchiveBytes {
		return fmt.Errorf("%w: archive is %d bytes, limit is %d bytes", ErrArchiveTooLarge, size, l.MaxArchiveBytes)
	}
	return nil
}
