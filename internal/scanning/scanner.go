package scanning

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded marks upstream failures caused by quota or billing exhaustion
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrImageDecode marks uploads that could not be decoded for preparation
	ErrImageDecode = errors.New("image decode failed")
)

// Extraction is the text read from a requisition slip
type Extraction struct {
	// Text is the model answer as received
	Text string
	// Mnemonics, when set, names catalog entries directly and bypasses text matching
	Mnemonics []string
}

// Extractor defines the interface for reading requested exams from an image
type Extractor interface {
	// ExtractExams reads the exam names on a requisition image
	ExtractExams(ctx context.Context, imageData []byte, contentType string) (*Extraction, error)
	// Name identifies the extractor in logs and health checks
	Name() string
	// Close closes the extractor and releases resources
	Close() error
}
