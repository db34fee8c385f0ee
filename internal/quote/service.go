package quote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zombor/lab-quote/internal/catalog"
	"github.com/zombor/lab-quote/internal/scanning"
)

const (
	// DefaultMaxImageSize is the largest accepted upload
	DefaultMaxImageSize = int64(10 << 20)
	// DefaultExtractTimeout bounds a single call to the extractor
	DefaultExtractTimeout = 60 * time.Second

	logTextLimit = 200
)

// Service turns requisition images into priced quotes
type Service struct {
	catalog        *catalog.Catalog
	extractor      scanning.Extractor
	maxImageSize   int64
	extractTimeout time.Duration
}

// NewService creates a new Service with default limits
func NewService(c *catalog.Catalog, extractor scanning.Extractor) *Service {
	return NewServiceWithLimits(c, extractor, DefaultMaxImageSize, DefaultExtractTimeout)
}

// NewServiceWithLimits creates a new Service with a custom upload limit and extraction timeout.
// A zero timeout leaves the extractor call unbounded.
func NewServiceWithLimits(c *catalog.Catalog, extractor scanning.Extractor, maxImageSize int64, extractTimeout time.Duration) *Service {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &Service{
		catalog:        c,
		extractor:      extractor,
		maxImageSize:   maxImageSize,
		extractTimeout: extractTimeout,
	}
}

// MaxImageSize returns the upload limit in bytes
func (s *Service) MaxImageSize() int64 {
	return s.maxImageSize
}

// Catalog returns the exams available for matching, in catalog order
func (s *Service) Catalog() []catalog.Exam {
	return s.catalog.Exams()
}

// ExtractorName identifies the configured extractor
func (s *Service) ExtractorName() string {
	return s.extractor.Name()
}

// Analyze validates an uploaded image, extracts the requested exams and prices them
func (s *Service) Analyze(ctx context.Context, upload *Upload) (*Result, error) {
	logger := loggerFrom(ctx)

	if err := s.validate(upload); err != nil {
		logger.Warn("Rejected upload", "error", err)
		return nil, err
	}
	contentType := normalizeContentType(upload.ContentType)
	logger.Info("Image received",
		"filename", upload.Filename,
		"content_type", contentType,
		"size", upload.Size,
	)

	data, err := s.readImage(upload.Body)
	if err != nil {
		return nil, err
	}
	logger.Debug("Image read", "bytes", len(data), "encoded_size", base64.StdEncoding.EncodedLen(len(data)))

	extraction, err := s.extract(ctx, data, contentType)
	if err != nil {
		logger.Error("Extraction failed", "extractor", s.extractor.Name(), "error", err)
		return nil, err
	}

	var exams []catalog.Exam
	if len(extraction.Mnemonics) > 0 {
		exams = s.catalog.SelectByMnemonic(extraction.Mnemonics)
	} else {
		text := scanning.CleanText(extraction.Text)
		logger.Info("Text extracted", "extractor", s.extractor.Name(), "text", truncate(text, logTextLimit))
		exams = MatchExams(text, s.catalog.Exams())
	}

	total := Total(exams)
	logger.Info("Quote computed", "matched", len(exams), "total", fmt.Sprintf("%.2f", total))

	return &Result{
		Exams:         exams,
		Total:         total,
		ExtractedText: extraction.Text,
	}, nil
}

// validate rejects uploads before any payload is read or any model is called
func (s *Service) validate(upload *Upload) error {
	if upload == nil || upload.Body == nil {
		return &InvalidInputError{Message: msgNoImage}
	}
	if !strings.HasPrefix(normalizeContentType(upload.ContentType), "image/") {
		return &InvalidInputError{Message: msgNotAnImage, Err: fmt.Errorf("content type %q", upload.ContentType)}
	}
	if upload.Size > s.maxImageSize {
		return s.tooLarge(upload.Size)
	}
	return nil
}

// readImage reads at most one byte past the limit so that a wrong declared size is still caught
func (s *Service) readImage(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, s.maxImageSize+1))
	if err != nil {
		return nil, &InternalError{Message: msgImageProcess, Err: fmt.Errorf("reading image: %w", err)}
	}
	if int64(len(data)) > s.maxImageSize {
		return nil, s.tooLarge(int64(len(data)))
	}
	return data, nil
}

func (s *Service) tooLarge(size int64) error {
	return &InvalidInputError{
		Message: tooLargeMessage(s.maxImageSize),
		Err:     fmt.Errorf("image has %d bytes, limit is %d", size, s.maxImageSize),
	}
}

// extract calls the extractor once, without retries, and classifies its failure
func (s *Service) extract(ctx context.Context, data []byte, contentType string) (*scanning.Extraction, error) {
	if s.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.extractTimeout)
		defer cancel()
	}

	extraction, err := s.extractor.ExtractExams(ctx, data, contentType)
	if err != nil {
		return nil, classifyExtractionError(err)
	}
	if extraction == nil {
		extraction = &scanning.Extraction{}
	}
	if len(extraction.Mnemonics) == 0 && scanning.CleanText(extraction.Text) == "" {
		loggerFrom(ctx).Warn("Extracted text is empty")
		extraction.Text = scanning.NoExamsIdentified
	}
	return extraction, nil
}

func classifyExtractionError(err error) error {
	if errors.Is(err, scanning.ErrImageDecode) {
		return &InternalError{Message: msgImageProcess, Err: err}
	}

	msg := strings.ToLower(err.Error())
	if errors.Is(err, scanning.ErrQuotaExceeded) || strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
		return &QuotaExceededError{Err: err}
	}
	return &ExtractionError{Err: err}
}

func normalizeContentType(contentType string) string {
	return strings.ToLower(strings.TrimSpace(contentType))
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf(msgImageTooLarge, limit>>20)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
