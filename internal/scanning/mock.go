package scanning

import "context"

// MockText is returned as the extracted text when no model is configured
const MockText = "API Key não configurada - usando dados de exemplo"

// MockMnemonics are the sample exams returned by the mock extractor
var MockMnemonics = []string{"HEMOGRAMA", "GLICOSE", "COL TOTAL", "HDL", "LDL"}

// Mock implements the Extractor interface with a fixed sample result.
// It never reads the image or contacts any service.
type Mock struct{}

// NewMock creates a new Mock Extractor
func NewMock() *Mock {
	return &Mock{}
}

// Name returns "mock"
func (m *Mock) Name() string {
	return "mock"
}

// ExtractExams returns the sample exams
func (m *Mock) ExtractExams(ctx context.Context, imageData []byte, contentType string) (*Extraction, error) {
	mnemonics := make([]string, len(MockMnemonics))
	copy(mnemonics, MockMnemonics)
	return &Extraction{Text: MockText, Mnemonics: mnemonics}, nil
}

// Close is a no-op
func (m *Mock) Close() error {
	return nil
}
