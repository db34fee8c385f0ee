package quote

import (
	"io"
	"math"

	"github.com/zombor/lab-quote/internal/catalog"
)

// Result is the priced list of exams found on a requisition slip
type Result struct {
	Exams         []catalog.Exam `json:"exams"`
	Total         float64        `json:"total"`
	ExtractedText string         `json:"extractedText,omitempty"`
}

// Upload is an image submitted for analysis
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Total sums the prices of exams. Prices are added in cents so that
// two-decimal amounts produce an exact total.
func Total(exams []catalog.Exam) float64 {
	var cents int64
	for _, exam := range exams {
		cents += int64(math.Round(exam.Price * 100))
	}
	return float64(cents) / 100
}
