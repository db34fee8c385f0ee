package quote

import (
	"strings"

	"github.com/zombor/lab-quote/internal/catalog"
)

// MatchExams returns the exams whose description, mnemonic or any alias occurs
// in text. Matching is a case-insensitive substring search: a short term
// matches anywhere, including inside unrelated words. The result follows
// catalog order, and each mnemonic appears at most once.
func MatchExams(text string, exams []catalog.Exam) []catalog.Exam {
	matched := make([]catalog.Exam, 0)
	normalized := strings.ToLower(text)
	if strings.TrimSpace(normalized) == "" {
		return matched
	}

	seen := make(map[string]struct{})
	for _, exam := range exams {
		if _, ok := seen[exam.Mnemonic]; ok {
			continue
		}
		for _, term := range searchTerms(exam) {
			if term != "" && strings.Contains(normalized, term) {
				matched = append(matched, exam)
				seen[exam.Mnemonic] = struct{}{}
				break
			}
		}
	}
	return matched
}

// searchTerms lists the terms tried for an exam, in order.
// Aliases are lower-cased when the catalog is built.
func searchTerms(exam catalog.Exam) []string {
	terms := make([]string, 0, 2+len(exam.Aliases))
	terms = append(terms, strings.ToLower(exam.Description), strings.ToLower(exam.Mnemonic))
	return append(terms, exam.Aliases...)
}
