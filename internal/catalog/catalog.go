package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

//go:embed exams.json
var defaultCatalog []byte

// DefaultSource names the catalog compiled into the binary
const DefaultSource = "embedded:exams.json"

// Exam is a single laboratory exam offered at a fixed price
type Exam struct {
	Code        string   `json:"codigo"`
	Mnemonic    string   `json:"mnemonico"`
	Description string   `json:"descricao"`
	Material    string   `json:"material"`
	Sector      string   `json:"setor,omitempty"`
	Turnaround  string   `json:"prazo"`
	Price       float64  `json:"preco"`
	Aliases     []string `json:"aliases"`
}

// LoadError reports a catalog that could not be read or is malformed
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading catalog %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Catalog is the immutable, ordered set of exams available for matching.
// It is safe for concurrent use.
type Catalog struct {
	exams      []Exam
	byMnemonic map[string]int
}

// Load reads a catalog from a JSON file. An empty path loads the embedded default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(DefaultSource, defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return Parse(path, data)
}

// Parse builds a catalog from a JSON array of exams
func Parse(source string, data []byte) (*Catalog, error) {
	var exams []Exam
	if err := json.Unmarshal(data, &exams); err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("decoding json: %w", err)}
	}

	c, err := New(exams)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	slog.Info("Catalog loaded", "source", source, "exams", c.Len())
	return c, nil
}

// New validates and normalizes exams into a catalog. The input slice is not retained.
func New(exams []Exam) (*Catalog, error) {
	c := &Catalog{
		exams:      make([]Exam, 0, len(exams)),
		byMnemonic: make(map[string]int, len(exams)),
	}

	for i, exam := range exams {
		exam.Mnemonic = strings.TrimSpace(exam.Mnemonic)
		exam.Description = strings.TrimSpace(exam.Description)

		if exam.Mnemonic == "" {
			return nil, fmt.Errorf("exam %d: mnemonic is required", i)
		}
		if exam.Description == "" {
			return nil, fmt.Errorf("exam %d (%s): description is required", i, exam.Mnemonic)
		}
		if exam.Price < 0 {
			return nil, fmt.Errorf("exam %d (%s): negative price %.2f", i, exam.Mnemonic, exam.Price)
		}

		exam.Aliases = normalizeAliases(exam.Aliases)

		if prev, ok := c.byMnemonic[exam.Mnemonic]; ok {
			slog.Warn("Duplicate mnemonic in catalog", "mnemonic", exam.Mnemonic, "first", prev, "duplicate", i)
		}
		// last entry wins for lookups by mnemonic
		c.byMnemonic[exam.Mnemonic] = len(c.exams)
		c.exams = append(c.exams, exam)
	}

	return c, nil
}

// clone copies exam so callers cannot reach the catalog's alias slice
func (e Exam) clone() Exam {
	e.Aliases = slices.Clone(e.Aliases)
	return e
}

// normalizeAliases lower-cases and trims aliases, dropping empty ones
func normalizeAliases(aliases []string) []string {
	out := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

// Exams returns the catalog entries in catalog order
func (c *Catalog) Exams() []Exam {
	out := make([]Exam, len(c.exams))
	for i, exam := range c.exams {
		out[i] = exam.clone()
	}
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.exams)
}

// Lookup finds an exam by its exact mnemonic
func (c *Catalog) Lookup(mnemonic string) (Exam, bool) {
	i, ok := c.byMnemonic[mnemonic]
	if !ok {
		return Exam{}, false
	}
	return c.exams[i].clone(), true
}

// SelectByMnemonic returns the exams named by mnemonics, in the given order.
// Unknown mnemonics are skipped.
func (c *Catalog) SelectByMnemonic(mnemonics []string) []Exam {
	out := make([]Exam, 0, len(mnemonics))
	for _, m := range mnemonics {
		if exam, ok := c.Lookup(m); ok {
			out = append(out, exam)
		}
	}
	return out
}
