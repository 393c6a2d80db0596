package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/minsucho/passagetrace/internal/model"
)

// SentenceExtractor turns one PDF document into a cleaned sequence of
// searchable sentences.
type SentenceExtractor struct {
	strip     *regexp.Regexp
	minSpaces int
}

var (
	splitPattern = regexp.MustCompile(`[.!?\n]+\s*`)
	allowPattern = regexp.MustCompile(`^[A-Za-z\s.,':"]+$`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	)
)

// NewSentenceExtractor creates an extractor from configuration.
func NewSentenceExtractor(cfg model.ExtractConfig) (*SentenceExtractor, error) {
	strip, err := regexp.Compile(cfg.StripPattern)
	if err != nil {
		return nil, fmt.Errorf("compile strip pattern: %w", err)
	}
	return &SentenceExtractor{
		strip:     strip,
		minSpaces: cfg.MinSpaces,
	}, nil
}

// Sentences extracts all candidate sentences from the PDF at path, in page
// order then in-page split order.
func (e *SentenceExtractor) Sentences(path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sentences []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			// Pages yielding no text are skipped, not fatal.
			continue
		}
		sentences = append(sentences, e.FromText(text)...)
	}
	return sentences, nil
}

// FromText applies the cleaning pipeline to the raw text of one page.
func (e *SentenceExtractor) FromText(text string) []string {
	text = quoteReplacer.Replace(text)
	text = e.strip.ReplaceAllString(text, "")

	var out []string
	for _, s := range splitPattern.Split(text, -1) {
		s = strings.TrimSpace(s)
		// Leading labels such as "Q:" are stripped: keep only the text
		// after the first colon.
		if i := strings.Index(s, ":"); i >= 0 {
			s = strings.TrimSpace(s[i+1:])
		}
		if s == "" || strings.Count(s, " ") <= e.minSpaces {
			continue
		}
		if !allowPattern.MatchString(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
