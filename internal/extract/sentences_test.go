package extract

import (
	"reflect"
	"testing"

	"github.com/minsucho/passagetrace/internal/model"
)

func newTestExtractor(t *testing.T) *SentenceExtractor {
	t.Helper()
	e, err := NewSentenceExtractor(model.DefaultConfig().Extract)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return e
}

func TestSentenceExtractor_Basic(t *testing.T) {
	e := newTestExtractor(t)

	text := "The cat sat on the mat. A second sentence appears right here now."
	got := e.FromText(text)

	want := []string{
		"The cat sat on the mat",
		"A second sentence appears right here now",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSentenceExtractor_ColonTruncation(t *testing.T) {
	e := newTestExtractor(t)

	got := e.FromText("Q: The cat sat on the mat today.\n")
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %d: %v", len(got), got)
	}
	if got[0] != "The cat sat on the mat today" {
		t.Errorf("expected text after first colon only, got %q", got[0])
	}
}

func TestSentenceExtractor_MinimumLength(t *testing.T) {
	e := newTestExtractor(t)

	// Three or fewer spaces: dropped.
	if got := e.FromText("Hi there little cat."); len(got) != 0 {
		t.Errorf("expected short candidate dropped, got %v", got)
	}

	// Four or more spaces: kept.
	if got := e.FromText("The cat sat on the mat."); len(got) != 1 {
		t.Errorf("expected long candidate kept, got %v", got)
	}
}

func TestSentenceExtractor_AllowList(t *testing.T) {
	e := newTestExtractor(t)

	got := e.FromText("Der Hund lief über die große Wiese dort. The quick brown fox jumps over the dog.")
	if len(got) != 1 {
		t.Fatalf("expected only the English sentence, got %v", got)
	}
	for _, r := range got[0] {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r == ' ', r == '\t', r == '.', r == ',', r == '\'', r == '"', r == ':':
		default:
			t.Errorf("character %q violates allow-list in %q", r, got[0])
		}
	}
}

func TestSentenceExtractor_StripsAnnotationScript(t *testing.T) {
	e := newTestExtractor(t)

	// Hangul runs are removed before splitting; the remaining English
	// sentence survives.
	got := e.FromText("그는 말했다The cat sat on the big mat.")
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %v", got)
	}
	if got[0] != "The cat sat on the big mat" {
		t.Errorf("expected annotation script stripped, got %q", got[0])
	}
}

func TestSentenceExtractor_CurlyQuotes(t *testing.T) {
	e := newTestExtractor(t)

	got := e.FromText("“The cat sat on the mat,” she said loudly.")
	if len(got) != 1 {
		t.Fatalf("expected 1 sentence, got %v", got)
	}
	if got[0] != `"The cat sat on the mat," she said loudly` {
		t.Errorf("expected straight quotes, got %q", got[0])
	}
}

func TestSentenceExtractor_Idempotent(t *testing.T) {
	e := newTestExtractor(t)

	text := "Q: The cat sat on the mat.\nShe watched the birds from the window. 창밖을 보았다\n"
	first := e.FromText(text)
	second := e.FromText(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output on repeated extraction: %v vs %v", first, second)
	}
}
