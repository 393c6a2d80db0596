package model

// MatchRecord is one provenance+text result extracted from a search response.
// Key1/Key2/Key3 are the free-text labels parsed from the provenance string
// (edition/publisher, unit, passage number); Passage is the canonical English
// text for that triple.
type MatchRecord struct {
	Key1    string `json:"key1"`
	Key2    string `json:"key2"`
	Key3    string `json:"key3"`
	Passage string `json:"passage"`
}

// ResultMap is the three-level aggregate mapping produced by a run:
// key1 → key2 → key3 → passage text. On key collision the most recently
// written value wins; collisions across documents are expected.
type ResultMap map[string]map[string]map[string]string

// Put inserts one record, creating intermediate maps as needed.
func (m ResultMap) Put(rec MatchRecord) {
	inner, ok := m[rec.Key1]
	if !ok {
		inner = make(map[string]map[string]string)
		m[rec.Key1] = inner
	}
	leaf, ok := inner[rec.Key2]
	if !ok {
		leaf = make(map[string]string)
		inner[rec.Key2] = leaf
	}
	leaf[rec.Key3] = rec.Passage
}

// Merge deep-merges other into m. Where both sides hold a subtree under the
// same key the subtrees are merged; otherwise other's leaf overwrites m's
// (last-merged-wins).
func (m ResultMap) Merge(other ResultMap) {
	for k1, inner := range other {
		dst, ok := m[k1]
		if !ok {
			m[k1] = inner
			continue
		}
		for k2, leaf := range inner {
			dstLeaf, ok := dst[k2]
			if !ok {
				dst[k2] = leaf
				continue
			}
			for k3, text := range leaf {
				dstLeaf[k3] = text
			}
		}
	}
}

// ErrorEntry records one unrecoverable per-sentence (or whole-document)
// failure. Entries are append-only and never deduplicated.
type ErrorEntry struct {
	Document string `json:"documentId"`
	Sentence string `json:"sentence"`
	Error    string `json:"error"`
}

// PartialResult is one document's local results before merge. It is owned
// exclusively by the worker that produced it until handed to the
// orchestrator.
type PartialResult struct {
	Document  string
	Results   ResultMap
	Errors    []ErrorEntry
	Sentences int // sentences extracted from this document
}

// NewPartialResult returns an empty partial for the given document path.
func NewPartialResult(document string) PartialResult {
	return PartialResult{
		Document: document,
		Results:  make(ResultMap),
	}
}
