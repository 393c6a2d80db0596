// Package verify checks a produced results file for passage-number gaps.
// Operators run it before handing the artifacts to ingestion: a lesson whose
// numeric passage keys jump from 1 to 3 means passage 2 was never matched.
package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/minsucho/passagetrace/internal/model"
)

// Gap reports the missing passage numbers of one lesson.
type Gap struct {
	TopKey  string
	Lesson  string
	Missing []string
}

// Load reads a results JSON artifact back into a ResultMap.
func Load(path string) (model.ResultMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var m model.ResultMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return m, nil
}

// Check scans every lesson with numeric passage keys and returns the gaps in
// 1..max. Top-level keys are filtered by the configured keyword lists; with
// an empty require list every key passes the first filter.
func Check(m model.ResultMap, cfg model.VerifyConfig) []Gap {
	var gaps []Gap
	for topKey, lessons := range m {
		if !keepTopKey(topKey, cfg) {
			continue
		}
		for lesson, passages := range lessons {
			missing := missingNumbers(passages)
			if len(missing) > 0 {
				gaps = append(gaps, Gap{TopKey: topKey, Lesson: lesson, Missing: missing})
			}
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].TopKey != gaps[j].TopKey {
			return gaps[i].TopKey < gaps[j].TopKey
		}
		return gaps[i].Lesson < gaps[j].Lesson
	})
	return gaps
}

func keepTopKey(key string, cfg model.VerifyConfig) bool {
	if len(cfg.RequireKeywords) > 0 {
		found := false
		for _, kw := range cfg.RequireKeywords {
			if strings.Contains(key, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, kw := range cfg.ExcludeKeywords {
		if strings.Contains(key, kw) {
			return false
		}
	}
	return true
}

// missingNumbers returns the gaps among the numeric keys of one lesson, as
// strings, in ascending order. Non-numeric keys are ignored; a lesson
// without numeric keys has no gaps.
func missingNumbers(passages map[string]string) []string {
	max := 0
	present := make(map[int]bool)
	for key := range passages {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		present[n] = true
		if n > max {
			max = n
		}
	}
	if len(present) == 0 {
		return nil
	}

	var missing []string
	for i := 1; i <= max; i++ {
		if !present[i] {
			missing = append(missing, strconv.Itoa(i))
		}
	}
	return missing
}
