package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minsucho/passagetrace/internal/model"
)

// ResultStore persists the two run artifacts: the merged result map and the
// error log. A completed run always writes both files, even when empty, so
// downstream ingestion never has to guess whether a run finished.
type ResultStore struct {
	resultsPath string
	errorsPath  string
}

// NewResultStore creates a store writing to the given paths.
func NewResultStore(resultsPath, errorsPath string) *ResultStore {
	return &ResultStore{
		resultsPath: resultsPath,
		errorsPath:  errorsPath,
	}
}

// Save writes both artifacts as pretty-printed JSON.
func (s *ResultStore) Save(results model.ResultMap, errLog []model.ErrorEntry) error {
	if results == nil {
		results = make(model.ResultMap)
	}
	if errLog == nil {
		errLog = []model.ErrorEntry{}
	}

	if err := writeJSON(s.resultsPath, results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := writeJSON(s.errorsPath, errLog); err != nil {
		return fmt.Errorf("write error log: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
