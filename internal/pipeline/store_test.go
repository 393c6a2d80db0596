package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/minsucho/passagetrace/internal/model"
)

func TestResultStore_Save(t *testing.T) {
	dir := t.TempDir()
	resultsPath := filepath.Join(dir, "out", "results.json")
	errorsPath := filepath.Join(dir, "out", "error_log.json")

	results := model.ResultMap{"G2": {"L1": {"1": "The cat sat on the mat."}}}
	errLog := []model.ErrorEntry{{Document: "doc.pdf", Sentence: "bad one here now please", Error: "attempts exhausted"}}

	store := NewResultStore(resultsPath, errorsPath)
	if err := store.Save(results, errLog); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var gotResults model.ResultMap
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if err := json.Unmarshal(data, &gotResults); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if gotResults["G2"]["L1"]["1"] != "The cat sat on the mat." {
		t.Errorf("unexpected decoded results: %v", gotResults)
	}

	var gotErrs []model.ErrorEntry
	data, err = os.ReadFile(errorsPath)
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	if err := json.Unmarshal(data, &gotErrs); err != nil {
		t.Fatalf("decode error log: %v", err)
	}
	if len(gotErrs) != 1 || gotErrs[0].Document != "doc.pdf" {
		t.Errorf("unexpected decoded error log: %v", gotErrs)
	}
}

func TestResultStore_SaveEmptyRun(t *testing.T) {
	dir := t.TempDir()
	resultsPath := filepath.Join(dir, "results.json")
	errorsPath := filepath.Join(dir, "error_log.json")

	store := NewResultStore(resultsPath, errorsPath)
	if err := store.Save(nil, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Both artifacts exist even for an empty run.
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if string(data) != "{}\n" {
		t.Errorf("expected empty object, got %q", data)
	}

	data, err = os.ReadFile(errorsPath)
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("expected empty array, got %q", data)
	}
}
