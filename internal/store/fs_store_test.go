package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return store, tempDir
}

// createTestRecord creates a record with test data.
func createTestRecord(runID string) *RunRecord {
	return &RunRecord{
		RunID: runID,
		Config: RunConfig{
			Objective: "sphere",
			Engine:    "mcs",
			N:         2,
			SMax:      20,
			Lower:     []float64{-1, -1},
			Upper:     []float64{1, 1},
			MaxSweeps: 100,
			MaxEvals:  1000,
			Local:     10,
			Gamma:     1e-9,
		},
		BestPoint:    []float64{0, 0},
		BestValue:    0,
		MinimaPoints: [][]float64{{0, 0}},
		MinimaValues: []float64{0},
		NCall:        120,
		NCloc:        30,
		Flag:         "NormalShutdown",
		Sweeps:       7,
		Duration:     15 * time.Millisecond,
		Timestamp:    time.Now(),
	}
}

func TestNewFSStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store.BaseDir() != dir {
		t.Errorf("Expected base dir %s, got %s", dir, store.BaseDir())
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	store, tempDir := setupTestStore(t)
	record := createTestRecord("run-1")

	if err := store.SaveRun(record); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", "run-1", "record.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Record file was not created at %s", expectedPath)
	}
	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file was left behind")
	}

	loaded, err := store.LoadRun("run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.BestValue != record.BestValue || loaded.NCall != record.NCall || loaded.Flag != record.Flag {
		t.Errorf("Loaded record differs: %+v", loaded)
	}
	if len(loaded.MinimaPoints) != 1 || len(loaded.Config.Lower) != 2 {
		t.Errorf("Expected nested slices to survive, got %+v", loaded)
	}
	if !loaded.Timestamp.Equal(record.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", record.Timestamp, loaded.Timestamp)
	}
}

func TestSaveRun_Invalid(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveRun(nil); err == nil {
		t.Error("Expected error for nil record")
	}

	record := createTestRecord("")
	if err := store.SaveRun(record); err == nil {
		t.Error("Expected error for empty run ID")
	}
}

func TestSaveRun_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	record := createTestRecord("run-1")
	if err := store.SaveRun(record); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	record.BestValue = -1
	if err := store.SaveRun(record); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadRun("run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.BestValue != -1 {
		t.Errorf("Expected overwritten best value -1, got %v", loaded.BestValue)
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.LoadRun(""); err == nil {
		t.Error("Expected error for empty run ID")
	}
}

func TestListRuns_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected no runs, got %d", len(infos))
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	store, tempDir := setupTestStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		record := createTestRecord(fmt.Sprintf("run-%d", i))
		record.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveRun(record); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	// A directory without a record and a corrupted record are skipped
	if err := os.MkdirAll(filepath.Join(tempDir, "runs", "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(tempDir, "runs", "corrupt")
	if err := os.MkdirAll(corrupt, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(corrupt, "record.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}
	if infos[0].RunID != "run-2" || infos[2].RunID != "run-0" {
		t.Errorf("Expected newest first, got %s ... %s", infos[0].RunID, infos[2].RunID)
	}
	if infos[0].Objective != "sphere" || infos[0].N != 2 {
		t.Errorf("Unexpected info %+v", infos[0])
	}
}

func TestDeleteRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	if err := store.SaveRun(createTestRecord("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	tw, err := NewTraceWriter(tempDir, "run-1")
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Close()

	if err := store.DeleteRun("run-1"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := os.Stat(store.RunDir("run-1")); !os.IsNotExist(err) {
		t.Error("Run directory still exists")
	}

	if err := store.DeleteRun("run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if err := store.DeleteRun(""); err == nil {
		t.Error("Expected error for empty run ID")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.SaveRun(createTestRecord(fmt.Sprintf("run-%d", i))); err != nil {
				t.Errorf("SaveRun %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 10 {
		t.Errorf("Expected 10 runs, got %d", len(infos))
	}
}

func TestRunRecordValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *RunRecord)
		field  string
	}{
		{"valid", func(r *RunRecord) {}, ""},
		{"empty id", func(r *RunRecord) { r.RunID = "" }, "RunID"},
		{"zero n", func(r *RunRecord) { r.Config.N = 0 }, "Config.N"},
		{"short best point", func(r *RunRecord) { r.BestPoint = []float64{1} }, "BestPoint"},
		{"minima mismatch", func(r *RunRecord) { r.MinimaValues = nil }, "MinimaValues"},
		{"short minimum", func(r *RunRecord) { r.MinimaPoints = [][]float64{{1}} }, "MinimaPoints"},
		{"ncloc above ncall", func(r *RunRecord) { r.NCloc = r.NCall + 1 }, "NCloc"},
		{"zero timestamp", func(r *RunRecord) { r.Timestamp = time.Time{} }, "Timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := createTestRecord("run-1")
			tt.modify(record)
			err := record.Validate()

			if tt.field == "" {
				if err != nil {
					t.Errorf("Expected valid record, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Error("Expected distinct run IDs")
	}
	if len(a) != 36 {
		t.Errorf("Expected UUID string, got %q", a)
	}
}
