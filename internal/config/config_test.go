package config

import (
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DefaultTopK != 10 {
		t.Errorf("expected default_top_k 10, got %d", cfg.DefaultTopK)
	}
	if cfg.Selector != "heap" {
		t.Errorf("expected selector heap, got %s", cfg.Selector)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "does-not-exist.json"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load on missing file should not error, got %v", err)
	}
	if got := m.Get(); got != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	m := NewManager(path)
	if err := m.Update(map[string]interface{}{
		"index_dir":     "/data/idx",
		"default_top_k": 25,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	m2 := NewManager(path)
	if err := m2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := m2.Get()
	if got.IndexDir != "/data/idx" || got.DefaultTopK != 25 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestUpdateRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "config.json"))

	cases := []map[string]interface{}{
		{"default_top_k": 0},
		{"default_top_k": 20000},
		{"page_shift": -1},
		{"selector": "bogus"},
		{"index_dir": "../../etc/passwd"},
		{"unknown_key": 1},
	}
	for _, fields := range cases {
		if err := m.Update(fields); err == nil {
			t.Errorf("expected Update(%v) to fail", fields)
		}
	}

	// A rejected update must not have mutated the config.
	if got := m.Get(); got != DefaultConfig() {
		t.Errorf("rejected update mutated config: %+v", got)
	}
}

func TestUpdatePartialFailureLeavesConfigUnchanged(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "config.json"))

	err := m.Update(map[string]interface{}{
		"default_top_k": 50,
		"selector":      "not-valid",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := m.Get(); got.DefaultTopK != 10 {
		t.Errorf("expected default_top_k untouched at 10, got %d", got.DefaultTopK)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")
	m := NewManager(path)
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to exist: %v", err)
	}
}

// TestUpdateTopKWithinRangeAlwaysAccepted exercises applyUpdate's default_top_k
// validation across the full legal range.
func TestUpdateTopKWithinRangeAlwaysAccepted(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(1, 10000).Draw(rt, "top_k")
		m := NewManager(filepath.Join(dir, "config.json"))
		if err := m.Update(map[string]interface{}{"default_top_k": k}); err != nil {
			rt.Fatalf("Update rejected in-range top_k %d: %v", k, err)
		}
		if got := m.Get().DefaultTopK; got != k {
			rt.Fatalf("expected DefaultTopK %d, got %d", k, got)
		}
	})
}
