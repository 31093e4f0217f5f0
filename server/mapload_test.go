package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arena-server/arena"
)

func writeMap(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "small.map")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadMapRowsSkipsComments(t *testing.T) {
	path := writeMap(t, "; a small map\r\nxxxx\r\nx1 x\r\n;\r\nxxxx\r\n\r\n")
	rows, err := readMapRows(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(rows, "|") != "xxxx|x1 x|xxxx" {
		t.Errorf("unexpected rows %q", rows)
	}
}

func TestReadMapRowsEmpty(t *testing.T) {
	path := writeMap(t, "; nothing here\n\n")
	if _, err := readMapRows(path); !errors.Is(err, ErrEmptyMapFile) {
		t.Errorf("expected ErrEmptyMapFile, got %v", err)
	}
}

func TestLoadMapEngines(t *testing.T) {
	rules := arena.DefaultRules()
	cases := map[string]string{
		EngineAuto:    EnginePolygon,
		EnginePolygon: EnginePolygon,
		EngineGrid:    EngineGrid,
	}
	for asked, want := range cases {
		m, err := LoadMap("", asked, rules, nil)
		if err != nil {
			t.Fatalf("%s: %v", asked, err)
		}
		if m.Engine != want || m.Name != builtinMapName || m.CacheHit {
			t.Errorf("%s: unexpected build %+v", asked, m)
		}
		if (want == EnginePolygon) != (m.snapshot != nil) {
			t.Errorf("%s: only polygon builds carry an index", asked)
		}
	}
}

func TestLoadMapFromFile(t *testing.T) {
	path := writeMap(t, "xxxxxx\nx1  2x\nxxxxxx\n")
	m, err := LoadMap(path, EngineGrid, arena.DefaultRules(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "small.map" || m.Grid.Bounds().Width == 0 {
		t.Errorf("unexpected build %+v", m)
	}
}

func TestLoadMapMissingFile(t *testing.T) {
	_, err := LoadMap(filepath.Join(t.TempDir(), "gone.map"), EngineGrid, arena.DefaultRules(), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestIndexCacheHit(t *testing.T) {
	dir := t.TempDir()
	cache := NewIndexCache(dir, Log)
	rules := arena.DefaultRules()

	first, err := LoadMap("", EnginePolygon, rules, cache)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("an empty cache cannot hit")
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*.idx"))
	if len(files) != 1 {
		t.Fatalf("expected one cached index, got %v", files)
	}
	if tmp, _ := filepath.Glob(filepath.Join(dir, "*.tmp")); len(tmp) != 0 {
		t.Errorf("temporary files left behind: %v", tmp)
	}

	second, err := LoadMap("", EnginePolygon, rules, cache)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second load should come from the cache")
	}
	if string(first.snapshot) != string(second.snapshot) {
		t.Error("cached index differs from the built one")
	}
}

func TestIndexCacheDiscardsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewIndexCache(dir, Log)
	rules := arena.DefaultRules()
	if _, err := LoadMap("", EnginePolygon, rules, cache); err != nil {
		t.Fatal(err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*.idx"))
	if err := os.WriteFile(files[0], []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadMap("", EnginePolygon, rules, cache)
	if err != nil {
		t.Fatalf("a bad cache file must not fail the load: %v", err)
	}
	if m.CacheHit {
		t.Error("corrupt file reported as a hit")
	}
}
