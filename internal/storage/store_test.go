package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/binrain/internal/rain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleTicks() []rain.TickInfo {
	return []rain.TickInfo{
		{Index: 0, Columns: 2, Glyphs: []int{0, 1}, MeanDepth: 1.75, Dark: true},
		{Index: 1, Columns: 2, Resets: 1, Glyphs: []int{1, 1}, MeanDepth: 1.5, Dark: false},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t)

	meta := NewMeta("test", rain.DefaultConfig(), 28, 140, "gif", true)
	meta.Metrics = map[string]float64{"reset_rate": 0.25}

	runID, err := st.Save(meta, sampleTicks(), []byte("GIF89a"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", got.Name)
	}
	if got.Seed != 1 || got.GlyphSize != 14 || got.DelayMS != 100 {
		t.Errorf("config not persisted: %+v", got)
	}
	if got.Theme != "dark" || got.Ticks != 2 {
		t.Errorf("unexpected theme/ticks: %s/%d", got.Theme, got.Ticks)
	}
	if got.Metrics["reset_rate"] != 0.25 {
		t.Errorf("expected reset_rate 0.25, got %f", got.Metrics["reset_rate"])
	}

	rows, err := st.LoadTicks(runID)
	if err != nil {
		t.Fatalf("load ticks failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Ones != 1 || rows[1].Ones != 1 || rows[1].Resets != 1 {
		t.Errorf("unexpected rows: %+v", rows)
	}
	if !rows[0].Dark || rows[1].Dark {
		t.Errorf("theme column wrong: %+v", rows)
	}
	if rows[0].MeanDepth != 1.75 {
		t.Errorf("mean depth = %f", rows[0].MeanDepth)
	}

	path, err := st.ArtifactPath(runID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "GIF89a" {
		t.Errorf("artifact round trip failed: %q %v", data, err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	st := newStore(t)

	first, err := st.Save(NewMeta("a", rain.DefaultConfig(), 14, 14, "png", true), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(NewMeta("b", rain.DefaultConfig(), 14, 14, "png", false), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreDelete(t *testing.T) {
	st := newStore(t)

	id, err := st.Save(NewMeta("gone", rain.DefaultConfig(), 14, 14, "svg", true), sampleTicks(), []byte("<svg/>"))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := st.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after delete: %v", err)
	}
	if err := st.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
	runs, _ := st.List()
	if len(runs) != 0 {
		t.Errorf("expected empty list, got %d", len(runs))
	}
}

func TestStoreMissing(t *testing.T) {
	st := newStore(t)

	if _, err := st.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: %v", err)
	}
	if _, err := st.LoadTicks("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadTicks: %v", err)
	}
	if _, err := st.ArtifactPath("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ArtifactPath: %v", err)
	}
}

func TestStoreRequiresInit(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Save(RecordingMeta{}, nil, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Save: %v", err)
	}
	if _, err := st.List(); !errors.Is(err, ErrClosed) {
		t.Errorf("List: %v", err)
	}
}

func TestStoreOnesColumnCountsDrawnOnes(t *testing.T) {
	st := newStore(t)

	ticks := []rain.TickInfo{
		{Index: 0, Columns: 10, Glyphs: []int{4, 6}, MeanDepth: 1.75},
		{Index: 1, Columns: 10, Glyphs: []int{10, 0}, MeanDepth: 2.5},
		{Index: 2, Columns: 0},
	}
	id, err := st.Save(NewMeta("counts", rain.DefaultConfig(), 140, 140, "png", true), ticks, nil)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := st.LoadTicks(id)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{6, 0, 0}
	for i, r := range rows {
		if r.Ones != want[i] {
			t.Errorf("tick %d: ones = %d, want %d", i, r.Ones, want[i])
		}
	}
}

func TestStoreRejectsPathNames(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	for _, name := range []string{"../x", "a/b", `a\b`, ".."} {
		if _, err := st.Save(NewMeta(name, rain.DefaultConfig(), 14, 14, "png", true), nil, nil); !errors.Is(err, ErrBadName) {
			t.Errorf("%q: expected ErrBadName, got %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "x")); err == nil {
		t.Error("recording written outside the data directory")
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no recordings, got %d", len(runs))
	}
}
