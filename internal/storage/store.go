package storage

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/binrain/internal/rain"
)

var (
	ErrNotFound = errors.New("storage: recording not found")
	ErrClosed   = errors.New("storage: store not initialised")
	ErrBadName  = errors.New("storage: recording name must not contain path separators")
)

const schema = `
CREATE TABLE IF NOT EXISTS recordings (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	created INTEGER NOT NULL,
	width   INTEGER NOT NULL,
	height  INTEGER NOT NULL,
	ticks   INTEGER NOT NULL,
	format  TEXT NOT NULL,
	theme   TEXT NOT NULL,
	seed    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS recordings_created ON recordings(created);
`

type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the data directory and opens the SQLite index inside it.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", filepath.Join(s.baseDir, "index.db"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("create schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type RecordingMeta struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Timestamp        time.Time          `json:"timestamp"`
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	Ticks            int                `json:"ticks"`
	Format           string             `json:"format"`
	Theme            string             `json:"theme"`
	Seed             int64              `json:"seed"`
	GlyphSize        int                `json:"glyph_size"`
	Increment        float64            `json:"increment"`
	ResetProbability float64            `json:"reset_probability"`
	DelayMS          int64              `json:"delay_ms"`
	Metrics          map[string]float64 `json:"metrics"`
}

// TickRow is one line of ticks.csv.
type TickRow struct {
	Index     int
	Columns   int
	Resets    int
	MeanDepth float64
	Ones      int
	Dark      bool
}

// NewMeta fills the configuration fields of a recording's metadata.
func NewMeta(name string, cfg rain.Config, width, height int, format string, dark bool) RecordingMeta {
	return RecordingMeta{
		Name:             name,
		Width:            width,
		Height:           height,
		Format:           format,
		Theme:            rain.ThemeFor(dark).Name,
		Seed:             cfg.Seed,
		GlyphSize:        cfg.GlyphSize,
		Increment:        cfg.Increment,
		ResetProbability: cfg.ResetProbability,
		DelayMS:          cfg.Delay.Milliseconds(),
	}
}

// Save writes metadata.json, ticks.csv and the artifact into a new recording
// directory and indexes it. The assigned id is returned.
func (s *Store) Save(meta RecordingMeta, ticks []rain.TickInfo, artifact []byte) (string, error) {
	if s.db == nil {
		return "", ErrClosed
	}
	if meta.Name == "" {
		meta.Name = "rain"
	}
	if strings.ContainsAny(meta.Name, `/\`) || meta.Name == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadName, meta.Name)
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Ticks = len(ticks)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMeta(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTicks(filepath.Join(runDir, "ticks.csv"), ticks); err != nil {
		return "", err
	}
	if len(artifact) > 0 {
		if err := os.WriteFile(filepath.Join(runDir, artifactName(meta.Format)), artifact, 0644); err != nil {
			return "", err
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO recordings (id, name, created, width, height, ticks, format, theme, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, now.UnixNano(), meta.Width, meta.Height, meta.Ticks, meta.Format, meta.Theme, meta.Seed,
	)
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("index recording: %w", err)
	}
	return meta.ID, nil
}

func writeMeta(path string, meta RecordingMeta) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTicks(path string, ticks []rain.TickInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tick", "columns", "resets", "mean_depth", "ones", "dark"}); err != nil {
		return err
	}
	for _, t := range ticks {
		// The last alphabet entry is "1" for binary rain.
		ones := 0
		if len(t.Glyphs) > 0 {
			ones = t.Glyphs[len(t.Glyphs)-1]
		}
		row := []string{
			strconv.Itoa(t.Index),
			strconv.Itoa(t.Columns),
			strconv.Itoa(t.Resets),
			strconv.FormatFloat(t.MeanDepth, 'f', 6, 64),
			strconv.Itoa(ones),
			strconv.FormatBool(t.Dark),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func artifactName(format string) string {
	if format == "" {
		format = "bin"
	}
	return "rain." + format
}

// List returns every indexed recording, newest first.
func (s *Store) List() ([]RecordingMeta, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.Query(`SELECT id FROM recordings ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	runs := make([]RecordingMeta, 0, len(ids))
	for _, id := range ids {
		meta, err := s.Load(id)
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(id string) (*RecordingMeta, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.Base(id), "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta RecordingMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTicks(id string) ([]TickRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, filepath.Base(id), "ticks.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TickRow{}, nil
	}

	out := make([]TickRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 6 {
			continue
		}
		var row TickRow
		row.Index, _ = strconv.Atoi(rec[0])
		row.Columns, _ = strconv.Atoi(rec[1])
		row.Resets, _ = strconv.Atoi(rec[2])
		row.MeanDepth, _ = strconv.ParseFloat(rec[3], 64)
		row.Ones, _ = strconv.Atoi(rec[4])
		row.Dark, _ = strconv.ParseBool(rec[5])
		out = append(out, row)
	}
	return out, nil
}

// ArtifactPath is the path of a recording's rendered file.
func (s *Store) ArtifactPath(id string) (string, error) {
	meta, err := s.Load(id)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.baseDir, meta.ID, artifactName(meta.Format))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s has no artifact", ErrNotFound, id)
		}
		return "", err
	}
	return path, nil
}

func (s *Store) Delete(id string) error {
	if s.db == nil {
		return ErrClosed
	}
	res, err := s.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, filepath.Base(id)))
}
