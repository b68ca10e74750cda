package takeout

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// DefaultFusedName is the file name of the fused CSV.
const DefaultFusedName = "main_csv.csv"

// DefaultPattern matches takeout CSV fragments.
const DefaultPattern = "*.csv"

// Messages logged when fusion aborts.
const (
	msgMissingHeader = "All csv files must begin with header"
	msgBadFormat     = "CSV files are not in expected format."
)

// Fuser merges takeout CSV fragments into one record set.
type Fuser struct {
	pattern   string
	fusedName string
	logger    *log.Logger
}

// NewFuser creates a Fuser. Empty pattern or fusedName use the defaults.
func NewFuser(pattern, fusedName string, logger *log.Logger) *Fuser {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if fusedName == "" {
		fusedName = DefaultFusedName
	}
	return &Fuser{pattern: pattern, fusedName: fusedName, logger: logger}
}

// FusedName returns the file name Write uses.
func (f *Fuser) FusedName() string {
	return f.fusedName
}

// Fragments lists the CSV fragments in dir in lexical order. It is not
// recursive and skips the fused output file so re-runs stay idempotent.
func (f *Fuser) Fragments(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, f.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}

	fragments := make([]string, 0, len(matches))
	for _, m := range matches {
		if filepath.Base(m) == f.fusedName {
			continue
		}
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			continue
		}
		fragments = append(fragments, m)
	}
	return fragments, nil
}

// Fuse reads every fragment in dir and concatenates their records, keeping
// fragment order and row order within a fragment.
//
// Any empty fragment, header mismatch or malformed row aborts the whole
// fusion. Partial ingestion is never returned.
func (f *Fuser) Fuse(dir string) ([]model.Record, error) {
	fragments, err := f.Fragments(dir)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	for _, path := range fragments {
		recs, err := f.readFragment(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	f.logger.Info("fused takeout csv", "fragments", len(fragments), "records", len(records))
	return records, nil
}

// Load reads a single CSV file, such as a fused CSV from an earlier run,
// using the same rules as Fuse.
func (f *Fuser) Load(path string) ([]model.Record, error) {
	return f.readFragment(path)
}

func (f *Fuser) readFragment(path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	records, err := parseFragment(bufio.NewScanner(file), path)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingHeader):
			f.logger.Error(msgMissingHeader, "file", path)
		case errors.Is(err, model.ErrMalformedRecord):
			f.logger.Error(msgBadFormat, "file", path, "err", err)
		}
		return nil, err
	}
	return records, nil
}

func parseFragment(sc *bufio.Scanner, origin string) ([]model.Record, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", origin, err)
		}
		return nil, fmt.Errorf("%w: %s is empty", model.ErrMissingHeader, origin)
	}
	if header := strings.TrimRight(sc.Text(), "\r"); header != model.Header {
		return nil, fmt.Errorf("%w: %s starts with %q", model.ErrMissingHeader, origin, header)
	}

	var records []model.Record
	line := 1
	for sc.Scan() {
		line++
		row := strings.TrimRight(sc.Text(), "\r")
		if row == "" {
			continue
		}
		rec, err := model.ParseRecord(row, origin)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", origin, line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", origin, err)
	}
	return records, nil
}

// Write serializes records under the header into outDir/<fused name>. Rows are
// joined with "\n" and the last row has no terminator. Returns the path written.
func (f *Fuser) Write(records []model.Record, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(outDir, f.fusedName)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(Render(records)); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	f.logger.Info("wrote fused csv", "path", path, "records", len(records))
	return path, nil
}

// Render returns the fused CSV content for records.
func Render(records []model.Record) string {
	rows := make([]string, len(records))
	for i, rec := range records {
		rows[i] = rec.String()
	}
	return model.Header + "\n" + strings.Join(rows, "\n")
}
