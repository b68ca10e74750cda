package takeout

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/handiism/takeout-to-plex/internal/model"
	"github.com/handiism/takeout-to-plex/internal/testsupport"
)

func newTestFuser() (*Fuser, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewFuser("", "", log.New(&buf)), &buf
}

func stripOrigin(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		r.Origin = ""
		out[i] = r
	}
	return out
}

func equalRecords(a, b []model.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFuser_Fuse(t *testing.T) {
	dir := t.TempDir()
	want := testsupport.Records()
	paths := testsupport.WriteFragments(t, dir, want)

	fuser, _ := newTestFuser()
	got, err := fuser.Fuse(dir)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}

	if !equalRecords(stripOrigin(got), want) {
		t.Errorf("Fuse() = %+v, want %+v", got, want)
	}
	for i, rec := range got {
		if rec.Origin != paths[i] {
			t.Errorf("record %d Origin = %q, want %q", i, rec.Origin, paths[i])
		}
	}
}

func TestFuser_Fuse_PreservesFragmentOrder(t *testing.T) {
	dir := t.TempDir()
	records := testsupport.Records()

	testsupport.WriteText(t, filepath.Join(dir, "a.csv"),
		model.Header+"\r\n"+records[3].String()+"\r\n"+records[1].String()+"\r\n")
	testsupport.WriteText(t, filepath.Join(dir, "b.csv"),
		model.Header+"\n"+records[0].String())

	fuser, _ := newTestFuser()
	got, err := fuser.Fuse(dir)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}

	a, err := fuser.Load(filepath.Join(dir, "a.csv"))
	if err != nil {
		t.Fatalf("Load(a) error = %v", err)
	}
	b, err := fuser.Load(filepath.Join(dir, "b.csv"))
	if err != nil {
		t.Fatalf("Load(b) error = %v", err)
	}

	if !equalRecords(got, append(a, b...)) {
		t.Errorf("Fuse() = %+v, want fuse(a) ++ fuse(b)", got)
	}
	want := []model.Record{records[3], records[1], records[0]}
	if !equalRecords(stripOrigin(got), want) {
		t.Errorf("Fuse() order = %+v, want %+v", stripOrigin(got), want)
	}
}

func TestFuser_Fuse_NoHeader(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "empty.csv"), "")

	fuser, logs := newTestFuser()
	got, err := fuser.Fuse(dir)
	if !errors.Is(err, model.ErrMissingHeader) {
		t.Errorf("Fuse() error = %v, want ErrMissingHeader", err)
	}
	if got != nil {
		t.Errorf("Fuse() = %+v, want nil", got)
	}
	if !strings.Contains(logs.String(), "All csv files must begin with header") {
		t.Errorf("log output %q missing header message", logs.String())
	}
}

func TestFuser_Fuse_WrongHeader(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "000.csv"), model.Header+"\n"+testsupport.Records()[0].String())
	testsupport.WriteText(t, filepath.Join(dir, "001.csv"), "Title,Album,Artist\nOpen Car,Deadwing,Porcupine Tree")

	fuser, _ := newTestFuser()
	got, err := fuser.Fuse(dir)
	if !errors.Is(err, model.ErrMissingHeader) {
		t.Errorf("Fuse() error = %v, want ErrMissingHeader", err)
	}
	if got != nil {
		t.Errorf("Fuse() should not return partial records, got %d", len(got))
	}
}

func TestFuser_Fuse_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	content := model.Header + "\n" + testsupport.Records()[0].String() + "extra,columns.raise,errors"
	testsupport.WriteText(t, filepath.Join(dir, "bad.csv"), content)

	fuser, logs := newTestFuser()
	got, err := fuser.Fuse(dir)
	if !errors.Is(err, model.ErrMalformedRecord) {
		t.Errorf("Fuse() error = %v, want ErrMalformedRecord", err)
	}
	if got != nil {
		t.Errorf("Fuse() = %+v, want nil", got)
	}
	if !strings.Contains(logs.String(), "CSV files are not in expected format.") {
		t.Errorf("log output %q missing format message", logs.String())
	}
}

func TestFuser_Fuse_SkipsFusedOutput(t *testing.T) {
	dir := t.TempDir()
	records := testsupport.Records()
	testsupport.WriteFragments(t, dir, records[:2])

	fuser, _ := newTestFuser()
	first, err := fuser.Fuse(dir)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}
	if _, err := fuser.Write(first, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	second, err := fuser.Fuse(dir)
	if err != nil {
		t.Fatalf("second Fuse() error = %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("second Fuse() returned %d records, want %d", len(second), len(first))
	}
}

func TestFuser_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	records := testsupport.Records()

	fuser, _ := newTestFuser()
	path, err := fuser.Write(records, dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, "main_csv.csv") {
		t.Errorf("Write() path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	rows := make([]string, len(records))
	for i, r := range records {
		rows[i] = r.String()
	}
	want := "Title,Album,Artist,Duration (ms),Rating,Play Count,Removed\n" + strings.Join(rows, "\n")
	if string(data) != want {
		t.Errorf("Write() content = %q, want %q", data, want)
	}

	loaded, err := fuser.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !equalRecords(stripOrigin(loaded), records) {
		t.Errorf("Load(Write()) = %+v, want %+v", loaded, records)
	}
}
