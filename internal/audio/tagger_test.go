package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-flac/flacvorbis"
	"github.com/handiism/takeout-to-plex/internal/model"
)

type memoryStore struct {
	tags  map[string]model.TagSet
	saves []model.TagSet
}

func (s *memoryStore) Load(path string) (model.TagSet, error) {
	tags, ok := s.tags[path]
	if !ok {
		return model.TagSet{}, errors.New("no such file")
	}
	return tags, nil
}

func (s *memoryStore) Save(tags model.TagSet) error {
	s.saves = append(s.saves, tags)
	return nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func openCarRecord() model.Record {
	return model.Record{
		Title:      "07 - Open Car",
		Album:      "Deadwing",
		Artist:     "Porcupine Tree",
		DurationMs: 228414,
		PlayCount:  9,
		Origin:     "Google Play Music/Tracks/Open Car.csv",
	}
}

func TestTagger_Backfill(t *testing.T) {
	for _, simulate := range []bool{true, false} {
		t.Run(map[bool]string{true: "simulate", false: "write"}[simulate], func(t *testing.T) {
			store := &memoryStore{}
			tagger := NewTaggerWithStore(store, testLogger())

			tags := &model.TagSet{Path: "Tracks/07 - Open Car.mp3"}
			changed, err := tagger.Backfill(tags, openCarRecord(), simulate)
			if err != nil {
				t.Fatalf("Backfill() error = %v", err)
			}
			if !changed {
				t.Fatal("Backfill() should report a change")
			}

			if tags.Track != 7 {
				t.Errorf("Track = %d, want 7", tags.Track)
			}
			if tags.Title != "07 - Open Car" || tags.Album != "Deadwing" || tags.Artist != "Porcupine Tree" {
				t.Errorf("Backfill() tags = %+v", tags)
			}

			wantSaves := 1
			if simulate {
				wantSaves = 0
			}
			if len(store.saves) != wantSaves {
				t.Errorf("saves = %d, want %d", len(store.saves), wantSaves)
			}
			if tags.Dirty != simulate {
				t.Errorf("Dirty = %v, want %v", tags.Dirty, simulate)
			}
		})
	}
}

func TestTagger_Backfill_KeepsExistingValues(t *testing.T) {
	store := &memoryStore{}
	tagger := NewTaggerWithStore(store, testLogger())

	tags := &model.TagSet{
		Path:   "Tracks/08 - Something.mp3",
		Track:  3,
		Title:  "Original",
		Album:  "Original Album",
		Artist: "Original Artist",
	}
	changed, err := tagger.Backfill(tags, openCarRecord(), false)
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if changed {
		t.Error("Backfill() should not change complete tags")
	}
	if tags.Track != 3 || tags.Title != "Original" {
		t.Errorf("Backfill() overwrote tags: %+v", tags)
	}
	if len(store.saves) != 0 {
		t.Errorf("saves = %d, want 0", len(store.saves))
	}
}

func TestTagger_Backfill_DecodesEntities(t *testing.T) {
	tagger := NewTaggerWithStore(&memoryStore{}, testLogger())

	rec := model.Record{Title: "White &amp; Nerdy", Album: "Straight Outta Lynwood", Artist: "Weird Al Yankovic"}
	tags := &model.TagSet{Path: "Tracks/Weird Al Yankovic - Straight Outta Lynwood(123)White _ Nerdy.mp3"}

	if _, err := tagger.Backfill(tags, rec, true); err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if tags.Title != "White & Nerdy" {
		t.Errorf("Title = %q, want %q", tags.Title, "White & Nerdy")
	}
	if tags.HasTrack() {
		t.Errorf("Track = %d, want none", tags.Track)
	}
}

func TestTagger_Fill(t *testing.T) {
	store := &memoryStore{}
	tagger := NewTaggerWithStore(store, testLogger())

	tags := &model.TagSet{Path: "Tracks/07 - Open Car.mp3", Album: "Deadwing"}
	if !tagger.Fill(tags, openCarRecord()) {
		t.Fatal("Fill() should report a change")
	}
	if tags.Track != 7 || tags.Title != "07 - Open Car" || tags.Artist != "Porcupine Tree" || !tags.Dirty {
		t.Errorf("Fill() tags = %+v", tags)
	}
	if len(store.saves) != 0 {
		t.Errorf("saves = %d, want 0", len(store.saves))
	}

	if tagger.Fill(tags, openCarRecord()) {
		t.Error("Fill() should not change complete tags")
	}
}

func TestTagger_Load_Unreadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.ogg")
	if err := os.WriteFile(path, []byte("definitely not an ogg stream"), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(testLogger())
	if _, err := tagger.Load(path); !errors.Is(err, ErrUnreadableAudioFile) {
		t.Errorf("Load() error = %v, want ErrUnreadableAudioFile", err)
	}

	if _, err := tagger.Load(filepath.Join(dir, "missing.mp3")); !errors.Is(err, ErrUnreadableAudioFile) {
		t.Errorf("Load(missing) error = %v, want ErrUnreadableAudioFile", err)
	}
}

func TestID3Store_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "07 - Open Car.mp3")
	audioData := []byte("not really mpeg frames, but id3v2 does not care")
	if err := os.WriteFile(path, audioData, 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(testLogger())

	tags, err := tagger.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tags.Title != "" || tags.HasTrack() {
		t.Fatalf("untagged file loaded as %+v", tags)
	}

	if _, err := tagger.Backfill(&tags, openCarRecord(), false); err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}

	reloaded, err := tagger.Load(path)
	if err != nil {
		t.Fatalf("Load() after save error = %v", err)
	}
	want := model.TagSet{Path: path, Track: 7, Title: "07 - Open Car", Album: "Deadwing", Artist: "Porcupine Tree"}
	if reloaded != want {
		t.Errorf("Load() = %+v, want %+v", reloaded, want)
	}
}

func TestParseTrackNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"7", 7},
		{"7/12", 7},
		{" 12 ", 12},
		{"", 0},
		{"A1", 0},
		{"-3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseTrackNumber(tt.input); got != tt.want {
				t.Errorf("parseTrackNumber(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetComments(t *testing.T) {
	cmts := flacvorbis.New()
	if err := cmts.Add(flacvorbis.FIELD_TITLE, "Old Title"); err != nil {
		t.Fatal(err)
	}
	if err := cmts.Add(flacvorbis.FIELD_GENRE, "Rock"); err != nil {
		t.Fatal(err)
	}

	err := setComments(cmts, map[string]string{
		flacvorbis.FIELD_TITLE:  "Open Car",
		flacvorbis.FIELD_ALBUM:  "Deadwing",
		flacvorbis.FIELD_ARTIST: "",
	})
	if err != nil {
		t.Fatalf("setComments() error = %v", err)
	}

	block := cmts.Marshal()
	parsed, err := flacvorbis.ParseFromMetaDataBlock(block)
	if err != nil {
		t.Fatalf("ParseFromMetaDataBlock() error = %v", err)
	}

	if got := firstComment(parsed, flacvorbis.FIELD_TITLE); got != "Open Car" {
		t.Errorf("TITLE = %q, want %q", got, "Open Car")
	}
	if titles, _ := parsed.Get(flacvorbis.FIELD_TITLE); len(titles) != 1 {
		t.Errorf("TITLE values = %v, want exactly one", titles)
	}
	if got := firstComment(parsed, flacvorbis.FIELD_ALBUM); got != "Deadwing" {
		t.Errorf("ALBUM = %q, want %q", got, "Deadwing")
	}
	if got := firstComment(parsed, flacvorbis.FIELD_GENRE); got != "Rock" {
		t.Errorf("GENRE = %q, want %q", got, "Rock")
	}
	if got := firstComment(parsed, flacvorbis.FIELD_ARTIST); got != "" {
		t.Errorf("ARTIST = %q, want empty", got)
	}
}
