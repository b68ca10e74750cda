package model

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// TagSet is the embedded metadata of one audio file on disk.
//
// Empty strings and a zero Track mean the tag is absent from the file.
// Dirty is set when a backfill changed any field that has not been written
// back to the file yet.
type TagSet struct {
	Path   string
	Track  int
	Title  string
	Album  string
	Artist string
	Dirty  bool
}

// Key returns the (album, title) pair used for exact matching.
func (t *TagSet) Key() Key {
	return Key{Album: t.Album, Title: t.Title}
}

// HasTrack reports whether a track number is known.
func (t *TagSet) HasTrack() bool {
	return t.Track > 0
}

// HasTitleExtension reports whether the title still carries something that
// looks like a file extension, an artifact of the takeout export.
//
// Any dot counts, so "Title Has . In its name" is reported as well.
func (t *TagSet) HasTitleExtension() bool {
	return strings.Contains(t.Title, ".")
}

// FileName returns the base name of the file.
func (t *TagSet) FileName() string {
	return filepath.Base(t.Path)
}

// InferTrackNumber reads a track number from the start of a file name such
// as "01 - Title.mp3". The first two characters must be digits, or a single
// digit followed by whitespace ("1 - Title").
func InferTrackNumber(name string) (int, bool) {
	runes := []rune(name)
	if len(runes) < 2 || !isDigit(runes[0]) {
		return 0, false
	}
	var digits string
	switch {
	case isDigit(runes[1]):
		digits = string(runes[:2])
	case unicode.IsSpace(runes[1]):
		digits = string(runes[:1])
	default:
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
