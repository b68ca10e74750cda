package model

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Header is the first line of every takeout playback-history CSV fragment.
const Header = "Title,Album,Artist,Duration (ms),Rating,Play Count,Removed"

// columnCount is the number of comma separated fields in Header.
const columnCount = 7

// removedMarker is written in the Removed column for removed records.
const removedMarker = "True"

// Record is one line of the takeout playback history.
//
// Text fields are kept exactly as they appear in the CSV, which means they may
// still contain HTML entities such as "&amp;". Use the Decoded* accessors when
// the human readable value is needed.
//
// Records are created by ParseRecord and are treated as immutable values.
type Record struct {
	Title  string
	Album  string
	Artist string

	// DurationMs is the track length in milliseconds.
	DurationMs int

	Rating    int
	PlayCount int
	Removed   bool

	// Origin describes where the record came from, usually the CSV path.
	Origin string
}

// Key identifies a song by album and title.
type Key struct {
	Album string
	Title string
}

// ParseRecord parses one CSV data row in the canonical column order:
// title, album, artist, duration_ms, rating, play_count, removed.
//
// The takeout export never quotes fields, so the row is split on every comma.
// A trailing carriage return is tolerated.
func ParseRecord(row, origin string) (Record, error) {
	fields := strings.Split(strings.TrimRight(row, "\r\n"), ",")
	if len(fields) != columnCount {
		return Record{}, fmt.Errorf("%w: expected %d columns, got %d", ErrMalformedRecord, columnCount, len(fields))
	}
	return NewRecord(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6], origin)
}

// NewRecord builds a Record from raw column values, coercing the numeric
// columns to integers.
func NewRecord(title, album, artist, duration, rating, playCount, removed, origin string) (Record, error) {
	durationMs, err := coerceInt("duration", duration, true)
	if err != nil {
		return Record{}, err
	}
	ratingValue, err := coerceInt("rating", rating, false)
	if err != nil {
		return Record{}, err
	}
	plays, err := coerceInt("play count", playCount, true)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Title:      title,
		Album:      album,
		Artist:     artist,
		DurationMs: durationMs,
		Rating:     ratingValue,
		PlayCount:  plays,
		Removed:    parseRemoved(removed),
		Origin:     origin,
	}, nil
}

func coerceInt(column, value string, nonNegative bool) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformedRecord, column, value)
	}
	if nonNegative && n < 0 {
		return 0, fmt.Errorf("%w: %s %d is negative", ErrMalformedRecord, column, n)
	}
	return n, nil
}

func parseRemoved(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "0", "false", "False", "FALSE":
		return false
	}
	return true
}

// String serializes the record back into a CSV row. The Removed column is
// left empty when false. Origin is not part of the row.
func (r Record) String() string {
	removed := ""
	if r.Removed {
		removed = removedMarker
	}
	return strings.Join([]string{
		r.Title,
		r.Album,
		r.Artist,
		strconv.Itoa(r.DurationMs),
		strconv.Itoa(r.Rating),
		strconv.Itoa(r.PlayCount),
		removed,
	}, ",")
}

// DecodedTitle returns the title with HTML entities decoded.
func (r Record) DecodedTitle() string { return html.UnescapeString(r.Title) }

// DecodedAlbum returns the album with HTML entities decoded.
func (r Record) DecodedAlbum() string { return html.UnescapeString(r.Album) }

// DecodedArtist returns the artist with HTML entities decoded.
func (r Record) DecodedArtist() string { return html.UnescapeString(r.Artist) }

// Key returns the decoded (album, title) pair used for exact matching.
func (r Record) Key() Key {
	return Key{Album: r.DecodedAlbum(), Title: r.DecodedTitle()}
}

var disallowedChars = regexp.MustCompile(`[^A-Za-z0-9 .\-]`)

// Sanitize decodes HTML entities and replaces every character outside
// [A-Za-z0-9 .-] with an underscore, mirroring how the takeout export names
// its files.
//
//	Sanitize("White &amp; Nerdy") // "White _ Nerdy"
func Sanitize(text string) string {
	return disallowedChars.ReplaceAllString(html.UnescapeString(text), "_")
}

// PrefixConfig describes how the takeout export truncates long file names.
//
// Files are named "Artist - Album - Title.mp3" unless that name is longer
// than MaxFilenameLen characters. Long names are cut to MaxFilenameLen-5
// characters of "Artist - Album" followed by Marker and a numeric
// disambiguator that cannot be reconstructed.
type PrefixConfig struct {
	MaxFilenameLen int
	Marker         string
}

// DefaultPrefixConfig matches the observed takeout export behavior.
func DefaultPrefixConfig() PrefixConfig {
	return PrefixConfig{MaxFilenameLen: 47, Marker: "("}
}

// ShortenedLen is the number of characters kept before the marker.
func (c PrefixConfig) ShortenedLen() int {
	return c.MaxFilenameLen - 5
}

// ExpectedPrefix returns the start of the file name the takeout export would
// produce for this record, "Artist - SanitizedAlbum". When that text exceeds
// the shortened length it is truncated and the marker is appended.
//
//	r := Record{Artist: "Weird Al Yankovic", Album: "Straight Outta Lynwood"}
//	r.ExpectedPrefix(DefaultPrefixConfig()) // "Weird Al Yankovic - Straight Outta Lynwood"
func (r Record) ExpectedPrefix(cfg PrefixConfig) string {
	raw := []rune(r.Artist + " - " + Sanitize(r.Album))
	limit := cfg.ShortenedLen()
	if limit <= 0 || len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + cfg.Marker
}

// IsTruncated reports whether a prefix produced by ExpectedPrefix was cut.
func (c PrefixConfig) IsTruncated(prefix string) bool {
	return c.Marker != "" && strings.HasSuffix(prefix, c.Marker) && len([]rune(prefix)) == c.ShortenedLen()+len([]rune(c.Marker))
}
