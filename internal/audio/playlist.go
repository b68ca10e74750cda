package audio

import (
	"fmt"
	"sort"
	"strings"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// ParsePlaylistFormat maps a config value to a PlaylistFormat, defaulting to
// M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	if strings.EqualFold(strings.TrimSpace(s), "pls") {
		return FormatPLS
	}
	return FormatM3U
}

// Extension returns the file extension for the format, including the dot.
func (f PlaylistFormat) Extension() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// PlaylistEntry is one track of a generated playlist.
type PlaylistEntry struct {
	// Path is written as is, usually relative to the playlist location.
	Path       string
	Artist     string
	Title      string
	DurationMs int
	PlayCount  int
	Removed    bool
}

// MostPlayed returns the entries with at least one play, excluding removed
// ones, ordered by play count descending. Ties keep their input order.
// A limit of zero or less keeps every entry.
func MostPlayed(entries []PlaylistEntry, limit int) []PlaylistEntry {
	var played []PlaylistEntry
	for _, e := range entries {
		if e.Removed || e.PlayCount <= 0 {
			continue
		}
		played = append(played, e)
	}
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].PlayCount > played[j].PlayCount
	})
	if limit > 0 && len(played) > limit {
		played = played[:limit]
	}
	return played
}

// PlaylistCreator generates playlist files.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(MostPlayed(entries, 100))
//	os.WriteFile("Most Played.m3u", []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:228,Porcupine Tree - Open Car
//	// Porcupine Tree/Deadwing/07 - Open Car.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist renders entries in the configured format.
func (p *PlaylistCreator) CreatePlaylist(entries []PlaylistEntry) string {
	if p.format == FormatPLS {
		return p.createPLS(entries)
	}
	return p.createM3U(entries)
}

// createM3U generates an M3U playlist, with #EXTINF lines when extended.
func (p *PlaylistCreator) createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s - %s\n", e.DurationMs/1000, e.Artist, e.Title))
		}
		sb.WriteString(e.Path + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, e.Path))
		sb.WriteString(fmt.Sprintf("Title%d=%s - %s\n", idx, e.Artist, e.Title))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, e.DurationMs/1000))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(entries)))
	sb.WriteString("Version=2\n")

	return sb.String()
}
