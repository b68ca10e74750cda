package audio

import (
	"strings"
	"testing"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist(testEntries())

	if strings.Contains(content, "#EXTM3U") {
		t.Error("plain M3U should not contain #EXTM3U")
	}
	want := "Porcupine Tree/Deadwing/07 - Open Car.mp3\nOK Go/OK Go/09 - C-C-C-Cinnamon Lips.mp3\n"
	if content != want {
		t.Errorf("CreatePlaylist() = %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist(testEntries())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:228,Porcupine Tree - Open Car\n") {
		t.Errorf("Extended M3U should contain EXTINF with seconds, got %q", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist(testEntries())

	for _, want := range []string{
		"[playlist]\n",
		"File1=Porcupine Tree/Deadwing/07 - Open Car.mp3\n",
		"Title2=OK Go - C-C-C-Cinnamon Lips\n",
		"Length2=207\n",
		"NumberOfEntries=2\n",
		"Version=2\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS should contain %q, got %q", want, content)
		}
	}
}

func TestMostPlayed(t *testing.T) {
	entries := []PlaylistEntry{
		{Title: "a", PlayCount: 1},
		{Title: "b", PlayCount: 26},
		{Title: "c", PlayCount: 0},
		{Title: "d", PlayCount: 9},
		{Title: "e", PlayCount: 9},
		{Title: "f", PlayCount: 50, Removed: true},
	}

	got := MostPlayed(entries, 0)
	var titles []string
	for _, e := range got {
		titles = append(titles, e.Title)
	}
	if strings.Join(titles, ",") != "b,d,e,a" {
		t.Errorf("MostPlayed() order = %v, want [b d e a]", titles)
	}

	if got := MostPlayed(entries, 2); len(got) != 2 {
		t.Errorf("MostPlayed(limit 2) returned %d entries", len(got))
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		input string
		want  PlaylistFormat
		ext   string
	}{
		{"m3u", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"", FormatM3U, ".m3u"},
		{"wpl", FormatM3U, ".m3u"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePlaylistFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParsePlaylistFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", got.Extension(), tt.ext)
			}
		})
	}
}

func testEntries() []PlaylistEntry {
	return []PlaylistEntry{
		{
			Path:       "Porcupine Tree/Deadwing/07 - Open Car.mp3",
			Artist:     "Porcupine Tree",
			Title:      "Open Car",
			DurationMs: 228414,
			PlayCount:  9,
		},
		{
			Path:       "OK Go/OK Go/09 - C-C-C-Cinnamon Lips.mp3",
			Artist:     "OK Go",
			Title:      "C-C-C-Cinnamon Lips",
			DurationMs: 207000,
			PlayCount:  26,
		},
	}
}
