package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// DefaultFileName is looked up in the working directory when no config path
// is given.
const DefaultFileName = "takeout-plex.toml"

// Settings holds all configuration options.
type Settings struct {
	// Takeout input
	FusedCSVName    string   `toml:"fused_csv_name"`
	CSVPattern      string   `toml:"csv_pattern"`
	AudioExtensions []string `toml:"audio_extensions"`

	// File name truncation used by the export
	PrefixBudget     int    `toml:"prefix_budget"`
	TruncationMarker string `toml:"truncation_marker"`
	DefaultExtension string `toml:"default_extension"`

	// Library layout
	CopyFiles    bool   `toml:"copy_files"`
	LockFileName string `toml:"lock_file_name"`

	// Cover art settings
	SaveCoverArt    bool `toml:"save_cover_art"`
	CoverArtMaxSize int  `toml:"cover_art_max_size"`

	// Playlist settings
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls
	M3UExtended    bool   `toml:"m3u_extended"`
	PlaylistName   string `toml:"playlist_name"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		FusedCSVName:    "main_csv.csv",
		CSVPattern:      "*.csv",
		AudioExtensions: []string{".mp3", ".flac", ".m4a", ".ogg"},

		PrefixBudget:     47,
		TruncationMarker: "(",
		DefaultExtension: ".mp3",

		CopyFiles:    false,
		LockFileName: ".takeout-plex.lock",

		SaveCoverArt:    false,
		CoverArtMaxSize: 1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
		PlaylistName:   "Most Played",
	}
}

// Load reads settings from a TOML file. Keys missing from the file keep
// their default values, and a missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate reports settings that cannot work.
func (s *Settings) Validate() error {
	if s.PrefixBudget <= 5 {
		return fmt.Errorf("prefix_budget must be greater than 5, got %d", s.PrefixBudget)
	}
	if s.FusedCSVName == "" || strings.ContainsAny(s.FusedCSVName, `/\`) {
		return fmt.Errorf("fused_csv_name must be a plain file name, got %q", s.FusedCSVName)
	}
	if _, err := filepath.Match(s.CSVPattern, ""); err != nil {
		return fmt.Errorf("csv_pattern %q: %w", s.CSVPattern, err)
	}
	if s.DefaultExtension != "" && model.ExtensionToken(s.DefaultExtension) != s.DefaultExtension {
		return fmt.Errorf("default_extension must look like .mp3, got %q", s.DefaultExtension)
	}
	switch strings.ToLower(s.PlaylistFormat) {
	case "m3u", "pls":
	default:
		return fmt.Errorf("playlist_format must be m3u or pls, got %q", s.PlaylistFormat)
	}
	if s.CoverArtMaxSize < 0 {
		return fmt.Errorf("cover_art_max_size must not be negative, got %d", s.CoverArtMaxSize)
	}
	return nil
}

// ToPrefixConfig converts settings to the file name truncation rules.
func (s *Settings) ToPrefixConfig() model.PrefixConfig {
	return model.PrefixConfig{
		MaxFilenameLen: s.PrefixBudget,
		Marker:         s.TruncationMarker,
	}
}
