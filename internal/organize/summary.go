package organize

import "github.com/dustin/go-humanize"

// Summary is the outcome of a run.
type Summary struct {
	Records             int
	Links               int
	LostRecords         int
	LostAudiofiles      int
	UnmatchedAudiofiles int
	Unreadable          int
	Unsaved             int

	LinkedBytes int64
	Placed      int

	// Aborted is set when destination collisions stopped the layout.
	Aborted bool
	DryRun  bool

	FusedCSV string
	Playlist string
	Library  string
}

// LinkedSize renders LinkedBytes for humans, "12 MB".
func (s Summary) LinkedSize() string {
	return humanize.Bytes(uint64(s.LinkedBytes))
}

// Summary returns counts for the run so far.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Summary{
		Records:     len(m.records),
		LinkedBytes: m.linkedBytes,
		Placed:      len(m.moves),
		Aborted:     m.aborted,
		DryRun:      m.opts.DryRun,
		FusedCSV:    m.fusedPath,
		Playlist:    m.playlistOut,
		Library:     m.opts.LibraryDir,
	}
	if r := m.result; r != nil {
		s.Links = len(r.Links)
		s.LostRecords = len(r.LostRecords)
		s.LostAudiofiles = len(r.LostAudiofiles)
		s.UnmatchedAudiofiles = len(r.UnmatchedAudiofiles)
		s.Unreadable = len(r.Unreadable)
		s.Unsaved = len(r.Unsaved)
	}
	return s
}
