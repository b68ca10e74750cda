// Package audio reads and writes embedded audio metadata and generates
// playlists.
//
// # Tagging
//
// The Tagger picks a Store by file extension:
//   - .mp3 uses ID3v2 frames (TIT2, TALB, TPE1, TRCK)
//   - .flac uses Vorbis comments (TITLE, ALBUM, ARTIST, TRACKNUMBER)
//   - anything else is read only
//
// Loading a file and backfilling it from a takeout record:
//
//	tagger := audio.NewTagger(logger)
//	tags, err := tagger.Load(path)
//	if errors.Is(err, audio.ErrUnreadableAudioFile) {
//	    // skip the file
//	}
//	changed, err := tagger.Backfill(&tags, record, dryRun)
//
// Backfill only fills empty fields and never writes in simulation mode.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist(audio.MostPlayed(entries, 0))
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
