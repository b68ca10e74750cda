// Package reconcile pairs takeout records with the audio files on disk.
//
// The Engine walks an audio directory, reads the embedded tags of every
// file and consumes records from a pool keyed by (album, title). Files
// that have no exact match fall back to prefix matching on the takeout
// naming scheme "Artist - Album - Title.mp3", including names the export
// truncated to "Artist - Albu(123)Title.mp3".
//
// Every readable file ends up in exactly one of Links, LostAudiofiles or
// UnmatchedAudiofiles. Every record ends up in exactly one of Links or
// LostRecords.
//
//	engine := reconcile.NewEngine(tagger, reconcile.Options{}, logger)
//	result, err := engine.Merge("Takeout/Google Play Music/Tracks", records, dryRun)
package reconcile
