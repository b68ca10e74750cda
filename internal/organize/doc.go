// Package organize runs the whole takeout-to-library pipeline.
//
// # Manager
//
// The Manager coordinates one run:
//
//  1. Fuse the takeout CSV fragments, or load an already fused CSV
//  2. Write the fused CSV to the output directory
//  3. Match records to audio files and backfill missing tags
//  4. Validate the artist/album/title layout and move or copy the files
//  5. Write folder art and a most played playlist (optional)
//
// # Basic Usage
//
//	manager := organize.NewManager(settings, organize.Options{
//	    TracksDir:  "Takeout/Google Play Music/Tracks",
//	    LibraryDir: "/srv/plex/music",
//	}, logger, func(event organize.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := manager.Execute(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(manager.Summary().LinkedSize())
//
// # Dry runs
//
// With Options.DryRun set, tags are not written and no file is moved. The
// fused CSV is still written.
package organize
