// Package model defines the core data structures shared by the takeout
// reconciliation pipeline.
//
// # Record
//
// Record is one parsed line of the takeout playback history:
//
//	rec, err := model.ParseRecord("Open Car,Deadwing,Porcupine Tree,228414,0,9,", "Open Car.csv")
//	fmt.Println(rec.ExpectedPrefix(model.DefaultPrefixConfig())) // "Porcupine Tree - Deadwing"
//
// # TagSet
//
// TagSet holds the embedded metadata of one audio file. It is filled by the
// audio package and may be backfilled from a Record.
//
// # Link
//
// Link binds a Record to the TagSet of its file once album and title agree:
//
//	link, err := model.NewLink(rec, tags)
//	if errors.Is(err, model.ErrLinkMismatch) {
//	    // the file is not this song
//	}
//	fmt.Println(link.TargetFilename()) // "07 - Open Car"
package model
