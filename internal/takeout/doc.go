// Package takeout fuses the playback-history CSV fragments of a music
// takeout export into one record set.
//
// Every fragment must begin with the header
//
//	Title,Album,Artist,Duration (ms),Rating,Play Count,Removed
//
// followed by one unquoted, comma separated row per record.
//
//	fuser := takeout.NewFuser("", "", logger)
//	records, err := fuser.Fuse("Takeout/Google Play Music/Tracks")
//	if err != nil {
//	    // ErrMissingHeader or ErrMalformedRecord, nothing was ingested
//	}
//	path, err := fuser.Write(records, outputDir) // outputDir/main_csv.csv
package takeout
