// Package ioutils holds the file system side of the library layout.
//
// # Moving and copying
//
// FileMover implements the mover used by the layout planner. Both
// operations create the destination directory first, and Move falls back to
// copy-and-remove across file systems:
//
//	mover := ioutils.NewFileMover()
//	err := mover.Move("Tracks/Porcupine Tree - Deadwing - Open Car.mp3",
//	    "library/Porcupine Tree/Deadwing/07 - Open Car.mp3")
//
// # Path components
//
// SanitizeFileName turns an artist or album name into a valid directory
// name:
//
//	ioutils.SanitizeFileName("AC/DC") // "AC_DC"
//
// # Cover art
//
// ImageService converts embedded pictures to folder art:
//
//	cover, err := ioutils.NewImageService().FolderArt(picture, 1000)
package ioutils
