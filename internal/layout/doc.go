// Package layout places linked audio files into a media server library.
//
// Files end up at
//
//	<root>/<Artist>/<Album>/<NN - Title>.<ext>
//
// The whole batch is validated before the first file is touched. Two links
// to the same source are an error; two files mapping to one destination
// abort the run without moving anything.
package layout
