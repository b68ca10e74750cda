// Package config provides configuration management for takeout-plex.
//
// Settings live in a TOML file. Every key is optional:
//
//	fused_csv_name = "main_csv.csv"
//	audio_extensions = [".mp3", ".flac"]
//	prefix_budget = 47
//	truncation_marker = "("
//	create_playlist = true
//	playlist_format = "pls"
//
// Loading a file that does not exist returns DefaultSettings:
//
//	settings, err := config.Load("takeout-plex.toml")
//
// Command line flags override the loaded values.
package config
