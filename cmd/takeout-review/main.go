package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/handiism/takeout-to-plex/internal/config"
	"github.com/handiism/takeout-to-plex/internal/logging"
	"github.com/handiism/takeout-to-plex/internal/tui"
)

func main() {
	var (
		configFlag  = flag.String("config", config.DefaultFileName, "Path to config file")
		libraryFlag = flag.String("library", "", "Library root (default next to the tracks directory)")
		logFlag     = flag.String("log-file", "", "Write logs to this file")
		verboseFlag = flag.Bool("verbose", false, "Log debug messages")
	)
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	logger, _ := logging.ForRun(logging.New(w, *verboseFlag))

	if err := tui.Run(settings, *libraryFlag, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
