package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/takeout-to-plex/internal/config"
	"github.com/handiism/takeout-to-plex/internal/logging"
	"github.com/handiism/takeout-to-plex/internal/organize"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	tracks   string
	mainCSV  string
	output   string
	library  string
	config   string
	copy     bool
	dryRun   bool
	playlist bool
	coverArt bool
	verbose  bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "takeout-plex --tracks <dir>",
		Short: "Organize a music takeout into an artist/album library",
		Long: "takeout-plex fuses the takeout playback-history CSVs, matches every record\n" +
			"with its audio file, backfills missing tags and moves the files into\n" +
			"<library>/<Artist>/<Album>/<NN - Title>.<ext>.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&flags.tracks, "tracks", "", "Takeout tracks directory with the CSV fragments and audio files")
	f.StringVar(&flags.mainCSV, "main-csv", "", "Use an already fused CSV instead of fusing the tracks directory")
	f.StringVar(&flags.output, "output", ".", "Directory for the fused CSV")
	f.StringVar(&flags.library, "library", "", "Library root (default <output>/library)")
	f.StringVarP(&flags.config, "config", "c", "", "Configuration file path (default ./"+config.DefaultFileName+")")
	f.BoolVar(&flags.copy, "copy", false, "Copy files instead of moving them")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Validate everything without writing tags or moving files")
	f.BoolVar(&flags.playlist, "playlist", false, "Write a most played playlist into the library")
	f.BoolVar(&flags.coverArt, "cover-art", false, "Save embedded cover art as cover.jpg in album folders")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Show verbose output")
	_ = rootCmd.MarkFlagRequired("tracks")

	return rootCmd
}

func (f rootFlags) validate() error {
	info, err := os.Stat(f.tracks)
	if err != nil {
		return fmt.Errorf("--tracks %q: %w", f.tracks, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--tracks %q is not a directory", f.tracks)
	}

	if f.mainCSV != "" {
		if !strings.EqualFold(filepath.Ext(f.mainCSV), ".csv") {
			return fmt.Errorf("--main-csv %q must be a .csv file", f.mainCSV)
		}
		info, err := os.Stat(f.mainCSV)
		if err != nil {
			return fmt.Errorf("--main-csv %q: %w", f.mainCSV, err)
		}
		if info.IsDir() {
			return fmt.Errorf("--main-csv %q is a directory", f.mainCSV)
		}
	}

	if f.output == "" {
		return fmt.Errorf("--output must not be empty")
	}
	return nil
}

func (f rootFlags) settings() (*config.Settings, error) {
	path := f.config
	if path == "" {
		path = config.DefaultFileName
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f.copy {
		settings.CopyFiles = true
	}
	if f.playlist {
		settings.CreatePlaylist = true
	}
	if f.coverArt {
		settings.SaveCoverArt = true
	}
	return settings, nil
}

func run(cmd *cobra.Command, flags rootFlags) error {
	settings, err := flags.settings()
	if err != nil {
		return err
	}

	logger, runID := logging.ForRun(logging.New(cmd.ErrOrStderr(), flags.verbose))
	out := cmd.OutOrStdout()

	manager := organize.NewManager(settings, organize.Options{
		TracksDir:  flags.tracks,
		MainCSV:    flags.mainCSV,
		OutputDir:  flags.output,
		LibraryDir: flags.library,
		DryRun:     flags.dryRun,
	}, logger, progressPrinter(out, flags.verbose))

	logger.Info("starting run", "tracks", flags.tracks, "dry_run", flags.dryRun)

	ctx := cmd.Context()
	if err := manager.Initialize(ctx); err != nil {
		return err
	}
	if err := manager.Execute(ctx); err != nil {
		return err
	}

	colorize := shouldColorize(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(manager.Summary(), colorize))
	if flags.verbose {
		if details := renderLeftovers(manager.Result(), colorize); details != "" {
			fmt.Fprintln(out, details)
		}
	}
	logger.Debug("run finished", "run", runID)
	return nil
}

func progressPrinter(out io.Writer, verbose bool) func(organize.ProgressEvent) {
	return func(event organize.ProgressEvent) {
		if event.Level == organize.LevelVerbose && !verbose {
			return
		}

		var prefix string
		switch event.Level {
		case organize.LevelError:
			prefix = "✗ "
		case organize.LevelWarning:
			prefix = "! "
		case organize.LevelSuccess:
			prefix = "✓ "
		case organize.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}
		fmt.Fprintln(out, prefix+event.Message)
	}
}
