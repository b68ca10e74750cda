package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/handiism/takeout-to-plex/internal/organize"
	"github.com/handiism/takeout-to-plex/internal/reconcile"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

func newTable(colorize bool) table.Writer {
	tw := table.NewWriter()
	style := table.StyleRounded
	if colorize {
		style.Color.Header = text.Colors{text.Bold, text.FgHiCyan}
	}
	tw.SetStyle(style)
	return tw
}

func renderSummary(s organize.Summary, colorize bool) string {
	tw := newTable(colorize)
	tw.SetTitle("Takeout summary")
	tw.AppendHeader(table.Row{"Item", "Count"})
	tw.AppendRows([]table.Row{
		{"Records", s.Records},
		{"Linked", fmt.Sprintf("%d (%s)", s.Links, s.LinkedSize())},
		{"Lost records", s.LostRecords},
		{"Lost audio files", s.LostAudiofiles},
		{"Unmatched audio files", s.UnmatchedAudiofiles},
		{"Unreadable audio files", s.Unreadable},
		{"Tags not written", s.Unsaved},
	})

	placed := strconv.Itoa(s.Placed)
	switch {
	case s.Aborted:
		placed = "aborted, destinations collide"
	case s.DryRun:
		placed += " (dry run)"
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Placed", placed})
	if s.FusedCSV != "" {
		tw.AppendRow(table.Row{"Fused CSV", s.FusedCSV})
	}
	if s.Playlist != "" {
		tw.AppendRow(table.Row{"Playlist", s.Playlist})
	}
	tw.AppendRow(table.Row{"Library", s.Library})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// renderLeftovers lists every record and file that was not linked.
func renderLeftovers(r *reconcile.Result, colorize bool) string {
	if r == nil {
		return ""
	}

	tw := newTable(colorize)
	tw.SetTitle("Needs review")
	tw.AppendHeader(table.Row{"Kind", "Entry"})
	for _, rec := range r.LostRecords {
		tw.AppendRow(table.Row{"lost record", fmt.Sprintf("%s - %s - %s", rec.DecodedArtist(), rec.DecodedAlbum(), rec.DecodedTitle())})
	}
	for _, ts := range r.LostAudiofiles {
		tw.AppendRow(table.Row{"lost audio file", ts.Path})
	}
	for _, ts := range r.UnmatchedAudiofiles {
		tw.AppendRow(table.Row{"unmatched audio file", ts.Path})
	}
	for _, u := range r.Unreadable {
		tw.AppendRow(table.Row{"unreadable", u.Path})
	}
	for _, u := range r.Unsaved {
		tw.AppendRow(table.Row{"tags not written", u.Path})
	}
	if tw.Length() == 0 {
		return ""
	}
	return tw.Render()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
