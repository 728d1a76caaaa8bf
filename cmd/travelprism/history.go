package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/CaptShanks/travelprism/internal/history"
	"github.com/CaptShanks/travelprism/internal/tui"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, view and clear past searches",
		Long: `Every agent answer is saved under ~/.travelprism (or history.dir) as
YYYY-MM-DD_HH-MM-SS_<destination>_<search>_<status>.txt.`,
		Example: `  travelprism history list --resorts
  travelprism history view 1
  travelprism history view`,
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryViewCmd(a), newHistoryClearCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var resorts, flights, clear bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past searches, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if clear {
				return a.clearHistory(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			filter := ""
			switch {
			case resorts && flights:
				return fmt.Errorf("--resorts and --flights are mutually exclusive")
			case resorts:
				filter = history.CommandResorts
			case flights:
				filter = history.CommandFlights
			}
			return a.listHistory(cmd.OutOrStdout(), filter)
		},
	}
	cmd.Flags().BoolVarP(&resorts, "resorts", "r", false, "only resort searches")
	cmd.Flags().BoolVarP(&flights, "flights", "f", false, "only flight searches")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete all history files")
	return cmd
}

func (a *app) listHistory(w io.Writer, filter string) error {
	entries, err := a.store.List(filter)
	if err != nil {
		return fmt.Errorf("error reading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "No history files found in %s\n", a.store.Dir)
		if filter != "" {
			fmt.Fprintf(w, "(filtered by: %s)\n", filter)
		}
		return nil
	}

	fmt.Fprintf(w, "History files in %s:\n\n", a.store.Dir)
	fmt.Fprintf(w, "%3s  %-16s  %-20s  %-8s  %s\n", "#", "TIMESTAMP", "DESTINATION", "SEARCH", "STATUS")
	fmt.Fprintln(w, strings.Repeat("-", 66))

	for i, entry := range entries {
		line := history.FormatEntry(entry)
		if a.styled() {
			line = tui.FormatHistoryEntryColored(entry)
		}
		fmt.Fprintf(w, "%3d  %s\n", i+1, line)
	}

	fmt.Fprintf(w, "\nTotal: %d entries (max: %d)\n", len(entries), a.store.MaxFiles)
	fmt.Fprintln(w, "\nUse 'travelprism history view <#>' to view a specific entry")
	return nil
}

func newHistoryViewCmd(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "view [#|filename]",
		Short: "Show a past answer; without an argument pick one interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 0 {
				entries, err := a.store.List("")
				if err != nil {
					return fmt.Errorf("error reading history: %w", err)
				}
				if len(entries) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No history files found in %s\n", a.store.Dir)
					return nil
				}
				path, err = tui.RunPicker(entries)
				if err != nil {
					return fmt.Errorf("error running picker: %w", err)
				}
				if path == "" {
					return nil
				}
			} else {
				var err error
				if path, err = a.store.Resolve(args[0]); err != nil {
					return err
				}
			}
			return a.viewHistoryFile(cmd.OutOrStdout(), path, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// viewHistoryFile renders a saved answer the way its search did
func (a *app) viewHistoryFile(w io.Writer, path string, opts renderOptions) error {
	answer, err := history.ReadAnswer(path)
	if err != nil {
		return err
	}

	entry, err := history.EntryForPath(path)
	if err != nil {
		a.logger.Debug("unrecognised history filename, treating as resorts", "path", path, "err", err)
		entry.Command = history.CommandResorts
	}

	title := displayDestination(entry.Destination)
	if entry.Command == history.CommandFlights {
		tui.PrintAnswer(w, "Flights to "+title, answer, a.styled())
		return nil
	}
	return a.renderResorts(w, answer, "Resorts in "+title, opts)
}

// displayDestination turns a sanitized destination back into a readable title
func displayDestination(dest string) string {
	if dest == "" {
		return "saved search"
	}
	words := strings.Split(dest, "-")
	for i, w := range words {
		if r, size := utf8.DecodeRuneInString(w); size > 0 {
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.clearHistory(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// clearHistory asks for confirmation on in, then removes every history file
func (a *app) clearHistory(in io.Reader, w io.Writer) error {
	entries, err := a.store.List("")
	if err != nil {
		return fmt.Errorf("error reading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history files to clear.")
		return nil
	}

	fmt.Fprintf(w, "This will delete %d history files from %s\n", len(entries), a.store.Dir)
	fmt.Fprint(w, "Are you sure? (y/N): ")

	response, _ := bufio.NewReader(in).ReadString('\n')
	if strings.ToLower(strings.TrimSpace(response)) != "y" {
		fmt.Fprintln(w, "Cancelled.")
		return nil
	}

	deleted, err := a.store.Clear()
	fmt.Fprintf(w, "Deleted %d history files.\n", deleted)
	return err
}
