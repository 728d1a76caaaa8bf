package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CaptShanks/travelprism/internal/parser"
	"github.com/CaptShanks/travelprism/internal/tui"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// renderOptions selects how resort answers are shown
type renderOptions struct {
	interactive bool
	format      string
}

func (o *renderOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.interactive, "interactive", "i", false, "open the interactive resort viewer")
	cmd.Flags().StringVarP(&o.format, "output", "o", formatTable, "output format: table, json or yaml")
}

func (o renderOptions) validate() error {
	switch o.format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: want table, json or yaml", o.format)
	}
}

// renderResorts writes a resort answer in the chosen format
func (a *app) renderResorts(w io.Writer, answer, title string, opts renderOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	if opts.format != formatTable {
		return writeRecords(w, opts.format, answer)
	}

	if opts.interactive {
		records, err := parser.Parse(answer)
		if err == nil && len(records) > 0 {
			return tui.RunViewer(records, title, version, a.checker)
		}
		a.logger.Warn("nothing to browse, printing the answer instead", "records", len(records), "err", err)
	}

	tui.PrintResorts(w, answer, a.styled())
	return nil
}

// writeRecords encodes the parsed records of answer as JSON or YAML
func writeRecords(w io.Writer, format, answer string) error {
	records, err := parser.Parse(answer)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
