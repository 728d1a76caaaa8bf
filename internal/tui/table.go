package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/travelprism/internal/parser"
)

// ResortHeaders are the fixed column headers of the resort table
var ResortHeaders = []string{"Resort Name", "Location", "Key Amenities", "Restaurants", "Spa Offerings"}

// columnFields maps each table column to the record field it shows
var columnFields = []parser.Field{
	parser.FieldName,
	parser.FieldLocation,
	parser.FieldAmenity,
	parser.FieldRestaurant,
	parser.FieldSpa,
}

const (
	// missingValue is shown for an empty name or location
	missingValue = "N/A"
	// cellWidth is the wrap width for a single cell line
	cellWidth = 32
)

// plainRenderer never emits ANSI sequences, whatever the terminal supports
var plainRenderer = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}()

// ResortRows converts records to table rows in column order
func ResortRows(records []parser.ResortRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			scalarCell(r.Name),
			scalarCell(r.Location),
			listCell(r.Amenities),
			listCell(r.Restaurants),
			listCell(r.SpaOfferings),
		})
	}
	return rows
}

func scalarCell(s string) string {
	if s == "" {
		return missingValue
	}
	return wordwrap.String(s, cellWidth)
}

func listCell(items []string) string {
	wrapped := make([]string, len(items))
	for i, item := range items {
		wrapped[i] = wordwrap.String(item, cellWidth)
	}
	return strings.Join(wrapped, "\n")
}

// RenderResortTable renders records as a grid table. With styled set the
// table uses the current palette; otherwise the output is plain ASCII.
func RenderResortTable(records []parser.ResortRecord, styled bool) string {
	t := table.New().
		Headers(ResortHeaders...).
		Rows(ResortRows(records)...).
		BorderRow(true)

	if !styled {
		cell := plainRenderer.NewStyle().Padding(0, 1)
		return t.
			Border(lipgloss.ASCIIBorder()).
			BorderStyle(plainRenderer.NewStyle()).
			StyleFunc(func(row, col int) lipgloss.Style { return cell }).
			String()
	}

	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return nameStyle.Padding(0, 1)
			}
			return GetFieldStyle(columnFields[col]).Padding(0, 1)
		}).
		String()
}

// FormatResortResult parses an agent answer and renders it as a resort table.
// When parsing or rendering fails the answer is returned verbatim and ok is
// false; callers that only display the result may ignore ok.
func FormatResortResult(text string, styled bool) (out string, ok bool) {
	out, _, ok = formatResorts(text, styled)
	return out, ok
}

// formatResorts is FormatResortResult that also reports how many records
// the table holds.
func formatResorts(text string, styled bool) (out string, count int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("rendering failed, falling back to raw answer", "panic", fmt.Sprint(r))
			out, count, ok = text, 0, false
		}
	}()

	records, err := parser.Parse(text)
	if err != nil {
		log.Debug("parsing failed, falling back to raw answer", "err", err)
		return text, 0, false
	}
	log.Debug("parsed agent answer", "records", len(records), "sections", parser.CountQualifyingSections(text))
	return RenderResortTable(records, styled), len(records), true
}
