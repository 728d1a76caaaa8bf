package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/travelprism/internal/parser"
)

func init() {
	// Force color output even when not a TTY (for piping)
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// PrintResorts writes the resort table for an agent answer (non-interactive mode).
// If the answer cannot be parsed it is written unchanged.
func PrintResorts(w io.Writer, answer string, styled bool) {
	out, count, ok := formatResorts(answer, styled)
	if !ok {
		fmt.Fprintln(w, out)
		return
	}

	if styled {
		fmt.Fprintln(w, headerStyle.Render("🔺 Travel-Prism - Resort Search"))
	}
	fmt.Fprintln(w, out)
	fmt.Fprintln(w, summaryLine(count, styled))
}

// PrintAnswer writes an agent answer verbatim with a title (used for flight results)
func PrintAnswer(w io.Writer, title, answer string, styled bool) {
	if styled {
		fmt.Fprintln(w, headerStyle.Render("🔺 Travel-Prism - "+title))
		for _, line := range strings.Split(strings.TrimRight(answer, "\n"), "\n") {
			fmt.Fprintln(w, colorizeAnswerLine(line))
		}
		return
	}
	fmt.Fprintln(w, answer)
}

// colorizeAnswerLine highlights lines that name a known field
func colorizeAnswerLine(line string) string {
	field := parser.Classify(strings.TrimSpace(line), false)
	if field == parser.FieldNone {
		return lipgloss.NewStyle().Foreground(textColor).Render(line)
	}
	return GetFieldStyle(field).Render(line)
}

func summaryLine(count int, styled bool) string {
	noun := "resorts"
	if count == 1 {
		noun = "resort"
	}
	text := fmt.Sprintf("%d %s found", count, noun)
	if !styled {
		return text
	}
	return mutedColor.Render(text)
}

