package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CaptShanks/travelprism/internal/history"
)

const pickerWidth = 75

// pickerKeys are the normal-mode bindings of the history picker
var pickerKeys = struct {
	search, quit, back, choose, down, up, top, bottom key.Binding
}{
	search: key.NewBinding(key.WithKeys("/")),
	quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	back:   key.NewBinding(key.WithKeys("esc")),
	choose: key.NewBinding(key.WithKeys("enter", " ")),
	down:   key.NewBinding(key.WithKeys("j", "down")),
	up:     key.NewBinding(key.WithKeys("k", "up")),
	top:    key.NewBinding(key.WithKeys("g")),
	bottom: key.NewBinding(key.WithKeys("G")),
}

// PickerModel is a TUI for selecting a past search
type PickerModel struct {
	allEntries []history.Entry
	filtered   []history.Entry
	cursor     int
	selected   string // Path of selected entry
	quitting   bool

	searching   bool
	searchQuery string
}

// NewPickerModel creates a new history picker
func NewPickerModel(entries []history.Entry) PickerModel {
	return PickerModel{
		allEntries: entries,
		filtered:   entries,
	}
}

// SelectedPath returns the path of the selected entry (empty if cancelled)
func (m PickerModel) SelectedPath() string {
	return m.selected
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

// filterEntries keeps entries matching every space-separated term of the query
func (m *PickerModel) filterEntries() {
	terms := strings.Fields(strings.ToLower(m.searchQuery))
	if len(terms) == 0 {
		m.filtered = m.allEntries
		return
	}

	var results []history.Entry
	for _, entry := range m.allEntries {
		searchable := strings.ToLower(strings.Join([]string{
			entry.Destination,
			entry.Command,
			entry.Status,
			entry.Timestamp.Format("2006-01-02 15:04"),
			entry.Filename,
		}, " "))

		allMatch := true
		for _, term := range terms {
			if !strings.Contains(searchable, term) {
				allMatch = false
				break
			}
		}
		if allMatch {
			results = append(results, entry)
		}
	}

	m.filtered = results
	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

func (m PickerModel) updateSearch(msg tea.KeyMsg) PickerModel {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchQuery = ""
	case tea.KeyEnter:
		m.searching = false
		return m
	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
		}
	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
	case tea.KeySpace:
		m.searchQuery += " "
	default:
		return m
	}
	m.filterEntries()
	return m
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.searching {
		return m.updateSearch(keyMsg), nil
	}

	switch {
	case key.Matches(keyMsg, pickerKeys.search):
		m.searching = true

	case key.Matches(keyMsg, pickerKeys.quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, pickerKeys.back):
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.filterEntries()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, pickerKeys.choose):
		if len(m.filtered) > 0 {
			m.selected = m.filtered[m.cursor].Path
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, pickerKeys.down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, pickerKeys.up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, pickerKeys.top):
		m.cursor = 0

	case key.Matches(keyMsg, pickerKeys.bottom):
		m.cursor = max(len(m.filtered)-1, 0)
	}
	return m, nil
}

// statusLabel returns the bracketed status and its color
func statusLabel(status string) (string, lipgloss.Color) {
	switch status {
	case history.StatusSuccess:
		return "[SUCCESS]", amenityColor
	case history.StatusFailed:
		return "[FAILED]", missingColor
	case history.StatusCancelled:
		return "[CANCELLED]", restaurantColor
	default:
		return "", mutedColorVal
	}
}

// FormatHistoryEntryColored formats one row of `history list` with a colored status
func FormatHistoryEntryColored(e history.Entry) string {
	label, color := statusLabel(e.Status)
	return fmt.Sprintf("%-16s  %-20s  %-8s  %s",
		e.Timestamp.Format("2006-01-02 15:04"),
		history.TruncateText(e.Destination, 20),
		e.Command,
		lipgloss.NewStyle().Foreground(color).Render(label),
	)
}

func (m PickerModel) renderEntry(i int, entry history.Entry) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}
	label, color := statusLabel(entry.Status)
	base := fmt.Sprintf("%s%2d  %s  %-18s  %-8s  ",
		cursor,
		i+1,
		entry.Timestamp.Format("2006-01-02 15:04:05"),
		history.TruncateText(entry.Destination, 18),
		entry.Command,
	)

	if i != m.cursor {
		return base + lipgloss.NewStyle().Foreground(color).Render(label)
	}

	// Full-width highlight for the selected row
	line := base + label
	if len(line) < pickerWidth {
		line += strings.Repeat(" ", pickerWidth-len(line))
	}
	return lipgloss.NewStyle().
		Background(selectedBg).
		Foreground(textColor).
		Bold(true).
		Render(line)
}

func (m PickerModel) viewFooter() string {
	footer := lipgloss.NewStyle().Foreground(mutedColorVal)
	highlight := lipgloss.NewStyle().Foreground(restaurantColor)

	switch {
	case m.searching:
		return highlight.Bold(true).Render("/ ") + m.searchQuery + "█"
	case m.searchQuery != "":
		return highlight.Render("Filter: "+m.searchQuery) +
			footer.Render(fmt.Sprintf("  (%d/%d)", len(m.filtered), len(m.allEntries))) + "\n" +
			footer.Render("j/k: navigate  enter: select  esc: clear filter  q: cancel")
	default:
		return footer.Render("j/k: navigate  /: search  enter: select  q: cancel")
	}
}

func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Select a past search to view"))
	b.WriteString("\n\n")

	columns := lipgloss.NewStyle().Foreground(mutedColorVal).Bold(true)
	b.WriteString(columns.Render("     TIMESTAMP            DESTINATION         SEARCH    STATUS"))
	b.WriteString("\n")
	b.WriteString(columns.Render(strings.Repeat("─", pickerWidth)))
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		empty := mutedColor.Italic(true)
		if m.searchQuery != "" {
			b.WriteString(empty.Render(fmt.Sprintf("  No results for '%s'", m.searchQuery)))
		} else {
			b.WriteString(empty.Render("  No past searches"))
		}
		b.WriteString("\n")
	}
	for i, entry := range m.filtered {
		b.WriteString(m.renderEntry(i, entry))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

// RunPicker runs the interactive history picker and returns the selected path
func RunPicker(entries []history.Entry) (string, error) {
	finalModel, err := tea.NewProgram(NewPickerModel(entries)).Run()
	if err != nil {
		return "", err
	}
	return finalModel.(PickerModel).SelectedPath(), nil
}
