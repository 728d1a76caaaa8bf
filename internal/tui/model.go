package tui

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CaptShanks/travelprism/internal/parser"
	"github.com/CaptShanks/travelprism/internal/updater"
)

// Model represents the TUI state of the resort viewer
type Model struct {
	records          []parser.ResortRecord
	title            string
	cursor           int
	expanded         map[int]bool
	viewport         viewport.Model
	ready            bool
	width            int
	height           int
	searching        bool
	searchInput      textinput.Model
	searchQuery      string
	searchMatches    []int // record indices matching the query, in display order
	currentMatch     int
	pendingG         bool  // Track if 'g' was pressed, waiting for second 'g'
	recordLineStarts []int // rendered line offset per displayed record
	contentLineCount int

	sortOrder SortOrder

	// Update nudge
	checker         *updater.Checker
	currentVersion  string
	updateAvailable string
}

// UpdateAvailableMsg is sent when an update check finds a newer version.
type UpdateAvailableMsg struct {
	Version string
}

// SortOrder defines how records are ordered
type SortOrder string

const (
	SortDefault    SortOrder = "default"
	SortByName     SortOrder = "name"
	SortByLocation SortOrder = "location"
)

// sortOptions is the cycle order for the sort key
var sortOptions = []SortOrder{SortDefault, SortByName, SortByLocation}

// NewModel creates a new viewer for records. checker may be nil to skip update checks.
func NewModel(records []parser.ResortRecord, title, version string, checker *updater.Checker) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		records:        records,
		title:          title,
		expanded:       make(map[int]bool),
		searchInput:    ti,
		searchMatches:  []int{},
		sortOrder:      SortDefault,
		checker:        checker,
		currentVersion: version,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if m.currentVersion == "" || m.checker == nil {
		return nil
	}
	return checkUpdateCmd(m.checker, m.currentVersion)
}

// checkUpdateCmd runs an async update check and sends UpdateAvailableMsg if an update is available.
func checkUpdateCmd(checker *updater.Checker, version string) tea.Cmd {
	return func() tea.Msg {
		latest, hasUpdate, err := checker.CheckLatestWithCache(version)
		if err != nil || !hasUpdate {
			return nil
		}
		return UpdateAvailableMsg{Version: latest}
	}
}

// sortedRecords returns record indices in the current sort order
func (m *Model) sortedRecords() []int {
	indices := make([]int, len(m.records))
	for i := range m.records {
		indices[i] = i
	}
	if m.sortOrder == SortDefault || m.sortOrder == "" {
		return indices
	}
	sort.SliceStable(indices, func(i, j int) bool {
		ri := m.records[indices[i]]
		rj := m.records[indices[j]]
		switch m.sortOrder {
		case SortByName:
			return strings.ToLower(ri.Name) < strings.ToLower(rj.Name)
		case SortByLocation:
			li, lj := strings.ToLower(ri.Location), strings.ToLower(rj.Location)
			if li != lj {
				return li < lj
			}
			return strings.ToLower(ri.Name) < strings.ToLower(rj.Name)
		}
		return false
	})
	return indices
}

// displayedRecords returns sorted indices, narrowed to search matches when a query is set
func (m *Model) displayedRecords() []int {
	if m.searchQuery == "" {
		return m.sortedRecords()
	}
	return m.searchMatches
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case UpdateAvailableMsg:
		m.updateAvailable = msg.Version
		if m.ready && m.height > 0 {
			m.viewport.Height = m.height - headerHeight - footerHeight - 1
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		footer := footerHeight
		if m.updateAvailable != "" {
			footer++
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footer)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footer
		}
		m.updateViewportContent()

	case tea.KeyMsg:
		if !m.searching {
			return m.handleNormalKey(msg)
		}
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchQuery = m.searchInput.Value()
			m.performSearch()
			m.updateViewportContent()
		case "esc":
			m.searching = false
			m.clearSearch()
		default:
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.searchQuery = m.searchInput.Value()
			m.performSearch()
			m.updateViewportContent()
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

const (
	headerHeight = 4 // Title + summary + blank line
	footerHeight = 3 // Help text
)

// normalKeyHandler handles a single key in normal mode
type normalKeyHandler func(m Model) (Model, tea.Cmd)

var normalKeyHandlers = map[string]normalKeyHandler{
	"q":         func(m Model) (Model, tea.Cmd) { return m, tea.Quit },
	"ctrl+c":    func(m Model) (Model, tea.Cmd) { return m, tea.Quit },
	"up":        handleKeyUp,
	"k":         handleKeyUp,
	"down":      handleKeyDown,
	"j":         handleKeyDown,
	"enter":     handleKeyToggle,
	" ":         handleKeyToggle,
	"l":         handleKeyExpandCurrent,
	"right":     handleKeyExpandCurrent,
	"h":         handleKeyCollapseCurrent,
	"left":      handleKeyCollapseCurrent,
	"backspace": handleKeyCollapseCurrent,
	"e":         handleKeyExpandAll,
	"c":         handleKeyCollapseAll,
	"s":         handleKeySort,
	"/":         handleKeySearch,
	"n":         handleKeyNextMatch,
	"N":         handleKeyPrevMatch,
	"esc":       handleKeyEsc,
	"d":         handleKeyHalfPageDown,
	"ctrl+d":    handleKeyHalfPageDown,
	"u":         handleKeyHalfPageUp,
	"ctrl+u":    handleKeyHalfPageUp,
	"g":         handleKeyG,
	"G":         handleKeyBottom,
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "g" {
		m.pendingG = false
	}
	if handler, ok := normalKeyHandlers[key]; ok {
		return handler(m)
	}
	return m, nil
}

func handleKeyUp(m Model) (Model, tea.Cmd) {
	if m.cursor > 0 {
		m.cursor--
		m.updateViewportContent()
		m.ensureCursorVisible()
	} else {
		m.viewport.SetYOffset(m.viewport.YOffset - 1)
	}
	return m, nil
}

func handleKeyDown(m Model) (Model, tea.Cmd) {
	if m.cursor < len(m.displayedRecords())-1 {
		m.cursor++
		m.updateViewportContent()
		m.ensureCursorVisible()
	} else {
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	}
	return m, nil
}

func handleKeyToggle(m Model) (Model, tea.Cmd) {
	if idx, ok := m.currentRecord(); ok {
		m.expanded[idx] = !m.expanded[idx]
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

func handleKeyExpandCurrent(m Model) (Model, tea.Cmd) {
	if idx, ok := m.currentRecord(); ok {
		m.expanded[idx] = true
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

func handleKeyCollapseCurrent(m Model) (Model, tea.Cmd) {
	if idx, ok := m.currentRecord(); ok {
		m.expanded[idx] = false
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

func handleKeyExpandAll(m Model) (Model, tea.Cmd) {
	for _, idx := range m.displayedRecords() {
		m.expanded[idx] = true
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

func handleKeyCollapseAll(m Model) (Model, tea.Cmd) {
	for _, idx := range m.displayedRecords() {
		m.expanded[idx] = false
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

// handleKeySort cycles through the sort orders
func handleKeySort(m Model) (Model, tea.Cmd) {
	next := 0
	for i, opt := range sortOptions {
		if opt == m.sortOrder {
			next = (i + 1) % len(sortOptions)
			break
		}
	}
	m.sortOrder = sortOptions[next]
	m.cursor = 0
	if m.searchQuery != "" {
		m.performSearch()
	}
	m.updateViewportContent()
	m.viewport.GotoTop()
	return m, nil
}

func handleKeySearch(m Model) (Model, tea.Cmd) {
	m.searching = true
	m.searchInput.Focus()
	return m, textinput.Blink
}

func handleKeyNextMatch(m Model) (Model, tea.Cmd) {
	if n := len(m.searchMatches); m.searchQuery != "" && n > 0 {
		m.currentMatch = (m.currentMatch + 1) % n
		m.cursor = m.currentMatch
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil
}

func handleKeyPrevMatch(m Model) (Model, tea.Cmd) {
	if n := len(m.searchMatches); m.searchQuery != "" && n > 0 {
		m.currentMatch--
		if m.currentMatch < 0 {
			m.currentMatch = n - 1
		}
		m.cursor = m.currentMatch
		m.updateViewportContent()
		m.ensureCursorVisible()
	}
	return m, nil
}

func handleKeyEsc(m Model) (Model, tea.Cmd) {
	m.clearSearch()
	return m, nil
}

func handleKeyHalfPageDown(m Model) (Model, tea.Cmd) {
	m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
	return m, nil
}

func handleKeyHalfPageUp(m Model) (Model, tea.Cmd) {
	offset := m.viewport.YOffset - m.viewport.Height/2
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
	return m, nil
}

// handleKeyG implements gg (go to top)
func handleKeyG(m Model) (Model, tea.Cmd) {
	if !m.pendingG {
		m.pendingG = true
		return m, nil
	}
	m.pendingG = false
	m.cursor = 0
	m.updateViewportContent()
	m.viewport.GotoTop()
	return m, nil
}

func handleKeyBottom(m Model) (Model, tea.Cmd) {
	if n := len(m.displayedRecords()); n > 0 {
		m.cursor = n - 1
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil
}

// currentRecord returns the record index under the cursor
func (m *Model) currentRecord() (int, bool) {
	displayed := m.displayedRecords()
	if m.cursor < 0 || m.cursor >= len(displayed) {
		return 0, false
	}
	return displayed[m.cursor], true
}

func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.searchMatches = []int{}
	m.currentMatch = 0
	m.searchInput.SetValue("")
	m.clampCursor()
	m.updateViewportContent()
}

func (m *Model) clampCursor() {
	n := len(m.displayedRecords())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// fuzzyMatch returns true if all characters in query appear in text in order
// (not necessarily consecutive). E.g. "wlea" matches "wailea".
func fuzzyMatch(text, query string) bool {
	text = strings.ToLower(text)
	query = strings.ToLower(query)
	if query == "" {
		return true
	}
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			qi++
		}
	}
	return qi == len(query)
}

// searchableText is what a query is matched against for a record
func searchableText(r parser.ResortRecord) string {
	parts := []string{r.Name, r.Location}
	parts = append(parts, r.Amenities...)
	parts = append(parts, r.Restaurants...)
	parts = append(parts, r.SpaOfferings...)
	return strings.ToLower(strings.Join(parts, " "))
}

func (m *Model) performSearch() {
	m.searchMatches = []int{}
	m.currentMatch = 0

	terms := strings.Fields(strings.ToLower(m.searchQuery))
	if len(terms) == 0 {
		m.clampCursor()
		return
	}

	for _, idx := range m.sortedRecords() {
		searchable := searchableText(m.records[idx])
		allMatch := true
		for _, term := range terms {
			if !fuzzyMatch(searchable, term) {
				allMatch = false
				break
			}
		}
		if allMatch {
			m.searchMatches = append(m.searchMatches, idx)
		}
	}
	m.cursor = 0
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRecords())
}

// ensureCursorVisible scrolls the viewport to make the current cursor visible
func (m *Model) ensureCursorVisible() {
	if !m.ready || m.cursor < 0 || m.cursor >= len(m.recordLineStarts) {
		return
	}

	lineNum := m.recordLineStarts[m.cursor]
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1

	if lineNum < top {
		m.viewport.SetYOffset(lineNum)
	} else if lineNum > bottom {
		offset := lineNum - m.viewport.Height + 1
		if offset < 0 {
			offset = 0
		}
		m.viewport.SetYOffset(offset)
	}
}

func (m *Model) renderRecords() string {
	var b strings.Builder
	lineCount := 0

	displayed := m.displayedRecords()
	m.recordLineStarts = make([]int, len(displayed))

	if len(displayed) == 0 {
		if m.searchQuery != "" {
			b.WriteString(mutedColor.Render(fmt.Sprintf("No resorts match search '%s'. Press Esc to clear.", m.searchQuery)))
		} else {
			b.WriteString(mutedColor.Render("No resorts found in this answer."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for displayIdx, idx := range displayed {
		m.recordLineStarts[displayIdx] = lineCount
		r := m.records[idx]

		b.WriteString(m.renderRecordLine(r, m.expanded[idx], displayIdx == m.cursor))
		b.WriteString("\n")
		lineCount++

		if m.expanded[idx] {
			details := m.renderDetails(r)
			b.WriteString(details)
			lineCount += strings.Count(details, "\n")
		}
	}

	m.contentLineCount = lineCount

	b.WriteString("\n")
	b.WriteString(mutedColor.Render("── End of Results ──"))
	b.WriteString("\n")

	// Padding so the last record's details can scroll fully into view
	for i := 0; i < m.viewport.Height; i++ {
		b.WriteString("\n")
	}

	return b.String()
}

func itemCount(r parser.ResortRecord) int {
	return len(r.Amenities) + len(r.Restaurants) + len(r.SpaOfferings)
}

func (m Model) renderRecordLine(r parser.ResortRecord, expanded, selected bool) string {
	indicator := collapsedIndicator
	plainIndicator := "▶"
	if expanded {
		indicator = expandedIndicator
		plainIndicator = "▼"
	}

	name := r.Name
	if name == "" {
		name = missingValue
	}
	location := r.Location
	if location == "" {
		location = missingValue
	}
	count := fmt.Sprintf("(%d details)", itemCount(r))

	if selected {
		line := fmt.Sprintf("%s %s  %s %s", plainIndicator, name, location, count)
		if target := m.width - 4; target > 0 && lipgloss.Width(line) < target {
			line += strings.Repeat(" ", target-lipgloss.Width(line))
		}
		return selectedStyle.Foreground(nameColor).Bold(true).Render(line)
	}

	if m.searchQuery != "" {
		name = highlightMatch(name, m.searchQuery)
	}
	return fmt.Sprintf("%s %s  %s %s",
		indicator,
		nameStyle.Render(name),
		GetFieldStyle(parser.FieldLocation).Render(location),
		mutedColor.Render(count),
	)
}

// renderDetails renders the expanded fields of a record, one labelled block per field
func (m Model) renderDetails(r parser.ResortRecord) string {
	var b strings.Builder
	width := m.viewport.Width - 6

	sections := []struct {
		label string
		field parser.Field
		items []string
	}{
		{"Amenities", parser.FieldAmenity, r.Amenities},
		{"Restaurants", parser.FieldRestaurant, r.Restaurants},
		{"Spa", parser.FieldSpa, r.SpaOfferings},
	}

	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		b.WriteString("    ")
		b.WriteString(fieldLabelStyle.Render(s.label))
		b.WriteString("\n")
		style := GetFieldStyle(s.field)
		for _, item := range s.items {
			for _, line := range strings.Split(wrapText(item, width), "\n") {
				b.WriteString("      ")
				b.WriteString(style.Render(line))
				b.WriteString("\n")
			}
		}
	}

	if b.Len() == 0 {
		b.WriteString("    ")
		b.WriteString(mutedColor.Render("no amenities, restaurants or spa offerings listed"))
		b.WriteString("\n")
	}
	return b.String()
}

func wrapText(s string, width int) string {
	if width <= 10 {
		return s
	}
	return wordwrap.String(s, width)
}

func highlightMatch(text, query string) string {
	start, end, ok := findFold(text, query)
	if !ok {
		return text
	}
	return text[:start] + matchStyle.Render(text[start:end]) + text[end:]
}

// findFold returns the byte range in text of the first case-insensitive
// occurrence of query. Offsets always fall on rune boundaries of text.
func findFold(text, query string) (start, end int, ok bool) {
	if query == "" {
		return 0, 0, false
	}
	for i := range text {
		j := i
		matched := true
		for _, qr := range query {
			if j >= len(text) {
				matched = false
				break
			}
			tr, size := utf8.DecodeRuneInString(text[j:])
			if !equalFoldRune(tr, qr) {
				matched = false
				break
			}
			j += size
		}
		if matched {
			return i, j, true
		}
	}
	return 0, 0, false
}

func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// sortOrderLabel returns a display label for a sort option
func sortOrderLabel(opt SortOrder) string {
	switch opt {
	case SortDefault:
		return "answer order"
	case SortByName:
		return "by name"
	case SortByLocation:
		return "by location"
	default:
		return string(opt)
	}
}

func (m Model) viewHeader() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("🔺 Travel-Prism - " + m.title))
	b.WriteString("\n")
	summary := fmt.Sprintf("  %d resorts • sorted %s", len(m.records), sortOrderLabel(m.sortOrder))
	b.WriteString(summaryStyle.Render(summary))
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) viewSearchBar() string {
	if m.searching {
		return searchStyle.Render("Search: ") + m.searchInput.View() + "\n\n"
	}
	if m.searchQuery != "" {
		current := 0
		if len(m.searchMatches) > 0 {
			current = m.currentMatch + 1
		}
		return searchStyle.Render(fmt.Sprintf("Search: %q (%d/%d matches)", m.searchQuery, current, len(m.searchMatches))) + "\n\n"
	}
	return ""
}

func (m Model) viewUpdateNudge() string {
	if m.updateAvailable == "" {
		return ""
	}
	nudgeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Italic(true)
	return "\n" + nudgeStyle.Render(fmt.Sprintf("Update available: v%s. Run 'travelprism upgrade' to update.", m.updateAvailable))
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString(m.viewSearchBar())
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k/↑↓: navigate • l/h: expand/collapse • e/c: all • gg/G: top/bottom • /: search • s: sort • q: quit"))
	b.WriteString(m.viewUpdateNudge())
	return appStyle.Render(b.String())
}

// RunViewer opens the interactive viewer for records
func RunViewer(records []parser.ResortRecord, title, version string, checker *updater.Checker) error {
	p := tea.NewProgram(
		NewModel(records, title, version, checker),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
