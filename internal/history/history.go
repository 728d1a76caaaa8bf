// Package history manages the storage and retrieval of agent answers.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultDirName is the directory name under $HOME for storing history files
	DefaultDirName = ".travelprism"
	// DefaultMaxFiles is how many history files are kept before the oldest are removed
	DefaultMaxFiles = 100

	// CommandResorts marks an answer to a resort search
	CommandResorts = "resorts"
	// CommandFlights marks an answer to a flight search
	CommandFlights = "flights"

	// StatusSuccess indicates the agent run succeeded
	StatusSuccess = "success"
	// StatusFailed indicates the agent run failed
	StatusFailed = "failed"
	// StatusCancelled indicates the agent run was interrupted
	StatusCancelled = "cancelled"

	timestampLayout = "2006-01-02_15-04-05"
	separator       = "================================================================================"
	resultMarker    = "Agent Result:"
)

// ErrInvalidFilename is returned for files that do not follow the history naming scheme
var ErrInvalidFilename = errors.New("invalid history filename")

var knownCommands = map[string]bool{CommandResorts: true, CommandFlights: true}

// Entry represents a history file entry
type Entry struct {
	Path        string
	Timestamp   time.Time
	Destination string // sanitized search destination
	Command     string // resorts, flights
	Status      string // success, failed, cancelled; empty while running
	Filename    string
}

// Store reads and writes history files in a single directory
type Store struct {
	Dir      string
	MaxFiles int
	now      func() time.Time
}

// NewStore returns a store rooted at dir. maxFiles <= 0 uses DefaultMaxFiles.
func NewStore(dir string, maxFiles int) *Store {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Store{Dir: dir, MaxFiles: maxFiles, now: time.Now}
}

// DefaultDir returns ~/.travelprism
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// ensureDir creates the history directory if it doesn't exist
func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	return nil
}

// GenerateFilename creates a filename for a history entry
// Format: YYYY-MM-DD_HH-MM-SS_<destination>_<command>.txt
func (s *Store) GenerateFilename(command, destination string) string {
	return fmt.Sprintf("%s_%s_%s.txt",
		s.now().Format(timestampLayout),
		SanitizeDestination(destination),
		command,
	)
}

// SanitizeDestination makes a destination safe for filenames.
// Underscores are filename delimiters, so they must be replaced.
func SanitizeDestination(name string) string {
	replacer := strings.NewReplacer(
		"_", "-",
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		".", "-",
		",", "",
		"'", "",
	)
	name = strings.ToLower(replacer.Replace(strings.TrimSpace(name)))

	if runes := []rune(name); len(runes) > 30 {
		name = string(runes[:30])
	}
	if name == "" {
		name = "anywhere"
	}

	// A destination named like a command would confuse parseFilename
	if knownCommands[name] {
		name += "-dest"
	}
	return name
}

// Create writes a new history file and returns its path
func (s *Store) Create(command, destination, content string) (string, error) {
	if !knownCommands[command] {
		return "", fmt.Errorf("unknown command: %s", command)
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	path := filepath.Join(s.Dir, s.GenerateFilename(command, destination))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write history file: %w", err)
	}
	return path, nil
}

// Append appends content to an existing history file
func (s *Store) Append(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to append to history file: %w", err)
	}
	return nil
}

// SetStatus renames a history file to include the status
// e.g., 2025-06-01_10-30-00_maui_resorts.txt -> 2025-06-01_10-30-00_maui_resorts_success.txt
func (s *Store) SetStatus(oldPath, status string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(oldPath), ".txt")
	newPath := filepath.Join(filepath.Dir(oldPath), fmt.Sprintf("%s_%s.txt", base, status))

	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("failed to rename history file: %w", err)
	}
	return newPath, nil
}

// List returns history entries sorted newest first, optionally filtered by command
func (s *Store) List(filterCommand string) ([]Entry, error) {
	files, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}

		entry, err := parseFilename(f.Name())
		if err != nil {
			continue // Skip files that don't match our format
		}
		if filterCommand != "" && entry.Command != filterCommand {
			continue
		}

		entry.Path = filepath.Join(s.Dir, f.Name())
		entry.Filename = f.Name()
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// Resolve maps a 1-based index (1 = most recent) or a filename to a path
func (s *Store) Resolve(target string) (string, error) {
	index, err := strconv.Atoi(target)
	if err != nil {
		return filepath.Join(s.Dir, filepath.Base(target)), nil
	}
	if index < 1 {
		return "", fmt.Errorf("index must be 1 or greater")
	}

	entries, err := s.List("")
	if err != nil {
		return "", err
	}
	if index > len(entries) {
		return "", fmt.Errorf("index %d out of range (only %d entries)", index, len(entries))
	}
	return entries[index-1].Path, nil
}

// EntryForPath describes the history file at path from its name alone
func EntryForPath(path string) (Entry, error) {
	entry, err := parseFilename(filepath.Base(path))
	if err != nil {
		return Entry{}, err
	}
	entry.Path = path
	entry.Filename = filepath.Base(path)
	return entry, nil
}

// Cleanup removes the oldest files beyond MaxFiles and returns how many were deleted
func (s *Store) Cleanup() (int, error) {
	entries, err := s.List("")
	if err != nil {
		return 0, err
	}
	if len(entries) <= s.MaxFiles {
		return 0, nil
	}

	deleted := 0
	for _, entry := range entries[s.MaxFiles:] {
		if err := os.Remove(entry.Path); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", entry.Filename, err)
		}
		deleted++
	}
	return deleted, nil
}

// Clear removes every history file and returns how many were deleted
func (s *Store) Clear() (int, error) {
	entries, err := s.List("")
	if err != nil {
		return 0, err
	}

	deleted := 0
	var errs []error
	for _, entry := range entries {
		if err := os.Remove(entry.Path); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", entry.Filename, err))
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}

// parseFilename parses a history filename into an Entry
// Format: YYYY-MM-DD_HH-MM-SS_<destination>_<command>[_<status>].txt
func parseFilename(filename string) (Entry, error) {
	parts := strings.Split(strings.TrimSuffix(filename, ".txt"), "_")
	if len(parts) < 4 || len(parts) > 5 {
		return Entry{}, fmt.Errorf("%w: %s", ErrInvalidFilename, filename)
	}

	timestamp, err := time.ParseInLocation(timestampLayout, parts[0]+"_"+parts[1], time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: bad timestamp: %v", ErrInvalidFilename, err)
	}

	entry := Entry{
		Timestamp:   timestamp,
		Destination: parts[2],
		Command:     parts[3],
	}
	if len(parts) == 5 {
		entry.Status = parts[4]
	}

	if !knownCommands[entry.Command] {
		return Entry{}, fmt.Errorf("%w: unknown command %q", ErrInvalidFilename, entry.Command)
	}
	return entry, nil
}

// FormatEntry formats an entry for display
func FormatEntry(e Entry) string {
	status := ""
	switch e.Status {
	case StatusSuccess:
		status = "[SUCCESS]"
	case StatusFailed:
		status = "[FAILED]"
	case StatusCancelled:
		status = "[CANCELLED]"
	}

	return fmt.Sprintf("%s  %-20s  %-8s  %-12s",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		TruncateText(e.Destination, 20),
		e.Command,
		status,
	)
}

// TruncateText shortens s to max characters, marking the cut with "..."
func TruncateText(s string, max int) string {
	if s == "" {
		return "-"
	}
	runes := []rune(s)
	if len(runes) <= max || max <= 3 {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// CreateHeader creates the header written before an agent answer
func CreateHeader(command, agentCmd string, args []string, task string, at time.Time) string {
	return fmt.Sprintf(`%s
Travel-Prism History Log
%s
Timestamp:   %s
Search:      %s
Agent:       %s %s
Task:        %s
%s

`, separator, separator,
		at.Format("2006-01-02 15:04:05 MST"),
		command,
		agentCmd, strings.Join(args, " "),
		strings.Join(strings.Fields(task), " "),
		separator,
	)
}

// CreateResultFooter creates the footer appended after an agent run
func CreateResultFooter(status string, err error, at time.Time) string {
	errMsg := ""
	if err != nil {
		errMsg = fmt.Sprintf("\nError:       %v", err)
	}

	return fmt.Sprintf(`
%s
%s %s
Completed:     %s%s
%s
`, separator, resultMarker, strings.ToUpper(status), at.Format("2006-01-02 15:04:05 MST"), errMsg, separator)
}

// ExtractAnswer strips the header and footer from history file content,
// leaving the agent answer. Content without a header is returned as is.
func ExtractAnswer(content string) string {
	answer := content
	if strings.HasPrefix(content, separator+"\n") {
		parts := strings.SplitN(content, separator+"\n", 4)
		if len(parts) == 4 {
			answer = strings.TrimPrefix(parts[3], "\n")
		}
	}

	if idx := strings.LastIndex(answer, "\n"+separator+"\n"+resultMarker); idx >= 0 {
		answer = answer[:idx]
	}
	return answer
}

// ReadAnswer reads a history file and returns the agent answer it holds
func ReadAnswer(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read history file: %w", err)
	}
	return ExtractAnswer(string(data)), nil
}
