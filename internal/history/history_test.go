package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxFiles int) (*Store, *time.Time) {
	t.Helper()
	clock := time.Date(2025, 6, 1, 10, 30, 0, 0, time.Local)
	s := NewStore(t.TempDir(), maxFiles)
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestSanitizeDestination(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Maui", "maui"},
		{"Punta Mita, Mexico", "punta-mita-mexico"},
		{"ka_anapali", "ka-anapali"},
		{"", "anywhere"},
		{"resorts", "resorts-dest"},
		{"A very long destination name that keeps going", "a-very-long-destination-name-t"},
		{"Île de Ré, Nouvelle-Aquitaine, França", "île-de-ré-nouvelle-aquitaine-f"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeDestination(tt.in), "input %q", tt.in)
	}
}

func TestCreateAndList(t *testing.T) {
	s, clock := newTestStore(t, 0)

	first, err := s.Create(CommandResorts, "Maui", "answer one")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01_10-30-00_maui_resorts.txt", filepath.Base(first))

	*clock = clock.Add(time.Minute)
	_, err = s.Create(CommandFlights, "OGG", "answer two")
	require.NoError(t, err)

	entries, err := s.List("")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, CommandFlights, entries[0].Command, "newest first")
	assert.Equal(t, "ogg", entries[0].Destination)
	assert.Equal(t, CommandResorts, entries[1].Command)

	resorts, err := s.List(CommandResorts)
	require.NoError(t, err)
	require.Len(t, resorts, 1)
	assert.Equal(t, "maui", resorts[0].Destination)
}

func TestCreateUnknownCommand(t *testing.T) {
	s, _ := newTestStore(t, 0)
	_, err := s.Create("cruises", "Maui", "x")
	assert.Error(t, err)
}

func TestListMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing"), 0)
	entries, err := s.List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListSkipsForeignFiles(t *testing.T) {
	s, _ := newTestStore(t, 0)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "update-check"), []byte("{}"), 0644))

	entries, err := s.List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetStatus(t *testing.T) {
	s, _ := newTestStore(t, 0)
	path, err := s.Create(CommandResorts, "Maui", "answer")
	require.NoError(t, err)

	newPath, err := s.SetStatus(path, StatusSuccess)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01_10-30-00_maui_resorts_success.txt", filepath.Base(newPath))

	entries, err := s.List("")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusSuccess, entries[0].Status)
}

func TestParseFilename(t *testing.T) {
	entry, err := parseFilename("2025-06-01_10-30-00_maui_flights_failed.txt")
	require.NoError(t, err)
	assert.Equal(t, "maui", entry.Destination)
	assert.Equal(t, CommandFlights, entry.Command)
	assert.Equal(t, StatusFailed, entry.Status)

	for _, bad := range []string{
		"2025-06-01_10-30-00_resorts.txt",
		"2025-06-01_10-30-00_maui_plan.txt",
		"yesterday_noon_maui_resorts.txt",
	} {
		_, err := parseFilename(bad)
		assert.True(t, errors.Is(err, ErrInvalidFilename), "filename %q", bad)
	}
}

func TestResolve(t *testing.T) {
	s, clock := newTestStore(t, 0)
	older, err := s.Create(CommandResorts, "Maui", "a")
	require.NoError(t, err)
	*clock = clock.Add(time.Hour)
	newer, err := s.Create(CommandResorts, "Kauai", "b")
	require.NoError(t, err)

	got, err := s.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, newer, got)

	got, err = s.Resolve("2")
	require.NoError(t, err)
	assert.Equal(t, older, got)

	_, err = s.Resolve("3")
	assert.Error(t, err)
	_, err = s.Resolve("0")
	assert.Error(t, err)

	got, err = s.Resolve(filepath.Base(older))
	require.NoError(t, err)
	assert.Equal(t, older, got)
}

func TestEntryForPath(t *testing.T) {
	s, _ := newTestStore(t, 0)
	path, err := s.Create(CommandFlights, "OGG", "answer")
	require.NoError(t, err)

	entry, err := EntryForPath(path)
	require.NoError(t, err)
	assert.Equal(t, CommandFlights, entry.Command)
	assert.Equal(t, "ogg", entry.Destination)
	assert.Equal(t, path, entry.Path)
	assert.Equal(t, filepath.Base(path), entry.Filename)

	_, err = EntryForPath(filepath.Join(s.Dir, "notes.txt"))
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func TestCleanup(t *testing.T) {
	s, clock := newTestStore(t, 2)
	var paths []string
	for i := 0; i < 4; i++ {
		p, err := s.Create(CommandResorts, "Maui", "answer")
		require.NoError(t, err)
		paths = append(paths, p)
		*clock = clock.Add(time.Minute)
	}

	deleted, err := s.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	entries, err := s.List("")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, paths[3], entries[0].Path)
	assert.Equal(t, paths[2], entries[1].Path)
}

func TestClear(t *testing.T) {
	s, clock := newTestStore(t, 0)
	for i := 0; i < 3; i++ {
		_, err := s.Create(CommandFlights, "OGG", "answer")
		require.NoError(t, err)
		*clock = clock.Add(time.Second)
	}

	deleted, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	entries, err := s.List("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHeaderFooterRoundTrip(t *testing.T) {
	s, clock := newTestStore(t, 0)
	answer := "Four Seasons Resort\nLocation: Punta Mita\n\nGrand Wailea Resort\n"

	header := CreateHeader(CommandResorts, "browser-use", []string{"--model", "gpt-4o"}, "Find resorts\nin Maui", *clock)
	path, err := s.Create(CommandResorts, "Maui", header+answer)
	require.NoError(t, err)
	require.NoError(t, s.Append(path, CreateResultFooter(StatusSuccess, nil, *clock)))

	got, err := ReadAnswer(path)
	require.NoError(t, err)
	assert.Equal(t, answer, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Task:        Find resorts in Maui")
	assert.Contains(t, string(data), "Agent Result: SUCCESS")
}

func TestExtractAnswerWithoutHeader(t *testing.T) {
	assert.Equal(t, "plain answer", ExtractAnswer("plain answer"))
}

func TestExtractAnswerFailedFooter(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	content := CreateHeader(CommandFlights, "agent", nil, "task", at) +
		"partial output" +
		CreateResultFooter(StatusFailed, errors.New("exit status 2"), at)
	assert.Equal(t, "partial output", ExtractAnswer(content))
	assert.Contains(t, content, "Error:       exit status 2")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "-", TruncateText("", 10))
	assert.Equal(t, "maui", TruncateText("maui", 10))
	assert.Equal(t, "punta-m...", TruncateText("punta-mita-mexico", 10))
	assert.Equal(t, "são-pau...", TruncateText("são-paulo-brasil", 10))
	assert.Equal(t, "ré", TruncateText("ré", 2), "short multi-byte text is untouched")
}
