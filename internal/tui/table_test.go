package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaptShanks/travelprism/internal/parser"
)

func TestRenderResortTableHeadersOnly(t *testing.T) {
	out := RenderResortTable(nil, false)

	for _, h := range ResortHeaders {
		assert.Contains(t, out, h)
	}
	assert.NotContains(t, out, missingValue)
	assert.NotContains(t, out, "\x1b[", "plain table must not contain ANSI escapes")
}

func TestRenderResortTableMissingLocation(t *testing.T) {
	records := []parser.ResortRecord{{Name: "Four Seasons Resort"}}
	out := RenderResortTable(records, false)

	assert.Contains(t, out, "Four Seasons Resort")
	assert.Equal(t, 1, strings.Count(out, missingValue))
}

func TestRenderResortTableMissingName(t *testing.T) {
	rows := ResortRows([]parser.ResortRecord{{Location: "Location: Wailea"}})
	require.Len(t, rows, 1)
	assert.Equal(t, missingValue, rows[0][0])
	assert.Equal(t, "Location: Wailea", rows[0][1])
	assert.Equal(t, "", rows[0][2])
}

func TestResortRowsJoinsListsWithNewlines(t *testing.T) {
	rows := ResortRows([]parser.ResortRecord{{
		Name:         "Grand Wailea Resort",
		Location:     "Location: Wailea",
		Amenities:    []string{"Pool", "Kids club"},
		Restaurants:  []string{"Humuhumunukunukuapua'a", "Bistro Molokini"},
		SpaOfferings: []string{"Spa Grande"},
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"Grand Wailea Resort",
		"Location: Wailea",
		"Pool\nKids club",
		"Humuhumunukunukuapua'a\nBistro Molokini",
		"Spa Grande",
	}, rows[0])
}

func TestResortRowsWrapsLongCells(t *testing.T) {
	long := "Features: oceanfront infinity pool with cabanas and a swim-up bar"
	rows := ResortRows([]parser.ResortRecord{{Name: "X Resort", Amenities: []string{long}}})
	for _, line := range strings.Split(rows[0][2], "\n") {
		assert.LessOrEqual(t, len(line), cellWidth)
	}
}

func TestRenderResortTableIdempotent(t *testing.T) {
	records, err := parser.Parse("Four Seasons Resort\nLocation: Punta Mita\nRestaurant: La Cava\nSpa: Ocean Spa\n\nHotel Maui\nAmenity: golf")
	require.NoError(t, err)

	for _, styled := range []bool{false, true} {
		first := RenderResortTable(records, styled)
		second := RenderResortTable(records, styled)
		assert.Equal(t, first, second)
	}
}

func TestRenderResortTableRowOrder(t *testing.T) {
	records := []parser.ResortRecord{{Name: "Alpha Resort"}, {Name: "Bravo Hotel"}}
	out := RenderResortTable(records, false)

	a := strings.Index(out, "Alpha Resort")
	b := strings.Index(out, "Bravo Hotel")
	require.NotEqual(t, -1, a)
	require.NotEqual(t, -1, b)
	assert.Less(t, a, b)
}

func TestFormatResortResult(t *testing.T) {
	out, ok := FormatResortResult("Four Seasons Resort\nSpa: Ocean Spa", false)
	assert.True(t, ok)
	assert.Contains(t, out, "Resort Name")
	assert.Contains(t, out, "Spa: Ocean Spa")
}

func TestFormatResortResultFallback(t *testing.T) {
	raw := "Grand Resort\n\xff broken"
	out, ok := FormatResortResult(raw, false)
	assert.False(t, ok)
	assert.Equal(t, raw, out)
}

func TestFormatResortResultNoResorts(t *testing.T) {
	out, ok := FormatResortResult("Nothing matched your search.", false)
	assert.True(t, ok)
	assert.Contains(t, out, "Spa Offerings")
	assert.NotContains(t, out, "Nothing matched")
}

func TestFormatResortsCountsRecords(t *testing.T) {
	_, count, ok := formatResorts("Four Seasons Resort\nSpa: Ocean Spa\n\nGrand Wailea Resort\nAmenity: pool", false)
	assert.True(t, ok)
	assert.Equal(t, 2, count)

	_, count, ok = formatResorts("Nothing matched your search.", false)
	assert.True(t, ok)
	assert.Zero(t, count)

	_, count, ok = formatResorts("Grand Resort\n\xff broken", false)
	assert.False(t, ok)
	assert.Zero(t, count)
}
