package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaptShanks/travelprism/internal/parser"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestFlightTaskRoundTrip(t *testing.T) {
	q := FlightQuery{
		From:         "pdx",
		To:           "OGG",
		Depart:       date(t, "2025-06-21"),
		Return:       date(t, "2025-06-28"),
		Airlines:     []string{"Alaska", "Hawaiian"},
		Adults:       2,
		ChildAges:    []int{8, 10},
		ArriveBefore: "15:00",
	}

	got, err := q.Task()
	require.NoError(t, err)
	assert.Equal(t, "Find a round trip flight to airport OGG June 21-28 2025 on Alaska or Hawaiian airlines. "+
		"Departing from PDX to OGG. 2 adults 2 children (8 and 10 years old). "+
		"Present to me the cheapest option for flights that arrive before 3pm in OGG.", got)
	assert.Equal(t, KindFlights, q.Kind())
	assert.Equal(t, "OGG", q.Destination())
}

func TestFlightTaskOneWay(t *testing.T) {
	q := FlightQuery{From: "SEA", To: "LIH", Depart: date(t, "2025-07-04"), Adults: 1, ArriveBefore: "09:30"}

	got, err := q.Task()
	require.NoError(t, err)
	assert.Equal(t, "Find a one way flight to airport LIH July 4 2025. Departing from SEA to LIH. 1 adult. "+
		"Present to me the cheapest option for flights that arrive before 9:30am in LIH.", got)
}

func TestFlightValidate(t *testing.T) {
	base := FlightQuery{From: "PDX", To: "OGG", Depart: date(t, "2025-06-21"), Adults: 1}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(q *FlightQuery)
		want   error
	}{
		{"missing from", func(q *FlightQuery) { q.From = " " }, ErrMissingField},
		{"missing to", func(q *FlightQuery) { q.To = "" }, ErrMissingField},
		{"missing depart", func(q *FlightQuery) { q.Depart = time.Time{} }, ErrMissingField},
		{"no adults", func(q *FlightQuery) { q.Adults = 0 }, ErrInvalidField},
		{"return before depart", func(q *FlightQuery) { q.Return = date(t, "2025-06-01") }, ErrInvalidField},
		{"adult child", func(q *FlightQuery) { q.ChildAges = []int{18} }, ErrInvalidField},
		{"bad clock", func(q *FlightQuery) { q.ArriveBefore = "3pm" }, ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			assert.ErrorIs(t, q.Validate(), tt.want)
			_, err := q.Task()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResortTask(t *testing.T) {
	q := ResortQuery{
		Place:       "Maui",
		CheckIn:     date(t, "2025-06-28"),
		CheckOut:    date(t, "2025-07-03"),
		Guests:      4,
		Preferences: []string{"a kids club", "a full-service spa"},
		Limit:       3,
	}

	got, err := q.Task()
	require.NoError(t, err)
	assert.Contains(t, got, "Find the top 3 resorts in Maui for June 28 - July 3 2025 for 4 guests.")
	assert.Contains(t, got, "Prefer resorts with a kids club and a full-service spa.")
	assert.Contains(t, got, `"Location:"`)
	assert.Contains(t, got, "Separate resorts with a blank line.")
	assert.Equal(t, KindResorts, q.Kind())
	assert.Equal(t, "Maui", q.Destination())
}

func TestResortTaskLayoutParses(t *testing.T) {
	got, err := ResortQuery{Place: "Maui"}.Task()
	require.NoError(t, err)
	assert.Contains(t, got, `the first line is "Resort:" followed by the resort name`)

	// An answer written the way the task asks, with names lacking "resort"
	// and an amenity line that mentions it.
	answer := strings.Join([]string{
		ResortHeading + " Montage Kapalua Bay\nLocation: Kapalua, Maui\nSpa: Spa Montage",
		ResortHeading + " Fairmont Kea Lani\nLocation: Wailea\nAmenity: resort fee covers parking\nRestaurant: Ko",
	}, "\n\n")

	records, err := parser.Parse(answer)
	require.NoError(t, err)
	require.Len(t, records, 2, "one record per block")

	assert.Equal(t, "Resort: Montage Kapalua Bay", records[0].Name)
	assert.Equal(t, []string{"Spa: Spa Montage"}, records[0].SpaOfferings)

	assert.Equal(t, "Resort: Fairmont Kea Lani", records[1].Name)
	assert.Equal(t, "Location: Wailea", records[1].Location)
	assert.Equal(t, []string{"Amenity: resort fee covers parking"}, records[1].Amenities)
	assert.Equal(t, []string{"Restaurant: Ko"}, records[1].Restaurants)
}

func TestResortTaskDefaults(t *testing.T) {
	got, err := ResortQuery{Place: "Punta Mita"}.Task()
	require.NoError(t, err)
	assert.Contains(t, got, "Find the top 5 resorts in Punta Mita.")
	assert.NotContains(t, got, "Prefer")
}

func TestResortValidate(t *testing.T) {
	assert.ErrorIs(t, ResortQuery{}.Validate(), ErrMissingField)
	assert.ErrorIs(t, ResortQuery{Place: "Maui", Guests: -1}.Validate(), ErrInvalidField)
	assert.ErrorIs(t, ResortQuery{Place: "Maui", CheckOut: date(t, "2025-07-03")}.Validate(), ErrMissingField)
	assert.ErrorIs(t, ResortQuery{
		Place:    "Maui",
		CheckIn:  date(t, "2025-07-03"),
		CheckOut: date(t, "2025-07-01"),
	}.Validate(), ErrInvalidField)
}

func TestFormatDateRange(t *testing.T) {
	tests := []struct {
		start, end, want string
	}{
		{"2025-06-21", "2025-06-28", "June 21-28 2025"},
		{"2025-06-28", "2025-07-03", "June 28 - July 3 2025"},
		{"2025-12-28", "2026-01-03", "December 28 2025 - January 3 2026"},
		{"2025-06-21", "", "June 21 2025"},
		{"2025-06-21", "2025-06-21", "June 21 2025"},
	}
	for _, tt := range tests {
		got := formatDateRange(date(t, tt.start), date(t, tt.end))
		assert.Equal(t, tt.want, got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("06/21/2025")
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestJoinWith(t *testing.T) {
	assert.Equal(t, "", joinOr(nil))
	assert.Equal(t, "Alaska", joinOr([]string{"Alaska"}))
	assert.Equal(t, "Alaska, Delta or Hawaiian", joinOr([]string{"Alaska", "Delta", "Hawaiian"}))
}
