// Package task builds the natural-language instructions handed to the
// browser agent for each kind of travel search.
package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingField is returned when a query lacks a required value
var ErrMissingField = errors.New("missing required field")

// ErrInvalidField is returned when a query value is out of range
var ErrInvalidField = errors.New("invalid field")

const (
	KindFlights = "flights"
	KindResorts = "resorts"
)

// ResortHeading starts the first line of each resort block in an answer.
// It carries the word the resort parser keys a block on, so names without
// "resort" or "hotel" in them still open a record.
const ResortHeading = "Resort:"

// DateLayout is the input format for dates on the command line
const DateLayout = "2006-01-02"

// Query is a travel search that can be turned into agent instructions
type Query interface {
	// Kind is KindFlights or KindResorts
	Kind() string
	// Destination names where the search is for, used to label history
	Destination() string
	// Task renders the instructions, validating the query first
	Task() (string, error)
}

// FlightQuery describes a flight search
type FlightQuery struct {
	From         string
	To           string
	Depart       time.Time
	Return       time.Time // zero for one way
	Airlines     []string
	Adults       int
	ChildAges    []int
	ArriveBefore string // "15:04", empty for any arrival time
}

func (q FlightQuery) Kind() string        { return KindFlights }
func (q FlightQuery) Destination() string { return q.To }

// Validate checks the query for missing or inconsistent values
func (q FlightQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.From) == "":
		return fmt.Errorf("%w: from", ErrMissingField)
	case strings.TrimSpace(q.To) == "":
		return fmt.Errorf("%w: to", ErrMissingField)
	case q.Depart.IsZero():
		return fmt.Errorf("%w: depart", ErrMissingField)
	case q.Adults < 1:
		return fmt.Errorf("%w: at least one adult must travel", ErrInvalidField)
	case !q.Return.IsZero() && q.Return.Before(q.Depart):
		return fmt.Errorf("%w: return %s is before departure %s", ErrInvalidField,
			q.Return.Format(DateLayout), q.Depart.Format(DateLayout))
	}
	for _, age := range q.ChildAges {
		if age < 0 || age > 17 {
			return fmt.Errorf("%w: child age %d", ErrInvalidField, age)
		}
	}
	if q.ArriveBefore != "" {
		if _, err := time.Parse("15:04", q.ArriveBefore); err != nil {
			return fmt.Errorf("%w: arrive-before %q, want HH:MM", ErrInvalidField, q.ArriveBefore)
		}
	}
	return nil
}

// Task renders the flight instructions
func (q FlightQuery) Task() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	from := strings.ToUpper(strings.TrimSpace(q.From))
	to := strings.ToUpper(strings.TrimSpace(q.To))

	var b strings.Builder
	trip := "round trip"
	if q.Return.IsZero() {
		trip = "one way"
	}
	fmt.Fprintf(&b, "Find a %s flight to airport %s %s", trip, to, formatDateRange(q.Depart, q.Return))
	if len(q.Airlines) > 0 {
		fmt.Fprintf(&b, " on %s airlines", joinOr(q.Airlines))
	}
	fmt.Fprintf(&b, ". Departing from %s to %s. %s.", from, to, formatTravelers(q.Adults, q.ChildAges))

	if q.ArriveBefore != "" {
		arrive, _ := time.Parse("15:04", q.ArriveBefore)
		fmt.Fprintf(&b, " Present to me the cheapest option for flights that arrive before %s in %s.", formatClock(arrive), to)
	} else {
		b.WriteString(" Present to me the cheapest option.")
	}
	return b.String(), nil
}

// ResortQuery describes a resort search
type ResortQuery struct {
	Place       string
	CheckIn     time.Time
	CheckOut    time.Time
	Guests      int
	Preferences []string
	Limit       int
}

func (q ResortQuery) Kind() string        { return KindResorts }
func (q ResortQuery) Destination() string { return q.Place }

// Validate checks the query for missing or inconsistent values
func (q ResortQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.Place) == "":
		return fmt.Errorf("%w: destination", ErrMissingField)
	case q.Guests < 0:
		return fmt.Errorf("%w: guests %d", ErrInvalidField, q.Guests)
	case q.Limit < 0:
		return fmt.Errorf("%w: limit %d", ErrInvalidField, q.Limit)
	case !q.CheckOut.IsZero() && q.CheckIn.IsZero():
		return fmt.Errorf("%w: check-in is required with check-out", ErrMissingField)
	case !q.CheckOut.IsZero() && q.CheckOut.Before(q.CheckIn):
		return fmt.Errorf("%w: check-out %s is before check-in %s", ErrInvalidField,
			q.CheckOut.Format(DateLayout), q.CheckIn.Format(DateLayout))
	}
	return nil
}

// Task renders the resort instructions. The answer layout it asks for is the
// one the resort parser reads: a ResortHeading line per resort, labelled
// lines, and a blank line between resorts.
func (q ResortQuery) Task() (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	limit := q.Limit
	if limit == 0 {
		limit = 5
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Find the top %d resorts in %s", limit, strings.TrimSpace(q.Place))
	if !q.CheckIn.IsZero() {
		fmt.Fprintf(&b, " for %s", formatDateRange(q.CheckIn, q.CheckOut))
	}
	if q.Guests > 0 {
		fmt.Fprintf(&b, " for %d %s", q.Guests, plural(q.Guests, "guest", "guests"))
	}
	b.WriteString(".")
	if len(q.Preferences) > 0 {
		fmt.Fprintf(&b, " Prefer resorts with %s.", joinAnd(q.Preferences))
	}
	fmt.Fprintf(&b, " For each resort write one block: the first line is %q followed by the resort name,", ResortHeading)
	b.WriteString(" then a line starting with \"Location:\", then one line per key amenity starting with \"Amenity:\"," +
		" one line per restaurant starting with \"Restaurant:\" and one line per spa offering starting with \"Spa:\"." +
		" Separate resorts with a blank line.")
	return b.String(), nil
}

// ParseDate parses a DateLayout date; empty input yields the zero time
func ParseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", ErrInvalidField, s)
	}
	return t, nil
}

// formatDateRange renders "June 21-28 2025", "June 28 - July 3 2025",
// "December 28 2025 - January 3 2026" or, without an end, "June 21 2025".
func formatDateRange(start, end time.Time) string {
	switch {
	case end.IsZero():
		return start.Format("January 2 2006")
	case start.Year() != end.Year():
		return start.Format("January 2 2006") + " - " + end.Format("January 2 2006")
	case start.Month() != end.Month():
		return start.Format("January 2") + " - " + end.Format("January 2 2006")
	case start.Day() == end.Day():
		return start.Format("January 2 2006")
	default:
		return fmt.Sprintf("%s %d-%d %d", start.Month(), start.Day(), end.Day(), start.Year())
	}
}

// formatTravelers renders "2 adults 2 children (8 and 10 years old)"
func formatTravelers(adults int, childAges []int) string {
	s := fmt.Sprintf("%d %s", adults, plural(adults, "adult", "adults"))
	if len(childAges) == 0 {
		return s
	}
	ages := make([]string, len(childAges))
	for i, age := range childAges {
		ages[i] = strconv.Itoa(age)
	}
	return fmt.Sprintf("%s %d %s (%s years old)", s, len(childAges),
		plural(len(childAges), "child", "children"), joinAnd(ages))
}

// formatClock renders 15:00 as "3pm" and 15:30 as "3:30pm"
func formatClock(t time.Time) string {
	if t.Minute() == 0 {
		return t.Format("3pm")
	}
	return t.Format("3:04pm")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func joinAnd(items []string) string { return joinWith(items, "and") }
func joinOr(items []string) string  { return joinWith(items, "or") }

func joinWith(items []string, word string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " " + word + " " + items[len(items)-1]
	}
}
