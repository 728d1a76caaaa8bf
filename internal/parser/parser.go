package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrMalformedInput is returned when the answer cannot be read as text.
var ErrMalformedInput = errors.New("malformed input")

// ResortRecord is one resort or hotel extracted from an agent answer
type ResortRecord struct {
	Name         string   `json:"name" yaml:"name"`
	Location     string   `json:"location" yaml:"location"`
	Amenities    []string `json:"amenities" yaml:"amenities"`
	Restaurants  []string `json:"restaurants" yaml:"restaurants"`
	SpaOfferings []string `json:"spa_offerings" yaml:"spa_offerings"`
}

// Field identifies which part of a ResortRecord a line is attributed to
type Field string

const (
	FieldName       Field = "name"
	FieldLocation   Field = "location"
	FieldRestaurant Field = "restaurant"
	FieldSpa        Field = "spa"
	FieldAmenity    Field = "amenity"
	FieldNone       Field = ""
)

const sectionDelimiter = "\n\n"

// headingKeywords mark a section (and the first line within it) as a resort heading
var headingKeywords = []string{"resort", "hotel"}

// lineRule attributes a line to field when it contains any of keywords.
// onlyUnset restricts the rule to records whose field is still empty.
type lineRule struct {
	field     Field
	keywords  []string
	onlyUnset bool
}

// lineRules are evaluated top to bottom; the first match wins.
var lineRules = []lineRule{
	{field: FieldName, keywords: headingKeywords, onlyUnset: true},
	{field: FieldLocation, keywords: []string{"location"}},
	{field: FieldRestaurant, keywords: []string{"restaurant"}},
	{field: FieldSpa, keywords: []string{"spa"}},
	{field: FieldAmenity, keywords: []string{"amenity", "feature", "include"}},
}

// scanState carries the record being built across sections.
// open is false until the first qualifying section is seen.
type scanState struct {
	open    bool
	current ResortRecord
	done    []ResortRecord
}

// begin closes any open record and opens a fresh one
func (s *scanState) begin() {
	s.flush()
	s.current = newRecord()
	s.open = true
}

// newRecord returns a record whose lists are empty rather than nil
func newRecord() ResortRecord {
	return ResortRecord{
		Amenities:    []string{},
		Restaurants:  []string{},
		SpaOfferings: []string{},
	}
}

// flush appends the open record, if any, and leaves the state closed
func (s *scanState) flush() {
	if !s.open {
		return
	}
	s.done = append(s.done, s.current)
	s.current = ResortRecord{}
	s.open = false
}

// apply stores line into the field chosen for it
func (s *scanState) apply(field Field, line string) {
	switch field {
	case FieldName:
		s.current.Name = line
	case FieldLocation:
		s.current.Location = line
	case FieldRestaurant:
		s.current.Restaurants = append(s.current.Restaurants, line)
	case FieldSpa:
		s.current.SpaOfferings = append(s.current.SpaOfferings, line)
	case FieldAmenity:
		s.current.Amenities = append(s.current.Amenities, line)
	}
}

// Parse extracts resort records from an agent's free-text answer.
// An answer without any resort or hotel mention yields an empty slice.
func Parse(input string) ([]ResortRecord, error) {
	if !utf8.ValidString(input) {
		return nil, fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrMalformedInput, invalidOffset(input))
	}

	state := &scanState{}

	for _, section := range strings.Split(input, sectionDelimiter) {
		if !containsAny(strings.ToLower(section), headingKeywords) {
			continue
		}

		state.begin()

		for _, raw := range strings.Split(section, "\n") {
			line := strings.TrimSpace(raw)
			state.apply(Classify(line, state.current.Name != ""), line)
		}
	}

	// Don't forget the last record
	state.flush()

	if state.done == nil {
		return []ResortRecord{}, nil
	}
	return state.done, nil
}

// Classify returns the field a trimmed line belongs to. nameSet reports
// whether the record under construction already has a name.
func Classify(line string, nameSet bool) Field {
	lower := strings.ToLower(line)
	for _, rule := range lineRules {
		if rule.onlyUnset && nameSet {
			continue
		}
		if containsAny(lower, rule.keywords) {
			return rule.field
		}
	}
	return FieldNone
}

// CountQualifyingSections returns how many sections of input would open a record
func CountQualifyingSections(input string) int {
	n := 0
	for _, section := range strings.Split(input, sectionDelimiter) {
		if containsAny(strings.ToLower(section), headingKeywords) {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func invalidOffset(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return i
			}
		}
	}
	return len(s)
}
