// Package parser turns the free-text answer of a travel-search agent into
// structured records. Answers are split into blank-line separated sections;
// a section mentioning a resort or hotel opens a new record, and each of its
// lines is classified by an ordered rule table into name, location,
// restaurants, spa offerings or amenities.
package parser
