// Package sanitizer normalizes user-supplied strings before they are
// validated and persisted: whitespace collapsing for names and labels,
// E.164 formatting for phone numbers.
package sanitizer
