// Package extract finds ticket-sale dates and ticket-sale vocabulary in page
// text.
//
// Both extractors are built from an explicit Config so tests and callers can
// supply their own pattern tables. DefaultConfig covers dotted European
// dates, "12 March 2026" and "March 12, 2026" notations, and an English and
// German keyword set.
package extract
