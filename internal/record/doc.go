// Package record defines the fixed-schema row of the output tab.
//
// A FixtureRecord is either seeded by the fixture import (keyed by match
// label and date) or created by a club page scrape (keyed by source URL).
// FromRow and ToRow are the only conversions between the typed record and
// the untyped rows of the tabular backends.
package record
