// Package fixtures imports scheduled matches of the tracked clubs from
// football-data.org into the output table.
//
// Each fixture is keyed by "<home> vs <away>_<date>". Keys already present
// in the table are skipped, so running the import repeatedly never creates
// duplicates and never touches existing rows. A failed request for one team
// is logged and counts as "no fixtures" for that team.
package fixtures
