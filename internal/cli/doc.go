// Package cli implements the command-line interface for ticket-tracker.
//
// The Cobra root command has a fixtures subcommand that imports scheduled
// matches and a scrape subcommand that checks club ticket pages and
// reconciles what it finds. The sources subcommand lists the pages a scrape
// would check. Run summaries are written as text or JSON.
package cli
