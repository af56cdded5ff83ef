package record

// Change fields reported by DetectChanges.
const (
	FieldNew               = "new"
	FieldTicketReleaseDate = "ticket_release_date"
	FieldTicketSource      = "ticket_source"
	FieldNotes             = "notes"
)

// Change represents a change of one ticket column between two versions of
// the same row.
type Change struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DetectChanges compares the ticket columns of two versions of a row.
// A nil previous record yields a single "new" change.
func DetectChanges(previous *FixtureRecord, current FixtureRecord) []Change {
	if previous == nil {
		return []Change{{Field: FieldNew, NewValue: current.TicketReleaseDate}}
	}

	var changes []Change
	if previous.TicketReleaseDate != current.TicketReleaseDate {
		changes = append(changes, Change{
			Field:    FieldTicketReleaseDate,
			OldValue: previous.TicketReleaseDate,
			NewValue: current.TicketReleaseDate,
		})
	}
	if previous.TicketSource != current.TicketSource {
		changes = append(changes, Change{
			Field:    FieldTicketSource,
			OldValue: previous.TicketSource,
			NewValue: current.TicketSource,
		})
	}
	if previous.Notes != current.Notes {
		changes = append(changes, Change{
			Field:    FieldNotes,
			OldValue: previous.Notes,
			NewValue: current.Notes,
		})
	}
	return changes
}

// ReleaseDateChanged reports whether changes set a new, non-empty ticket
// release date.
func ReleaseDateChanged(changes []Change) (string, bool) {
	for _, c := range changes {
		switch c.Field {
		case FieldNew, FieldTicketReleaseDate:
			if c.NewValue != "" {
				return c.NewValue, true
			}
		}
	}
	return "", false
}
