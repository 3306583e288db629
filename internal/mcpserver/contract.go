package mcpserver

import (
	"fmt"
	"strings"

	"github.com/jobtrackr/jobtrackr/internal/followup"
	"github.com/jobtrackr/jobtrackr/internal/models"
)

// FieldReference describes the values the tracker accepts, for LLM
// consumers that create timeline events or filter applications.
var FieldReference = buildFieldReference()

func buildFieldReference() string {
	join := func(vals []string) string {
		return "`" + strings.Join(vals, "`, `") + "`"
	}
	var statuses, priorities, events []string
	for _, s := range models.Statuses {
		statuses = append(statuses, string(s))
	}
	for _, p := range models.Priorities {
		priorities = append(priorities, string(p))
	}
	for _, e := range models.EventTypes {
		events = append(events, string(e))
	}

	return fmt.Sprintf(`# JobTrackr Field Reference

## Application status
%s. New applications start as `+"`Applied`"+`. The list filter also accepts `+"`All`"+`.

## Priority
%s. Default `+"`Medium`"+`.

## Timeline event type
%s.

## Dates
Send `+"`YYYY-MM-DD`"+` or an RFC 3339 timestamp. Dates are compared as UTC calendar days.

## Follow-up buckets
- overdue: next follow-up date before today
- today: next follow-up date is today
- upcoming: within the next %d days
`, join(statuses), join(priorities), join(events), followup.UpcomingDays)
}
