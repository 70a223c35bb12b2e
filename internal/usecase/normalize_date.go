package usecase

import (
	"time"

	"github.com/calebrws/investor-portal/internal/infra/ingest"
)

// Layouts accepted for the "Created" column. Exports disagree on separators
// and on whether a timezone is present.
var createdLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate coerces a raw timestamp cell to a YYYY-MM-DD calendar date,
// discarding time-of-day. Unparsable or missing input yields today's date and
// fellBack=true so the caller can log the recovery once; the row itself is
// never rejected over a bad date.
func NormalizeDate(cell ingest.Cell, now func() time.Time) (date string, fellBack bool) {
	if !cell.Present {
		return now().Format("2006-01-02"), true
	}

	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, cell.Value); err == nil {
			return t.Format("2006-01-02"), false
		}
	}

	return now().Format("2006-01-02"), true
}
