package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/calebrws/investor-portal/internal/entity"
	"github.com/calebrws/investor-portal/internal/infra/ingest"
)

type RecordKind string

const (
	KindLead       RecordKind = "lead"
	KindEnrollment RecordKind = "enrollment"
)

func (k RecordKind) Valid() bool {
	return k == KindLead || k == KindEnrollment
}

// Expected column headers in the exported files.
const (
	colFirstName = "First Name"
	colLastName  = "Last Name"
	colCreated   = "Created"
	colTags      = "Tags"
)

const defaultNotes = "Imported from CSV"

// insuredNameFilter keeps word characters, whitespace, hyphens and periods;
// everything else is dropped before the name is stored.
var insuredNameFilter = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.]`)

// CandidateRecord is a fully-normalized row ready for persistence. Every
// field has a defined fallback; extraction never fails on malformed cells.
type CandidateRecord struct {
	InsuredName string
	Date        string // YYYY-MM-DD
	Notes       string
	// StatusHint is set for lead-kind records only: "converted" when the
	// tags mention an enrollment, otherwise "active". Applied as a
	// follow-up update after the insert.
	StatusHint string
	// DateFellBack reports that the Created cell was unusable and today's
	// date was substituted.
	DateFellBack bool
}

// ExtractRecord builds a candidate record from one parsed row, or reports
// skip=true when the row contributes nothing (no usable name).
func ExtractRecord(row ingest.Row, kind RecordKind, now func() time.Time) (rec *CandidateRecord, skip bool) {
	first := strings.TrimSpace(row.Get(colFirstName).Or(""))
	last := strings.TrimSpace(row.Get(colLastName).Or(""))
	insuredName := strings.TrimSpace(first + " " + last)
	if insuredName == "" {
		return nil, true
	}

	insuredName = insuredNameFilter.ReplaceAllString(insuredName, "")
	insuredName = CleanText(strings.TrimSpace(insuredName))
	if insuredName == "" {
		return nil, true
	}

	date, fellBack := NormalizeDate(row.Get(colCreated), now)

	tags := row.Get(colTags).Or("")
	notes := CleanText(tags)
	if notes != "" {
		notes = fmt.Sprintf("Tags: %s", notes)
	} else {
		notes = defaultNotes
	}

	rec = &CandidateRecord{
		InsuredName:  insuredName,
		Date:         date,
		Notes:        notes,
		DateFellBack: fellBack,
	}

	if kind == KindLead {
		rec.StatusHint = entity.LeadStatusActive
		if strings.Contains(strings.ToLower(tags), "enrollment") {
			rec.StatusHint = entity.LeadStatusConverted
		}
	}

	return rec, false
}
