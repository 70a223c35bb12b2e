package usecase

type ImportFileInput struct {
	Path         string
	InvestorName string
	Kind         RecordKind
}

// ImportResult reports a finished import. Skipped rows had no usable name;
// failed rows hit a per-row persistence error. Neither aborts the batch.
type ImportResult struct {
	RecordsImported int `json:"records_imported"`
	RecordsSkipped  int `json:"records_skipped"`
	RecordsFailed   int `json:"records_failed"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
