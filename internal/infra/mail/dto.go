package mail

type ImportReportData struct {
	InvestorName    string
	Kind            string
	RecordsImported int
	RecordsSkipped  int
	RecordsFailed   int
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
