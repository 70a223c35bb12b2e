package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

var reportTemplate = template.Must(template.New("import-report").Parse(`
<h2>Import report</h2>
<p>A {{.Kind}} file for <strong>{{.InvestorName}}</strong> was processed.</p>
<ul>
  <li>Imported: {{.RecordsImported}}</li>
  <li>Skipped: {{.RecordsSkipped}}</li>
  <li>Failed: {{.RecordsFailed}}</li>
</ul>
`))

func NewEmailSender(host string, port int, user, password string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     "no-reply@investor-portal.local",
	}
}

func (s *EmailSender) SendImportReport(to, investorName, kind string, imported, skipped, failed int) error {
	data := ImportReportData{
		InvestorName:    investorName,
		Kind:            kind,
		RecordsImported: imported,
		RecordsSkipped:  skipped,
		RecordsFailed:   failed,
	}

	var body bytes.Buffer
	if err := reportTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering report template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Import completed: %s for %s", kind, investorName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("sending SMTP email: %w", err)
	}

	return nil
}
