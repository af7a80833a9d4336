package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

type conversionNoticeData struct {
	LeadName        string
	OpportunityName string
	Amount          string
}

var conversionNoticeTmpl = template.Must(template.New("conversion").Parse(`
<p>Lead <strong>{{.LeadName}}</strong> was converted into the opportunity
<strong>{{.OpportunityName}}</strong>.</p>
{{if .Amount}}<p>Estimated amount: {{.Amount}}</p>{{end}}
<p>Seller Console</p>
`))

// SendConversionNotice mails the sales inbox about a confirmed conversion.
func (s *EmailSender) SendConversionNotice(to, leadName, opportunityName string, amount *float64) error {
	data := conversionNoticeData{
		LeadName:        leadName,
		OpportunityName: opportunityName,
	}
	if amount != nil {
		data.Amount = fmt.Sprintf("%.2f", *amount)
	}

	var body bytes.Buffer
	if err := conversionNoticeTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render conversion notice: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lead converted: %s", opportunityName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send conversion notice: %w", err)
	}

	return nil
}
