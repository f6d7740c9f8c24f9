package contact

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// NotProvided labels optional fields left empty.
const NotProvided = "未提供"

// Notification is a rendered notification email.
type Notification struct {
	Subject string
	HTML    string
	Text    string
}

// Row is one labelled field of the notification table.
type Row struct {
	Label string
	Value string
}

type notificationData struct {
	SubmittedAt string
	Rows        []Row
}

var htmlTmpl = template.Must(template.New("html").Funcs(template.FuncMap{"lines": lines}).Parse(`<h1>Aidea:Med 網站諮詢表單</h1>
<p><strong>提交時間：</strong> {{.SubmittedAt}}</p>
<hr />
<table style="border-collapse: collapse; width: 100%;">
{{- range .Rows}}
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd;"><strong>{{.Label}}</strong></td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{lines .Value}}</td>
  </tr>
{{- end}}
</table>
`))

var textTmpl = texttemplate.Must(texttemplate.New("text").Parse(`Aidea:Med 網站諮詢表單
提交時間：{{.SubmittedAt}}
{{range .Rows}}
{{.Label}}：{{.Value}}
{{- end}}
`))

// Rows lists the notification fields in display order. Empty optional
// fields carry NotProvided.
func (s Submission) Rows() []Row {
	return []Row{
		{"姓名", s.Name},
		{"電子郵件", s.Email},
		{"電話", s.Phone},
		{"診所名稱", orNotProvided(s.Clinic)},
		{"職稱", orNotProvided(s.Position)},
		{"需求服務", orNotProvided(Label(ServiceLabels, s.Service))},
		{"診所規模", orNotProvided(Label(ClinicSizeLabels, s.ClinicSize))},
		{"行銷預算", orNotProvided(Label(BudgetLabels, s.Budget))},
		{"方便聯絡時段", orNotProvided(Label(ContactTimeLabels, s.ContactTime))},
		{"主要競爭對手", orNotProvided(s.Competitors)},
		{"方案", orNotProvided(s.Plan)},
		{"來源", orNotProvided(s.Source)},
		{"諮詢內容", orNotProvided(s.Message)},
	}
}

// Subject is the notification subject line.
func (s Submission) Subject() string {
	clinic := s.Clinic
	if clinic == "" {
		clinic = "未提供診所名稱"
	}
	return fmt.Sprintf("Aidea:Med 網站諮詢表單 - 來自 %s (%s)", s.Name, clinic)
}

// RenderNotification renders s as an HTML and plain-text email.
// Submitted values are HTML-escaped.
func RenderNotification(s Submission, submittedAt time.Time, loc *time.Location) (Notification, error) {
	if loc == nil {
		loc = time.UTC
	}
	data := notificationData{
		SubmittedAt: submittedAt.In(loc).Format("2006/01/02 15:04:05"),
		Rows:        s.Rows(),
	}
	var h, t bytes.Buffer
	if err := htmlTmpl.Execute(&h, data); err != nil {
		return Notification{}, fmt.Errorf("render html notification: %w", err)
	}
	if err := textTmpl.Execute(&t, data); err != nil {
		return Notification{}, fmt.Errorf("render text notification: %w", err)
	}
	return Notification{Subject: s.Subject(), HTML: h.String(), Text: t.String()}, nil
}

func orNotProvided(v string) string {
	if v == "" {
		return NotProvided
	}
	return v
}

// lines escapes v and turns newlines into <br>.
func lines(v string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(v), "\n", "<br>"))
}
