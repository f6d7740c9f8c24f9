// Package contact validates contact-form submissions and relays them
// as notification emails.
package contact

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Response messages shown to the visitor.
const (
	MessageRequired = "請填寫所有必填欄位（姓名、電子郵件和電話）"
	MessageSuccess  = "表單提交成功！我們會盡快與您聯繫。"
	MessageFailed   = "提交表單時發生錯誤，請稍後再試。"
)

// Submission is a contact form with aliases reconciled and whitespace
// trimmed.
type Submission struct {
	Name        string
	Email       string
	Phone       string
	Clinic      string
	Position    string
	Service     string
	Message     string
	Plan        string
	Source      string
	ClinicSize  string
	Budget      string
	ContactTime string
	Competitors string
}

// Normalize reconciles field aliases: position falls back to title and
// clinic falls back to company.
func Normalize(d models.ContactFormData) Submission {
	return Submission{
		Name:        strings.TrimSpace(d.Name),
		Email:       strings.TrimSpace(d.Email),
		Phone:       strings.TrimSpace(d.Phone),
		Clinic:      firstNonEmpty(d.Clinic, d.Company),
		Position:    firstNonEmpty(d.Position, d.Title),
		Service:     strings.TrimSpace(d.Service),
		Message:     strings.TrimSpace(d.Message),
		Plan:        strings.TrimSpace(d.Plan),
		Source:      strings.TrimSpace(d.Source),
		ClinicSize:  strings.TrimSpace(d.ClinicSize),
		Budget:      strings.TrimSpace(d.Budget),
		ContactTime: strings.TrimSpace(d.ContactTime),
		Competitors: strings.TrimSpace(d.Competitors),
	}
}

// Validate checks the required fields. Any failure collapses into one
// visitor-facing message.
func (s Submission) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Email, validation.Required),
		validation.Field(&s.Phone, validation.Required),
	)
	if err != nil {
		return &apperr.ValidationError{Message: MessageRequired}
	}
	return nil
}

// ReplyTo returns the visitor email when it is a well-formed address,
// else "". Validate only requires the email to be present.
func (s Submission) ReplyTo() string {
	if s.Email == "" || is.EmailFormat.Validate(s.Email) != nil {
		return ""
	}
	return s.Email
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
