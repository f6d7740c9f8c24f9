package models

// ContactFormData is the raw contact form payload. Several fields have
// aliases submitted by different forms on the site.
type ContactFormData struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Clinic      string `json:"clinic"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Title       string `json:"title"`
	Service     string `json:"service"`
	Message     string `json:"message"`
	Plan        string `json:"plan"`
	Source      string `json:"source"`
	ClinicSize  string `json:"clinicSize"`
	Budget      string `json:"budget"`
	ContactTime string `json:"contactTime"`
	Competitors string `json:"competitors"`
}
