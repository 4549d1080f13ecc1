package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"broker_portal_backend/internal/clients/scoring"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type rateAlertEmailData struct {
	baseEmailData
	RateAlert
}

type digestEmailData struct {
	baseEmailData
	Digest
}

var templateFuncs = template.FuncMap{
	"money": scoring.FormatMoney,
	"rate":  func(r float64) string { return fmt.Sprintf("%.3f%%", r) },
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderRateAlert renders the subject and HTML body of a target-hit email.
func RenderRateAlert(alert RateAlert) (string, string, error) {
	body, err := renderEmailTemplate("rate_alert.html", rateAlertEmailData{
		baseEmailData: baseEmailData{Title: "Target rate reached", Heading: "A client's target rate was reached"},
		RateAlert:     alert,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectRateAlertFmt, alert.ClientName), body, nil
}

// RenderDigest renders the subject and HTML body of the daily digest.
func RenderDigest(digest Digest) (string, string, error) {
	base := baseEmailData{Title: "Your call list", Heading: "Clients worth calling today"}
	if digest.DownloadURL != "" {
		base.CTALabel = "Download call list"
		base.CTAURL = digest.DownloadURL
	}
	body, err := renderEmailTemplate("digest.html", digestEmailData{baseEmailData: base, Digest: digest})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectDigestFmt, len(digest.Top)), body, nil
}
