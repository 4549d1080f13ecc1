// Package email renders and delivers broker notification emails.
package email

import (
	"context"
	"time"

	"broker_portal_backend/platform/config"
)

// Sender delivers broker notifications.
type Sender interface {
	SendRateAlertEmail(ctx context.Context, toEmail string, alert RateAlert) error
	SendDigestEmail(ctx context.Context, toEmail string, digest Digest) error
}

// RateAlert is the content of a target-hit email.
type RateAlert struct {
	BrokerName     string
	ClientName     string
	ClientPhone    string
	LoanProduct    string
	MarketRate     float64
	TargetRate     float64
	SavingsMonthly float64
}

// DigestLine is one client in the digest.
type DigestLine struct {
	ClientName     string
	Score          int
	Urgency        string
	SavingsMonthly float64
}

// Digest is the content of the daily opportunity email.
type Digest struct {
	BrokerName    string
	MarketRate    float64
	ScoredClients int
	Top           []DigestLine
	DownloadURL   string
	URLExpiresAt  time.Time
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendRateAlertEmail(context.Context, string, RateAlert) error { return nil }
func (NoopSender) SendDigestEmail(context.Context, string, Digest) error       { return nil }

// NewSender returns an SMTP sender, or a NoopSender when SMTP is not configured.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
