package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NeverContactedDays is the recency assigned to records with no contact on file.
const NeverContactedDays = 999

// ClientRecord is a broker's client as loaded from storage.
type ClientRecord struct {
	ID          uuid.UUID
	BrokerID    uuid.UUID
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	LoanAmount  float64
	TargetRate  float64
	CurrentRate *float64
	TermYears   *int
	Stage       Stage
	LastContact *time.Time
	CreatedAt   time.Time
}

// FullName joins the name parts.
func (c ClientRecord) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DaysSinceContact counts whole days between the last contact and now.
func (c ClientRecord) DaysSinceContact(now time.Time) int {
	return DaysSince(c.LastContact, now)
}

// MortgageRecord is a monitored loan together with its client's contact fields.
type MortgageRecord struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	BrokerID          uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	LoanAmount        float64
	CurrentRate       float64
	TargetRate        float64
	TermYears         int
	LoanProduct       string
	MarketRate        *float64
	LastManualContact *time.Time
	LastAutomatedCall *time.Time
}

// FullName joins the client name parts.
func (m MortgageRecord) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// DaysSince returns whole days elapsed from t to now. A nil t counts as
// NeverContactedDays and a t after now counts as zero.
func DaysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return NeverContactedDays
	}
	if t.After(now) {
		return 0
	}
	return int(now.Sub(*t).Hours() / 24)
}
