package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"broker_portal_backend/internal/clients/domain"
	"broker_portal_backend/platform/phone"
	"broker_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Row is one line of a call list.
type Row struct {
	Rank             int
	ClientName       string
	Phone            string
	Email            string
	Stage            string
	Score            int
	Urgency          string
	SavingsMonthly   float64
	SavingsAnnual    float64
	DaysSinceContact int
	Opener           string
	Reasons          string
}

var csvHeaders = []string{
	"Rank",
	"Client",
	"Phone",
	"Email",
	"Stage",
	"Score",
	"Urgency",
	"Monthly Savings",
	"Annual Savings",
	"Days Since Contact",
	"Suggested Opener",
	"Reasons",
}

// BuildRows joins ranked scores with the client contact fields. Phone
// numbers are formatted for dialing from region.
func BuildRows(scores []domain.OpportunityScore, clients []domain.ClientRecord, region string) []Row {
	byID := make(map[uuid.UUID]domain.ClientRecord, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	rows := make([]Row, 0, len(scores))
	for i, score := range scores {
		client := byID[score.ClientID]
		rows = append(rows, Row{
			Rank:             i + 1,
			ClientName:       score.ClientName,
			Phone:            phone.Display(client.Phone, region),
			Email:            client.Email,
			Stage:            string(client.Stage),
			Score:            score.Score,
			Urgency:          string(score.Urgency),
			SavingsMonthly:   score.SavingsMonthly,
			SavingsAnnual:    score.SavingsAnnual,
			DaysSinceContact: score.DaysSinceContact,
			Opener:           score.CallRecommendation,
			Reasons:          strings.Join(score.Reasoning, "; "),
		})
	}
	return rows
}

func (r Row) fields() []string {
	days := strconv.Itoa(r.DaysSinceContact)
	if r.DaysSinceContact >= domain.NeverContactedDays {
		days = "never"
	}
	return []string{
		strconv.Itoa(r.Rank),
		sanitize.CSVCell(r.ClientName),
		sanitize.CSVCell(r.Phone),
		sanitize.CSVCell(r.Email),
		r.Stage,
		strconv.Itoa(r.Score),
		r.Urgency,
		strconv.FormatFloat(r.SavingsMonthly, 'f', 2, 64),
		strconv.FormatFloat(r.SavingsAnnual, 'f', 2, 64),
		days,
		sanitize.CSVCell(r.Opener),
		sanitize.CSVCell(r.Reasons),
	}
}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.fields()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FileName names the export by broker-local date.
func FileName(now time.Time) string {
	return "call-list-" + now.Format("2006-01-02") + ".csv"
}
