package scoring

import (
	"sort"
	"time"

	"broker_portal_backend/internal/clients/domain"

	"github.com/google/uuid"
)

// SkippedClient is a record that could not be scored.
type SkippedClient struct {
	ClientID   uuid.UUID
	ClientName string
	Err        error
}

// BatchResult holds ranked scores plus the records that were left out.
type BatchResult struct {
	Scores  []domain.OpportunityScore
	Skipped []SkippedClient
	// Total is the number of scored clients before the limit was applied.
	Total int
}

// ScoreClients scores every client, ranks them by descending score and keeps
// the first limit entries when limit > 0. Equal scores keep input order.
func (s *Scorer) ScoreClients(clients []domain.ClientRecord, marketRate float64, now time.Time, limit int) BatchResult {
	result := BatchResult{Scores: make([]domain.OpportunityScore, 0, len(clients))}

	for _, client := range clients {
		score, err := s.ScoreClient(client, marketRate, now)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedClient{
				ClientID:   client.ID,
				ClientName: client.FullName(),
				Err:        err,
			})
			continue
		}
		result.Scores = append(result.Scores, score)
	}

	sort.SliceStable(result.Scores, func(i, j int) bool {
		return result.Scores[i].Score > result.Scores[j].Score
	})

	result.Total = len(result.Scores)
	if limit > 0 && len(result.Scores) > limit {
		result.Scores = result.Scores[:limit]
	}
	return result
}
