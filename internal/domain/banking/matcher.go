package banking

import (
	"fmt"
	"sort"
	"time"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MatchConfidence grades a reconciliation suggestion
type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "HIGH"
	ConfidenceMedium MatchConfidence = "MEDIUM"
)

// mediumMatchWindowDays is the widest due-date distance that still
// produces a suggestion.
const mediumMatchWindowDays = 3

// MatchSuggestion pairs a bank transaction with an open title it may
// settle. Suggestions are advisory; nothing is written until a user
// confirms one.
type MatchSuggestion struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	TitleID       uuid.UUID       `json:"title_id"`
	TitleNumber   string          `json:"title_number"`
	Confidence    MatchConfidence `json:"confidence"`
	DayDelta      int             `json:"day_delta"`
	Reason        string          `json:"reason"`
}

// FindSuggestions matches pending statement transactions against open
// titles. CREDIT transactions pair with receivables, DEBIT with payables.
// A pair is suggested only on an exact amount match against the title's
// open balance; posting on the due date grades HIGH, posting within the
// match window grades MEDIUM. Each transaction may yield several
// suggestions, closest due date first.
func FindSuggestions(transactions []BankTransaction, openTitles []ledger.Title) []MatchSuggestion {
	var suggestions []MatchSuggestion

	for _, tx := range transactions {
		if tx.Status != TransactionStatusPending {
			continue
		}
		wantType := ledger.TitleTypeReceivable
		if tx.Direction == DirectionDebit {
			wantType = ledger.TitleTypePayable
		}

		var matches []MatchSuggestion
		for _, title := range openTitles {
			if title.Type != wantType || !title.Status.IsOpen() {
				continue
			}
			if !amountsMatch(tx, title) {
				continue
			}

			dayDelta := daysBetween(tx.PostedAt, title.DueDate)
			if dayDelta > mediumMatchWindowDays {
				continue
			}

			confidence := ConfidenceMedium
			reason := fmt.Sprintf("exact amount, paid within %d days of due date", dayDelta)
			if dayDelta == 0 {
				confidence = ConfidenceHigh
				reason = "exact amount, paid on due date"
			}

			matches = append(matches, MatchSuggestion{
				TransactionID: tx.ID,
				TitleID:       title.ID,
				TitleNumber:   title.TitleNumber,
				Confidence:    confidence,
				DayDelta:      dayDelta,
				Reason:        reason,
			})
		}

		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].DayDelta < matches[j].DayDelta
		})
		suggestions = append(suggestions, matches...)
	}

	return suggestions
}

func amountsMatch(tx BankTransaction, title ledger.Title) bool {
	diff := tx.Amount.Sub(title.Balance).Abs()
	return diff.LessThan(valueobject.RoundingEpsilon)
}

// daysBetween counts whole calendar days between two instants,
// ignoring the time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	delta := int(ad.Sub(bd).Hours() / 24)
	if delta < 0 {
		delta = -delta
	}
	return delta
}
