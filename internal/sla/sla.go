// Package sla computes deadline state for tickets. Every function here is
// pure: the caller captures "now" once per aggregation pass and threads it
// through, so a large collection evaluated in a loop sees a single instant.
package sla

import (
	"fmt"
	"math"
	"time"

	"github.com/telesdesk/helpdesk-service/internal/domain"
)

// UrgentThresholdHours is the near-breach cutoff used by the dashboard.
const UrgentThresholdHours = 8.0

// State classifies a ticket relative to its SLA due date.
type State string

const (
	StateOnTrack      State = "on_track"
	StateNearBreach   State = "near_breach"
	StateOverdue      State = "overdue"
	StateNotEvaluated State = "not_evaluated"
)

// Evaluation is the result of evaluating one ticket.
type Evaluation struct {
	State State
	// Hours is the signed fractional distance to the due date; negative
	// once overdue. Zero when State is StateNotEvaluated.
	Hours float64
}

// Evaluate classifies a ticket's SLA position. Terminal tickets and
// tickets without a due date are not evaluated.
func Evaluate(dueAt *time.Time, now time.Time, status domain.TicketStatus) Evaluation {
	if dueAt == nil || status.IsTerminal() {
		return Evaluation{State: StateNotEvaluated}
	}
	hours := dueAt.Sub(now).Hours()
	switch {
	case hours < 0:
		return Evaluation{State: StateOverdue, Hours: hours}
	case hours <= UrgentThresholdHours:
		return Evaluation{State: StateNearBreach, Hours: hours}
	default:
		return Evaluation{State: StateOnTrack, Hours: hours}
	}
}

// Label renders the dashboard urgency label for an evaluation:
// "Atrasado <N>h" once overdue, "<N>h restantes" otherwise.
func Label(eval Evaluation) string {
	rounded := math.Round(eval.Hours)
	if rounded < 0 {
		return fmt.Sprintf("Atrasado %dh", int(math.Abs(rounded)))
	}
	return fmt.Sprintf("%dh restantes", int(rounded))
}

// BadgeVariant names the presentation variant for a row badge.
type BadgeVariant string

const (
	VariantDestructive BadgeVariant = "destructive"
	VariantSecondary   BadgeVariant = "secondary"
	VariantOutline     BadgeVariant = "outline"
)

// Badge is the row-level SLA display state.
type Badge struct {
	Text    string
	Variant BadgeVariant
}

// RowBadge computes the per-row "days remaining" badge using the day-tier
// policy (4 and 9 day cut points).
func RowBadge(dueAt *time.Time, now time.Time) Badge {
	if dueAt == nil {
		return Badge{Text: "Sem prazo", Variant: VariantOutline}
	}
	daysLeft := int(math.Floor(dueAt.Sub(now).Hours() / 24))
	switch {
	case daysLeft < 0:
		return Badge{Text: "Atrasado", Variant: VariantDestructive}
	case daysLeft <= 4:
		return Badge{Text: fmt.Sprintf("%dd - Em dia", daysLeft), Variant: VariantOutline}
	case daysLeft <= 9:
		return Badge{Text: fmt.Sprintf("%dd - Próximo", daysLeft), Variant: VariantSecondary}
	default:
		return Badge{Text: fmt.Sprintf("%dd restantes", daysLeft), Variant: VariantOutline}
	}
}
