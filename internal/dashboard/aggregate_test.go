package dashboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telesdesk/helpdesk-service/internal/dashboard"
	"github.com/telesdesk/helpdesk-service/internal/domain"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func ticket(id string, status domain.TicketStatus, mutate ...func(*domain.Ticket)) domain.Ticket {
	t := domain.Ticket{
		ID:            id,
		Title:         "Ticket " + id,
		Status:        status,
		Priority:      domain.TicketPriorityMedium,
		RequesterID:   "req-1",
		RequesterName: "Maria Souza",
		CreatedAt:     now.Add(-24 * time.Hour),
		UpdatedAt:     now.Add(-1 * time.Hour),
	}
	for _, fn := range mutate {
		fn(&t)
	}
	return t
}

func assigned(name string) func(*domain.Ticket) {
	return func(t *domain.Ticket) {
		t.AssigneeID = strPtr("agent-" + name)
		t.AssigneeName = strPtr(name)
	}
}

func dueIn(d time.Duration) func(*domain.Ticket) {
	return func(t *domain.Ticket) {
		t.SLADueAt = timePtr(now.Add(d))
	}
}

func TestAggregateEmptyCollection(t *testing.T) {
	d := dashboard.Aggregate(nil, now)

	assert.Zero(t, d.KPIData)
	assert.Zero(t, d.StatusQueue)
	assert.Zero(t, d.PriorityDistribution)
	assert.Empty(t, d.UrgentTickets)
	assert.Empty(t, d.TopAssignees)
	assert.Empty(t, d.VolumeData)
	assert.Empty(t, d.AgentPerformance)
	assert.Equal(t, dashboard.TeamMetrics{AvgResolutionTime: "0h"}, d.TeamMetrics)
}

func TestAggregateCountsNewTicketOnce(t *testing.T) {
	d := dashboard.Aggregate([]domain.Ticket{ticket("a1", domain.TicketStatusNew)}, now)

	assert.Equal(t, 1, d.StatusQueue.New)
	assert.Zero(t, d.StatusQueue.Waiting)
	assert.Zero(t, d.StatusQueue.Accepted)
	assert.Zero(t, d.StatusQueue.Progress)
	assert.Zero(t, d.StatusQueue.Completed)
	assert.Equal(t, 1, d.KPIData.New)
}

func TestAggregateOverdueAndSLAClose(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusProgress, dueIn(-2*time.Hour)),
		ticket("a2", domain.TicketStatusNew, dueIn(6*time.Hour)),
		ticket("a3", domain.TicketStatusCompleted, dueIn(-5*time.Hour), assigned("Ana Lima")),
		ticket("a4", domain.TicketStatusNew, dueIn(72*time.Hour)),
		ticket("a5", domain.TicketStatusWaiting), // no due date: excluded from SLA buckets
	}
	d := dashboard.Aggregate(tickets, now)

	assert.Equal(t, 1, d.KPIData.Overdue, "completed ticket must not count as overdue")
	assert.Equal(t, 1, d.KPIData.SLAClose)
	assert.Equal(t, 5, d.StatusQueue.New+d.StatusQueue.Waiting+d.StatusQueue.Progress+d.StatusQueue.Completed)
}

func TestAggregateUrgentShortlist(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("aaa111", domain.TicketStatusProgress, dueIn(-2*time.Hour)),
		ticket("bbb222", domain.TicketStatusNew, dueIn(6*time.Hour)),
		ticket("ccc333", domain.TicketStatusNew, dueIn(4*time.Hour)),
		ticket("ddd444", domain.TicketStatusWaiting, dueIn(7*time.Hour)),
		ticket("eee555", domain.TicketStatusAccepted, dueIn(1*time.Hour), assigned("Ana Lima")),
		ticket("fff666", domain.TicketStatusNew, dueIn(30*time.Hour)), // beyond threshold
	}
	d := dashboard.Aggregate(tickets, now)

	require.Len(t, d.UrgentTickets, 4, "shortlist capped at four")
	// Earliest due first.
	assert.Equal(t, "#aaa", d.UrgentTickets[0].ID)
	assert.Equal(t, "Atrasado 2h", d.UrgentTickets[0].SLA)
	assert.Equal(t, "Maria Souza", d.UrgentTickets[0].Requester)
	assert.Equal(t, "#eee", d.UrgentTickets[1].ID)
	assert.Equal(t, "1h restantes", d.UrgentTickets[1].SLA)
	assert.Equal(t, "#ccc", d.UrgentTickets[2].ID)
	assert.Equal(t, "#bbb", d.UrgentTickets[3].ID)
}

func TestAggregatePriorityPercentages(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusNew, func(t *domain.Ticket) { t.Priority = domain.TicketPriorityCritical }),
		ticket("a2", domain.TicketStatusNew, func(t *domain.Ticket) { t.Priority = domain.TicketPriorityHigh }),
		ticket("a3", domain.TicketStatusNew, func(t *domain.Ticket) { t.Priority = domain.TicketPriorityHigh }),
		ticket("a4", domain.TicketStatusNew), // medium
	}
	d := dashboard.Aggregate(tickets, now)

	dist := d.PriorityDistribution
	assert.Equal(t, 1, dist.Critical.Count)
	assert.Equal(t, 2, dist.High.Count)
	assert.Equal(t, 1, dist.Medium.Count)
	assert.Equal(t, 0, dist.Low.Count)
	assert.Equal(t, 25, dist.Critical.Percent)
	assert.Equal(t, 50, dist.High.Percent)

	sum := dist.Critical.Percent + dist.High.Percent + dist.Medium.Percent + dist.Low.Percent
	assert.InDelta(t, 100, sum, 4, "percentages sum to 100 within rounding")
}

func TestAggregateTopAssignees(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusAccepted, assigned("Carlos Silva")),
		ticket("a2", domain.TicketStatusProgress, assigned("Carlos Silva")),
		ticket("a3", domain.TicketStatusAccepted, assigned("Ana Lima")),
		ticket("a4", domain.TicketStatusCompleted, assigned("Ana Lima")), // completed excluded
		ticket("a5", domain.TicketStatusNew),                             // unassigned excluded
	}
	d := dashboard.Aggregate(tickets, now)

	require.Len(t, d.TopAssignees, 2)
	assert.Equal(t, "Carlos Silva", d.TopAssignees[0].Name)
	assert.Equal(t, 2, d.TopAssignees[0].Count)
	assert.Equal(t, "CS", d.TopAssignees[0].Avatar)
	assert.Equal(t, "Ana Lima", d.TopAssignees[1].Name)
	assert.Equal(t, "AL", d.TopAssignees[1].Avatar)
}

func TestAggregateVolumeHistogram(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusNew, func(t *domain.Ticket) { t.CreatedAt = now }),
		ticket("a2", domain.TicketStatusNew, func(t *domain.Ticket) { t.CreatedAt = now.Add(-2 * time.Hour) }),
		ticket("a3", domain.TicketStatusNew, func(t *domain.Ticket) { t.CreatedAt = now.AddDate(0, 0, -13) }),
		ticket("a4", domain.TicketStatusNew, func(t *domain.Ticket) { t.CreatedAt = now.AddDate(0, 0, -20) }), // out of window
	}
	d := dashboard.Aggregate(tickets, now)

	require.Len(t, d.VolumeData, 14)
	assert.Equal(t, "25/02", d.VolumeData[0].Date)
	assert.Equal(t, 1, d.VolumeData[0].Tickets, "oldest bucket")
	assert.Equal(t, "10/03", d.VolumeData[13].Date)
	assert.Equal(t, 2, d.VolumeData[13].Tickets, "today's bucket")

	total := 0
	for _, p := range d.VolumeData {
		total += p.Tickets
	}
	assert.Equal(t, 3, total, "ticket outside the window is not bucketed")
}

func TestAggregateAgentPerformance(t *testing.T) {
	completed := func(resolution time.Duration, slack time.Duration) func(*domain.Ticket) {
		return func(t *domain.Ticket) {
			t.CreatedAt = now.Add(-48 * time.Hour)
			t.UpdatedAt = t.CreatedAt.Add(resolution)
			t.SLADueAt = timePtr(t.UpdatedAt.Add(slack))
		}
	}
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusCompleted, assigned("Carlos Silva"), completed(3*time.Hour, time.Hour)),
		ticket("a2", domain.TicketStatusCompleted, assigned("Carlos Silva"), completed(5*time.Hour, time.Hour)),
	}
	d := dashboard.Aggregate(tickets, now)

	require.Len(t, d.AgentPerformance, 1)
	perf := d.AgentPerformance[0]
	assert.Equal(t, "Carlos Silva", perf.Name)
	assert.Equal(t, "CS", perf.Avatar)
	assert.Equal(t, 2, perf.CompletedTickets)
	assert.Equal(t, "4h", perf.AvgResolutionTime)
	assert.Equal(t, 100, perf.SLACompliance)
}

func TestAggregateComplianceDenominatorExcludesMissingDueDates(t *testing.T) {
	tickets := []domain.Ticket{
		// Completed within SLA.
		ticket("a1", domain.TicketStatusCompleted, assigned("Ana Lima"), func(t *domain.Ticket) {
			t.SLADueAt = timePtr(t.UpdatedAt.Add(time.Hour))
		}),
		// Completed, no due date: counted in completed total, not in compliance.
		ticket("a2", domain.TicketStatusCompleted, assigned("Ana Lima")),
	}
	d := dashboard.Aggregate(tickets, now)

	require.Len(t, d.AgentPerformance, 1)
	assert.Equal(t, 2, d.AgentPerformance[0].CompletedTickets)
	assert.Equal(t, 100, d.AgentPerformance[0].SLACompliance)
}

func TestAggregateTeamMetrics(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusCompleted, assigned("Ana Lima"), func(t *domain.Ticket) {
			t.CreatedAt = now.Add(-10 * time.Hour)
			t.UpdatedAt = now.Add(-4 * time.Hour) // 6h resolution
			t.SLADueAt = timePtr(now)             // compliant
		}),
		ticket("a2", domain.TicketStatusCompleted, assigned("Carlos Silva"), func(t *domain.Ticket) {
			t.CreatedAt = now.Add(-20 * time.Hour)
			t.UpdatedAt = now.Add(-10 * time.Hour)      // 10h resolution
			t.SLADueAt = timePtr(now.Add(-15 * time.Hour)) // breached
		}),
		ticket("a3", domain.TicketStatusProgress, assigned("Ana Lima")),
		ticket("a4", domain.TicketStatusRejected),
	}
	d := dashboard.Aggregate(tickets, now)

	assert.Equal(t, 2, d.TeamMetrics.TotalResolved)
	assert.Equal(t, 1, d.TeamMetrics.ActiveTickets, "rejected is not active")
	assert.Equal(t, "8h", d.TeamMetrics.AvgResolutionTime)
	assert.Equal(t, 50, d.TeamMetrics.SLAComplianceRate)
}

func TestAggregateLongResolutionFormattedInDays(t *testing.T) {
	tickets := []domain.Ticket{
		ticket("a1", domain.TicketStatusCompleted, assigned("Ana Lima"), func(t *domain.Ticket) {
			t.CreatedAt = now.Add(-72 * time.Hour)
			t.UpdatedAt = now
		}),
	}
	d := dashboard.Aggregate(tickets, now)

	require.Len(t, d.AgentPerformance, 1)
	assert.Equal(t, "3d", d.AgentPerformance[0].AvgResolutionTime)
	assert.Equal(t, "3d", d.TeamMetrics.AvgResolutionTime)
}
