// Package dashboard derives operational metrics from the live ticket
// collection. Nothing here is persisted; every value is a function of the
// ticket set and a frozen "now".
package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/telesdesk/helpdesk-service/internal/domain"
	"github.com/telesdesk/helpdesk-service/internal/sla"
)

const (
	volumeDays        = 14
	urgentListSize    = 4
	rankingSize       = 5
	unknownRequester  = "Desconhecido"
	unnamedAssignee   = "Sem nome"
	displayIDPrefixes = 3
)

// KPIData holds the headline counters.
type KPIData struct {
	New       int `json:"new"`
	Progress  int `json:"progress"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	SLAClose  int `json:"slaClose"`
}

// StatusQueue counts tickets per literal status.
type StatusQueue struct {
	New       int `json:"new"`
	Waiting   int `json:"waiting"`
	Accepted  int `json:"accepted"`
	Progress  int `json:"progress"`
	Completed int `json:"completed"`
}

// PriorityShare is one slice of the priority distribution.
type PriorityShare struct {
	Count   int `json:"count"`
	Percent int `json:"percent"`
}

// PriorityDistribution partitions tickets by priority literal.
type PriorityDistribution struct {
	Critical PriorityShare `json:"critical"`
	High     PriorityShare `json:"high"`
	Medium   PriorityShare `json:"medium"`
	Low      PriorityShare `json:"low"`
}

// UrgentTicket is a row of the SLA shortlist.
type UrgentTicket struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Requester string                `json:"requester"`
	SLA       string                `json:"sla"`
	Priority  domain.TicketPriority `json:"priority"`
	Status    domain.TicketStatus   `json:"status"`
}

// AssigneeLoad is one row of the top-assignee ranking.
type AssigneeLoad struct {
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Avatar string `json:"avatar"`
}

// VolumePoint is one day of the creation histogram.
type VolumePoint struct {
	Date    string `json:"date"`
	Tickets int    `json:"tickets"`
}

// AgentPerformance summarizes one agent's completed work.
type AgentPerformance struct {
	Name              string `json:"name"`
	Avatar            string `json:"avatar"`
	CompletedTickets  int    `json:"completedTickets"`
	AvgResolutionTime string `json:"avgResolutionTime"`
	SLACompliance     int    `json:"slaCompliance"`
}

// TeamMetrics rolls the completed set up across all agents.
type TeamMetrics struct {
	AvgResolutionTime string `json:"avgResolutionTime"`
	SLAComplianceRate int    `json:"slaComplianceRate"`
	TotalResolved     int    `json:"totalResolved"`
	ActiveTickets     int    `json:"activeTickets"`
}

// Dashboard is the full aggregated metrics shape.
type Dashboard struct {
	KPIData              KPIData              `json:"kpiData"`
	StatusQueue          StatusQueue          `json:"statusQueue"`
	PriorityDistribution PriorityDistribution `json:"priorityDistribution"`
	UrgentTickets        []UrgentTicket       `json:"urgentTickets"`
	TopAssignees         []AssigneeLoad       `json:"topAssignees"`
	VolumeData           []VolumePoint        `json:"volumeData"`
	AgentPerformance     []AgentPerformance   `json:"agentPerformance"`
	TeamMetrics          TeamMetrics          `json:"teamMetrics"`
}

// Empty returns the all-zero dashboard used for an empty collection.
func Empty() Dashboard {
	return Dashboard{
		UrgentTickets:    []UrgentTicket{},
		TopAssignees:     []AssigneeLoad{},
		VolumeData:       []VolumePoint{},
		AgentPerformance: []AgentPerformance{},
		TeamMetrics:      TeamMetrics{AvgResolutionTime: "0h"},
	}
}

// Aggregate computes the dashboard from the full ticket collection. The
// caller freezes now once; malformed records (missing due date) still
// count in status and priority totals but are skipped by SLA buckets.
func Aggregate(tickets []domain.Ticket, now time.Time) Dashboard {
	if len(tickets) == 0 {
		return Empty()
	}

	d := Empty()
	d.KPIData = kpiData(tickets, now)
	d.StatusQueue = statusQueue(tickets)
	d.PriorityDistribution = priorityDistribution(tickets)
	d.UrgentTickets = urgentShortlist(tickets, now)
	d.TopAssignees = topAssignees(tickets)
	d.VolumeData = volumeHistogram(tickets, now)
	d.AgentPerformance = agentPerformance(tickets)
	d.TeamMetrics = teamMetrics(tickets)
	return d
}

func kpiData(tickets []domain.Ticket, now time.Time) KPIData {
	var k KPIData
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusNew:
			k.New++
		case domain.TicketStatusProgress:
			k.Progress++
		case domain.TicketStatusCompleted:
			k.Completed++
		}
		if t.SLADueAt == nil || t.Status == domain.TicketStatusCompleted {
			continue
		}
		hours := t.SLADueAt.Sub(now).Hours()
		if hours < 0 {
			k.Overdue++
		} else if hours > 0 && hours <= sla.UrgentThresholdHours {
			k.SLAClose++
		}
	}
	return k
}

func statusQueue(tickets []domain.Ticket) StatusQueue {
	var q StatusQueue
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusNew:
			q.New++
		case domain.TicketStatusWaiting:
			q.Waiting++
		case domain.TicketStatusAccepted:
			q.Accepted++
		case domain.TicketStatusProgress:
			q.Progress++
		case domain.TicketStatusCompleted:
			q.Completed++
		}
	}
	return q
}

func priorityDistribution(tickets []domain.Ticket) PriorityDistribution {
	counts := map[domain.TicketPriority]int{}
	for _, t := range tickets {
		counts[t.Priority]++
	}
	total := len(tickets)
	share := func(p domain.TicketPriority) PriorityShare {
		count := counts[p]
		percent := 0
		if total > 0 {
			percent = int(math.Round(float64(count) / float64(total) * 100))
		}
		return PriorityShare{Count: count, Percent: percent}
	}
	return PriorityDistribution{
		Critical: share(domain.TicketPriorityCritical),
		High:     share(domain.TicketPriorityHigh),
		Medium:   share(domain.TicketPriorityMedium),
		Low:      share(domain.TicketPriorityLow),
	}
}

func urgentShortlist(tickets []domain.Ticket, now time.Time) []UrgentTicket {
	urgent := make([]domain.Ticket, 0)
	for _, t := range tickets {
		if t.SLADueAt == nil || t.Status == domain.TicketStatusCompleted {
			continue
		}
		if t.SLADueAt.Sub(now).Hours() <= sla.UrgentThresholdHours {
			urgent = append(urgent, t)
		}
	}
	// Stable: collection-order tie break for equal due dates.
	sort.SliceStable(urgent, func(i, j int) bool {
		return urgent[i].SLADueAt.Before(*urgent[j].SLADueAt)
	})
	if len(urgent) > urgentListSize {
		urgent = urgent[:urgentListSize]
	}

	result := make([]UrgentTicket, 0, len(urgent))
	for _, t := range urgent {
		requester := t.RequesterName
		if requester == "" {
			requester = unknownRequester
		}
		result = append(result, UrgentTicket{
			ID:        displayID(t.ID),
			Title:     t.Title,
			Requester: requester,
			SLA:       sla.Label(sla.Evaluate(t.SLADueAt, now, t.Status)),
			Priority:  t.Priority,
			Status:    t.Status,
		})
	}
	return result
}

func topAssignees(tickets []domain.Ticket) []AssigneeLoad {
	counts := map[string]int{}
	for _, t := range tickets {
		if t.AssigneeID == nil || t.Status == domain.TicketStatusCompleted {
			continue
		}
		counts[assigneeName(t)]++
	}
	ranking := make([]AssigneeLoad, 0, len(counts))
	for name, count := range counts {
		ranking = append(ranking, AssigneeLoad{Name: name, Count: count, Avatar: initials(name)})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Name < ranking[j].Name
	})
	if len(ranking) > rankingSize {
		ranking = ranking[:rankingSize]
	}
	return ranking
}

func volumeHistogram(tickets []domain.Ticket, now time.Time) []VolumePoint {
	points := make([]VolumePoint, 0, volumeDays)
	for i := 0; i < volumeDays; i++ {
		day := now.AddDate(0, 0, -(volumeDays - 1 - i))
		count := 0
		for _, t := range tickets {
			if sameCalendarDay(t.CreatedAt.In(now.Location()), day) {
				count++
			}
		}
		points = append(points, VolumePoint{Date: day.Format("02/01"), Tickets: count})
	}
	return points
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type agentStats struct {
	name       string
	totalHours float64
	completed  int
	evaluable  int
	compliant  int
}

func agentPerformance(tickets []domain.Ticket) []AgentPerformance {
	stats := map[string]*agentStats{}
	for _, t := range tickets {
		if t.Status != domain.TicketStatusCompleted || t.AssigneeID == nil {
			continue
		}
		name := assigneeName(t)
		s, ok := stats[name]
		if !ok {
			s = &agentStats{name: name}
			stats[name] = s
		}
		s.completed++
		s.totalHours += t.UpdatedAt.Sub(t.CreatedAt).Hours()
		if t.SLADueAt != nil {
			s.evaluable++
			if !t.UpdatedAt.After(*t.SLADueAt) {
				s.compliant++
			}
		}
	}

	result := make([]AgentPerformance, 0, len(stats))
	for _, s := range stats {
		avgHours := math.Round(s.totalHours / float64(s.completed))
		result = append(result, AgentPerformance{
			Name:              s.name,
			Avatar:            initials(s.name),
			CompletedTickets:  s.completed,
			AvgResolutionTime: formatHours(avgHours),
			SLACompliance:     percent(s.compliant, s.evaluable),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CompletedTickets != result[j].CompletedTickets {
			return result[i].CompletedTickets > result[j].CompletedTickets
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > rankingSize {
		result = result[:rankingSize]
	}
	return result
}

func teamMetrics(tickets []domain.Ticket) TeamMetrics {
	metrics := TeamMetrics{AvgResolutionTime: "0h"}
	var totalHours float64
	var evaluable, compliant int
	for _, t := range tickets {
		if t.Status != domain.TicketStatusCompleted && t.Status != domain.TicketStatusRejected {
			metrics.ActiveTickets++
		}
		if t.Status != domain.TicketStatusCompleted {
			continue
		}
		metrics.TotalResolved++
		totalHours += t.UpdatedAt.Sub(t.CreatedAt).Hours()
		if t.SLADueAt != nil {
			evaluable++
			if !t.UpdatedAt.After(*t.SLADueAt) {
				compliant++
			}
		}
	}
	if metrics.TotalResolved > 0 {
		metrics.AvgResolutionTime = formatHours(math.Round(totalHours / float64(metrics.TotalResolved)))
	}
	metrics.SLAComplianceRate = percent(compliant, evaluable)
	return metrics
}

func assigneeName(t domain.Ticket) string {
	if t.AssigneeName != nil && *t.AssigneeName != "" {
		return *t.AssigneeName
	}
	return unnamedAssignee
}

// initials derives a two-letter avatar tag from the first two
// space-separated name tokens.
func initials(name string) string {
	var b strings.Builder
	for i, token := range strings.Fields(name) {
		if i == 2 {
			break
		}
		runes := []rune(token)
		b.WriteString(strings.ToUpper(string(runes[0])))
	}
	return b.String()
}

func displayID(id string) string {
	if len(id) > displayIDPrefixes {
		id = id[:displayIDPrefixes]
	}
	return "#" + id
}

func formatHours(hours float64) string {
	if hours < 24 {
		return fmt.Sprintf("%dh", int(hours))
	}
	return fmt.Sprintf("%dd", int(math.Round(hours/24)))
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
