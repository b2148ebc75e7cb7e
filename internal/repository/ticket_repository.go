package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesdesk/helpdesk-service/internal/domain"
)

// StatusClass is a coarse ticket listing filter.
type StatusClass string

const (
	StatusClassAll       StatusClass = ""
	StatusClassActive    StatusClass = "active"
	StatusClassCompleted StatusClass = "completed"
)

// TicketRepository encapsulates ticket persistence. All reads join the
// requester and assignee display names from profiles.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByClass(ctx context.Context, class StatusClass) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error
	// Reject moves the ticket to rejected and clears any assignee, so a
	// terminal ticket never carries one.
	Reject(ctx context.Context, id string) error
	// Claim atomically assigns an unassigned new/waiting ticket to the
	// agent and moves it to accepted. Returns false when the ticket was
	// already claimed or is past the acceptable states.
	Claim(ctx context.Context, id, agentID string) (bool, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `
        t.id, t.title, t.description, t.status, t.priority, t.requester_id,
        t.assignee_id, t.department, t.sla_due_at, t.created_at, t.updated_at,
        COALESCE(req.full_name, ''), asg.full_name`

const ticketJoins = `
        FROM tickets t
        LEFT JOIN profiles req ON req.id = t.requester_id
        LEFT JOIN profiles asg ON asg.id = t.assignee_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, requester_id, assignee_id, department, sla_due_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.Department,
		ticket.SLADueAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + ` WHERE t.id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.Department,
		&ticket.SLADueAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.RequesterName,
		&ticket.AssigneeName,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketJoins + ` ORDER BY t.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByClass(ctx context.Context, class StatusClass) ([]domain.Ticket, error) {
	statuses := statusesForClass(class)
	if statuses == nil {
		return r.ListAll(ctx)
	}
	query := `SELECT` + ticketColumns + ticketJoins + ` WHERE t.status = ANY($1) ORDER BY t.created_at DESC`
	rows, err := r.pool.Query(ctx, query, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Reject(ctx context.Context, id string) error {
	const query = `UPDATE tickets SET status='rejected', assignee_id=NULL, updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Claim(ctx context.Context, id, agentID string) (bool, error) {
	const query = `
        UPDATE tickets SET status='accepted', assignee_id=$1, updated_at=NOW()
        WHERE id=$2 AND assignee_id IS NULL AND status IN ('new','waiting')`
	cmd, err := r.pool.Exec(ctx, query, agentID, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func statusesForClass(class StatusClass) []string {
	switch class {
	case StatusClassActive:
		return []string{"new", "progress", "waiting", "accepted"}
	case StatusClassCompleted:
		return []string{"completed", "closed", "rejected"}
	default:
		return nil
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.RequesterID,
			&ticket.AssigneeID,
			&ticket.Department,
			&ticket.SLADueAt,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.RequesterName,
			&ticket.AssigneeName,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
