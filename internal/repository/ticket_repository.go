package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// TicketFilter captures listing parameters. A nil WarehouseIDs means
// unrestricted (admin); an empty non-nil slice matches nothing.
type TicketFilter struct {
	WarehouseIDs []int64
	// IDs restricts to specific tickets when non-empty.
	IDs      []int64
	Statuses []domain.TicketStatus
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	// ListCreatedSince returns ids of tickets created strictly after the
	// cursor, restricted to the given warehouses (nil = all).
	ListCreatedSince(ctx context.Context, warehouseIDs []int64, since time.Time) ([]int64, error)
	// DeleteCascade removes the ticket together with its comments,
	// attachments and view-status rows in one transaction, so no stale
	// cross-references survive.
	DeleteCascade(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (problem_type, description, customer_name, bill_number, bill_date, warehouse_id, status, creator_id, assigned_to_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ProblemType,
		ticket.Description,
		ticket.CustomerName,
		ticket.BillNumber,
		ticket.BillDate,
		ticket.WarehouseID,
		ticket.Status,
		ticket.CreatorID,
		ticket.AssignedToID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT t.id, t.problem_type, t.description, t.customer_name, t.bill_number, t.bill_date,
               t.warehouse_id, w.name, t.status, t.creator_id, t.assigned_to_id, t.created_at
        FROM tickets t
        JOIN warehouses w ON w.id = t.warehouse_id
        WHERE t.id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ProblemType,
		&ticket.Description,
		&ticket.CustomerName,
		&ticket.BillNumber,
		&ticket.BillDate,
		&ticket.WarehouseID,
		&ticket.WarehouseName,
		&ticket.Status,
		&ticket.CreatorID,
		&ticket.AssignedToID,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT t.id, t.problem_type, t.description, t.customer_name, t.bill_number, t.bill_date,
                    t.warehouse_id, w.name, t.status, t.creator_id, t.assigned_to_id, t.created_at
             FROM tickets t
             JOIN warehouses w ON w.id = t.warehouse_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.WarehouseIDs != nil {
		args = append(args, filter.WarehouseIDs)
		clauses = append(clauses, fmt.Sprintf("t.warehouse_id = ANY($%d)", len(args)))
	}
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		clauses = append(clauses, fmt.Sprintf("t.id = ANY($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.problem_type) LIKE %s OR LOWER(t.customer_name) LIKE %s OR LOWER(t.bill_number) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListCreatedSince(ctx context.Context, warehouseIDs []int64, since time.Time) ([]int64, error) {
	query := `SELECT id FROM tickets WHERE created_at > $1`
	args := []any{since}
	if warehouseIDs != nil {
		args = append(args, warehouseIDs)
		query += ` AND warehouse_id = ANY($2)`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *ticketRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	statements := []string{
		`DELETE FROM attachments WHERE comment_id IN (SELECT id FROM comments WHERE ticket_id=$1)`,
		`DELETE FROM attachments WHERE ticket_id=$1`,
		`DELETE FROM comments WHERE ticket_id=$1`,
		`DELETE FROM ticket_view_statuses WHERE ticket_id=$1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ProblemType,
			&ticket.Description,
			&ticket.CustomerName,
			&ticket.BillNumber,
			&ticket.BillDate,
			&ticket.WarehouseID,
			&ticket.WarehouseName,
			&ticket.Status,
			&ticket.CreatorID,
			&ticket.AssignedToID,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
