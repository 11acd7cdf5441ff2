package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// ViewStatusRepository stores per (user, ticket) last-viewed watermarks.
// Callers treat every error as the advisory degraded mode; this layer
// just reports them.
type ViewStatusRepository interface {
	// Upsert records the watermark. Single-row last-write-wins: the UNIQUE
	// (user_id, ticket_id) key serializes concurrent duplicate views at
	// the storage layer, keeping the newest timestamp.
	Upsert(ctx context.Context, status domain.ViewStatus) error
	// Watermarks returns the last-viewed times for the given tickets in
	// one pass. Tickets never viewed are absent from the map.
	Watermarks(ctx context.Context, userID string, ticketIDs []int64) (map[int64]time.Time, error)
}

type viewStatusRepository struct {
	pool *pgxpool.Pool
}

// NewViewStatusRepository builds repository.
func NewViewStatusRepository(pool *pgxpool.Pool) ViewStatusRepository {
	return &viewStatusRepository{pool: pool}
}

func (r *viewStatusRepository) Upsert(ctx context.Context, status domain.ViewStatus) error {
	const query = `
        INSERT INTO ticket_view_statuses (user_id, ticket_id, last_viewed_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, ticket_id)
        DO UPDATE SET last_viewed_at = GREATEST(ticket_view_statuses.last_viewed_at, EXCLUDED.last_viewed_at)`
	_, err := r.pool.Exec(ctx, query, status.UserID, status.TicketID, status.LastViewedAt)
	return err
}

func (r *viewStatusRepository) Watermarks(ctx context.Context, userID string, ticketIDs []int64) (map[int64]time.Time, error) {
	if len(ticketIDs) == 0 {
		return map[int64]time.Time{}, nil
	}
	const query = `
        SELECT ticket_id, last_viewed_at
        FROM ticket_view_statuses
        WHERE user_id=$1 AND ticket_id = ANY($2)`
	rows, err := r.pool.Query(ctx, query, userID, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]time.Time)
	for rows.Next() {
		var ticketID int64
		var viewedAt time.Time
		if err := rows.Scan(&ticketID, &viewedAt); err != nil {
			return nil, err
		}
		result[ticketID] = viewedAt
	}
	return result, rows.Err()
}
