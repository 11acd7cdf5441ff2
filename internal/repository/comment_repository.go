package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// CommentRepository manages ticket comment threads.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
	// UpdateContent edits a comment and bumps its timestamp so the edit
	// re-triggers the unread computation for viewers other than the editor.
	UpdateContent(ctx context.Context, id int64, content string, editedAt time.Time) error
	Delete(ctx context.Context, id int64) error
	// LatestForeignTimes returns, per ticket, the newest comment timestamp
	// authored by someone other than excludeAuthor. One query for the whole
	// id list; tickets with no such comment are absent from the map.
	LatestForeignTimes(ctx context.Context, ticketIDs []int64, excludeAuthor string) (map[int64]time.Time, error)
	// TicketsWithForeignCommentsSince returns ids of tickets (restricted to
	// warehouseIDs, nil = all) that have at least one comment newer than
	// the cursor from an author other than excludeAuthor.
	TicketsWithForeignCommentsSince(ctx context.Context, warehouseIDs []int64, since time.Time, excludeAuthor string) ([]int64, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.author_id, u.username, c.content, c.created_at
        FROM comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.id=$1`
	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.Content,
		&comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.ticket_id, c.author_id, u.username, c.content, c.created_at
        FROM comments c
        JOIN users u ON u.id = c.author_id
        WHERE c.ticket_id=$1 ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Content,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) UpdateContent(ctx context.Context, id int64, content string, editedAt time.Time) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE comments SET content=$1, created_at=$2 WHERE id=$3`,
		content, editedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM attachments WHERE comment_id=$1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *commentRepository) LatestForeignTimes(ctx context.Context, ticketIDs []int64, excludeAuthor string) (map[int64]time.Time, error) {
	if len(ticketIDs) == 0 {
		return map[int64]time.Time{}, nil
	}
	const query = `
        SELECT ticket_id, MAX(created_at)
        FROM comments
        WHERE ticket_id = ANY($1) AND author_id <> $2
        GROUP BY ticket_id`
	rows, err := r.pool.Query(ctx, query, ticketIDs, excludeAuthor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]time.Time)
	for rows.Next() {
		var ticketID int64
		var latest time.Time
		if err := rows.Scan(&ticketID, &latest); err != nil {
			return nil, err
		}
		result[ticketID] = latest
	}
	return result, rows.Err()
}

func (r *commentRepository) TicketsWithForeignCommentsSince(ctx context.Context, warehouseIDs []int64, since time.Time, excludeAuthor string) ([]int64, error) {
	query := `
        SELECT DISTINCT c.ticket_id
        FROM comments c
        JOIN tickets t ON t.id = c.ticket_id
        WHERE c.created_at > $1 AND c.author_id <> $2`
	args := []any{since, excludeAuthor}
	if warehouseIDs != nil {
		args = append(args, warehouseIDs)
		query += ` AND t.warehouse_id = ANY($3)`
	}
	query += ` ORDER BY c.ticket_id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}
