package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// UserRepository encapsulates account persistence, including the
// user_warehouses grant table.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// ReplaceGrants swaps the user's warehouse grant set atomically.
	ReplaceGrants(ctx context.Context, userID string, warehouseIDs []int64) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO users (id, username, email, password_hash, first_name, last_name, role)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	if err := tx.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
	).Scan(&user.CreatedAt); err != nil {
		return err
	}

	for _, warehouseID := range user.WarehouseIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_warehouses (user_id, warehouse_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			user.ID, warehouseID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, username, email, password_hash, first_name, last_name, role, created_at
        FROM users WHERE id=$1`
	return r.fetchWithGrants(ctx, query, id)
}

func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*domain.User, error) {
	const query = `
        SELECT id, username, email, password_hash, first_name, last_name, role, created_at
        FROM users WHERE username=$1 OR email=$1`
	return r.fetchWithGrants(ctx, query, login)
}

func (r *userRepository) fetchWithGrants(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}

	grants, err := r.grantsFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.WarehouseIDs = grants
	return &user, nil
}

func (r *userRepository) grantsFor(ctx context.Context, userID string) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT warehouse_id FROM user_warehouses WHERE user_id=$1 ORDER BY warehouse_id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT id, username, email, password_hash, first_name, last_name, role, created_at
        FROM users ORDER BY username ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		grants, err := r.grantsFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].WarehouseIDs = grants
	}
	return result, nil
}

func (r *userRepository) ReplaceGrants(ctx context.Context, userID string, warehouseIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_warehouses WHERE user_id=$1`, userID); err != nil {
		return err
	}
	for _, warehouseID := range warehouseIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_warehouses (user_id, warehouse_id) VALUES ($1,$2)`,
			userID, warehouseID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
