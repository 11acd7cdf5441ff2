package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// WarehouseRepository manages warehouse reference data.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *domain.Warehouse) error
	GetByID(ctx context.Context, id int64) (*domain.Warehouse, error)
	// List returns warehouses restricted to the given ids; nil = all.
	List(ctx context.Context, ids []int64) ([]domain.Warehouse, error)
	Update(ctx context.Context, warehouse *domain.Warehouse) error
	Delete(ctx context.Context, id int64) error
}

type warehouseRepository struct {
	pool *pgxpool.Pool
}

// NewWarehouseRepository instantiates repository.
func NewWarehouseRepository(pool *pgxpool.Pool) WarehouseRepository {
	return &warehouseRepository{pool: pool}
}

func (r *warehouseRepository) Create(ctx context.Context, warehouse *domain.Warehouse) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO warehouses (name) VALUES ($1) RETURNING id`,
		warehouse.Name,
	).Scan(&warehouse.ID)
}

func (r *warehouseRepository) GetByID(ctx context.Context, id int64) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	if err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM warehouses WHERE id=$1`, id,
	).Scan(&warehouse.ID, &warehouse.Name); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *warehouseRepository) List(ctx context.Context, ids []int64) ([]domain.Warehouse, error) {
	query := `SELECT id, name FROM warehouses`
	args := []any{}
	if ids != nil {
		args = append(args, ids)
		query += ` WHERE id = ANY($1)`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Warehouse
	for rows.Next() {
		var warehouse domain.Warehouse
		if err := rows.Scan(&warehouse.ID, &warehouse.Name); err != nil {
			return nil, err
		}
		result = append(result, warehouse)
	}
	return result, rows.Err()
}

func (r *warehouseRepository) Update(ctx context.Context, warehouse *domain.Warehouse) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE warehouses SET name=$1 WHERE id=$2`,
		warehouse.Name, warehouse.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *warehouseRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM warehouses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
