package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patho/patho/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type labRepoPG struct{ pool *pgxpool.Pool }

// NewLabRepoPG returns the Postgres-backed lab repository.
func NewLabRepoPG(pool *pgxpool.Pool) LabRepository { return &labRepoPG{pool: pool} }

func (r *labRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const labCols = `id, name, address, phone, rating, operating_hours, created_at, updated_at`

func scanLab(row pgx.Row) (*Lab, error) {
	var l Lab
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.Phone, &l.Rating, &l.OperatingHours, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &l, err
}

func (r *labRepoPG) Create(ctx context.Context, l *Lab) error {
	l.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO labs (id, name, address, phone, rating, operating_hours)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		l.ID, l.Name, l.Address, l.Phone, l.Rating, l.OperatingHours).
		Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *labRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Lab, error) {
	return scanLab(r.conn(ctx).QueryRow(ctx, `SELECT `+labCols+` FROM labs WHERE id = $1`, id))
}

func (r *labRepoPG) Update(ctx context.Context, l *Lab) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE labs SET name = $2, address = $3, phone = $4, rating = $5,
			operating_hours = $6, updated_at = NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Address, l.Phone, l.Rating, l.OperatingHours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *labRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM labs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *labRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Lab, int, error) {
	query := `SELECT ` + labCols + ` FROM labs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM labs WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["min_rating"]; ok {
		query += fmt.Sprintf(` AND rating >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND rating >= $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Lab
	for rows.Next() {
		l, err := scanLab(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

type testRepoPG struct{ pool *pgxpool.Pool }

// NewTestRepoPG returns the Postgres-backed test repository.
func NewTestRepoPG(pool *pgxpool.Pool) TestRepository { return &testRepoPG{pool: pool} }

func (r *testRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const testCols = `id, name, description, price, lab_id, created_at, updated_at`

func scanTest(row pgx.Row) (*Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Price, &t.LabID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *testRepoPG) Create(ctx context.Context, t *Test) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO tests (id, name, description, price, lab_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Description, t.Price, t.LabID).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *testRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Test, error) {
	return scanTest(r.conn(ctx).QueryRow(ctx, `SELECT `+testCols+` FROM tests WHERE id = $1`, id))
}

func (r *testRepoPG) Update(ctx context.Context, t *Test) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE tests SET name = $2, description = $3, price = $4, lab_id = $5, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Description, t.Price, t.LabID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *testRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *testRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Test, int, error) {
	query := `SELECT ` + testCols + ` FROM tests WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM tests WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["lab_id"]; ok {
		query += fmt.Sprintf(` AND lab_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND lab_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["max_price"]; ok {
		query += fmt.Sprintf(` AND price <= $%d`, idx)
		countQuery += fmt.Sprintf(` AND price <= $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, nil
}
