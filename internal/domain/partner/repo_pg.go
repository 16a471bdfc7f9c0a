package partner

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

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the Postgres-backed application repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const applicationCols = `id, lab_name, owner_name, email, phone, address, status, created_at, updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.LabName, &a.OwnerName, &a.Email, &a.Phone, &a.Address, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Application) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO partner_applications (id, lab_name, owner_name, email, phone, address, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		a.ID, a.LabName, a.OwnerName, a.Email, a.Phone, a.Address, a.Status).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	return scanApplication(r.conn(ctx).QueryRow(ctx, `SELECT `+applicationCols+` FROM partner_applications WHERE id = $1`, id))
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Application, int, error) {
	query := `SELECT ` + applicationCols + ` FROM partner_applications WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM partner_applications WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["email"]; ok {
		query += fmt.Sprintf(` AND email = $%d`, idx)
		countQuery += fmt.Sprintf(` AND email = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

// UpdateStatus applies a decision only while the application is still
// pending, so two admins deciding at once cannot both win.
func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE partner_applications SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, status, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyDecided
	}
	return nil
}
