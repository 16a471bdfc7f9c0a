package booking

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

// NewRepoPG returns the Postgres-backed booking repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const bookingCols = `id, user_id, test_id, lab_id, test_name, lab_name,
	appointment_date, appointment_time, patient_name, patient_age, patient_gender,
	patient_phone, patient_email,
	sample_type, address, price, payment_status, status, created_at, updated_at`

func (r *repoPG) scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.TestID, &b.LabID, &b.TestName, &b.LabName,
		&b.AppointmentDate, &b.AppointmentTime, &b.PatientName, &b.PatientAge, &b.PatientGender,
		&b.PatientPhone, &b.PatientEmail,
		&b.SampleType, &b.Address, &b.Price, &b.PaymentStatus, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

// isSlotConflict reports whether err is the unique violation raised by the
// one-booking-per-slot index.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	err := r.scanTimestamps(b, r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bookings (id, user_id, test_id, lab_id, test_name, lab_name,
			appointment_date, appointment_time, patient_name, patient_age, patient_gender,
			patient_phone, patient_email,
			sample_type, address, price, payment_status, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.TestID, b.LabID, b.TestName, b.LabName,
		b.AppointmentDate, b.AppointmentTime, b.PatientName, b.PatientAge, b.PatientGender,
		b.PatientPhone, b.PatientEmail,
		b.SampleType, b.Address, b.Price, b.PaymentStatus, b.Status))
	if isSlotConflict(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *repoPG) scanTimestamps(b *Booking, row pgx.Row) error {
	return row.Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scanBooking(r.conn(ctx).QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bookingCols+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	query := `SELECT ` + bookingCols + ` FROM bookings WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM bookings WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["user_id"]; ok {
		query += fmt.Sprintf(` AND user_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND user_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["lab_id"]; ok {
		query += fmt.Sprintf(` AND lab_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND lab_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date"]; ok {
		query += fmt.Sprintf(` AND appointment_date = $%d`, idx)
		countQuery += fmt.Sprintf(` AND appointment_date = $%d`, idx)
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
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
