package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"health-dashboard/internal/domain/visits"
)

type VisitsRepo struct {
	db *sql.DB
}

func NewVisitsRepo(db *sql.DB) *VisitsRepo {
	return &VisitsRepo{db: db}
}

const visitColumns = `id, client_id, doctor_id, visit_date, reason, diagnosis, notes, created_at`

func (r *VisitsRepo) Create(ctx context.Context, v visits.Visit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO visits (`+visitColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, v.ID, v.ClientID, v.DoctorID, v.VisitDate, v.Reason, v.Diagnosis, v.Notes, v.CreatedAt)
	return err
}

func (r *VisitsRepo) GetByID(ctx context.Context, id string) (visits.Visit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return visits.Visit{}, ErrNotFound
	}
	v, err := scanVisit(r.db.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id))
	if err != nil {
		return visits.Visit{}, notFound(err)
	}
	return v, nil
}

func (r *VisitsRepo) ListByClient(ctx context.Context, clientID string) ([]visits.Visit, error) {
	return r.list(ctx, `
		SELECT `+visitColumns+`
		FROM visits
		WHERE client_id = $1
		ORDER BY visit_date DESC
	`, clientID)
}

func (r *VisitsRepo) ListByDoctorSince(ctx context.Context, doctorID string, since time.Time) ([]visits.Visit, error) {
	return r.list(ctx, `
		SELECT `+visitColumns+`
		FROM visits
		WHERE doctor_id = $1 AND visit_date >= $2
		ORDER BY visit_date ASC
	`, doctorID, since)
}

func (r *VisitsRepo) list(ctx context.Context, query string, args ...any) ([]visits.Visit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]visits.Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVisit(s rowScanner) (visits.Visit, error) {
	var v visits.Visit
	err := s.Scan(&v.ID, &v.ClientID, &v.DoctorID, &v.VisitDate, &v.Reason, &v.Diagnosis, &v.Notes, &v.CreatedAt)
	return v, err
}
