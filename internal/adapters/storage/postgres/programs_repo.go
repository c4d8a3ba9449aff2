package postgres

import (
	"context"
	"database/sql"
	"strings"

	"health-dashboard/internal/domain/programs"
)

type ProgramsRepo struct {
	db *sql.DB
}

func NewProgramsRepo(db *sql.DB) *ProgramsRepo {
	return &ProgramsRepo{db: db}
}

const programColumns = `id, name, description, created_by, created_at`

func (r *ProgramsRepo) Create(ctx context.Context, p programs.Program) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO programs (`+programColumns+`)
		VALUES ($1,$2,$3,$4,$5)
	`, p.ID, p.Name, p.Description, p.CreatedBy, p.CreatedAt)
	return mapUnique(err)
}

func (r *ProgramsRepo) GetByID(ctx context.Context, id string) (programs.Program, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return programs.Program{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id)
}

func (r *ProgramsRepo) GetByName(ctx context.Context, name string) (programs.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return programs.Program{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+programColumns+` FROM programs WHERE lower(name) = lower($1)`, name)
}

func (r *ProgramsRepo) List(ctx context.Context) ([]programs.Program, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+programColumns+` FROM programs ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]programs.Program, 0)
	for rows.Next() {
		var p programs.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProgramsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM programs`).Scan(&n)
	return n, err
}

func (r *ProgramsRepo) getOne(ctx context.Context, query, arg string) (programs.Program, error) {
	var p programs.Program
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return programs.Program{}, notFound(err)
	}
	return p, nil
}

// -------------------------
// Enrollments
// -------------------------

type EnrollmentsRepo struct {
	db *sql.DB
}

func NewEnrollmentsRepo(db *sql.DB) *EnrollmentsRepo {
	return &EnrollmentsRepo{db: db}
}

const enrollmentColumns = `id, client_id, program_id, status, notes, enrolled_by, enrolled_at`

// Create: el índice parcial enrollments_active_uq garantiza una sola ACTIVE por par.
func (r *EnrollmentsRepo) Create(ctx context.Context, e programs.Enrollment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.ID, e.ClientID, e.ProgramID, string(e.Status), e.Notes, e.EnrolledBy, e.EnrolledAt)
	return mapUnique(err)
}

func (r *EnrollmentsRepo) ListByClient(ctx context.Context, clientID string) ([]programs.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE client_id = $1
		ORDER BY enrolled_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]programs.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EnrollmentsRepo) GetActive(ctx context.Context, clientID, programID string) (programs.Enrollment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+enrollmentColumns+`
		FROM enrollments
		WHERE client_id = $1 AND program_id = $2 AND status = 'ACTIVE'
	`, clientID, programID)
	e, err := scanEnrollment(row)
	if err != nil {
		return programs.Enrollment{}, notFound(err)
	}
	return e, nil
}

func (r *EnrollmentsRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE status = 'ACTIVE'`).Scan(&n)
	return n, err
}

func scanEnrollment(s rowScanner) (programs.Enrollment, error) {
	var e programs.Enrollment
	var status string
	if err := s.Scan(&e.ID, &e.ClientID, &e.ProgramID, &status, &e.Notes, &e.EnrolledBy, &e.EnrolledAt); err != nil {
		return programs.Enrollment{}, err
	}
	e.Status = programs.EnrollmentStatus(status)
	return e, nil
}
