package postgres

import (
	"context"
	"database/sql"
	"strings"

	"health-dashboard/internal/domain/doctors"
)

type DoctorsRepo struct {
	db *sql.DB
}

func NewDoctorsRepo(db *sql.DB) *DoctorsRepo {
	return &DoctorsRepo{db: db}
}

const doctorColumns = `
	id, user_id, email,
	first_name, last_name, specialization, license_number,
	created_at, updated_at`

func (r *DoctorsRepo) Create(ctx context.Context, d doctors.Doctor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctors (`+doctorColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		d.ID,
		d.UserID,
		d.Email,
		d.FirstName,
		d.LastName,
		d.Specialization,
		d.LicenseNumber,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *DoctorsRepo) Update(ctx context.Context, d doctors.Doctor) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE doctors
		SET
			email = $2,
			first_name = $3,
			last_name = $4,
			specialization = $5,
			license_number = $6,
			updated_at = $7
		WHERE id = $1
	`,
		d.ID,
		d.Email,
		d.FirstName,
		d.LastName,
		d.Specialization,
		d.LicenseNumber,
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DoctorsRepo) GetByID(ctx context.Context, id string) (doctors.Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doctors.Doctor{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
}

func (r *DoctorsRepo) GetByUserID(ctx context.Context, userID string) (doctors.Doctor, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return doctors.Doctor{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE user_id = $1`, userID)
}

func (r *DoctorsRepo) getOne(ctx context.Context, query string, arg string) (doctors.Doctor, error) {
	var d doctors.Doctor
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&d.ID,
		&d.UserID,
		&d.Email,
		&d.FirstName,
		&d.LastName,
		&d.Specialization,
		&d.LicenseNumber,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return doctors.Doctor{}, notFound(err)
	}
	return d, nil
}
