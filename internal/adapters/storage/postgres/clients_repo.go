package postgres

import (
	"context"
	"database/sql"
	"strings"

	"health-dashboard/internal/domain/clients"
)

type ClientsRepo struct {
	db *sql.DB
}

func NewClientsRepo(db *sql.DB) *ClientsRepo {
	return &ClientsRepo{db: db}
}

const clientColumns = `
	id, first_name, last_name, date_of_birth, gender,
	phone, email, address,
	created_by, created_at, updated_at`

func (r *ClientsRepo) Create(ctx context.Context, c clients.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		c.ID,
		c.FirstName,
		c.LastName,
		toNullTime(c.DateOfBirth),
		string(c.Gender),
		c.Phone,
		c.Email,
		c.Address,
		c.CreatedBy,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *ClientsRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return clients.Client{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		return clients.Client{}, notFound(err)
	}
	return c, nil
}

func (r *ClientsRepo) List(ctx context.Context, filter clients.ListFilter) ([]clients.Client, error) {
	q := strings.TrimSpace(filter.Query)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE $1 = ''
			OR (first_name || ' ' || last_name) ILIKE '%' || $1 || '%'
			OR email ILIKE '%' || $1 || '%'
			OR phone ILIKE '%' || $1 || '%'
		ORDER BY last_name ASC, first_name ASC
		LIMIT $2
	`, q, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]clients.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ClientsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(s rowScanner) (clients.Client, error) {
	var c clients.Client
	var gender string
	var dob sql.NullTime
	if err := s.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&dob,
		&gender,
		&c.Phone,
		&c.Email,
		&c.Address,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return clients.Client{}, err
	}
	c.Gender = clients.Gender(gender)
	// date_of_birth es DATE: pgx lo mapea a medianoche UTC
	c.DateOfBirth = fromNullTime(dob)
	return c, nil
}
