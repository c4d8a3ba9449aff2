package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"health-dashboard/internal/domain/prescriptions"
)

type PrescriptionsRepo struct {
	db *sql.DB
}

func NewPrescriptionsRepo(db *sql.DB) *PrescriptionsRepo {
	return &PrescriptionsRepo{db: db}
}

const prescriptionColumns = `id, visit_id, client_id, doctor_id, status, notes, issued_at, updated_at`

const itemColumns = `id, prescription_id, medicine_id, dosage, frequency, duration, quantity, instructions`

// Create inserta la receta y sus items en una sola transacción.
func (r *PrescriptionsRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prescriptions (`+prescriptionColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			p.ID,
			p.VisitID,
			p.ClientID,
			p.DoctorID,
			string(p.Status),
			p.Notes,
			p.IssuedAt,
			p.UpdatedAt,
		); err != nil {
			return err
		}

		for i, it := range p.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO prescription_items (`+itemColumns+`, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			`,
				it.ID,
				p.ID,
				it.MedicineID,
				it.Dosage,
				it.Frequency,
				it.Duration,
				it.Quantity,
				it.Instructions,
				i,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PrescriptionsRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return prescriptions.Prescription{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = $1`, id)
	p, err := scanPrescription(row)
	if err != nil {
		return prescriptions.Prescription{}, notFound(err)
	}

	items, err := r.queryItems(ctx, `
		SELECT `+itemColumns+`
		FROM prescription_items
		WHERE prescription_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return prescriptions.Prescription{}, err
	}
	p.Items = items[id]
	return p, nil
}

func (r *PrescriptionsRepo) ListByDoctor(ctx context.Context, doctorID string, status prescriptions.Status) ([]prescriptions.Prescription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		WHERE doctor_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY issued_at DESC
	`, doctorID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prescriptions.Prescription, 0)
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// Items de todas las recetas en una sola query.
	items, err := r.queryItems(ctx, `
		SELECT i.id, i.prescription_id, i.medicine_id, i.dosage, i.frequency, i.duration, i.quantity, i.instructions
		FROM prescription_items i
		JOIN prescriptions p ON p.id = i.prescription_id
		WHERE p.doctor_id = $1 AND ($2 = '' OR p.status = $2)
		ORDER BY i.prescription_id, i.position ASC
	`, doctorID, string(status))
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (r *PrescriptionsRepo) UpdateStatus(ctx context.Context, id string, status prescriptions.Status, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE prescriptions
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, string(status), updatedAt)
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

func (r *PrescriptionsRepo) CountByStatus(ctx context.Context, doctorID string) (map[prescriptions.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM prescriptions
		WHERE doctor_id = $1
		GROUP BY status
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[prescriptions.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[prescriptions.Status(status)] = n
	}
	return out, rows.Err()
}

// queryItems agrupa los items por prescription_id.
func (r *PrescriptionsRepo) queryItems(ctx context.Context, query string, args ...any) (map[string][]prescriptions.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]prescriptions.Item{}
	for rows.Next() {
		var it prescriptions.Item
		if err := rows.Scan(
			&it.ID,
			&it.PrescriptionID,
			&it.MedicineID,
			&it.Dosage,
			&it.Frequency,
			&it.Duration,
			&it.Quantity,
			&it.Instructions,
		); err != nil {
			return nil, err
		}
		out[it.PrescriptionID] = append(out[it.PrescriptionID], it)
	}
	return out, rows.Err()
}

func scanPrescription(s rowScanner) (prescriptions.Prescription, error) {
	var p prescriptions.Prescription
	var status string
	if err := s.Scan(
		&p.ID,
		&p.VisitID,
		&p.ClientID,
		&p.DoctorID,
		&status,
		&p.Notes,
		&p.IssuedAt,
		&p.UpdatedAt,
	); err != nil {
		return prescriptions.Prescription{}, err
	}
	p.Status = prescriptions.Status(status)
	return p, nil
}

// -------------------------
// Medicines
// -------------------------

type MedicinesRepo struct {
	db *sql.DB
}

func NewMedicinesRepo(db *sql.DB) *MedicinesRepo {
	return &MedicinesRepo{db: db}
}

const medicineColumns = `id, name, generic_name, form, strength, created_at`

func (r *MedicinesRepo) Create(ctx context.Context, m prescriptions.Medicine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medicines (`+medicineColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.Name, m.GenericName, m.Form, m.Strength, m.CreatedAt)
	return err
}

func (r *MedicinesRepo) GetByID(ctx context.Context, id string) (prescriptions.Medicine, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return prescriptions.Medicine{}, ErrNotFound
	}
	var m prescriptions.Medicine
	err := r.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.GenericName, &m.Form, &m.Strength, &m.CreatedAt)
	if err != nil {
		return prescriptions.Medicine{}, notFound(err)
	}
	return m, nil
}

func (r *MedicinesRepo) List(ctx context.Context, query string) ([]prescriptions.Medicine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR generic_name ILIKE '%' || $1 || '%'
		ORDER BY name ASC
	`, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prescriptions.Medicine, 0)
	for rows.Next() {
		var m prescriptions.Medicine
		if err := rows.Scan(&m.ID, &m.Name, &m.GenericName, &m.Form, &m.Strength, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
