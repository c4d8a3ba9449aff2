package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"health-dashboard/internal/domain/laborders"
)

type LabOrdersRepo struct {
	db *sql.DB
}

func NewLabOrdersRepo(db *sql.DB) *LabOrdersRepo {
	return &LabOrdersRepo{db: db}
}

const labOrderColumns = `
	id, client_id, doctor_id, visit_id,
	tests, priority, status, notes,
	ordered_at, completed_at, updated_at`

const labResultColumns = `
	id, lab_order_id, parameter, value, unit, reference_range,
	is_abnormal, notes, verified_by, resulted_at`

func (r *LabOrdersRepo) Create(ctx context.Context, o laborders.LabOrder) error {
	tests, err := encodeTests(o.Tests)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lab_orders (`+labOrderColumns+`)
		VALUES ($1,$2,$3,$4,$5::jsonb,$6,$7,$8,$9,$10,$11)
	`,
		o.ID,
		o.ClientID,
		o.DoctorID,
		toNullString(o.VisitID),
		tests,
		string(o.Priority),
		string(o.Status),
		o.Notes,
		o.OrderedAt,
		toNullTime(o.CompletedAt),
		o.UpdatedAt,
	)
	return err
}

func (r *LabOrdersRepo) GetByID(ctx context.Context, id string) (laborders.LabOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return laborders.LabOrder{}, ErrNotFound
	}
	o, err := scanLabOrder(r.db.QueryRowContext(ctx, `SELECT `+labOrderColumns+` FROM lab_orders WHERE id = $1`, id))
	if err != nil {
		return laborders.LabOrder{}, notFound(err)
	}
	return o, nil
}

func (r *LabOrdersRepo) ListByDoctor(ctx context.Context, doctorID string, status laborders.Status) ([]laborders.LabOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+labOrderColumns+`
		FROM lab_orders
		WHERE doctor_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY ordered_at DESC
	`, doctorID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]laborders.LabOrder, 0)
	for rows.Next() {
		o, err := scanLabOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *LabOrdersRepo) ListResults(ctx context.Context, orderID string) ([]laborders.Result, error) {
	return listResults(ctx, r.db, orderID)
}

// RecordResult: SELECT ... FOR UPDATE de la orden, lectura de resultados previos,
// INSERT del resultado y UPDATE de la orden, todo en la misma transacción.
func (r *LabOrdersRepo) RecordResult(ctx context.Context, res laborders.Result, apply laborders.ApplyFunc) (laborders.LabOrder, error) {
	var updated laborders.LabOrder

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		o, err := scanLabOrder(tx.QueryRowContext(ctx, `
			SELECT `+labOrderColumns+`
			FROM lab_orders
			WHERE id = $1
			FOR UPDATE
		`, res.LabOrderID))
		if err != nil {
			return notFound(err)
		}

		existing, err := listResults(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		updated = apply(o, append(existing, res))

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lab_results (`+labResultColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			res.ID,
			o.ID,
			res.Parameter,
			res.Value,
			res.Unit,
			res.ReferenceRange,
			res.IsAbnormal,
			res.Notes,
			res.VerifiedBy,
			res.ResultedAt,
		); err != nil {
			return fmt.Errorf("insert lab result: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE lab_orders
			SET status = $2, completed_at = $3, updated_at = $4
			WHERE id = $1
		`,
			o.ID,
			string(updated.Status),
			toNullTime(updated.CompletedAt),
			updated.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update lab order: %w", err)
		}
		return nil
	})
	if err != nil {
		return laborders.LabOrder{}, err
	}
	return updated, nil
}

func (r *LabOrdersRepo) CountByStatus(ctx context.Context, doctorID string) (map[laborders.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM lab_orders
		WHERE doctor_id = $1
		GROUP BY status
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[laborders.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[laborders.Status(status)] = n
	}
	return out, rows.Err()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listResults(ctx context.Context, q querier, orderID string) ([]laborders.Result, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+labResultColumns+`
		FROM lab_results
		WHERE lab_order_id = $1
		ORDER BY resulted_at ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]laborders.Result, 0)
	for rows.Next() {
		var res laborders.Result
		if err := rows.Scan(
			&res.ID,
			&res.LabOrderID,
			&res.Parameter,
			&res.Value,
			&res.Unit,
			&res.ReferenceRange,
			&res.IsAbnormal,
			&res.Notes,
			&res.VerifiedBy,
			&res.ResultedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanLabOrder(s rowScanner) (laborders.LabOrder, error) {
	var o laborders.LabOrder
	var visitID sql.NullString
	var tests []byte
	var priority, status string
	var completedAt sql.NullTime

	if err := s.Scan(
		&o.ID,
		&o.ClientID,
		&o.DoctorID,
		&visitID,
		&tests,
		&priority,
		&status,
		&o.Notes,
		&o.OrderedAt,
		&completedAt,
		&o.UpdatedAt,
	); err != nil {
		return laborders.LabOrder{}, err
	}

	if len(tests) > 0 {
		if err := json.Unmarshal(tests, &o.Tests); err != nil {
			return laborders.LabOrder{}, fmt.Errorf("decode lab order tests: %w", err)
		}
	}
	o.VisitID = visitID.String
	o.Priority = laborders.Priority(priority)
	o.Status = laborders.Status(status)
	o.CompletedAt = fromNullTime(completedAt)
	return o, nil
}

func encodeTests(tests []string) (string, error) {
	if tests == nil {
		tests = []string{}
	}
	b, err := json.Marshal(tests)
	if err != nil {
		return "", fmt.Errorf("encode lab order tests: %w", err)
	}
	return string(b), nil
}
