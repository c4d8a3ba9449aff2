package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-dashboard/internal/domain/prescriptions"
	"health-dashboard/internal/ports/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var prescriptionCols = []string{"id", "visit_id", "client_id", "doctor_id", "status", "notes", "issued_at", "updated_at"}

var itemCols = []string{"id", "prescription_id", "medicine_id", "dosage", "frequency", "duration", "quantity", "instructions"}

func TestPrescriptionsRepo_Create_InsertsItemsInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPrescriptionsRepo(db)
	ts := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	p := prescriptions.Prescription{
		ID: "rx_1", VisitID: "v1", ClientID: "c1", DoctorID: "d1",
		Status: prescriptions.StatusPending, IssuedAt: ts, UpdatedAt: ts,
		Items: []prescriptions.Item{
			{ID: "it_1", MedicineID: "m1", Dosage: "500 mg", Frequency: "TID", Quantity: 21},
			{ID: "it_2", MedicineID: "m2", Dosage: "10 ml", Frequency: "QD", Quantity: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO prescriptions`).
		WithArgs("rx_1", "v1", "c1", "d1", "PENDING", "", ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO prescription_items`).
		WithArgs("it_1", "rx_1", "m1", "500 mg", "TID", "", 21, "", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO prescription_items`).
		WithArgs("it_2", "rx_1", "m2", "10 ml", "QD", "", 1, "", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionsRepo_Create_RollsBackOnItemError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPrescriptionsRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO prescriptions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO prescription_items`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), prescriptions.Prescription{
		ID:    "rx_1",
		Items: []prescriptions.Item{{ID: "it_1", MedicineID: "ghost"}},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionsRepo_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPrescriptionsRepo(db)
	ts := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE prescriptions SET status = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("rx_1", "DISPENSED", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE prescriptions`).
		WithArgs("ghost", "DISPENSED", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), "rx_1", prescriptions.StatusDispensed, ts))
	err := repo.UpdateStatus(context.Background(), "ghost", prescriptions.StatusDispensed, ts)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionsRepo_UpdateStatus_RowsAffectedError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPrescriptionsRepo(db)
	boom := errors.New("rows affected unavailable")

	mock.ExpectExec(`UPDATE prescriptions`).
		WillReturnResult(sqlmock.NewErrorResult(boom))

	err := repo.UpdateStatus(context.Background(), "rx_1", prescriptions.StatusDispensed, time.Now())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionsRepo_GetByID_LoadsItems(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPrescriptionsRepo(db)
	ts := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM prescriptions WHERE id = \$1`).
		WithArgs("rx_1").
		WillReturnRows(sqlmock.NewRows(prescriptionCols).
			AddRow("rx_1", "v1", "c1", "d1", "CANCELLED", "allergy", ts, ts))
	mock.ExpectQuery(`FROM prescription_items WHERE prescription_id = \$1 ORDER BY position`).
		WithArgs("rx_1").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("it_1", "rx_1", "m1", "500 mg", "TID", "7 days", 21, "with food").
			AddRow("it_2", "rx_1", "m2", "1 tab", "QD", "", 7, ""))

	p, err := repo.GetByID(context.Background(), "rx_1")
	require.NoError(t, err)
	assert.Equal(t, prescriptions.StatusCancelled, p.Status)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "with food", p.Items[0].Instructions)
	assert.Equal(t, 7, p.Items[1].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionsRepo_CountByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPrescriptionsRepo(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM prescriptions`).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("PENDING", 3).
			AddRow("DISPENSED", 5))

	counts, err := repo.CountByStatus(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, map[prescriptions.Status]int{"PENDING": 3, "DISPENSED": 5}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
