package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/poofware/optimistic-lock-lab/internal/models"
	"github.com/poofware/optimistic-lock-lab/xid"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type RecordRepository interface {
	Create(ctx context.Context, r *models.Record) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
	GetVersion(ctx context.Context, id uuid.UUID) (xid.TransactionID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	Update(ctx context.Context, r *models.Record) error
	UpdateIfVersion(ctx context.Context, r *models.Record, expected xid.TransactionID) (pgconn.CommandTag, error)
	TryUpdate(ctx context.Context, r *models.Record, expected xid.TransactionID) (bool, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Record) error) error

	Delete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type recordRepo struct {
	*BaseVersionedRepo[*models.Record]
	db DB
}

func NewRecordRepository(db DB) RecordRepository {
	return newRecordRepo(db)
}

// NewRecordRepositoryWithRetries is NewRecordRepository with a custom
// UpdateWithRetry bound.
func NewRecordRepositoryWithRetries(db DB, maxRetries int) RecordRepository {
	r := newRecordRepo(db)
	r.SetMaxRetries(maxRetries)
	return r
}

func newRecordRepo(db DB) *recordRepo {
	r := &recordRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectRecord()+" WHERE id=$1", scanRecord)
	return r
}

/* ---------- Create ---------- */

func (r *recordRepo) Create(ctx context.Context, rec *models.Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO records (id, value) VALUES ($1,$2)
	`, rec.ID, rec.Value)
	return err
}

/* ---------- Reads ---------- */

func (r *recordRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

// GetVersion returns pgx.ErrNoRows for a missing row.
func (r *recordRepo) GetVersion(ctx context.Context, id uuid.UUID) (xid.TransactionID, error) {
	var v xid.TransactionID
	err := r.db.QueryRow(ctx, `SELECT xmin FROM records WHERE id=$1`, id).Scan(&v)
	return v, err
}

func (r *recordRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM records WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

/* ---------- Update / Delete ---------- */

func (r *recordRepo) Update(ctx context.Context, rec *models.Record) error {
	_, err := r.update(ctx, rec, false, 0)
	return err
}

func (r *recordRepo) UpdateIfVersion(ctx context.Context, rec *models.Record, expected xid.TransactionID) (pgconn.CommandTag, error) {
	return r.update(ctx, rec, true, expected)
}

// TryUpdate reports whether the guard still held. A lost race is false with a
// nil error.
func (r *recordRepo) TryUpdate(ctx context.Context, rec *models.Record, expected xid.TransactionID) (bool, error) {
	tag, err := r.UpdateIfVersion(ctx, rec, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *recordRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Record) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *recordRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM records WHERE id=$1`, id)
	return err
}

/* ---------- internals ---------- */

func (r *recordRepo) update(ctx context.Context, rec *models.Record, checkVersion bool, expected xid.TransactionID) (pgconn.CommandTag, error) {
	if !checkVersion {
		return r.db.Exec(ctx, `
			UPDATE records SET value=$1 WHERE id=$2
		`, rec.Value, rec.ID)
	}
	return r.db.Exec(ctx, `
		UPDATE records SET value=$1 WHERE id=$2 AND xmin=$3
	`, rec.Value, rec.ID, expected)
}

func baseSelectRecord() string {
	return `
		SELECT id,value,xmin
		FROM records`
}

func scanRecord(row pgx.Row) (*models.Record, error) {
	var rec models.Record
	var value *string
	if err := row.Scan(&rec.ID, &value, &rec.RowVersion); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if value != nil {
		rec.Value = *value
	}
	return &rec, nil
}
