package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/entregas/internal/record"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores a new record built from the draft and returns its id.
// The display number is computed by NextNumber inside the same transaction.
// The record starts with delivered=false and delivered_at=NULL.
//
// Values are stored as given; no validation is applied here
// (see record.Draft.Validate and Draft.Normalize for the creation path).
func (s *Store) Insert(ctx context.Context, d record.Draft) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		number, err := nextNumber(ctx, tx)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO deliveries
			(number, customer, purchase_amount, paid_amount, payment_method, deliverer, delivered, delivered_at)
			VALUES (?, ?, ?, ?, ?, ?, 0, NULL)
		`,
			number,
			d.Customer,
			d.PurchaseAmount,
			d.PaidAmount,
			d.PaymentMethod,
			d.Deliverer,
		)
		if err != nil {
			return err
		}

		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}

	return id, nil
}

// NextNumber returns the display number the next Insert would assign:
// one more than the largest stored number, or 1 for an empty table.
func (s *Store) NextNumber(ctx context.Context) (int64, error) {
	return nextNumber(ctx, s.db)
}

func nextNumber(ctx context.Context, q execer) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(number), 0) + 1 FROM deliveries",
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("next number: %w", err)
	}
	return n, nil
}

// UpdateField writes a single field of a single record.
//
// The value is stored as given. The field must belong to the record.Field
// enumeration and the value must match its kind; otherwise record.ErrInvalidField or record.ErrValueType is
// returned and nothing is written. Returns ErrNotFound if no record has id.
func (s *Store) UpdateField(ctx context.Context, id int64, e record.Edit) error {
	if err := updateField(ctx, s.db, id, e); err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	return nil
}

func updateField(ctx context.Context, q execer, id int64, e record.Edit) error {
	if err := e.Validate(); err != nil {
		return err
	}
	// Column comes from the closed enumeration validated above.
	result, err := q.ExecContext(ctx,
		"UPDATE deliveries SET "+e.Field.Column()+" = ? WHERE id = ?",
		e.SQLValue(), id,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Modify reads the record with the given id and applies the edits returned
// by fn, all in one transaction. If fn returns an error or no edits, nothing
// is written. Returns ErrNotFound if no record has id.
func (s *Store) Modify(ctx context.Context, id int64, fn func(current record.Record) ([]record.Edit, error)) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanRecord(tx.QueryRowContext(ctx, selectRecord+" WHERE id = ?", id))
		if err != nil {
			return err
		}

		edits, err := fn(current)
		if err != nil {
			return err
		}

		for _, e := range edits {
			if err := updateField(ctx, tx, id, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("modify record %d: %w", id, err)
	}
	return nil
}

// ClearAll deletes every record and returns how many were removed.
// The next Insert is assigned number 1.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM deliveries")
	if err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear records: rows affected: %w", err)
	}
	return n, nil
}
