package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/entregas/internal/record"
)

const selectRecord = `
	SELECT id, number, customer, purchase_amount, paid_amount,
	       payment_method, deliverer, delivered, delivered_at
	FROM deliveries`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// List returns every record in insertion order (ORDER BY id ASC).
//
// Returns an empty slice (not nil) if the store holds no records.
func (s *Store) List(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Get retrieves a single record by id.
// Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id int64) (record.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+" WHERE id = ?", id))
	if err != nil {
		return record.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return r, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deliveries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// scanRecord scans one row into a Record, mapping sql.ErrNoRows to ErrNotFound.
func scanRecord(row rowScanner) (record.Record, error) {
	var r record.Record
	var delivered int64
	var deliveredAt sql.NullString

	err := row.Scan(
		&r.ID, &r.Number, &r.Customer, &r.PurchaseAmount, &r.PaidAmount,
		&r.PaymentMethod, &r.Deliverer, &delivered, &deliveredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("scan record: %w", err)
	}

	r.Delivered = delivered != 0
	if deliveredAt.Valid {
		at := deliveredAt.String
		r.DeliveredAt = &at
	}
	return r, nil
}
