package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/entregas/internal/record"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDraft creates a draft with every creation field set.
func createTestDraft(customer string) record.Draft {
	return record.Draft{
		Customer:       customer,
		PurchaseAmount: 100.0,
		PaidAmount:     100.0,
		PaymentMethod:  "Pix",
		Deliverer:      "Joao",
	}
}

// mustInsert inserts a draft and returns the new id, failing the test on error.
func mustInsert(t *testing.T, s *Store, d record.Draft) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), d)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	return id
}
