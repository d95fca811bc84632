package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/roach88/entregas/internal/record"
)

// WriteCSV writes records as CSV with a header row.
// Amounts use two decimals; a nil delivered_at is an empty cell.
func WriteCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(textRow(r)); err != nil {
			return fmt.Errorf("write csv record %d: %w", r.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
