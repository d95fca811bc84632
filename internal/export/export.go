// Package export writes the current record set as a spreadsheet.
//
// Export is a read-only projection: one row per record, one column per
// attribute, preceded by a header row.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/entregas/internal/record"
)

// Format selects the spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ValidFormats defines the allowed export formats.
var ValidFormats = []Format{FormatXLSX, FormatCSV}

// Header is the column order of every export.
var Header = []string{
	"id",
	"number",
	"customer",
	"purchase_amount",
	"paid_amount",
	"payment_method",
	"deliverer",
	"delivered",
	"delivered_at",
}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, valid := range ValidFormats {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid export format %q: must be one of %v", name, ValidFormats)
}

// FormatFromPath guesses the format from a file extension.
// Unknown extensions fall back to xlsx.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

// textRow renders a record as strings in Header order.
func textRow(r record.Record) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		strconv.FormatInt(r.Number, 10),
		r.Customer,
		strconv.FormatFloat(r.PurchaseAmount, 'f', 2, 64),
		strconv.FormatFloat(r.PaidAmount, 'f', 2, 64),
		r.PaymentMethod,
		r.Deliverer,
		strconv.FormatBool(r.Delivered),
		r.DeliveredAtString(),
	}
}

// cellRow renders a record as typed cell values in Header order.
// Numbers stay numeric so spreadsheet formulas work on them.
func cellRow(r record.Record) []any {
	var at any
	if r.DeliveredAt != nil {
		at = *r.DeliveredAt
	}
	return []any{
		r.ID,
		r.Number,
		r.Customer,
		r.PurchaseAmount,
		r.PaidAmount,
		r.PaymentMethod,
		r.Deliverer,
		r.Delivered,
		at,
	}
}
