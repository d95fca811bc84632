package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/entregas/internal/record"
)

// DefaultSheet is the worksheet name used when none is configured.
const DefaultSheet = "Entregas"

// amountFormat is the built-in excelize number format "0.00".
const amountFormat = 2

// WriteXLSX writes records to a single-sheet workbook.
func WriteXLSX(w io.Writer, sheet string, records []record.Record) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write xlsx record %d: %w", r.ID, err)
		}
		row := cellRow(r)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write xlsx record %d: %w", r.ID, err)
		}
	}

	if len(records) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
		if err != nil {
			return fmt.Errorf("amount style: %w", err)
		}
		last := fmt.Sprintf("E%d", len(records)+1)
		if err := f.SetCellStyle(sheet, "D2", last, style); err != nil {
			return fmt.Errorf("amount style: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// Write dispatches on format.
func Write(w io.Writer, format Format, sheet string, records []record.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatXLSX:
		return WriteXLSX(w, sheet, records)
	}
	return fmt.Errorf("invalid export format %q", format)
}
