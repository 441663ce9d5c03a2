package services

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"eu_records/models"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/xuri/excelize/v2"
)

// NumericPolicy decides what happens to a missing or invalid order cell
type NumericPolicy int

const (
	// NumericStrict fails the whole read
	NumericStrict NumericPolicy = iota
	// NumericLenient substitutes 0 and saturates out-of-range values
	NumericLenient
)

func (p NumericPolicy) String() string {
	if p == NumericLenient {
		return "lenient"
	}
	return "strict"
}

// ParseNumericPolicy parses "strict" or "lenient" (case-insensitive)
func ParseNumericPolicy(value string) (NumericPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "strict":
		return NumericStrict, nil
	case "lenient":
		return NumericLenient, nil
	default:
		return NumericStrict, fmt.Errorf("unknown numeric policy %q (want strict or lenient)", value)
	}
}

// ReadOptions controls record parsing
type ReadOptions struct {
	Numeric NumericPolicy
}

// ReadRecords loads every record from every sheet of the workbook at path
func ReadRecords(path string, opts ReadOptions) ([]models.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ReadError{Kind: ReadErrCodec, Err: fmt.Errorf("failed to open excel file: %w", err)}
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

// ReadRecordsFrom loads every record from a workbook read from r
func ReadRecordsFrom(r io.Reader, opts ReadOptions) ([]models.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ReadError{Kind: ReadErrCodec, Err: fmt.Errorf("failed to open excel file: %w", err)}
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

// readWorkbook concatenates sheets in workbook order and rows in sheet order.
// Duplicate IDs are kept.
func readWorkbook(f *excelize.File, opts ReadOptions) ([]models.Record, error) {
	records := []models.Record{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &ReadError{Kind: ReadErrCodec, Sheet: sheet, Err: fmt.Errorf("failed to read sheet: %w", err)}
		}

		for i, row := range rows {
			if i == 0 {
				continue
			} // Header

			rec, err := parseRecordRow(f, sheet, i+1, row, opts)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		log.Debugf("Sheet %q: %d data rows", sheet, max(len(rows)-1, 0))
	}

	return records, nil
}

func parseRecordRow(f *excelize.File, sheet string, rowNum int, row []string, opts ReadOptions) (models.Record, error) {
	id, err := parseIDCell(f, sheet, rowNum, row)
	if err != nil {
		return models.Record{}, err
	}

	total, err := parseOrderCell(sheet, rowNum, row, models.ColTotalOrder, opts.Numeric)
	if err != nil {
		return models.Record{}, err
	}
	recent, err := parseOrderCell(sheet, rowNum, row, models.ColRecentOrder, opts.Numeric)
	if err != nil {
		return models.Record{}, err
	}

	return models.Record{
		ID:           id,
		Region:       cellText(row, models.ColRegion),
		Municipality: cellText(row, models.ColMunicipality),
		Company:      cellText(row, models.ColCompany),
		Phone:        cellText(row, models.ColPhone),
		Contact:      cellText(row, models.ColContact),
		TotalOrder:   total,
		RecentOrder:  recent,
	}, nil
}

func parseIDCell(f *excelize.File, sheet string, rowNum int, row []string) (uuid.UUID, error) {
	cell, err := excelize.CoordinatesToCellName(models.ColID+1, rowNum)
	if err != nil {
		return uuid.Nil, &ReadError{Kind: ReadErrCodec, Sheet: sheet, Row: rowNum, Err: err}
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return uuid.Nil, &ReadError{Kind: ReadErrCodec, Sheet: sheet, Row: rowNum, Err: err}
	}

	column := models.RecordHeaders[models.ColID]
	if len(row) <= models.ColID || !isTextCell(cellType) {
		return uuid.Nil, &ReadError{Kind: ReadErrIdentifier, Sheet: sheet, Row: rowNum, Column: column, Raw: MissingCell}
	}

	raw := row[models.ColID]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ReadError{Kind: ReadErrIdentifier, Sheet: sheet, Row: rowNum, Column: column, Raw: raw, Err: err}
	}
	return id, nil
}

func isTextCell(t excelize.CellType) bool {
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return true
	default:
		return false
	}
}

// parseOrderCell reads the cell as a float and truncates it toward zero
func parseOrderCell(sheet string, rowNum int, row []string, col int, policy NumericPolicy) (uint32, error) {
	raw := cellText(row, col)
	fail := func(shown string, cause error) (uint32, error) {
		return 0, &ReadError{
			Kind:   ReadErrNumeric,
			Sheet:  sheet,
			Row:    rowNum,
			Column: models.RecordHeaders[col],
			Raw:    shown,
			Err:    cause,
		}
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if policy == NumericLenient {
			return 0, nil
		}
		return fail(MissingCell, nil)
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) {
		if policy == NumericLenient {
			return 0, nil
		}
		return fail(raw, err)
	}

	switch {
	case v < 0:
		if policy == NumericLenient {
			return 0, nil
		}
		return fail(raw, fmt.Errorf("negative value"))
	case v > math.MaxUint32:
		if policy == NumericLenient {
			return math.MaxUint32, nil
		}
		return fail(raw, fmt.Errorf("value out of range"))
	}

	return uint32(v), nil
}

func cellText(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
