package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"eu_records/models"

	"github.com/labstack/gommon/log"
	"github.com/xuri/excelize/v2"
)

// RecordsSheetName is the sheet the writer puts records on
const RecordsSheetName = "Eu_Data"

var (
	// ErrCellTooLong means a text value exceeds the spreadsheet cell limit
	ErrCellTooLong = errors.New("cell text exceeds spreadsheet limit")
	// ErrCellInvalidChar means a text value holds a character a workbook cannot store
	ErrCellInvalidChar = errors.New("cell text contains a character not allowed in a workbook")
)

var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// WriteRecords writes records to a workbook at path. The destination is replaced
// only once the whole workbook has been serialized.
func WriteRecords(path string, records []models.Record) error {
	if !workbookExtensions[strings.ToLower(filepath.Ext(path))] {
		return &WriteError{Kind: WriteErrCodec, Err: fmt.Errorf("%s: %w", path, excelize.ErrWorkbookFileFormat)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".records-*.tmp")
	if err != nil {
		return &WriteError{Kind: WriteErrCodec, Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := WriteRecordsTo(tmp, records); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return &WriteError{Kind: WriteErrCodec, Err: fmt.Errorf("failed to sync workbook: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Kind: WriteErrCodec, Err: fmt.Errorf("failed to close workbook: %w", err)}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return &WriteError{Kind: WriteErrCodec, Err: fmt.Errorf("failed to set workbook permissions: %w", err)}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return &WriteError{Kind: WriteErrCodec, Err: fmt.Errorf("failed to move workbook into place: %w", err)}
	}
	committed = true

	log.Debugf("Wrote %d records to %s", len(records), path)
	return nil
}

// WriteRecordsTo serializes records as an xlsx workbook into w
func WriteRecordsTo(w io.Writer, records []models.Record) error {
	f, err := buildRecordsWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return &WriteError{Kind: WriteErrCodec, Err: err}
	}
	return nil
}

func buildRecordsWorkbook(records []models.Record) (*excelize.File, error) {
	// Text the codec would truncate or rewrite is rejected before the workbook is built
	for i, rec := range records {
		if err := validateRecordText(i+2, rec); err != nil {
			return nil, err
		}
	}

	f := excelize.NewFile()

	// Rename the default sheet so the workbook holds exactly one sheet
	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheetName); err != nil {
		f.Close()
		return nil, &WriteError{Kind: WriteErrSheetCreation, Sheet: RecordsSheetName, Err: err}
	}
	if idx, err := f.GetSheetIndex(RecordsSheetName); err != nil || idx < 0 {
		f.Close()
		if err == nil {
			err = excelize.ErrSheetNotExist{SheetName: RecordsSheetName}
		}
		return nil, &WriteError{Kind: WriteErrSheetCreation, Sheet: RecordsSheetName, Err: err}
	}

	header := make([]interface{}, len(models.RecordHeaders))
	for i, h := range models.RecordHeaders {
		header[i] = h
	}
	if err := writeRow(f, 1, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, rec := range records {
		row := []interface{}{
			rec.ID.String(),
			rec.Region,
			rec.Municipality,
			rec.Company,
			rec.Phone,
			rec.Contact,
			strconv.FormatUint(uint64(rec.TotalOrder), 10),
			strconv.FormatUint(uint64(rec.RecentOrder), 10),
		}
		if err := writeRow(f, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	// Header Style
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastCol, _ := excelize.ColumnNumberToName(len(models.RecordHeaders))
		f.SetCellStyle(RecordsSheetName, "A1", lastCol+"1", headerStyle)
		f.SetColWidth(RecordsSheetName, "A", "A", 38)
		f.SetColWidth(RecordsSheetName, "B", lastCol, 20)
	}

	return f, nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return &WriteError{Kind: WriteErrCodec, Sheet: RecordsSheetName, Err: err}
	}
	if err := f.SetSheetRow(RecordsSheetName, cell, &values); err != nil {
		return &WriteError{Kind: WriteErrCodec, Sheet: RecordsSheetName, Err: fmt.Errorf("row %d: %w", row, err)}
	}
	return nil
}

func validateRecordText(row int, rec models.Record) error {
	fields := []struct {
		col   int
		value string
	}{
		{models.ColRegion, rec.Region},
		{models.ColMunicipality, rec.Municipality},
		{models.ColCompany, rec.Company},
		{models.ColPhone, rec.Phone},
		{models.ColContact, rec.Contact},
	}
	for _, fld := range fields {
		var cause error
		switch {
		case utf8.RuneCountInString(fld.value) > excelize.TotalCellChars:
			cause = ErrCellTooLong
		case !isWorkbookText(fld.value):
			cause = ErrCellInvalidChar
		default:
			continue
		}
		return &WriteError{
			Kind:  WriteErrCodec,
			Sheet: RecordsSheetName,
			Err:   fmt.Errorf("row %d column %s: %w", row, models.RecordHeaders[fld.col], cause),
		}
	}
	return nil
}

// isWorkbookText reports whether s is valid UTF-8 made only of XML 1.0 characters
func isWorkbookText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == 0x9, r == 0xA, r == 0xD:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
