package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eu_records/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixtureSheet struct {
	name string
	rows [][]interface{} // nil entries leave the cell empty
}

// buildWorkbook writes a header row plus the given rows to each sheet
func buildWorkbook(t *testing.T, sheets ...fixtureSheet) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}

		for col, h := range models.RecordHeaders {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			require.NoError(t, f.SetCellValue(s.name, cell, h))
		}
		for r, row := range s.rows {
			for col, v := range row {
				if v == nil {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				require.NoError(t, f.SetCellValue(s.name, cell, v))
			}
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func validRow(id uuid.UUID, total, recent interface{}) []interface{} {
	return []interface{}{id.String(), "Bavaria (DE)", "Munich", "Acme AG", "+49 89 1234", "Erika Mustermann", total, recent}
}

func sampleRecords(n int) []models.Record {
	return NewRecordGenerator(&stubText{}, 5).Generate(n)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	records := sampleRecords(50)
	records[0].Company = "Société Générale Niederlassung München"
	records[1].Contact = "Zoë Ølstad"

	require.NoError(t, WriteRecords(path, records))

	got, err := ReadRecords(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestWriteLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	records := sampleRecords(3)
	require.NoError(t, WriteRecords(path, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RecordsSheetName}, f.GetSheetList())

	rows, err := f.GetRows(RecordsSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, models.RecordHeaders, rows[0])
	assert.Equal(t, records[0].ID.String(), rows[1][0])

	// Counters are text cells, not numbers
	cellType, err := f.GetCellType(RecordsSheetName, "G2")
	require.NoError(t, err)
	assert.True(t, isTextCell(cellType))
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.xlsx")
	require.NoError(t, WriteRecords(path, sampleRecords(2)))
	require.NoError(t, WriteRecords(path, sampleRecords(4)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "records.xlsx", entries[0].Name())

	got, err := ReadRecords(path, ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestWriteErrors(t *testing.T) {
	var werr *WriteError

	err := WriteRecords(filepath.Join(t.TempDir(), "records.csv"), nil)
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, WriteErrCodec, werr.Kind)
	assert.ErrorIs(t, err, excelize.ErrWorkbookFileFormat)

	err = WriteRecords(filepath.Join(t.TempDir(), "missing", "records.xlsx"), nil)
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, WriteErrCodec, werr.Kind)
}

func TestWriteRejectsUnstorableText(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.Record)
		row     int
		column  string
		wantErr error
	}{
		{
			name:    "company over cell limit",
			mutate:  func(r *models.Record) { r.Company = strings.Repeat("x", excelize.TotalCellChars+1) },
			row:     3,
			column:  "Company",
			wantErr: ErrCellTooLong,
		},
		{
			name:    "control character in phone",
			mutate:  func(r *models.Record) { r.Phone = "bell\x07char" },
			row:     3,
			column:  "Phone",
			wantErr: ErrCellInvalidChar,
		},
		{
			name:    "invalid utf8 in contact",
			mutate:  func(r *models.Record) { r.Contact = "bad\xffname" },
			row:     3,
			column:  "Contact",
			wantErr: ErrCellInvalidChar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "records.xlsx")
			records := sampleRecords(3)
			tt.mutate(&records[1])

			err := WriteRecords(path, records)
			var werr *WriteError
			require.True(t, errors.As(err, &werr))
			assert.Equal(t, WriteErrCodec, werr.Kind)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), fmt.Sprintf("row %d column %s", tt.row, tt.column))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestWriteKeepsTextAtCellLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")
	records := sampleRecords(1)
	records[0].Company = strings.Repeat("é", excelize.TotalCellChars)
	records[0].Contact = "tab\tand\nnewline"

	require.NoError(t, WriteRecords(path, records))
	got, err := ReadRecords(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestZeroRecordsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	records := NewRecordGenerator(&stubText{}, 1).Generate(0)
	require.NoError(t, WriteRecords(path, records))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	rows, err := f.GetRows(RecordsSheetName)
	f.Close()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	got, err := ReadRecords(path, ReadOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadMalformedID(t *testing.T) {
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{
		validRow(uuid.New(), "10", "5"),
		{"not-a-uuid", "Bavaria (DE)", "Munich", "Acme AG", "+49", "Erika", "10", "5"},
	}})

	records, err := ReadRecordsFrom(buf, ReadOptions{Numeric: NumericLenient})
	assert.Nil(t, records)

	var rerr *ReadError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ReadErrIdentifier, rerr.Kind)
	assert.Equal(t, "not-a-uuid", rerr.Raw)
	assert.Equal(t, 3, rerr.Row)
	assert.Equal(t, "Eu_Data", rerr.Sheet)
	assert.Contains(t, err.Error(), "'not-a-uuid'")
}

func TestReadMissingID(t *testing.T) {
	tests := []struct {
		name string
		id   interface{}
	}{
		{"empty cell", nil},
		{"numeric cell", 12345},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{
				{tt.id, "Bavaria (DE)", "Munich", "Acme AG", "+49", "Erika", "1", "0"},
			}})

			_, err := ReadRecordsFrom(buf, ReadOptions{})
			var rerr *ReadError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, ReadErrIdentifier, rerr.Kind)
			assert.Equal(t, MissingCell, rerr.Raw)
		})
	}
}

func TestReadMissingOrderStrict(t *testing.T) {
	id := uuid.New()
	for _, row := range [][]interface{}{
		validRow(id, nil, "0"),
		validRow(id, "10", nil),
	} {
		buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{row}})

		_, err := ReadRecordsFrom(buf, ReadOptions{Numeric: NumericStrict})
		var rerr *ReadError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, ReadErrNumeric, rerr.Kind)
		assert.Equal(t, MissingCell, rerr.Raw)
	}
}

func TestReadMissingOrderLenient(t *testing.T) {
	id := uuid.New()
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{
		validRow(id, nil, nil),
		validRow(id, "abc", "7"),
	}})

	got, err := ReadRecordsFrom(buf, ReadOptions{Numeric: NumericLenient})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(0), got[0].TotalOrder)
	assert.Equal(t, uint32(0), got[0].RecentOrder)
	assert.Equal(t, uint32(0), got[1].TotalOrder)
	assert.Equal(t, uint32(7), got[1].RecentOrder)
}

func TestReadInvalidOrderStrict(t *testing.T) {
	tests := []struct {
		name  string
		total interface{}
	}{
		{"text", "abc"},
		{"negative", "-4"},
		{"too large", "1e12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{validRow(uuid.New(), tt.total, "0")}})

			_, err := ReadRecordsFrom(buf, ReadOptions{})
			var rerr *ReadError
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, ReadErrNumeric, rerr.Kind)
			assert.Equal(t, tt.total, rerr.Raw)
			assert.Equal(t, "TotalOrder", rerr.Column)
		})
	}
}

func TestReadOrderTruncatesFloats(t *testing.T) {
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{
		validRow(uuid.New(), 42, "12.9"),
		validRow(uuid.New(), 3.99, 1),
	}})

	got, err := ReadRecordsFrom(buf, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(42), got[0].TotalOrder)
	assert.Equal(t, uint32(12), got[0].RecentOrder)
	assert.Equal(t, uint32(3), got[1].TotalOrder)
	assert.Equal(t, uint32(1), got[1].RecentOrder)
}

func TestReadLenientSaturates(t *testing.T) {
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{validRow(uuid.New(), "1e12", "-3")}})

	got, err := ReadRecordsFrom(buf, ReadOptions{Numeric: NumericLenient})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(4294967295), got[0].TotalOrder)
	assert.Equal(t, uint32(0), got[0].RecentOrder)
}

func TestReadMissingTextColumns(t *testing.T) {
	id := uuid.New()
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{{id.String()}}})

	got, err := ReadRecordsFrom(buf, ReadOptions{Numeric: NumericLenient})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Record{ID: id}, got[0])
}

func TestReadDoesNotValidateLocation(t *testing.T) {
	id := uuid.New()
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data", rows: [][]interface{}{
		{id.String(), "Atlantis", "Nowhere", "X", "Y", "Z", "1", "2"},
	}})

	got, err := ReadRecordsFrom(buf, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Atlantis", got[0].Region)
	assert.Equal(t, uint32(2), got[0].RecentOrder)
}

func TestReadMergesSheets(t *testing.T) {
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
	}
	buf := buildWorkbook(t,
		fixtureSheet{name: "First", rows: [][]interface{}{validRow(ids[0], "1", "0"), validRow(ids[1], "2", "0"), validRow(ids[2], "3", "0")}},
		fixtureSheet{name: "Second", rows: [][]interface{}{validRow(ids[3], "4", "0"), validRow(ids[4], "5", "0"), validRow(ids[5], "6", "0")}},
	)

	got, err := ReadRecordsFrom(buf, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, got, 6)
	for i, rec := range got {
		assert.Equal(t, ids[i], rec.ID)
		assert.Equal(t, uint32(i+1), rec.TotalOrder)
	}
}

func TestReadKeepsDuplicateIDs(t *testing.T) {
	id := uuid.New()
	buf := buildWorkbook(t,
		fixtureSheet{name: "A", rows: [][]interface{}{validRow(id, "1", "1")}},
		fixtureSheet{name: "B", rows: [][]interface{}{validRow(id, "2", "2")}},
	)

	got, err := ReadRecordsFrom(buf, ReadOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].ID, got[1].ID)
}

func TestReadHeaderOnlySheetsAreEmpty(t *testing.T) {
	buf := buildWorkbook(t, fixtureSheet{name: "Eu_Data"}, fixtureSheet{name: "Other"})

	got, err := ReadRecordsFrom(buf, ReadOptions{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCodecErrors(t *testing.T) {
	var rerr *ReadError

	_, err := ReadRecords(filepath.Join(t.TempDir(), "nope.xlsx"), ReadOptions{})
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ReadErrCodec, rerr.Kind)

	_, err = ReadRecordsFrom(strings.NewReader("definitely not a zip archive"), ReadOptions{})
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, ReadErrCodec, rerr.Kind)
}

func TestParseNumericPolicy(t *testing.T) {
	p, err := ParseNumericPolicy("Lenient")
	assert.NoError(t, err)
	assert.Equal(t, NumericLenient, p)

	p, err = ParseNumericPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, NumericStrict, p)

	_, err = ParseNumericPolicy("sloppy")
	assert.Error(t, err)
}

func TestErrorKindStrings(t *testing.T) {
	assert.Equal(t, "sheet creation", WriteErrSheetCreation.String())
	assert.Equal(t, "codec", WriteErrCodec.String())
	assert.Equal(t, "identifier parse", ReadErrIdentifier.String())
	assert.Equal(t, "numeric parse", ReadErrNumeric.String())
}
