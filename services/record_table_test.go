package services

import (
	"bytes"
	"strings"
	"testing"

	"eu_records/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRecordTable(t *testing.T) {
	records := []models.Record{
		{ID: uuid.New(), Region: "Lombardy (IT)", Municipality: "Milan", Company: "Rossi\tSpA", Phone: "+39 02 1234", Contact: "Mario Rossi", TotalOrder: 900, RecentOrder: 12},
		{ID: uuid.New(), Region: "Andalusia (ES)", Municipality: "Seville", Company: "Garcia SL", Phone: "+34 95 1234", Contact: "Ana Garcia", TotalOrder: 3, RecentOrder: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderRecordTable(&buf, records, 0))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "Recent Order")
	assert.Contains(t, lines[1], records[0].ID.String())
	assert.Contains(t, lines[1], "Rossi SpA")
	assert.Contains(t, lines[2], "Seville")
}

func TestRenderRecordTableLimit(t *testing.T) {
	records := sampleRecords(5)

	var buf bytes.Buffer
	require.NoError(t, RenderRecordTable(&buf, records, 2))

	out := buf.String()
	assert.Contains(t, out, records[1].ID.String())
	assert.NotContains(t, out, records[2].ID.String())
	assert.Contains(t, out, "... 3 more records not shown")
}
