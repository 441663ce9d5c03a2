package services

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"eu_records/models"
)

var tableHeaders = []string{"ID", "Region", "Municipality", "Company", "Phone", "Contact", "Total Order", "Recent Order"}

// RenderRecordTable prints records as an aligned table. limit <= 0 prints all of them.
func RenderRecordTable(w io.Writer, records []models.Record, limit int) error {
	shown := records
	if limit > 0 && limit < len(records) {
		shown = records[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeaders, "\t"))
	for _, rec := range shown {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			rec.ID, cleanCell(rec.Region), cleanCell(rec.Municipality), cleanCell(rec.Company),
			cleanCell(rec.Phone), cleanCell(rec.Contact), rec.TotalOrder, rec.RecentOrder)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if len(shown) < len(records) {
		if _, err := fmt.Fprintf(w, "... %d more records not shown\n", len(records)-len(shown)); err != nil {
			return err
		}
	}
	return nil
}

// cleanCell keeps tabs and newlines in cell text from breaking the layout
func cleanCell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
