// Package export renders the record collection as CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"call-dashboard/internal/records"
)

// Filename is the suggested download name.
const Filename = "call_records.csv"

var header = []string{
	"id", "customer_name", "caller_name", "number", "email", "address",
	"time", "date", "duration", "status", "recording", "csat_rating",
}

// WriteCSV writes the full collection, one row per record, header first.
// Column names match the wire field names so an export round-trips against
// the API vocabulary.
func WriteCSV(w io.Writer, recs []records.CallRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	for _, r := range recs {
		rating := ""
		if r.CSATRating != nil {
			rating = strconv.FormatFloat(*r.CSATRating, 'f', 1, 64)
		}
		row := []string{
			r.ID, r.CustomerName, r.CallerName, r.Number, r.Email, r.Address,
			r.Time, r.Date, r.Duration, string(r.Status), r.Recording, rating,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: record %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
