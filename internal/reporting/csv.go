package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteValuationCSV writes the per-event portfolio history as CSV.
func (r *Report) WriteValuationCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"event_index", "timestamp", "price", "total_value_x", "total_value_y",
	}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, snap := range r.Results.PortfolioHistory {
		record := []string{
			strconv.Itoa(snap.EventIndex),
			snap.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(snap.Price),
			formatFloat(snap.TotalValueX),
			formatFloat(snap.TotalValueY),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRebalanceCSV writes the rebalance history as CSV.
func (r *Report) WriteRebalanceCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"event_index", "timestamp", "tag"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range r.Results.RebalanceHistory {
		record := []string{
			strconv.Itoa(entry.EventIndex),
			entry.Timestamp.UTC().Format(time.RFC3339),
			string(entry.Tag),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
