// Package report renders recorded marks for export: CSV for
// spreadsheets and a plain listing for the terminal.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dovydenkovas/learned-cat/internal/store"
)

// WriteCSV writes one row per recorded attempt:
// testname,username,started,finished,mark.
func WriteCSV(w io.Writer, records []store.MarkRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"testname", "username", "started_at", "finished_at", "mark"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Testname,
			r.Username,
			r.StartedAt.Format(time.RFC3339),
			r.FinishedAt.Format(time.RFC3339),
			strconv.FormatFloat(r.Mark, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteUserListing prints one user's attempts in a readable form.
func WriteUserListing(w io.Writer, user string, records []store.MarkRecord) error {
	if _, err := fmt.Fprintf(w, "Results for %s\n", user); err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "  no finished attempts")
		return err
	}
	for _, r := range records {
		_, err := fmt.Fprintf(w, "  %-20s %6.2f  %s — %s\n",
			r.Testname, r.Mark,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.FinishedAt.Format("2006-01-02 15:04"))
		if err != nil {
			return err
		}
	}
	return nil
}
