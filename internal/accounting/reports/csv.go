package reports

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteTrialBalanceCSV renders the trial balance rows followed by totals.
// Fields containing commas, quotes or newlines are quoted.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow([]string{"Code", "Name", "Type", "Debit", "Credit", "Balance"}); err != nil {
		return err
	}
	for _, row := range tb.Accounts {
		if err := streamer.writeRow([]string{
			row.Code,
			row.Name,
			string(row.Type),
			shared.Format(row.Debit),
			shared.Format(row.Credit),
			shared.Format(row.Balance),
		}); err != nil {
			return err
		}
	}
	footer := [][]string{
		{"", "Total", "", shared.Format(tb.Totals.Debit), shared.Format(tb.Totals.Credit), shared.Format(tb.Totals.Difference)},
		{"", "Balanced", "", "", "", strconv.FormatBool(tb.IsBalanced)},
	}
	for _, row := range footer {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.Flush()
}

// CSVFilename names the export after its window.
func CSVFilename(q Query) string {
	if q.AsOf != nil {
		return fmt.Sprintf("trial-balance-%s.csv", q.AsOf.Format(dateLayout))
	}
	if q.Start != nil && q.End != nil {
		return fmt.Sprintf("trial-balance-%s-to-%s.csv", q.Start.Format(dateLayout), q.End.Format(dateLayout))
	}
	return "trial-balance.csv"
}
