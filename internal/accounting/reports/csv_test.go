package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
)

func TestWriteTrialBalanceCSVEscapesFields(t *testing.T) {
	rows := []AccountBalance{
		{Code: "1000", Name: `Cash, "Petty"`, Type: accounts.AccountTypeAsset, Debit: d("50"), Credit: d("0")},
		{Code: "4000", Name: "Fees", Type: accounts.AccountTypeRevenue, Debit: d("0"), Credit: d("50")},
	}
	tb := BuildTrialBalance(AsOfQuery(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)), rows)

	var buf bytes.Buffer
	if err := WriteTrialBalanceCSV(&buf, tb); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, 2 rows and 2 footer lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "Code,Name,Type,Debit,Credit,Balance" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != `1000,"Cash, ""Petty""",ASSET,50.00,0.00,50.00` {
		t.Fatalf("unexpected escaped row %q", lines[1])
	}
	if lines[3] != ",Total,,50.00,50.00,0.00" {
		t.Fatalf("unexpected totals row %q", lines[3])
	}
	if lines[4] != ",Balanced,,,,true" {
		t.Fatalf("unexpected footer %q", lines[4])
	}
}

func TestCSVFilename(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := CSVFilename(RangeQuery(start, end)); got != "trial-balance-2024-01-01-to-2024-01-31.csv" {
		t.Fatalf("unexpected filename %s", got)
	}
}
