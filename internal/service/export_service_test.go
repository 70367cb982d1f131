package service_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/service"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/testutil"
)

// TestExportService tests CSV export.
//
// WHY: Exports are opened in spreadsheets; a header/row mismatch or an
// unquoted comma in a token name shifts every column after it.
func TestExportService(t *testing.T) {
	t.Run("one row per position under twelve headers", func(t *testing.T) {
		// Setup
		a := testutil.NewPosition().WithToken("0xA", "AAA").WithHolding(100, 50).WithPrice(0.75).Build()
		b := testutil.NewPosition().WithToken("0xB", "BBB").Build()
		b.TokenName = `Weird, "quoted" name`
		p := testutil.NewPortfolio().WithName("Main").WithPosition(a).WithPosition(b).Build()
		clk := clock.NewMock()
		clk.Set(testutil.BaseTime)
		portfolios, _ := testutil.NewTestPortfolioService(t, testutil.NewMockPriceClient(), clk, p)
		svc := service.NewExportService(portfolios, clk)

		// Execute
		file, err := svc.ExportPortfolio(p.ID)

		// Assert
		if err != nil {
			t.Fatalf("ExportPortfolio() returned unexpected error: %v", err)
		}
		if file.Filename != "Main_portfolio_2025-01-15.csv" {
			t.Errorf("Unexpected filename '%s'", file.Filename)
		}
		records, err := csv.NewReader(strings.NewReader(string(file.Content))).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse export: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}
		if len(records[0]) != 12 {
			t.Errorf("Expected 12 headers, got %d", len(records[0]))
		}
		if records[1][0] != "AAA" || records[1][8] != "75" || records[1][10] != "50.00%" {
			t.Errorf("Unexpected first row: %v", records[1])
		}
		if records[2][1] != `Weird, "quoted" name` {
			t.Errorf("Expected quoted name to survive, got %q", records[2][1])
		}
		if records[1][11] != "1/15/2025, 12:00:00 PM" {
			t.Errorf("Unexpected timestamp %q", records[1][11])
		}
	})

	t.Run("header row is not quoted", func(t *testing.T) {
		out := service.RenderCSV(nil)

		if out != strings.Join(service.CSVHeaders, ",") {
			t.Errorf("Unexpected header row %q", out)
		}
	})

	t.Run("filename uses the UTC date", func(t *testing.T) {
		at := time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("X", -2*3600))

		if got := service.ExportFilename("P", at); got != "P_portfolio_2025-03-02.csv" {
			t.Errorf("Unexpected filename '%s'", got)
		}
	})
}
