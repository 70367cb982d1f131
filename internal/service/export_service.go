package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/model"
)

// CSVHeaders are the columns of a portfolio export, in order.
var CSVHeaders = []string{
	"Token Symbol",
	"Token Name",
	"Network",
	"Contract Address",
	"Quantity",
	"Invested Amount",
	"Average Price",
	"Current Price",
	"Current Value",
	"Profit/Loss",
	"Profit/Loss %",
	"Last Updated",
}

// PortfolioReader looks up a single portfolio.
type PortfolioReader interface {
	Portfolio(id string) (model.Portfolio, error)
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ExportService struct {
	portfolios PortfolioReader
	clock      clock.Clock
}

func NewExportService(portfolios PortfolioReader, clk clock.Clock) *ExportService {
	return &ExportService{portfolios: portfolios, clock: clk}
}

// ExportPortfolio renders one portfolio as CSV.
func (s *ExportService) ExportPortfolio(portfolioID string) (ExportFile, error) {
	p, err := s.portfolios.Portfolio(portfolioID)
	if err != nil {
		return ExportFile{}, err
	}
	return ExportFile{
		Filename:    ExportFilename(p.Name, s.clock.Now()),
		ContentType: "text/csv;charset=utf-8",
		Content:     []byte(RenderCSV(p.Positions)),
	}, nil
}

// ExportFilename is "{name}_portfolio_{YYYY-MM-DD}.csv" in UTC.
func ExportFilename(portfolioName string, at time.Time) string {
	return fmt.Sprintf("%s_portfolio_%s.csv", portfolioName, at.UTC().Format("2006-01-02"))
}

// RenderCSV writes the header row followed by one row per position. Every data
// cell is double-quoted.
func RenderCSV(positions []model.Position) string {
	var b strings.Builder
	b.WriteString(strings.Join(CSVHeaders, ","))
	for _, p := range positions {
		row := []string{
			p.TokenSymbol,
			p.TokenName,
			p.Network,
			p.ContractAddress,
			formatNumber(p.Quantity),
			formatNumber(p.InvestedAmount),
			formatNumber(p.AveragePrice),
			formatNumber(p.CurrentPrice),
			formatNumber(p.CurrentPrice * p.Quantity),
			formatNumber(p.ProfitLoss),
			decimal.NewFromFloat(p.ProfitLossPercent).StringFixed(2) + "%",
			p.LastUpdated.UTC().Format("1/2/2006, 3:04:05 PM"),
		}
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
