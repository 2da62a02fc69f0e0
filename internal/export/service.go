package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/lease-extractor/internal/repository"
)

const SheetName = "Extractions"

// Headers is the first row of the exported sheet.
var Headers = []string{
	"Created At",
	"Provider",
	"Model",
	"Parse Mode",
	"Street Address",
	"City",
	"State",
	"Zip Code",
	"Tenant",
	"Rent Amount",
	"Contract Start",
	"Contract End",
	"Elapsed (ms)",
	"Error",
}

// Service produces XLSX bytes from extraction history.
type Service struct {
	repo   repository.ExtractionRepository
	logger *slog.Logger
}

func NewService(repo repository.ExtractionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportExtractionsXLSX returns a workbook for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> the most recent rows.
func (s *Service) ExportExtractionsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toExclusive *time.Time
	if from != nil {
		f := dateOnly(*from)
		fromDate = &f
	}
	if to != nil {
		t := dateOnly(*to).AddDate(0, 0, 1)
		toExclusive = &t
	}
	if fromDate != nil && toExclusive == nil {
		t := dateOnly(time.Now()).AddDate(0, 0, 1)
		toExclusive = &t
	}

	rows, err := s.repo.List(ctx, repository.ListFilter{From: fromDate, To: toExclusive, Limit: repository.MaxListLimit})
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, e := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		rec := e.Record
		tenant := rec.TenantName
		if rec.TenantSurname != "" {
			tenant = fmt.Sprintf("%s %s", rec.TenantName, rec.TenantSurname)
		}
		errMsg := ""
		if e.ErrorMessage != nil {
			errMsg = truncate(*e.ErrorMessage, 140)
		}

		write(1, e.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		write(2, e.Provider)
		write(3, e.Model)
		write(4, e.ParseMode)
		write(5, rec.AddressData.StreetAddress)
		write(6, rec.AddressData.City)
		write(7, rec.AddressData.State)
		write(8, rec.AddressData.ZipCode)
		write(9, tenant)
		write(10, rec.RentAmount)
		write(11, rec.ContractStart)
		write(12, rec.ContractEnd)
		write(13, e.ElapsedMs)
		write(14, errMsg)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 20) // timestamp
	_ = f.SetColWidth(SheetName, "B", "D", 16)
	_ = f.SetColWidth(SheetName, "E", "E", 32) // street
	_ = f.SetColWidth(SheetName, "F", "H", 14)
	_ = f.SetColWidth(SheetName, "I", "I", 28) // tenant
	_ = f.SetColWidth(SheetName, "J", "M", 14)
	_ = f.SetColWidth(SheetName, "N", "N", 48) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
