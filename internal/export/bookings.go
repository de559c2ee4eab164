// Package export renders bookings as an Excel workbook for the shop owner.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/barbershop-booking/internal/persistence"
)

// SheetName is the name of the single sheet in the workbook.
const SheetName = "رزروها"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []string{"شماره", "نام", "تلفن", "تاریخ", "زمان", "ثبت شده در"}

// WriteBookings writes bookings as an .xlsx workbook to w. Created-at stamps
// are rendered in loc.
func WriteBookings(w io.Writer, bookings []persistence.Booking, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := file.SetSheetView(SheetName, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
		return fmt.Errorf("set sheet view: %w", err)
	}

	if err := writeRow(file, 1, toCells(header)); err != nil {
		return err
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := file.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, b := range bookings {
		row := []any{
			b.ID,
			b.CustomerName,
			b.CustomerPhone,
			b.Date.String(),
			b.Slot.Label(),
			b.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		}
		if err := writeRow(file, i+2, row); err != nil {
			return err
		}
	}

	if err := file.SetColWidth(SheetName, "B", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := file.SetColWidth(SheetName, "C", "F", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(file *excelize.File, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(SheetName, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
