// Package xlsx renders a pipeline snapshot as an Excel workbook with one
// sheet for daily aggregates and one for hourly readings.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/footfall-etl/internal/domain"
	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

// Sheet names, in workbook order.
const (
	DailySheet  = "Daily Data"
	HourlySheet = "Hourly Data"
)

type column[T any] struct {
	header string
	width  float64
	value  func(T) any
}

var dailyColumns = []column[domain.DayRecord]{
	{"Date", 12, func(d domain.DayRecord) any { return d.Date.Format("02/01/2006") }},
	{"Visitors Entering", 10, func(d domain.DayRecord) any { return d.VisitorsEntering }},
	{"Visitors Leaving", 10, func(d domain.DayRecord) any { return d.VisitorsLeaving }},
	{"Men Entering", 10, func(d domain.DayRecord) any { return d.MenEntering }},
	{"Men Leaving", 10, func(d domain.DayRecord) any { return d.MenLeaving }},
	{"Women Entering", 10, func(d domain.DayRecord) any { return d.WomenEntering }},
	{"Women Leaving", 10, func(d domain.DayRecord) any { return d.WomenLeaving }},
	{"Group Entering", 10, func(d domain.DayRecord) any { return d.GroupEntering }},
	{"Group Leaving", 10, func(d domain.DayRecord) any { return d.GroupLeaving }},
	{"Passersby", 10, func(d domain.DayRecord) any { return d.Passersby }},
	{"Capture Rate (%)", 10, func(d domain.DayRecord) any { return d.CaptureRate }},
	{"Conversion (%)", 10, func(d domain.DayRecord) any { return d.Conversion }},
	{"Dwell Time (min)", 10, func(d domain.DayRecord) any { return d.DwellTime }},
	{"Data Accuracy (%)", 10, func(d domain.DayRecord) any { return d.DataAccuracy }},
	{"Weather", 8, func(d domain.DayRecord) any { return d.WeatherSymbol }},
	{"Temp (°C)", 8, func(d domain.DayRecord) any { return d.Temperature }},
	{"Precip (mm)", 8, func(d domain.DayRecord) any { return d.Precipitation }},
	{"Wind (km/h)", 8, func(d domain.DayRecord) any { return d.Windspeed }},
}

var hourlyColumns = []column[domain.HourRecord]{
	{"Timestamp", 17, func(h domain.HourRecord) any { return h.Timestamp.Format("02/01/2006 15:04") }},
	{"Visitors Entering", 10, func(h domain.HourRecord) any { return h.VisitorsEntering }},
	{"Visitors Leaving", 10, func(h domain.HourRecord) any { return h.VisitorsLeaving }},
	{"Men Entering", 10, func(h domain.HourRecord) any { return h.MenEntering }},
	{"Men Leaving", 10, func(h domain.HourRecord) any { return h.MenLeaving }},
	{"Women Entering", 10, func(h domain.HourRecord) any { return h.WomenEntering }},
	{"Women Leaving", 10, func(h domain.HourRecord) any { return h.WomenLeaving }},
	{"Group Entering", 10, func(h domain.HourRecord) any { return h.GroupEntering }},
	{"Group Leaving", 10, func(h domain.HourRecord) any { return h.GroupLeaving }},
	{"Passersby", 10, func(h domain.HourRecord) any { return h.Passersby }},
	{"Capture Rate (%)", 10, func(h domain.HourRecord) any { return h.CaptureRate }},
	{"Accumulated Visitors", 12, func(h domain.HourRecord) any { return h.AccumulatedVisitors }},
	{"Accumulated Leaving", 12, func(h domain.HourRecord) any { return h.AccumulatedVisitorsLeaving }},
	{"Live Visitors", 10, func(h domain.HourRecord) any { return h.LiveVisitors }},
}

// Export writes snap as an .xlsx workbook to w.
func Export(w io.Writer, snap pipeline.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	daily, err := f.NewSheet(DailySheet)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", DailySheet, err)
	}
	if _, err := f.NewSheet(HourlySheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", HourlySheet, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(daily)

	if err := writeSheet(f, DailySheet, headerStyle, dailyColumns, snap.Days); err != nil {
		return err
	}
	if err := writeSheet(f, HourlySheet, headerStyle, hourlyColumns, snap.Hours); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet[T any](f *excelize.File, sheet string, headerStyle int, cols []column[T], rows []T) error {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c.header); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sheet, cell, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return fmt.Errorf("set column width %s!%s: %w", sheet, name, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style %s: %w", sheet, err)
	}

	for r, row := range rows {
		for i, c := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, c.value(row)); err != nil {
				return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
			}
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
