package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/atinyakov/healthmate/internal/analytics"
)

// XLSXContentType is the media type of RenderXLSX output.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	summarySheet = "Summary"
	recordsSheet = "Records"
	chartsSheet  = "Charts"
)

var recordsHeader = []string{
	"Date",
	"Systolic",
	"Diastolic",
	"Heart Rate",
	"SpO2",
	"Temperature",
	"Weight",
}

// workbook wraps an excelize file with the shared header style.
type workbook struct {
	f      *excelize.File
	header int
}

// RenderXLSX renders doc as a workbook with a summary sheet, the record
// listing and one table per chart.
func RenderXLSX(doc analytics.ReportDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#EEF2FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	wb := &workbook{f: f, header: header}

	for _, name := range []string{summarySheet, recordsSheet, chartsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to find summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := wb.writeSummary(doc); err != nil {
		return nil, err
	}
	if err := wb.writeRecords(doc); err != nil {
		return nil, err
	}
	if err := wb.writeCharts(doc); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (wb *workbook) writeSummary(doc analytics.ReportDocument) error {
	rows := [][]any{
		{"Health Report"},
		{"Name", doc.UserName},
		{"Email", doc.UserEmail},
		{"Generated", doc.GeneratedAt.Format("January 2, 2006")},
		{"Report Period", doc.WindowLabel},
		{"Data Range", doc.DateRangeText},
		{"Total Records", doc.TotalRecords},
		{},
		{"Average Vitals"},
	}
	for _, vt := range analytics.VitalTypes {
		rows = append(rows, []any{analytics.ChartTitle(vt), analytics.FormatAverage(doc.Averages, vt)})
	}
	rows = append(rows, []any{}, []any{"Insights"})
	for _, in := range doc.Insights {
		rows = append(rows, []any{in.Title, in.Message})
	}
	rows = append(rows, []any{}, []any{"Recommendations"})
	for _, rec := range doc.Recommendations {
		rows = append(rows, []any{rec})
	}

	for i, row := range rows {
		if err := wb.setRow(summarySheet, i+1, row); err != nil {
			return err
		}
	}
	for _, heading := range []string{"A1", "A9"} {
		if err := wb.f.SetCellStyle(summarySheet, heading, heading, wb.header); err != nil {
			return fmt.Errorf("failed to set summary style: %w", err)
		}
	}
	if err := wb.f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := wb.f.SetColWidth(summarySheet, "B", "B", 60); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func (wb *workbook) writeRecords(doc analytics.ReportDocument) error {
	if err := wb.writeHeader(recordsSheet, 1, recordsHeader); err != nil {
		return err
	}
	for i, r := range doc.Records {
		row := []any{
			r.Timestamp.Format("01/02/2006 15:04"),
			r.Systolic,
			r.Diastolic,
			r.HeartRate,
			r.SpO2,
			r.Temperature,
			r.Weight,
		}
		if err := wb.setRow(recordsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := wb.f.SetColWidth(recordsSheet, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := wb.f.SetColWidth(recordsSheet, "B", "G", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

// writeCharts lays out each chart as a titled label/value block separated
// by a blank row. Placeholder series are written as a single "No Data" row.
func (wb *workbook) writeCharts(doc analytics.ReportDocument) error {
	row := 1
	for _, cs := range doc.Charts {
		if err := wb.setRow(chartsSheet, row, []any{cs.Title}); err != nil {
			return err
		}
		row++

		header := []string{"Date"}
		for _, ds := range cs.Datasets {
			header = append(header, ds.Name)
		}
		if err := wb.writeHeader(chartsSheet, row, header); err != nil {
			return err
		}
		row++

		for i, label := range cs.Labels {
			values := []any{label}
			for _, ds := range cs.Datasets {
				if cs.Empty {
					values = append(values, "")
					continue
				}
				values = append(values, ds.Data[i])
			}
			if err := wb.setRow(chartsSheet, row, values); err != nil {
				return err
			}
			row++
		}
		row++
	}
	if err := wb.f.SetColWidth(chartsSheet, "A", "C", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func (wb *workbook) writeHeader(sheet string, row int, headers []string) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := wb.f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := wb.f.SetCellStyle(sheet, cell, cell, wb.header); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func (wb *workbook) setRow(sheet string, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := wb.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}
