package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"transmittal/internal/domain/models"
)

// summaryHeaders label the bulk summary report columns.
var summaryHeaders = []string{"Number", "Date", "Company", "Project", "Status", "Items", "Prepared By"}

var summaryWidths = []float64{30, 22, 35, 35, 20, 15, 25}

// historyHeaders label the history CSV export.
var historyHeaders = []string{"Transmittal Number", "Date", "Company", "Project", "Status", "Items"}

func summaryRow(t models.Transmittal) []string {
	return []string{
		t.TransmittalNumber,
		t.Details.Date,
		t.Details.RecipientCompany,
		t.Details.ProjectName,
		string(t.Status),
		strconv.Itoa(len(t.Items)),
		t.Details.PreparedBy,
	}
}

// RenderSummaryPDF writes a one-table report of the given records.
func RenderSummaryPDF(w io.Writer, records []models.Transmittal, generatedAt time.Time) error {
	p := newPDFWriter("Transmittal Summary Report", generatedAt)
	p.pageNumbers()
	pdf := p.pdf
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	p.centerText(20, "Transmittal Summary Report")
	pdf.SetFont("Helvetica", "", 10)
	p.centerText(28, "Generated: "+generatedAt.Format("2006-01-02 15:04"))
	p.centerText(34, fmt.Sprintf("Total Transmittals: %d", len(records)))

	t := &table{
		headers:     summaryHeaders,
		widths:      summaryWidths,
		aligns:      []string{"L", "L", "L", "L", "L", "C", "L"},
		fontSize:    8,
		headerFill:  headerBlue,
		headerText:  white,
		headerAlign: "L",
	}
	for _, r := range records {
		t.rows = append(t.rows, summaryRow(r))
	}
	p.drawTable(t, 45)

	return p.output(w)
}

// RenderSummaryXLSX writes the same rows as the summary report as a workbook.
func RenderSummaryXLSX(w io.Writer, records []models.Transmittal) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transmittals"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(summaryHeaders))
	for i, h := range summaryHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"3B82F6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(summaryHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := summaryRow(r)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		values[5] = len(r.Items)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, width := range []float64{30, 12, 30, 30, 12, 8, 20} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// RenderHistoryCSV writes the record listing export.
func RenderHistoryCSV(w io.Writer, records []models.Transmittal) error {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(historyHeaders, ","))
	for _, r := range records {
		row := summaryRow(r)[:len(historyHeaders)]
		for i := range row {
			row[i] = csvField(row[i])
		}
		lines = append(lines, strings.Join(row, ","))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// SummaryFilename is the download name of a bulk export.
func SummaryFilename(kind string, day time.Time) string {
	switch kind {
	case "csv":
		return "transmittals-export-" + day.Format("2006-01-02") + ".csv"
	case "xlsx":
		return "transmittal-summary-" + day.Format("2006-01-02") + ".xlsx"
	}
	return "transmittal-summary-" + day.Format("2006-01-02") + ".pdf"
}
