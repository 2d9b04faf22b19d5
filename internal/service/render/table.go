package render

import (
	"strings"

	"github.com/go-pdf/fpdf"

	"transmittal/internal/domain/models"
)

const (
	ptToMM          = 25.4 / 72
	lineHeightRatio = 1.15
	cellPadding     = 1.76
	minAutoWidth    = 10.0
)

type rgb struct{ r, g, b int }

var (
	black      = rgb{0, 0, 0}
	white      = rgb{255, 255, 255}
	borderGray = rgb{150, 150, 150}
	noteGray   = rgb{100, 100, 100}
	headerBlue = rgb{59, 130, 246}
)

// table is a bordered grid laid out row by row, breaking pages as needed and
// repeating the header on each new page.
type table struct {
	headers     []string
	widths      []float64
	aligns      []string // "L" or "C", per column
	rows        [][]string
	fontSize    float64
	headerFill  rgb
	headerText  rgb
	headerAlign string
}

// columnWidths resolves configured print widths against the usable width.
// Fixed widths are raised to their minimum; auto columns share what is left.
// When fixed columns alone overflow, all columns are scaled down to fit.
func columnWidths(columns []models.TableColumn, usable float64) []float64 {
	widths := make([]float64, len(columns))
	fixed := 0.0
	autos := 0
	for i, c := range columns {
		if c.PDFWidth.Auto {
			autos++
			continue
		}
		widths[i] = max(c.PDFWidth.MM, c.MinWidth)
		fixed += widths[i]
	}

	if autos > 0 {
		share := (usable - fixed) / float64(autos)
		for i, c := range columns {
			if c.PDFWidth.Auto {
				widths[i] = max(share, c.MinWidth, minAutoWidth)
			}
		}
	}

	total := 0.0
	for _, w := range widths {
		total += w
	}
	if total > usable && total > 0 {
		scale := usable / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths
}

// wrapText breaks already-translated single-byte text into lines no wider
// than width at the current font. Explicit newlines are kept.
func wrapText(pdf *fpdf.Fpdf, text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if pdf.GetStringWidth(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			// hard-break words wider than a whole line
			for pdf.GetStringWidth(word) > width && len(word) > 1 {
				cut := len(word) - 1
				for cut > 1 && pdf.GetStringWidth(word[:cut]) > width {
					cut--
				}
				lines = append(lines, word[:cut])
				word = word[cut:]
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}

// fitText shortens s with an ellipsis until it fits width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func (p *pdfWriter) drawTable(t *table, startY float64) float64 {
	pdf := p.pdf
	fontMM := t.fontSize * ptToMM
	lineH := fontMM * lineHeightRatio

	rowHeight := func(cells []string, style string) (float64, [][]string) {
		pdf.SetFont("Helvetica", style, t.fontSize)
		wrapped := make([][]string, len(t.widths))
		maxLines := 1
		for i := range t.widths {
			cell := ""
			if i < len(cells) {
				cell = p.tr(cells[i])
			}
			wrapped[i] = wrapText(pdf, cell, t.widths[i]-2*cellPadding)
			maxLines = max(maxLines, len(wrapped[i]))
		}
		return float64(maxLines)*lineH + 2*cellPadding, wrapped
	}

	drawRow := func(y float64, wrapped [][]string, h float64, style string, fill *rgb, text rgb, align func(col int) string) {
		pdf.SetFont("Helvetica", style, t.fontSize)
		pdf.SetLineWidth(0.1)
		pdf.SetDrawColor(borderGray.r, borderGray.g, borderGray.b)
		pdf.SetTextColor(text.r, text.g, text.b)

		x := margin
		for i, w := range t.widths {
			if fill != nil {
				pdf.SetFillColor(fill.r, fill.g, fill.b)
				pdf.Rect(x, y, w, h, "FD")
			} else {
				pdf.Rect(x, y, w, h, "D")
			}
			for n, line := range wrapped[i] {
				tx := x + cellPadding
				if align(i) == "C" {
					tx = x + (w-pdf.GetStringWidth(line))/2
				}
				pdf.Text(tx, y+cellPadding+fontMM*0.85+float64(n)*lineH, line)
			}
			x += w
		}
		pdf.SetTextColor(black.r, black.g, black.b)
	}

	headerH, headerLines := rowHeight(t.headers, "B")
	headerAlign := func(int) string { return t.headerAlign }
	bodyAlign := func(col int) string { return t.aligns[col] }
	fill := t.headerFill
	drawHeader := func(y float64) float64 {
		drawRow(y, headerLines, headerH, "B", &fill, t.headerText, headerAlign)
		return y + headerH
	}

	y := drawHeader(startY)
	for _, cells := range t.rows {
		h, wrapped := rowHeight(cells, "")
		if y+h > p.pageH-margin {
			pdf.AddPage()
			y = drawHeader(margin)
		}
		drawRow(y, wrapped, h, "", nil, black, bodyAlign)
		y += h
	}
	return y
}
