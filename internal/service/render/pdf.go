// Package render produces the printable transmittal form, its CSV export and
// the bulk summary reports.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"transmittal/internal/domain/models"
)

// Page geometry in millimetres.
const (
	margin        = 14.0
	headerTop     = 15.0
	logoMaxW      = 60.0
	logoMaxH      = 25.0
	contactWidth  = 90.0
	contactLineH  = 4.0
	gridRowH      = 7.0
	gridLabelW    = 35.0
	footerReserve = 60.0
	signatureW    = 40.0
	signatureH    = 10.0
)

// Fixed wording of the form.
const (
	formTitle       = "TRANSMITTAL FORM"
	acknowledgement = "This is to acknowledge and confirm that the items/documents listed above are complete and in good condition."
	returnNote      = "For documentation purposes, please return the signed transmittal form to our office via email or courier at your earliest convenience."
)

// DeliveryMethods are the "Transmitted via" options printed on every form.
var DeliveryMethods = []string{
	"Personal Delivery",
	"Pick-up",
	"Grab / Lalamove",
	"Registered Mail / Private Courier",
}

// Document is everything needed to print one transmittal.
type Document struct {
	Details models.ProjectDetails
	Items   []models.TransmittalItem
	Columns []models.TableColumn
	// GeneratedAt becomes the PDF creation date; identical inputs give identical bytes.
	GeneratedAt time.Time
}

type pdfWriter struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	pageW float64
	pageH float64
	imgs  int
}

func newPDFWriter(title string, createdAt time.Time) *pdfWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCatalogSort(true)
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	pdf.SetCreationDate(createdAt)
	pdf.SetModificationDate(createdAt)
	pdf.SetTitle(title, true)
	pdf.SetCreator("transmittal", true)

	w, h := pdf.GetPageSize()
	return &pdfWriter{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		pageW: w,
		pageH: h,
	}
}

// pageNumbers stamps "Page X of Y" on every page as it is closed.
func (p *pdfWriter) pageNumbers() {
	p.pdf.AliasNbPages("{nb}")
	p.pdf.SetFooterFunc(func() {
		p.pdf.SetFont("Helvetica", "", 8)
		p.pdf.SetTextColor(black.r, black.g, black.b)
		label := fmt.Sprintf("Page %d of {nb}", p.pdf.PageNo())
		p.rightText(p.pageH-10, label)
	})
}

func (p *pdfWriter) text(x, y float64, s string) { p.pdf.Text(x, y, p.tr(s)) }

func (p *pdfWriter) rightText(y float64, s string) {
	s = p.tr(s)
	p.pdf.Text(p.pageW-margin-p.pdf.GetStringWidth(s), y, s)
}

func (p *pdfWriter) centerText(y float64, s string) {
	s = p.tr(s)
	p.pdf.Text((p.pageW-p.pdf.GetStringWidth(s))/2, y, s)
}

// image places a data-URL image inside a w x h box, keeping its aspect ratio
// when fit is set. It returns the drawn size.
func (p *pdfWriter) image(dataURL string, x, y, w, h float64, fit bool) (float64, float64, error) {
	img, err := loadImage(dataURL, w, h)
	if err != nil {
		return 0, 0, err
	}
	if fit {
		w, h = scaleToFit(img.width, img.height, w, h)
	}

	p.imgs++
	name := fmt.Sprintf("img%d", p.imgs)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.png))
	if err := p.pdf.Error(); err != nil {
		p.pdf.ClearError()
		return 0, 0, fmt.Errorf("register image: %w", err)
	}
	p.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return w, h, nil
}

func (p *pdfWriter) output(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// RenderPDF draws the transmittal form on A4 pages and writes it to w.
func RenderPDF(w io.Writer, doc *Document) error {
	d := doc.Details
	p := newPDFWriter("Transmittal "+d.TransmittalNumber, doc.GeneratedAt)
	p.pageNumbers()
	pdf := p.pdf
	pdf.AddPage()
	pdf.SetDrawColor(borderGray.r, borderGray.g, borderGray.b)

	// Header: logo or sender name on the left, contact block on the right.
	logoH := 0.0
	if d.LogoBase64 != "" {
		if _, h, err := p.image(d.LogoBase64, margin, headerTop, logoMaxW, logoMaxH, true); err == nil {
			logoH = h
		}
	} else {
		pdf.SetFont("Times", "B", 20)
		p.text(margin, headerTop+10, d.Sender)
		logoH = 15
	}

	pdf.SetFont("Helvetica", "", 9)
	contact := wrapText(pdf, p.tr(d.SenderContactDetails), contactWidth)
	for i, line := range contact {
		pdf.Text(p.pageW-margin-pdf.GetStringWidth(line), headerTop+5+float64(i)*contactLineH, line)
	}

	titleY := headerTop + max(logoH, float64(len(contact))*contactLineH) + 15
	pdf.SetFont("Times", "B", 16)
	p.centerText(titleY, formTitle)

	// Key/value grids.
	y := titleY + 15
	y = p.grid(y, [][2]string{
		{"To:", d.RecipientName},
		{"Company:", d.RecipientCompany},
		{"Attention:", d.AttentionTo},
		{"Address:", d.RecipientAddress},
		{"Contact No:", d.ContactNo},
	})
	y = p.grid(y+8, [][2]string{
		{"Project Name:", d.ProjectName},
		{"Project No:", d.ProjectNumber},
		{"Purpose:", d.Purpose},
		{"Transmittal No:", d.TransmittalNumber},
		{"Department:", d.Department},
		{"Date:", d.Date},
		{"Time Generated:", d.TimeGenerated},
	})

	// Items.
	y = p.drawTable(itemsTable(doc.Items, doc.Columns, p.pageW-2*margin), y+8)

	// Signatures and receipt block, kept together on one page.
	y += 10
	if y > p.pageH-footerReserve {
		pdf.AddPage()
		y = 20
	}
	p.footer(y, d)

	return p.output(w)
}

func (p *pdfWriter) grid(y float64, rows [][2]string) float64 {
	pdf := p.pdf
	valueW := p.pageW - 2*margin - gridLabelW

	pdf.SetFontSize(10)
	pdf.SetLineWidth(0.2)
	for _, row := range rows {
		pdf.Rect(margin, y, gridLabelW, gridRowH, "D")
		pdf.Rect(margin+gridLabelW, y, valueW, gridRowH, "D")

		pdf.SetFont("Helvetica", "B", 10)
		p.text(margin+2, y+5, row[0])
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(margin+gridLabelW+2, y+5, fitText(pdf, p.tr(row[1]), valueW-4))
		y += gridRowH
	}
	return y
}

func itemsTable(items []models.TransmittalItem, columns []models.TableColumn, usable float64) *table {
	t := &table{
		widths:      columnWidths(columns, usable),
		fontSize:    10,
		headerFill:  white,
		headerText:  black,
		headerAlign: "C",
	}
	for _, c := range columns {
		t.headers = append(t.headers, c.Label)
		align := "L"
		if c.ID == models.ColumnQty {
			align = "C"
		}
		t.aligns = append(t.aligns, align)
	}
	for _, item := range items {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = item.Field(c.ID)
		}
		t.rows = append(t.rows, row)
	}
	return t
}

func (p *pdfWriter) footer(y float64, d models.ProjectDetails) {
	pdf := p.pdf
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetDrawColor(borderGray.r, borderGray.g, borderGray.b)
	pdf.SetLineWidth(0.2)

	p.signature(margin, y, "Prepared by:", d.PreparedBy, d.PreparedBySignature)
	p.signature(margin+60, y, "Noted by:", d.NotedBy, d.NotedBySignature)

	p.text(margin+120, y, "Time Released:")
	if d.TimeReleased != "" {
		p.text(margin+120, y+10, d.TimeReleased)
	}
	pdf.Line(margin+120, y+12, margin+170, y+12)

	y += 30
	pdf.SetFont("Helvetica", "B", 9)
	p.text(margin, y, "Transmitted via:")
	pdf.SetFont("Helvetica", "", 9)
	for i, offset := range []float64{30, 65, 85, 115} {
		p.text(margin+offset, y, DeliveryMethods[i])
	}

	y += 10
	pdf.SetFont("Helvetica", "I", 9)
	p.text(margin, y, acknowledgement)

	y += 18
	pdf.SetFont("Helvetica", "", 9)
	p.text(margin, y, "Received by:")
	pdf.Line(margin+25, y, margin+85, y)
	p.text(margin+95, y, "Date Received:")
	pdf.Line(margin+125, y, margin+180, y)

	y += 15
	p.text(margin, y, "Time Received:")
	pdf.Line(margin+25, y, margin+85, y)
	p.text(margin+95, y, "Remarks:")
	pdf.Line(margin+115, y, margin+180, y)

	y += 10
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(noteGray.r, noteGray.g, noteGray.b)
	for i, line := range wrapText(pdf, p.tr(returnNote), p.pageW-2*margin) {
		pdf.Text((p.pageW-pdf.GetStringWidth(line))/2, y+float64(i)*3.5, line)
	}
	pdf.SetTextColor(black.r, black.g, black.b)
}

// signature draws a captured signature with the name beneath it, or a blank
// rule with the name when there is none. An undecodable image falls back to
// the name alone.
func (p *pdfWriter) signature(x, y float64, label, name, image string) {
	pdf := p.pdf
	p.text(x, y, label)

	if image == "" {
		pdf.Line(x, y+12, x+50, y+12)
		p.text(x, y+16, name)
		return
	}

	if _, _, err := p.image(image, x, y+2, signatureW, signatureH, false); err != nil {
		p.text(x, y+8, name)
		return
	}
	pdf.SetFont("Helvetica", "", 8)
	p.text(x, y+14, name)
	pdf.SetFont("Helvetica", "", 9)
}

// PDFFilename is the download name of a rendered form.
func PDFFilename(transmittalNumber string) string {
	return "Transmittal-" + safeName(transmittalNumber) + ".pdf"
}

// CSVFilename is the download name of a CSV export.
func CSVFilename(transmittalNumber string) string {
	return "Transmittal-" + safeName(transmittalNumber) + ".csv"
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "draft"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}
