package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"transmittal/internal/domain/models"
)

func TestRenderCSV_DefaultColumns(t *testing.T) {
	items := []models.TransmittalItem{{ID: "1", Qty: "1", DocumentType: "Memo", Description: "Test", Remarks: ""}}

	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, items, models.DefaultColumns()))

	assert.Equal(t, "QTY,Type of Document,Description,Remarks\n\"1\",\"Memo\",\"Test\",\"\"", buf.String())
}

func TestRenderCSV(t *testing.T) {
	cols := []models.TableColumn{
		{ID: models.ColumnDescription, Label: "Description"},
		{ID: models.ColumnQty, Label: "Qty, pcs"},
	}

	tests := []struct {
		name  string
		items []models.TransmittalItem
		want  string
	}{
		{
			name: "no items is header only",
			want: "Description,\"Qty, pcs\"",
		},
		{
			name:  "quotes doubled",
			items: []models.TransmittalItem{{Description: `12" pipe`, Qty: "2"}},
			want:  "Description,\"Qty, pcs\"\n\"12\"\" pipe\",\"2\"",
		},
		{
			name: "column order followed",
			items: []models.TransmittalItem{
				{Description: "A", Qty: "1"},
				{Description: "B, rev 2", Qty: "3"},
			},
			want: "Description,\"Qty, pcs\"\n\"A\",\"1\"\n\"B, rev 2\",\"3\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderCSV(&buf, tt.items, cols))
			assert.Equal(t, tt.want, buf.String())
			assert.False(t, strings.HasSuffix(buf.String(), "\n"))
		})
	}
}

func TestColumnWidths(t *testing.T) {
	const usable = 182.0

	t.Run("defaults", func(t *testing.T) {
		got := columnWidths(models.DefaultColumns(), usable)
		assert.Equal(t, []float64{15, 25, 102, 40}, got)
	})

	t.Run("min width raises fixed column", func(t *testing.T) {
		cols := []models.TableColumn{
			{ID: models.ColumnRemarks, PDFWidth: models.FixedWidth(20), MinWidth: 40},
			{ID: models.ColumnDescription, PDFWidth: models.AutoWidth},
		}
		assert.Equal(t, []float64{40, 142}, columnWidths(cols, usable))
	})

	t.Run("auto columns share the rest", func(t *testing.T) {
		cols := []models.TableColumn{
			{ID: models.ColumnQty, PDFWidth: models.FixedWidth(22)},
			{ID: models.ColumnDescription, PDFWidth: models.AutoWidth},
			{ID: models.ColumnRemarks, PDFWidth: models.AutoWidth},
		}
		assert.Equal(t, []float64{22, 80, 80}, columnWidths(cols, usable))
	})

	t.Run("overflow is scaled to fit", func(t *testing.T) {
		cols := []models.TableColumn{
			{ID: models.ColumnQty, PDFWidth: models.FixedWidth(200)},
			{ID: models.ColumnRemarks, PDFWidth: models.FixedWidth(164)},
		}
		got := columnWidths(cols, usable)
		assert.InDelta(t, 100, got[0], 0.001)
		assert.InDelta(t, 82, got[1], 0.001)
	})
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: 80, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sampleDocument(items int) *Document {
	d := &Document{
		Details: models.ProjectDetails{
			Sender:               "Acme Engineering",
			SenderContactDetails: "12 Rizal Ave, Makati City\nTel. 02 8123 4567 • info@acme.example",
			RecipientName:        "Engr. Santos",
			RecipientCompany:     "Builders Co.",
			ProjectName:          "Tower A - Phase 2",
			TransmittalNumber:    "TR-FP-20240307-0012-JDC",
			Date:                 "2024-03-07",
			TimeGenerated:        "09:30 AM",
			PreparedBy:           "Juan Dela Cruz",
			NotedBy:              "Maria Reyes",
		},
		Columns:     models.DefaultColumns(),
		GeneratedAt: time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC),
	}
	for i := 0; i < items; i++ {
		d.Items = append(d.Items, models.TransmittalItem{
			ID:           strconv.Itoa(i),
			Qty:          "1",
			DocumentType: "Structural Drawing",
			Description:  fmt.Sprintf("Column and Beam Reinforcement Details for Section %d [Rev A] with a long description that wraps", i),
		})
	}
	return d
}

var pageCount = regexp.MustCompile(`/Count (\d+)`)

func pages(t *testing.T, pdf []byte) int {
	t.Helper()
	m := pageCount.FindSubmatch(pdf)
	require.NotNil(t, m, "page count not found")
	n, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	return n
}

func TestRenderPDF_SinglePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, sampleDocument(3)))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, pages(t, buf.Bytes()))
}

func TestRenderPDF_LongTableBreaksPages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, sampleDocument(60)))
	assert.GreaterOrEqual(t, pages(t, buf.Bytes()), 2)
}

func TestRenderPDF_Deterministic(t *testing.T) {
	doc := sampleDocument(5)
	doc.Details.LogoBase64 = pngDataURL(t, 120, 40)

	var a, b bytes.Buffer
	require.NoError(t, RenderPDF(&a, doc))
	require.NoError(t, RenderPDF(&b, doc))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestRenderPDF_ImagesAndFallbacks(t *testing.T) {
	tests := []struct {
		name string
		edit func(d *models.ProjectDetails, t *testing.T)
	}{
		{"logo and signatures", func(d *models.ProjectDetails, t *testing.T) {
			d.LogoBase64 = pngDataURL(t, 300, 300)
			d.PreparedBySignature = pngDataURL(t, 200, 50)
			d.NotedBySignature = pngDataURL(t, 200, 50)
		}},
		{"broken logo is skipped", func(d *models.ProjectDetails, t *testing.T) {
			d.LogoBase64 = "data:image/png;base64,bm90IGFuIGltYWdl"
		}},
		{"broken signature falls back to name", func(d *models.ProjectDetails, t *testing.T) {
			d.PreparedBySignature = "data:image/png;base64,%%%"
		}},
		{"empty details", func(d *models.ProjectDetails, t *testing.T) {
			*d = models.ProjectDetails{}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument(2)
			tt.edit(&doc.Details, t)

			var buf bytes.Buffer
			require.NoError(t, RenderPDF(&buf, doc))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := []byte("hello")
	enc := base64.StdEncoding.EncodeToString(raw)

	got, err := decodeDataURL("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = decodeDataURL(strings.TrimRight(enc, "="))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = decodeDataURL("data:text/plain,hello")
	assert.Error(t, err)
	_, err = decodeDataURL("")
	assert.Error(t, err)
}

func TestScaleToFit(t *testing.T) {
	w, h := scaleToFit(600, 100, 60, 25)
	assert.InDelta(t, 60, w, 0.001)
	assert.InDelta(t, 10, h, 0.001)

	w, h = scaleToFit(100, 200, 60, 25)
	assert.InDelta(t, 12.5, w, 0.001)
	assert.InDelta(t, 25, h, 0.001)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "Transmittal-TR-FP-20240307-0012-JDC.pdf", PDFFilename("TR-FP-20240307-0012-JDC"))
	assert.Equal(t, "Transmittal-A-B.csv", CSVFilename("A/B"))
	assert.Equal(t, "Transmittal-draft.pdf", PDFFilename(" "))

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "transmittals-export-2024-05-01.csv", SummaryFilename("csv", day))
	assert.Equal(t, "transmittal-summary-2024-05-01.xlsx", SummaryFilename("xlsx", day))
	assert.Equal(t, "transmittal-summary-2024-05-01.pdf", SummaryFilename("pdf", day))
}

func sampleRecords() []models.Transmittal {
	return []models.Transmittal{
		{
			TransmittalNumber: "TR-FP-20240307-0001-JDC",
			Status:            models.StatusSent,
			Details:           models.ProjectDetails{Date: "2024-03-07", RecipientCompany: "Builders, Inc.", ProjectName: "Tower A", PreparedBy: "Juan"},
			Items:             make([]models.TransmittalItem, 4),
		},
		{
			TransmittalNumber: "TR-FP-20240308-0002-JDC",
			Status:            models.StatusDraft,
			Details:           models.ProjectDetails{Date: "2024-03-08", ProjectName: "Depot"},
		},
	}
}

func TestRenderHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistoryCSV(&buf, sampleRecords()))

	want := "Transmittal Number,Date,Company,Project,Status,Items\n" +
		"TR-FP-20240307-0001-JDC,2024-03-07,\"Builders, Inc.\",Tower A,sent,4\n" +
		"TR-FP-20240308-0002-JDC,2024-03-08,,Depot,draft,0"
	assert.Equal(t, want, buf.String())
}

func TestRenderSummaryXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummaryXLSX(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transmittals")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, summaryHeaders, rows[0])
	assert.Equal(t, "TR-FP-20240307-0001-JDC", rows[1][0])
	assert.Equal(t, "4", rows[1][5])
	assert.Equal(t, "Juan", rows[1][6])
}

func TestRenderSummaryPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummaryPDF(&buf, sampleRecords(), time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, pages(t, buf.Bytes()))
}
