package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFWidth_JSON(t *testing.T) {
	var cols []TableColumn
	raw := `[{"id":"qty","label":"QTY","pdfWidth":15,"width":"w-[8%]"},{"id":"description","label":"Description","pdfWidth":"auto","width":"w-[40%]"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &cols))

	require.Len(t, cols, 2)
	assert.Equal(t, FixedWidth(15), cols[0].PDFWidth)
	assert.True(t, cols[1].PDFWidth.Auto)

	out, err := json.Marshal(cols[1].PDFWidth)
	require.NoError(t, err)
	assert.Equal(t, `"auto"`, string(out))

	out, err = json.Marshal(cols[0].PDFWidth)
	require.NoError(t, err)
	assert.Equal(t, `15`, string(out))

	var bad PDFWidth
	assert.Error(t, json.Unmarshal([]byte(`"wide"`), &bad))
}

func TestTransmittalItem_WithField(t *testing.T) {
	item := TransmittalItem{ID: "a", Qty: "1"}

	updated, err := item.WithField("description", "Ground Floor Plan [Rev A]")
	require.NoError(t, err)
	assert.Equal(t, "Ground Floor Plan [Rev A]", updated.Description)
	assert.Equal(t, "", item.Description, "original is not mutated")
	assert.Equal(t, "Ground Floor Plan [Rev A]", updated.Field(ColumnDescription))

	_, err = item.WithField("id", "b")
	assert.Error(t, err)
}

func TestProjectDetails_SenderSettingsRoundTrip(t *testing.T) {
	details := ProjectDetails{
		Sender:        "FILEPINO, INC.",
		SenderEmail:   "info@example.com",
		Department:    "Admin",
		PreparedBy:    "Ana",
		NotedBy:       "Ben",
		RecipientName: "Carla",
	}

	settings := details.SenderSettings()
	restored := ProjectDetails{RecipientName: "Other"}.WithSenderSettings(settings)

	assert.Equal(t, "FILEPINO, INC.", restored.Sender)
	assert.Equal(t, "Ana", restored.PreparedBy)
	assert.Equal(t, "Other", restored.RecipientName, "recipient fields are not part of the sender subset")
}

func TestTemplateData_ApplyKeepsNumberAndDate(t *testing.T) {
	details := ProjectDetails{TransmittalNumber: "TR-FP-20240101-0001-ABC", Date: "2024-01-01", LogoBase64: "logo"}
	tpl := TemplateData{RecipientCompany: "Acme", Purpose: "For approval"}

	got := tpl.Apply(details)

	assert.Equal(t, "TR-FP-20240101-0001-ABC", got.TransmittalNumber)
	assert.Equal(t, "2024-01-01", got.Date)
	assert.Equal(t, "Acme", got.RecipientCompany)
	assert.Equal(t, "logo", got.LogoBase64, "empty template logo keeps the current one")
}

func TestStatusValid(t *testing.T) {
	for _, s := range []TransmittalStatus{StatusDraft, StatusSent, StatusReceived, StatusPending} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TransmittalStatus("lost").Valid())
}
