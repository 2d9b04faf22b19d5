package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ColumnID names an item field that can appear as a table column.
type ColumnID string

const (
	ColumnQty          ColumnID = "qty"
	ColumnDocumentType ColumnID = "documentType"
	ColumnDescription  ColumnID = "description"
	ColumnRemarks      ColumnID = "remarks"
)

// Valid reports whether id names a known item field.
func (id ColumnID) Valid() bool {
	switch id {
	case ColumnQty, ColumnDocumentType, ColumnDescription, ColumnRemarks:
		return true
	}
	return false
}

// TransmittalItem is one row of the document. Nested inside cloud records as JSONB,
// so it keeps the camelCase keys existing records were written with.
type TransmittalItem struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
	Qty              string `json:"qty"`
	DocumentType     string `json:"documentType"`
	Description      string `json:"description"`
	Remarks          string `json:"remarks"`
}

// Field returns the value shown in the given column.
func (i TransmittalItem) Field(id ColumnID) string {
	switch id {
	case ColumnQty:
		return i.Qty
	case ColumnDocumentType:
		return i.DocumentType
	case ColumnDescription:
		return i.Description
	case ColumnRemarks:
		return i.Remarks
	}
	return ""
}

// WithField returns a copy of the item with one editable field replaced.
// originalFilename is editable too; the id is not.
func (i TransmittalItem) WithField(field, value string) (TransmittalItem, error) {
	switch field {
	case string(ColumnQty):
		i.Qty = value
	case string(ColumnDocumentType):
		i.DocumentType = value
	case string(ColumnDescription):
		i.Description = value
	case string(ColumnRemarks):
		i.Remarks = value
	case "originalFilename":
		i.OriginalFilename = value
	default:
		return i, fmt.Errorf("unknown item field %q", field)
	}
	return i, nil
}

// PDFWidth is a column's print width in millimetres, or auto-sized.
// Encoded as a number or the string "auto".
type PDFWidth struct {
	Auto bool
	MM   float64
}

// AutoWidth is the sentinel for a column that shares the remaining page width.
var AutoWidth = PDFWidth{Auto: true}

// FixedWidth returns a fixed print width.
func FixedWidth(mm float64) PDFWidth { return PDFWidth{MM: mm} }

func (w PDFWidth) MarshalJSON() ([]byte, error) {
	if w.Auto {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.FormatFloat(w.MM, 'f', -1, 64)), nil
}

func (w *PDFWidth) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == `"auto"` || string(data) == "null" {
		*w = AutoWidth
		return nil
	}
	var mm float64
	if err := json.Unmarshal(data, &mm); err != nil {
		return fmt.Errorf("pdfWidth must be a number or \"auto\": %w", err)
	}
	*w = PDFWidth{MM: mm}
	return nil
}

// TableColumn describes one displayed item field. Order is significant.
type TableColumn struct {
	ID       ColumnID `json:"id"`
	Label    string   `json:"label"`
	PDFWidth PDFWidth `json:"pdfWidth"`
	Width    string   `json:"width"`
	MinWidth float64  `json:"minWidth,omitempty"`
}

// DefaultColumns returns the stock column layout.
func DefaultColumns() []TableColumn {
	return []TableColumn{
		{ID: ColumnQty, Label: "QTY", PDFWidth: FixedWidth(15), Width: "w-[8%]"},
		{ID: ColumnDocumentType, Label: "Type of Document", PDFWidth: FixedWidth(25), Width: "w-[25%]"},
		{ID: ColumnDescription, Label: "Description", PDFWidth: AutoWidth, Width: "w-[40%]"},
		{ID: ColumnRemarks, Label: "Remarks", PDFWidth: FixedWidth(40), Width: "w-[20%]", MinWidth: 40},
	}
}

// SenderSettings is the part of ProjectDetails that survives between sessions.
type SenderSettings struct {
	Sender               string `json:"sender"`
	SenderEmail          string `json:"senderEmail"`
	SenderContactNumber  string `json:"senderContactNumber"`
	SenderContactDetails string `json:"senderContactDetails"`
	LogoBase64           string `json:"logoBase64,omitempty"`
	Department           string `json:"department"`
	PreparedBy           string `json:"preparedBy"`
	NotedBy              string `json:"notedBy"`
}

// ProjectDetails holds every header field of a transmittal.
type ProjectDetails struct {
	// Sender
	Sender               string `json:"sender"`
	SenderEmail          string `json:"senderEmail"`
	SenderContactNumber  string `json:"senderContactNumber"`
	SenderContactDetails string `json:"senderContactDetails"`
	LogoBase64           string `json:"logoBase64,omitempty"`
	Department           string `json:"department"`

	// Recipient
	RecipientName    string `json:"recipientName"`
	RecipientCompany string `json:"recipientCompany"`
	AttentionTo      string `json:"attentionTo"`
	RecipientAddress string `json:"recipientAddress"`
	ContactNo        string `json:"contactNo"`

	// Project
	ProjectName       string `json:"projectName"`
	ProjectNumber     string `json:"projectNumber"`
	Purpose           string `json:"purpose"`
	TransmittalNumber string `json:"transmittalNumber"`

	// Dates & signatures. Signatures are data-URL encoded raster images.
	Date                string `json:"date"`
	TimeGenerated       string `json:"timeGenerated"`
	PreparedBy          string `json:"preparedBy"`
	NotedBy             string `json:"notedBy"`
	TimeReleased        string `json:"timeReleased"`
	PreparedBySignature string `json:"preparedBySignature,omitempty"`
	NotedBySignature    string `json:"notedBySignature,omitempty"`
}

// SenderSettings extracts the durable sender subset.
func (p ProjectDetails) SenderSettings() SenderSettings {
	return SenderSettings{
		Sender:               p.Sender,
		SenderEmail:          p.SenderEmail,
		SenderContactNumber:  p.SenderContactNumber,
		SenderContactDetails: p.SenderContactDetails,
		LogoBase64:           p.LogoBase64,
		Department:           p.Department,
		PreparedBy:           p.PreparedBy,
		NotedBy:              p.NotedBy,
	}
}

// WithSenderSettings returns a copy with the sender subset replaced.
func (p ProjectDetails) WithSenderSettings(s SenderSettings) ProjectDetails {
	p.Sender = s.Sender
	p.SenderEmail = s.SenderEmail
	p.SenderContactNumber = s.SenderContactNumber
	p.SenderContactDetails = s.SenderContactDetails
	p.LogoBase64 = s.LogoBase64
	p.Department = s.Department
	p.PreparedBy = s.PreparedBy
	p.NotedBy = s.NotedBy
	return p
}

// Date and time formats used in ProjectDetails.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "03:04 PM"
)

// TransmittalStatus tracks a record through delivery.
type TransmittalStatus string

const (
	StatusDraft    TransmittalStatus = "draft"
	StatusSent     TransmittalStatus = "sent"
	StatusReceived TransmittalStatus = "received"
	StatusPending  TransmittalStatus = "pending"
)

// Valid reports whether s is a known status.
func (s TransmittalStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusReceived, StatusPending:
		return true
	}
	return false
}

// Transmittal is a full cloud-persisted record.
type Transmittal struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	CompanyID         *string           `json:"company_id,omitempty"`
	TransmittalNumber string            `json:"transmittal_number"`
	Status            TransmittalStatus `json:"status"`
	Details           ProjectDetails    `json:"project_details"`
	Items             []TransmittalItem `json:"items"`
	Columns           []TableColumn     `json:"columns"`
	Notes             *string           `json:"notes,omitempty"`
	FollowUpDate      *string           `json:"follow_up_date,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TransmittalLogEntry is one line of the local, append-only generation history.
type TransmittalLogEntry struct {
	ID                string `json:"id"`
	TransmittalNumber string `json:"transmittalNumber"`
	Date              string `json:"date"`
	RecipientCompany  string `json:"recipientCompany"`
	ProjectName       string `json:"projectName"`
	ItemCount         int    `json:"itemCount"`
	Timestamp         int64  `json:"timestamp"`
}
