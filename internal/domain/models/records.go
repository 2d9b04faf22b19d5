package models

import "time"

// TransmittalSequence is the per-user, per-year counter behind document numbers.
type TransmittalSequence struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Year            int       `json:"year"`
	CurrentSequence int       `json:"current_sequence"`
	UserCode        string    `json:"user_code"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TransmittalHistory records a status change of a cloud record.
type TransmittalHistory struct {
	ID             string             `json:"id"`
	TransmittalID  string             `json:"transmittal_id"`
	UserID         string             `json:"user_id"`
	Action         string             `json:"action"`
	PreviousStatus *TransmittalStatus `json:"previous_status,omitempty"`
	NewStatus      TransmittalStatus  `json:"new_status"`
	Notes          *string            `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// HistoryActionStatusChanged is the only action written today.
const HistoryActionStatusChanged = "status_changed"

// TemplateData is the reusable subset of ProjectDetails a template carries.
type TemplateData struct {
	Sender               string `json:"sender"`
	SenderEmail          string `json:"senderEmail"`
	SenderContactNumber  string `json:"senderContactNumber"`
	SenderContactDetails string `json:"senderContactDetails"`
	LogoBase64           string `json:"logoBase64,omitempty"`
	Department           string `json:"department"`
	RecipientName        string `json:"recipientName"`
	RecipientCompany     string `json:"recipientCompany"`
	RecipientAddress     string `json:"recipientAddress"`
	AttentionTo          string `json:"attentionTo"`
	ContactNo            string `json:"contactNo"`
	Purpose              string `json:"purpose"`
}

// TemplateDataFrom captures the template subset of the current details.
func TemplateDataFrom(p ProjectDetails) TemplateData {
	return TemplateData{
		Sender:               p.Sender,
		SenderEmail:          p.SenderEmail,
		SenderContactNumber:  p.SenderContactNumber,
		SenderContactDetails: p.SenderContactDetails,
		LogoBase64:           p.LogoBase64,
		Department:           p.Department,
		RecipientName:        p.RecipientName,
		RecipientCompany:     p.RecipientCompany,
		RecipientAddress:     p.RecipientAddress,
		AttentionTo:          p.AttentionTo,
		ContactNo:            p.ContactNo,
		Purpose:              p.Purpose,
	}
}

// Apply overlays the template onto details. Number, date and time are untouched.
func (t TemplateData) Apply(p ProjectDetails) ProjectDetails {
	p.Sender = t.Sender
	p.SenderEmail = t.SenderEmail
	p.SenderContactNumber = t.SenderContactNumber
	p.SenderContactDetails = t.SenderContactDetails
	if t.LogoBase64 != "" {
		p.LogoBase64 = t.LogoBase64
	}
	p.Department = t.Department
	p.RecipientName = t.RecipientName
	p.RecipientCompany = t.RecipientCompany
	p.RecipientAddress = t.RecipientAddress
	p.AttentionTo = t.AttentionTo
	p.ContactNo = t.ContactNo
	p.Purpose = t.Purpose
	return p
}

// Template is a named, reusable set of header fields.
type Template struct {
	ID               string       `json:"id"`
	UserID           string       `json:"user_id"`
	CompanyID        *string      `json:"company_id,omitempty"`
	Name             string       `json:"name"`
	Department       string       `json:"department"`
	RecipientCompany string       `json:"recipient_company"`
	Data             TemplateData `json:"template_data"`
	IsShared         bool         `json:"is_shared"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ColorScheme is a company's brand colours.
type ColorScheme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Company is a sender profile a user can switch to.
type Company struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"owner_id"`
	Name           string      `json:"name"`
	LogoURL        *string     `json:"logo_url,omitempty"`
	ContactDetails *string     `json:"contact_details,omitempty"`
	ColorScheme    ColorScheme `json:"color_scheme"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Profile is the user record; FullName drives the user code in document numbers.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name used for numbering, "User" when unset.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil || *p.FullName == "" {
		return "User"
	}
	return *p.FullName
}

// TransmittalFilter narrows a record listing. Zero values mean "no filter".
type TransmittalFilter struct {
	CompanyID string
	Search    string
	Status    TransmittalStatus
	DateFrom  string
	DateTo    string
}

// TransmittalStats summarises a user's records.
type TransmittalStats struct {
	Total      int                       `json:"total"`
	ByStatus   map[TransmittalStatus]int `json:"by_status"`
	TotalItems int                       `json:"total_items"`
}
