package config

import "time"

const (
	// MaxTemplateNameLength is the maximum length for template names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTemplateNameLength = 255

	// MaxCompanyNameLength is the maximum length for company profile names.
	MaxCompanyNameLength = 255

	// MaxTransmittalNumberLength bounds the formatted number; generated numbers are 27 characters.
	MaxTransmittalNumberLength = 64

	// MaxItemsPerTransmittal caps the item list of a single record.
	MaxItemsPerTransmittal = 2000

	// MaxNotesLength is the maximum length for free-text notes on a record or status change.
	MaxNotesLength = 4000
)

const (
	// DefaultDriveMaxFolders is the folder cap when subfolder scanning is enabled.
	DefaultDriveMaxFolders = 50

	// DefaultGeminiModel handles both filename-only and multimodal requests.
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultClockInterval is how often an idle session refreshes its generated time.
	DefaultClockInterval = 30 * time.Second
)
