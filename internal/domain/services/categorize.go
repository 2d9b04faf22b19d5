package services

import (
	"context"

	"transmittal/internal/domain/models"
)

// Part is one piece of a generation request: text, or inline bytes with a media type.
type Part struct {
	Text     string
	MimeType string
	Data     []byte
}

// IsInline reports whether the part carries binary content.
func (p Part) IsInline() bool { return len(p.Data) > 0 }

// GeneratedItem is one record as returned by the model, before reconciliation.
type GeneratedItem struct {
	OriginalFilename string `json:"originalFilename"`
	Qty              string `json:"qty"`
	DocumentType     string `json:"documentType"`
	Description      string `json:"description"`
	Remarks          string `json:"remarks"`
}

// ContentGenerator sends one schema-constrained request to the AI provider.
type ContentGenerator interface {
	GenerateItems(ctx context.Context, parts []Part) ([]GeneratedItem, error)
}

// GeneratorFactory builds a generator for the caller's credential.
type GeneratorFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// CategorizeRequest describes one categorization run.
type CategorizeRequest struct {
	APIKey      string
	Files       []models.DriveFile
	ProjectName string
	Deep        bool
}

// Categorizer turns file descriptors into transmittal items.
type Categorizer interface {
	Categorize(ctx context.Context, req *CategorizeRequest) ([]models.TransmittalItem, error)
}

// DownloaderFactory builds a file downloader for the caller's credential.
type DownloaderFactory func(ctx context.Context, apiKey string) (FileDownloader, error)
