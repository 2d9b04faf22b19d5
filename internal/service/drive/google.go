package drive

import (
	"context"
	"fmt"
	"io"

	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

const (
	listFields   = "nextPageToken, files(id, name, mimeType)"
	listPageSize = 1000

	// maxDownloadBytes bounds a single file attached for deep analysis.
	maxDownloadBytes = 20 << 20
)

// GoogleDrive lists and downloads files through the Drive v3 API.
type GoogleDrive struct {
	svc *gdrive.Service
}

// NewGoogleDrive creates a Drive client authenticated with an API key.
// Only publicly shared folders are readable this way.
func NewGoogleDrive(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleDrive, error) {
	if apiKey == "" {
		return nil, &domain.MissingCredentialError{
			Credential: "google_api_key",
			Message:    "No API Key configured. Please set your API key in Settings.",
		}
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleDrive{svc: svc}, nil
}

var (
	_ services.FolderLister   = (*GoogleDrive)(nil)
	_ services.FileDownloader = (*GoogleDrive)(nil)
)

// ListChildren returns one page of the folder's non-trashed children.
func (g *GoogleDrive) ListChildren(ctx context.Context, folderID, pageToken string) (*services.FolderPage, error) {
	call := g.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
		Fields(listFields).
		PageSize(listPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, err
	}

	page := &services.FolderPage{
		Entries:       make([]models.DriveFile, 0, len(resp.Files)),
		NextPageToken: resp.NextPageToken,
	}
	for _, f := range resp.Files {
		page.Entries = append(page.Entries, models.DriveFile{
			ID:       f.Id,
			Name:     f.Name,
			MimeType: f.MimeType,
		})
	}
	return page, nil
}

// Download fetches the file body.
func (g *GoogleDrive) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := g.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileID, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, maxDownloadBytes)
	}
	return data, nil
}
