package services

import (
	"context"

	"transmittal/internal/domain/models"
)

// FolderPage is one page of a folder listing.
type FolderPage struct {
	Entries       []models.DriveFile
	NextPageToken string
}

// FolderLister lists the direct children of a remote folder, one page at a time.
type FolderLister interface {
	ListChildren(ctx context.Context, folderID, pageToken string) (*FolderPage, error)
}

// FileDownloader fetches the raw bytes of a remote file.
type FileDownloader interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// FolderEnumerator walks a folder tree and returns the files in it.
type FolderEnumerator interface {
	ListFiles(ctx context.Context, folderIDOrURL string, scanSubfolders bool) (*models.ScanResult, error)
}

// EnumeratorFactory builds a folder enumerator for the caller's credential.
type EnumeratorFactory func(ctx context.Context, apiKey string) (FolderEnumerator, error)
