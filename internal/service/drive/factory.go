package drive

import (
	"context"
	"log/slog"

	"google.golang.org/api/option"

	"transmittal/internal/domain/services"
)

// NewEnumeratorFactory returns a factory that walks Drive with the caller's key.
func NewEnumeratorFactory(maxFolders int, logger *slog.Logger, opts ...option.ClientOption) services.EnumeratorFactory {
	return func(ctx context.Context, apiKey string) (services.FolderEnumerator, error) {
		g, err := NewGoogleDrive(ctx, apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return NewEnumerator(g, maxFolders, logger), nil
	}
}

// NewDownloaderFactory returns a factory for deep-analysis downloads.
func NewDownloaderFactory(opts ...option.ClientOption) services.DownloaderFactory {
	return func(ctx context.Context, apiKey string) (services.FileDownloader, error) {
		g, err := NewGoogleDrive(ctx, apiKey, opts...)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}
