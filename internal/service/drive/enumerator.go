// Package drive walks remote folder trees and fetches file contents for
// deep categorization.
package drive

import (
	"context"
	"fmt"
	"log/slog"

	"transmittal/internal/config"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

// Enumerator implements services.FolderEnumerator with a bounded breadth-first walk.
type Enumerator struct {
	lister     services.FolderLister
	maxFolders int
	logger     *slog.Logger
}

// NewEnumerator creates an enumerator. maxFolders <= 0 selects the default cap.
func NewEnumerator(lister services.FolderLister, maxFolders int, logger *slog.Logger) *Enumerator {
	if maxFolders <= 0 {
		maxFolders = config.DefaultDriveMaxFolders
	}
	return &Enumerator{lister: lister, maxFolders: maxFolders, logger: logger}
}

// ListFiles returns every non-folder file reachable from the root, in discovery order.
//
// Only the root folder is read unless scanSubfolders is set, in which case at
// most maxFolders folders are visited. A failure on the root folder is
// returned; failures further down abandon that folder and the walk continues.
func (e *Enumerator) ListFiles(ctx context.Context, folderIDOrURL string, scanSubfolders bool) (*models.ScanResult, error) {
	rootID, err := ResolveFolderID(folderIDOrURL)
	if err != nil {
		return nil, err
	}

	limit := 1
	if scanSubfolders {
		limit = e.maxFolders
	}

	result := &models.ScanResult{Files: []models.DriveFile{}}
	queue := []string{rootID}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		if result.FoldersVisited >= limit {
			result.Truncated = hasUnvisited(queue, visited)
			break
		}

		folderID := queue[0]
		queue = queue[1:]
		if folderID == "" || visited[folderID] {
			continue
		}
		visited[folderID] = true
		result.FoldersVisited++

		children, err := e.listFolder(ctx, folderID, result)
		if err != nil {
			if result.FoldersVisited == 1 {
				return nil, &domain.UpstreamError{Service: "drive", Err: err}
			}
			e.logger.Warn("skipping folder after listing failure",
				"folder_id", folderID,
				"error", err,
			)
		}
		if scanSubfolders {
			queue = append(queue, children...)
		}
	}

	e.logger.Info("folder scan complete",
		"root", rootID,
		"files", len(result.Files),
		"folders_visited", result.FoldersVisited,
		"truncated", result.Truncated,
	)
	return result, nil
}

// listFolder reads every page of one folder, appending files to result and
// returning the subfolder ids. On error, the files and subfolders from pages
// already read are kept.
func (e *Enumerator) listFolder(ctx context.Context, folderID string, result *models.ScanResult) ([]string, error) {
	var subfolders []string
	pageToken := ""
	for {
		page, err := e.lister.ListChildren(ctx, folderID, pageToken)
		if err != nil {
			return subfolders, fmt.Errorf("list folder %s: %w", folderID, err)
		}

		for _, entry := range page.Entries {
			if entry.IsFolder() {
				subfolders = append(subfolders, entry.ID)
				continue
			}
			if entry.Name == "" {
				continue
			}
			result.Files = append(result.Files, entry)
		}

		if page.NextPageToken == "" {
			return subfolders, nil
		}
		pageToken = page.NextPageToken
	}
}

func hasUnvisited(queue []string, visited map[string]bool) bool {
	for _, id := range queue {
		if id != "" && !visited[id] {
			return true
		}
	}
	return false
}
