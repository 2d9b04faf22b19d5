package models

// FolderMimeType marks folder entries in a Drive listing.
const FolderMimeType = "application/vnd.google-apps.folder"

// DriveFile is a file found in a remote folder.
type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// IsFolder reports whether the entry is a folder.
func (f DriveFile) IsFolder() bool { return f.MimeType == FolderMimeType }

// ScanResult is the outcome of a folder enumeration.
type ScanResult struct {
	Files          []DriveFile `json:"files"`
	FoldersVisited int         `json:"folders_visited"`
	// Truncated is set when the folder cap stopped traversal with folders still queued.
	Truncated bool `json:"truncated"`
}
