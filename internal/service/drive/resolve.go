package drive

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"transmittal/internal/domain"
)

var folderPathPattern = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)

// ResolveFolderID accepts a bare folder id or a Drive folder URL and returns the id.
func ResolveFolderID(idOrURL string) (string, error) {
	s := strings.TrimSpace(idOrURL)
	if s == "" {
		return "", fmt.Errorf("%w: folder id or URL is required", domain.ErrValidation)
	}

	if m := folderPathPattern.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}

	// open?id=<id> style links
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		if id := u.Query().Get("id"); id != "" {
			return id, nil
		}
	}

	return s, nil
}
