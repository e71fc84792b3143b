package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/kneeview/internal/apperr"
)

// PageName validates a page file name supplied by a remote client and returns
// it as a slash-separated path relative to the root. A name may carry one
// aircraft directory ("FA-18C_hornet/01-Brevity-1.png"). Backslashes are
// treated as separators.
func PageName(name string) (string, error) {
	n := strings.ReplaceAll(name, `\`, "/")
	if n == "" || strings.HasPrefix(n, "/") || strings.ContainsRune(n, 0) {
		return "", fmt.Errorf("storage: page name %q: %w", name, apperr.ErrInvalidName)
	}
	parts := strings.Split(n, "/")
	if len(parts) > 2 {
		return "", fmt.Errorf("storage: page name %q: too deep: %w", name, apperr.ErrInvalidName)
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.HasPrefix(p, ".") || strings.Contains(p, ":") {
			return "", fmt.Errorf("storage: page name %q: %w", name, apperr.ErrInvalidName)
		}
	}
	return path.Join(parts...), nil
}
