package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"clipforge-ai/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

// DownloadFile serves exported task artifacts (subtitle files and, later,
// rendered clips) from the tasks root. Only paths under the root resolve.
func (h *Handler) DownloadFile(c *gin.Context) {
	requested := c.Param("filepath")
	if hasParentTraversal(requested) {
		c.Status(http.StatusForbidden)
		return
	}

	resolved, ok := resolveDownloadPath(requested)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(resolved)
}

func resolveDownloadPath(requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	requested = strings.TrimPrefix(requested, "/")
	requested = filepath.ToSlash(filepath.Clean(requested))
	if requested == "." || requested == "" {
		return "", false
	}

	prefix := appdirs.TaskRootName + "/"
	if !strings.HasPrefix(requested, prefix) {
		return "", false
	}
	relative := filepath.FromSlash(strings.TrimPrefix(requested, prefix))

	for _, rootDir := range taskRootCandidates() {
		candidate := filepath.Clean(filepath.Join(rootDir, relative))
		if !isPathWithinRoot(rootDir, candidate) {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func taskRootCandidates() []string {
	candidates := make([]string, 0, 2)
	if dirs, err := appDirsResolver(); err == nil {
		candidates = append(candidates, appdirs.TaskRootFor(dirs))
	}
	candidates = append(candidates, appdirs.TaskRootName)
	return uniquePaths(candidates...)
}

func uniquePaths(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	paths := make([]string, 0, len(values))
	for _, value := range values {
		cleaned := strings.TrimSpace(value)
		if cleaned == "" {
			continue
		}
		cleaned = filepath.Clean(cleaned)
		if _, exists := seen[cleaned]; exists {
			continue
		}
		seen[cleaned] = struct{}{}
		paths = append(paths, cleaned)
	}
	return paths
}

func isPathWithinRoot(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasParentTraversal(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
