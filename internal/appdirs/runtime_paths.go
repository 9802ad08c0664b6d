package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	TaskRootName = "tasks"
	dbFileName   = "clipforge.db"
)

// TaskRootFor returns the directory holding per-task artifact directories.
func TaskRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), TaskRootName)
}

// TaskDirFor returns the artifact directory for one task.
func TaskDirFor(paths Paths, taskID string) string {
	return filepath.Join(TaskRootFor(paths), taskID)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
