package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// OutputManager handles local output directories of offline runs
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager rooted at baseOutputDir
func NewOutputManager(baseOutputDir string) *OutputManager {
	if baseOutputDir == "" {
		baseOutputDir = "."
	}
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// CreateOutputDir creates a named directory under the base directory.
// Absolute names are used as is.
func (om *OutputManager) CreateOutputDir(name string) (string, error) {
	dir := filepath.Clean(name)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(om.BaseOutputDir, dir)
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	return dir, nil
}

// GetOutputFilePath generates a full path for an output file
func (om *OutputManager) GetOutputFilePath(dir, fileName string) (string, error) {
	outDir, err := om.CreateOutputDir(dir)
	if err != nil {
		return "", err
	}

	// Clean the filename to remove any path separators
	cleanFileName := filepath.Base(fileName)

	return filepath.Join(outDir, cleanFileName), nil
}

// WriteJSON writes v as indented JSON and returns the file path
func (om *OutputManager) WriteJSON(dir, fileName string, v interface{}) (string, error) {
	filePath, err := om.GetOutputFilePath(dir, fileName)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", fileName, err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	return filePath, nil
}

// GetFileURL is the path the static server exposes a file under
func (om *OutputManager) GetFileURL(dir, fileName string) string {
	joined := path.Join(filepath.ToSlash(filepath.Clean(dir)), filepath.Base(fileName))
	return "/" + strings.TrimPrefix(joined, "/")
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".sql":
		return "sql"
	case ".csv":
		return "csv"
	default:
		return "unknown"
	}
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}
