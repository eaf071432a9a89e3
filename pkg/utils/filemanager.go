// =============================================================================
// Inventario - File Manager Utility
// =============================================================================
//
// File helpers for the batch commands:
//   - Output naming for exported tables
//   - Archival of imported spreadsheets once they have been registered
//   - Error reports for imports that fail validation
//
// ARCHIVAL STRATEGY:
//   - An imported file is moved to the archive directory only after the
//     backend accepted the registration
//   - Files that failed validation or registration stay where they are
//   - Error reports are written next to the exports in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the import and table commands.
type FileManager struct {
	// OutputDir is where exports and error reports are written.
	OutputDir string

	// ArchiveDir receives imported files after a successful registration.
	// Empty disables archival.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2026/01/15/items.xlsx
	UseTimestampSubdirs bool

	now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		now:        time.Now,
	}
}

// EnsureDirectories creates the configured directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutputPath joins a generated file name onto the output directory.
// A path that already contains a directory is returned unchanged apart from
// placeholder expansion.
func (fm *FileManager) OutputPath(format, ext string, params map[string]string) string {
	name := GenerateOutputFileName(format, ext, params)
	if filepath.Dir(name) != "." || fm.OutputDir == "" {
		return name
	}
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveFile moves a processed file into the archive directory.
//
// PARAMETERS:
//   - filePath: The file to archive.
//
// RETURNS:
//   - The archived path, or "" when archival is disabled.
//   - An error if the move fails.
func (fm *FileManager) ArchiveFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return "", nil
	}

	dir := fm.ArchiveDir
	now := fm.now()
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir, now.Format("2006"), now.Format("01"), now.Format("02"))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(filePath)
	dest := filepath.Join(dir, base)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(base)
		dest = filepath.Join(dir, fmt.Sprintf("%s_%s%s",
			strings.TrimSuffix(base, ext), now.Format("20060102_150405"), ext))
	}

	if err := os.Rename(filePath, dest); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", filePath, err)
	}
	return dest, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in a file name format.
//
// PARAMETERS:
//   - format: The file name format. Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {name}      - Any value passed in params, by key
//   - ext: Extension appended when the result does not already end with it.
//   - params: Extra placeholder values.
//
// EXAMPLE:
//   format: "{name}_{date}", ext: ".xlsx", params: {"name": "top"}
//   output: "top_20260115.xlsx"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// =============================================================================
// ERROR REPORTS
// =============================================================================

// ErrorLogEntry is one problem found in an imported file.
type ErrorLogEntry struct {
	Line    int
	Field   string
	Value   string
	Message string
}

// WriteErrorLog writes a plain-text report of import problems and returns
// its path.
func (fm *FileManager) WriteErrorLog(sourceFile string, entries []ErrorLogEntry) (string, error) {
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	path := fm.OutputPath("{name}_errors_{timestamp}", ".log", map[string]string{"name": base})

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Import error report\n")
	fmt.Fprintf(w, "Source:    %s\n", sourceFile)
	fmt.Fprintf(w, "Generated: %s\n", fm.now().Format(time.RFC3339))
	fmt.Fprintf(w, "Problems:  %d\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "line %d  %-15s %-12q %s\n", e.Line, e.Field, e.Value, e.Message)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return path, nil
}
