// Package security provides path and value validation utilities for assetgen.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateModuleName checks that a module name is a single path element that
// can be joined onto the output root without escaping it.
func ValidateModuleName(name string) error {
	if name == "" {
		return fmt.Errorf("empty module name")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid module name: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("module name must not contain path separators: %q", name)
	}
	return nil
}

// ValidateFilePath validates a relative file path to prevent directory traversal.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute paths are not allowed: %s", filePath)
	}

	// Ensure the final path would be within baseDir
	finalPath := filepath.Join(baseDir, filePath)
	cleanFinal := filepath.Clean(finalPath)
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// SafeUint8 safely converts an integer to uint8 with bounds checking.
// Values outside 0-255 are clamped to the valid range.
func SafeUint8(val int) uint8 {
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return uint8(val)
}
