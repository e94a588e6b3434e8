package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// ValidatePath validates a user-supplied file path for reading or writing.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path %q names a directory", path)
	}

	return nil
}

// ValidateExtension checks that path ends in one of exts (e.g. ".svg").
// The comparison is case-insensitive.
func ValidateExtension(path string, exts ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if slices.Contains(exts, ext) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported file extension %q (must be one of: %s)", ext, strings.Join(exts, ", "))
}

// ValidateLevel checks that level is one of the retained levels.
func ValidateLevel(level int, retained []int) error {
	if level < 1 {
		return New(ErrCodeInvalidLevel, "level must be positive, got %d", level)
	}
	if !slices.Contains(retained, level) {
		return New(ErrCodeLevelNotFound, "level %d is not retained (available: %v)", level, retained)
	}
	return nil
}
