package errors

import (
	"strings"
	"unicode"
)

// ValidateLibraryName validates a library name from a manifest.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //) or backslashes
//   - Maximum length of 256 characters
func ValidateLibraryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "library name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidManifest, "library name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "library name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidManifest, "library name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a relative asset path from a manifest.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal segments (..)
//   - No backslashes (manifests use forward slashes on every platform)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateRID validates a runtime identifier supplied by a user or a manifest.
// RIDs are opaque, but they must be non-empty, short, and free of whitespace,
// control characters and path separators.
func ValidateRID(r string) error {
	if r == "" {
		return New(ErrCodeInvalidRID, "rid cannot be empty")
	}
	if len(r) > 128 {
		return New(ErrCodeInvalidRID, "rid too long (max 128 characters)")
	}
	for _, c := range r {
		if unicode.IsSpace(c) || unicode.IsControl(c) || c == '/' || c == '\\' {
			return New(ErrCodeInvalidRID, "rid %q contains invalid characters", r)
		}
	}
	return nil
}
