package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds document, node and edge identifiers.
const maxIDLength = 128

// idRegex matches identifiers produced by the editor: uuids, sequence ids
// ("n12") and the fixed root id. Anything else is treated as hostile input.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateID validates an identifier for safety and correctness.
// Document ids become file names and cache keys, so the rules are
// intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path traversal sequences or separators
//   - Maximum length of 128 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "%s id contains invalid control characters", kind)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "%s id contains invalid characters: %q", kind, pattern)
		}
	}

	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid %s id: %q", kind, id)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
