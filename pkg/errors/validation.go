package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// namePartRegex matches one half of a qualified package name. Parts start
// with an alphanumeric, underscore or plus and may contain hyphens, but a
// package part must not end in something that parses as a version.
var namePartRegex = regexp.MustCompile(`^[A-Za-z0-9_+][A-Za-z0-9_+.-]*$`)

// versionLikeSuffix matches "-1", "-1.2b" and similar trailing segments.
var versionLikeSuffix = regexp.MustCompile(`-[0-9]+(\.[0-9]+)*[a-z]?$`)

// ValidatePackageName validates a qualified package name of the form
// "category/package".
//
// The rules follow the package naming conventions of source-based
// distributions:
//   - exactly one slash separating category and package
//   - no control characters
//   - each part starts with [A-Za-z0-9_+]
//   - the package part must not end in a hyphenated version
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	cat, pkg, ok := strings.Cut(name, "/")
	if !ok || strings.Contains(pkg, "/") {
		return New(ErrCodeInvalidPackage, "package name must be of the form category/package: %q", name)
	}
	if !namePartRegex.MatchString(cat) {
		return New(ErrCodeInvalidPackage, "invalid category name: %q", cat)
	}
	if !namePartRegex.MatchString(pkg) {
		return New(ErrCodeInvalidPackage, "invalid package name: %q", pkg)
	}
	if versionLikeSuffix.MatchString(pkg) {
		return New(ErrCodeInvalidPackage, "package name %q must not end in a version", pkg)
	}

	return nil
}

// setNameRegex matches named set identifiers ("world", "system", "security-2024").
var setNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]*\*?$`)

// ValidateSetName validates a named set identifier.
func ValidateSetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "set name cannot be empty")
	}
	if !setNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid set name: %q", name)
	}
	return nil
}

// ValidateRepositoryName validates a repository name as used after "::" in
// package constraints.
func ValidateRepositoryName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRepository, "repository name cannot be empty")
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidRepository, "invalid repository name: %q", name)
		}
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal and rejects control characters.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a cache URL. Only redis schemes are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "URL must use redis or rediss scheme")
	}
	return nil
}
