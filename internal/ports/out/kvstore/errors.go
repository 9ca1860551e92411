package kvstore

import (
	"errors"
	"regexp"
)

// ErrInvalidKey indicates an empty or otherwise unusable key.
var ErrInvalidKey = errors.New("invalid kvstore key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidKey reports whether key is usable by every backend. Keys double as
// file names, so they are limited to letters, digits, dot, underscore and
// dash, and must not start with a separator.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
