package tcx

import (
	"errors"
	"strings"
)

// Extension is the only file suffix accepted for upload.
const Extension = ".tcx"

var (
	// ErrInvalidExtension is returned for file names that do not end in .tcx.
	ErrInvalidExtension = errors.New("invalid file extension")
	// ErrMalformedDocument is returned when the file content is not well-formed XML.
	ErrMalformedDocument = errors.New("malformed document")
)

// ValidateFileName checks the file name suffix, case-insensitively. It never
// looks at file content.
func ValidateFileName(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), Extension) {
		return ErrInvalidExtension
	}
	return nil
}
