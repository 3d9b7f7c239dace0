package assets

import (
	"fmt"
	"strings"
)

// ValidateFileName checks that a template file name is a plain file name.
// Dots are allowed (extensions like .html.tmpl) but not as the first
// character, which rejects "." , ".." and hidden files.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFileName)
	}
	if strings.ContainsAny(name, "/\\\x00") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}
