package store

import (
	"errors"
	"fmt"
)

// ErrDuplicateIdentification is returned when a create or update would give
// two identities the same identification number.
var ErrDuplicateIdentification = errors.New("identification number already registered")

// ValidationError reports a rejected write: a bad enum value or a missing
// required field. The operation is aborted with no partial write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
