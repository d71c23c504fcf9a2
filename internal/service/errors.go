package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel failures callers branch on. Anything else coming out of the
// service is a backend failure and should be treated as retryable server
// error, not caller error.
var (
	ErrDuplicateNickname  = errors.New("nickname already taken")
	ErrInvalidCredentials = errors.New("invalid nickname or password")
	ErrNotFound           = errors.New("not found")
)

// ValidationError reports required request fields that were missing or
// malformed. The multipart decoder never fails, so an undecodable upload
// surfaces here as missing fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing fields: %s", strings.Join(e.Fields, ", "))
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
