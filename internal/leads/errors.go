package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is empty after trimming
	ErrInvalidName = errors.New("missing name")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = errors.New("missing contact (email or phone)")

	// ErrTooManyFiles is returned when more attachments than allowed are uploaded
	ErrTooManyFiles = errors.New("too many files")

	// ErrFileTooLarge is returned when a single attachment exceeds the size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrBodyTooLarge is returned when the request body exceeds the overall limit
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrMalformedBody is returned when the submission cannot be decoded
	ErrMalformedBody = errors.New("malformed request body")
)

// IsValidationError reports whether err should be answered with 400.
func IsValidationError(err error) bool {
	for _, target := range []error{ErrInvalidName, ErrMissingContact, ErrTooManyFiles, ErrFileTooLarge, ErrBodyTooLarge, ErrMalformedBody} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
