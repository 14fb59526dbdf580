package seal

import (
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/schema"
)

// ErrorCode represents specific error codes for engine and adapter operations.
type ErrorCode int

const (
	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption ErrorCode = iota + 1000

	// ErrCodeUnsupportedField is returned when a filter or sort addresses a nested field
	// the backend cannot evaluate.
	ErrCodeUnsupportedField

	// ErrCodeNotImplemented is returned when a feature is not implemented.
	ErrCodeNotImplemented

	// ErrCodeDocumentNotFound is returned when a document lookup has no match.
	ErrCodeDocumentNotFound

	// ErrCodeInvalidDocument is returned when a document does not fit its index.
	ErrCodeInvalidDocument

	// ErrCodeTypeMismatch is returned when values of incompatible types are compared.
	ErrCodeTypeMismatch

	// ErrCodeCanceled is returned when an operation is canceled.
	ErrCodeCanceled

	// ErrCodeBackendUnavailable is returned when the search backend is unavailable.
	ErrCodeBackendUnavailable

	// ErrCodeInvalidSchema is returned for malformed index or schema definitions.
	ErrCodeInvalidSchema = ErrorCode(schema.CodeInvalidSchema)

	// ErrCodeIndexNotFound is returned when an index is unknown.
	ErrCodeIndexNotFound = ErrorCode(schema.CodeIndexNotFound)

	// ErrCodeFieldNotFound is returned when a field path does not resolve.
	ErrCodeFieldNotFound = ErrorCode(schema.CodeFieldNotFound)
)

// String returns the human-readable string representation of the error code.
// This implements the fmt.Stringer interface.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeUnsupportedField:
		return "unsupported field"
	case ErrCodeNotImplemented:
		return "not implemented"
	case ErrCodeDocumentNotFound:
		return "document not found"
	case ErrCodeInvalidDocument:
		return "invalid document"
	case ErrCodeTypeMismatch:
		return "type mismatch"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	case ErrCodeInvalidSchema:
		return "invalid schema"
	case ErrCodeIndexNotFound:
		return "index not found"
	case ErrCodeFieldNotFound:
		return "field not found"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

// Common errors that can be returned by engine and adapter operations.
var (
	// ErrInvalidOption is returned when an invalid option is provided.
	ErrInvalidOption = newErrorWithCode(ErrCodeInvalidOption, "seal: invalid option")

	// ErrUnsupportedField is returned for dotted field paths the backend cannot evaluate.
	ErrUnsupportedField = newErrorWithCode(ErrCodeUnsupportedField, "seal: nested fields are not supported")

	// ErrNotImplemented is returned when a feature is not implemented.
	ErrNotImplemented = newErrorWithCode(ErrCodeNotImplemented, "seal: not implemented")

	// ErrDocumentNotFound is returned by Engine.GetDocument when no document has the identifier.
	ErrDocumentNotFound = newErrorWithCode(ErrCodeDocumentNotFound, "seal: document not found")

	// ErrInvalidDocument is returned when a document cannot be stored in its index.
	ErrInvalidDocument = newErrorWithCode(ErrCodeInvalidDocument, "seal: invalid document")

	// ErrTypeMismatch is returned when a filter compares values of incompatible types.
	ErrTypeMismatch = newErrorWithCode(ErrCodeTypeMismatch, "seal: type mismatch")

	// ErrCanceled is returned when an operation is canceled.
	ErrCanceled = newErrorWithCode(ErrCodeCanceled, "seal: operation canceled")

	// ErrBackendUnavailable is returned when the search backend is unavailable.
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "seal: backend unavailable")
)

// ErrIndexNotFound is returned when an index is not part of the schema or was never
// created in the backend.
var ErrIndexNotFound = schema.ErrIndexNotFound

// IsConfigurationError reports whether err is a configuration error: an unknown index,
// an unsupported field path, an unimplemented condition or an invalid option.
// Configuration errors are not retryable.
func IsConfigurationError(err error) bool {
	return errors.IsAny(err,
		schema.ErrIndexNotFound,
		schema.ErrFieldNotFound,
		schema.ErrInvalidSchema,
		ErrUnsupportedField,
		ErrNotImplemented,
		ErrInvalidOption,
		ErrTypeMismatch,
	)
}

var codes = []struct {
	err  error
	code ErrorCode
}{
	{ErrInvalidOption, ErrCodeInvalidOption},
	{ErrUnsupportedField, ErrCodeUnsupportedField},
	{ErrNotImplemented, ErrCodeNotImplemented},
	{ErrDocumentNotFound, ErrCodeDocumentNotFound},
	{ErrInvalidDocument, ErrCodeInvalidDocument},
	{ErrTypeMismatch, ErrCodeTypeMismatch},
	{ErrCanceled, ErrCodeCanceled},
	{ErrBackendUnavailable, ErrCodeBackendUnavailable},
	{schema.ErrInvalidSchema, ErrCodeInvalidSchema},
	{schema.ErrIndexNotFound, ErrCodeIndexNotFound},
	{schema.ErrFieldNotFound, ErrCodeFieldNotFound},
}

// CodeOf returns the code of the first sentinel in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, true
		}
	}
	return 0, false
}
