package goldfish

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Every error a reader or writer raises wraps exactly one
// of these, so callers can classify failures with errors.Is without caring
// about the specific format (CBOR or JSON) that produced them.
var (
	// ErrIllFormatted covers malformed CBOR framing and any other
	// structurally invalid input that isn't JSON-specific.
	ErrIllFormatted = stderrors.New("goldfish: ill-formatted data")

	// ErrIllFormattedJSON covers malformed JSON syntax.
	ErrIllFormattedJSON = stderrors.New("goldfish: ill-formatted json data")

	// ErrIntegerOverflowJSON is raised when a JSON integer literal doesn't
	// fit in uint64 (or, if negative, in int64), or when a JSON float
	// literal can't be converted to a float64.
	ErrIntegerOverflowJSON = stderrors.New("goldfish: integer overflow in json number")

	// ErrIntegerOverflowCasting is raised when a coercion (as_uint32,
	// as_int8, ...) can't represent the source value.
	ErrIntegerOverflowCasting = stderrors.New("goldfish: integer overflow while casting")

	// ErrIO wraps a failure from the underlying byte stream.
	ErrIO = stderrors.New("goldfish: io error")

	// ErrInvalidKeyType is raised when an array, map or binary value is
	// written as a JSON map key.
	ErrInvalidKeyType = stderrors.New("goldfish: invalid key type")

	// ErrUnexpectedEndOfStream is raised when a read requires more bytes
	// than the underlying stream has left.
	ErrUnexpectedEndOfStream = stderrors.New("goldfish: unexpected end of stream")

	// ErrBadVariantAccess is raised by a coercion or consumer method
	// called against a Document of the wrong tag, or a second access of
	// an already-consumed Document.
	ErrBadVariantAccess = stderrors.New("goldfish: bad variant access")
)

// illFormatted wraps ErrIllFormatted with context.
func illFormatted(format string, args ...interface{}) error {
	return errors.Wrap(ErrIllFormatted, fmt.Sprintf(format, args...))
}

// illFormattedJSON wraps ErrIllFormattedJSON with context.
func illFormattedJSON(format string, args ...interface{}) error {
	return errors.Wrap(ErrIllFormattedJSON, fmt.Sprintf(format, args...))
}

func overflowJSON(format string, args ...interface{}) error {
	return errors.Wrap(ErrIntegerOverflowJSON, fmt.Sprintf(format, args...))
}

func overflowCasting(format string, args ...interface{}) error {
	return errors.Wrap(ErrIntegerOverflowCasting, fmt.Sprintf(format, args...))
}

func badVariantAccess(format string, args ...interface{}) error {
	return errors.Wrap(ErrBadVariantAccess, fmt.Sprintf(format, args...))
}

func invalidKeyType(format string, args ...interface{}) error {
	return errors.Wrap(ErrInvalidKeyType, fmt.Sprintf(format, args...))
}

func unexpectedEOF(format string, args ...interface{}) error {
	return errors.Wrap(ErrUnexpectedEndOfStream, fmt.Sprintf(format, args...))
}

// IOError wraps an I/O failure from an external byte stream. HasCode
// reports whether Code carries a meaningful platform error code, for
// callers that want to distinguish a bare I/O failure from one that
// carries an OS-level error code.
type IOError struct {
	cause   error
	Code    int
	HasCode bool
}

// NewIOError wraps cause as a plain I/O error, with no platform error code.
func NewIOError(cause error) error {
	return &IOError{cause: cause}
}

// NewIOErrorCode wraps cause as an I/O error carrying a platform error code.
func NewIOErrorCode(cause error, code int) error {
	return &IOError{cause: cause, Code: code, HasCode: true}
}

func (e *IOError) Error() string {
	if e.HasCode {
		return fmt.Sprintf("goldfish: io error (code %d): %v", e.Code, e.cause)
	}
	return fmt.Sprintf("goldfish: io error: %v", e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// Is implements the errors.Is protocol so errors.Is(err, ErrIO) reports
// true for any IOError, regardless of the wrapped cause or error code.
func (e *IOError) Is(target error) bool { return target == ErrIO }
