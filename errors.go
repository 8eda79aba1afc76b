package qualify

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/qualify/stream"
)

// Sentinels returned by resolution and by codecs. Match them with errors.Is.
var (
	// ErrInvalidTag indicates a qualifier or struct tag has an invalid value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrDuplicateQualifier indicates two qualifiers of the same kind in one set.
	ErrDuplicateQualifier = errors.New("duplicate qualifier")

	// ErrFactoryOrder indicates a factory registration that breaks stage order.
	ErrFactoryOrder = errors.New("factory stage out of order")

	// ErrUnsupportedType indicates no codec can be built for a type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNotEnum indicates an enum qualifier applied to a type without declared constants.
	ErrNotEnum = errors.New("not an enum")

	// ErrMissingConstant indicates a fallback names a constant the enum does not declare.
	ErrMissingConstant = errors.New("missing constant")

	// ErrMissingEncryptor indicates an encrypt qualifier names an algorithm with no encryptor.
	ErrMissingEncryptor = errors.New("missing encryptor")

	// ErrMissingHasher indicates a hash qualifier names an algorithm with no hasher.
	ErrMissingHasher = errors.New("missing hasher")

	// ErrMissingMasker indicates a mask qualifier names a type with no masker.
	ErrMissingMasker = errors.New("missing masker")

	// ErrInapplicable indicates a qualifier attached to a type it cannot operate on.
	ErrInapplicable = errors.New("qualifier not applicable to type")

	// ErrMismatch is matched by every error describing a document whose
	// shape disagrees with the codec.
	ErrMismatch = stream.ErrMismatch

	// ErrPathNotFound indicates a wrapped path segment was absent.
	ErrPathNotFound = errors.New("wrapped json not found")

	// ErrNullAtPath indicates a wrapped path reached null before its end.
	ErrNullAtPath = errors.New("null at wrapped path")

	// ErrRequired indicates a required value was null or absent.
	ErrRequired = errors.New("required value missing")

	// ErrUnknownEnum indicates an enum name with no matching constant.
	ErrUnknownEnum = errors.New("unknown enum constant")

	// ErrTrailingData indicates input continues after the top-level value.
	ErrTrailingData = stream.ErrTrailingData

	// ErrUnmarshal indicates a format failed to convert input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates a format failed to convert output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrEncrypt indicates encryption of a value failed.
	ErrEncrypt = errors.New("encrypt failed")

	// ErrDecrypt indicates decryption of a value failed.
	ErrDecrypt = errors.New("decrypt failed")

	// ErrHash indicates hashing of a value failed.
	ErrHash = errors.New("hash failed")
)

// MismatchError reports a token of the wrong kind with its stream position.
type MismatchError = stream.MismatchError

// ConfigError represents a codec construction error.
// It wraps a sentinel error with the type, qualifier and field involved.
type ConfigError struct {
	Err       error        // Underlying sentinel error (ErrInvalidTag, etc.)
	Type      reflect.Type // Type being resolved, if known
	Qualifier string       // Qualifier that failed, if any
	Field     string       // Struct field that carried the qualifier
	Detail    string       // Free-form context
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Qualifier != "" {
		fmt.Fprintf(&b, " for %s", e.Qualifier)
	}
	if e.Type != nil {
		fmt.Fprintf(&b, " on %s", e.Type)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DataError represents a document that does not have the shape a codec
// requires. errors.Is(err, ErrMismatch) reports true for every DataError.
type DataError struct {
	Err  error  // Underlying sentinel error (ErrPathNotFound, etc.)
	Path string // Logical path the codec was following, e.g. [a, b]
	At   string // Stream position, e.g. $.a.b
}

func (e *DataError) Error() string {
	switch {
	case errors.Is(e.Err, ErrPathNotFound):
		return fmt.Sprintf("Wrapped Json expected at path: %s. Actual: %s", e.Path, e.At)
	case errors.Is(e.Err, ErrNullAtPath):
		return fmt.Sprintf("Wrapped Json expected at path: %s. Found null at %s", e.Path, e.At)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s at path %s", e.Err.Error(), e.Path, e.At)
	}
	return fmt.Sprintf("%s at path %s", e.Err.Error(), e.At)
}

func (e *DataError) Unwrap() []error {
	return []error{e.Err, ErrMismatch}
}

// TransformError represents a failure while a sanitising codec rewrote a value.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrEncrypt, ErrDecrypt, etc.)
	Operation string // Operation that failed (encrypt, decrypt, hash, mask)
	At        string // Stream position of the value
	Cause     error  // Error from the encryptor or hasher
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at path %s: %v", e.Operation, e.At, e.Cause)
	}
	return fmt.Sprintf("%s at path %s", e.Operation, e.At)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError reports a Format that could not convert bytes to or from JSON.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the format or codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newConfigError creates a ConfigError for a qualifier on a type.
func newConfigError(sentinel error, t reflect.Type, qualifier, detail string) error {
	return &ConfigError{
		Err:       sentinel,
		Type:      t,
		Qualifier: qualifier,
		Detail:    detail,
	}
}

// newDataError creates a DataError at the reader's current position.
func newDataError(sentinel error, path string, r *stream.Reader) error {
	return &DataError{
		Err:  sentinel,
		Path: path,
		At:   r.Path(),
	}
}

// newTransformError creates a TransformError for a sanitising failure.
func newTransformError(sentinel error, operation, at string, cause error) error {
	return &TransformError{
		Err:       sentinel,
		Operation: operation,
		At:        at,
		Cause:     cause,
	}
}

// newCodecError wraps a Format failure.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}

// withField attaches a struct field name to a ConfigError produced while
// resolving that field. Other errors are wrapped as invalid configuration.
func withField(err error, field string) error {
	var ce *ConfigError
	if errors.As(err, &ce) {
		if ce.Field == "" {
			cp := *ce
			cp.Field = field
			return &cp
		}
		return err
	}
	return &ConfigError{Err: ErrInvalidTag, Field: field, Detail: err.Error()}
}
