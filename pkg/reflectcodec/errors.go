// Package reflectcodec is the generic-serialization adapter: it walks a Go
// value by reflection and drives pkg/coder's Encoder/Decoder according to
// the Schema pkg/knownschema derives for the value's type, the way the
// teacher's marshal.go/unmarshal.go walk a reflect.Value and drive its
// Writer/Reader according to Go kind alone. Here the Schema at the current
// position, not the Go kind, decides fixed-vs-variable sequences and enum
// ordinal width, mirroring the original's serde.rs need() peek.
package reflectcodec

import (
	"errors"
	"fmt"
)

// Sentinel errors for common adapter-level failures, checkable with
// errors.Is(), mirroring the teacher's pkg/cramberry/errors.go sentinels
// trimmed to the ones a schema-driven (rather than wire-tag-driven)
// adapter can actually raise.
var (
	// ErrUnregisteredType indicates a struct or interface type has no
	// pkg/knownschema registration.
	ErrUnregisteredType = errors.New("reflectcodec: type not registered with knownschema")

	// ErrNotPointer indicates Unmarshal's target is not a pointer.
	ErrNotPointer = errors.New("reflectcodec: unmarshal target must be a non-nil pointer")

	// ErrNilPointer indicates a nil value where a value is required: a nil
	// Unmarshal target, a nil interface value with no union variant, or a
	// nil pointer as a union variant's payload.
	ErrNilPointer = errors.New("reflectcodec: nil interface value has no union variant")

	// ErrUnknownVariant indicates an interface value's dynamic type is not
	// among its registered union variants.
	ErrUnknownVariant = errors.New("reflectcodec: value's concrete type is not a registered union variant")
)

// EncodeError provides context for a Marshal failure, in the shape of the
// teacher's EncodeError.
type EncodeError struct {
	Type    string
	Field   string
	Message string
	Cause   error
}

func (e *EncodeError) Error() string {
	prefix := joinTypeField(e.Type, e.Field)
	if prefix != "" {
		return fmt.Sprintf("reflectcodec: encode %s: %s", prefix, e.Message)
	}
	return fmt.Sprintf("reflectcodec: encode: %s", e.Message)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

func (e *EncodeError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// DecodeError provides context for an Unmarshal failure, in the shape of
// the teacher's DecodeError.
type DecodeError struct {
	Type    string
	Field   string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	prefix := joinTypeField(e.Type, e.Field)
	if prefix != "" {
		return fmt.Sprintf("reflectcodec: decode %s: %s", prefix, e.Message)
	}
	return fmt.Sprintf("reflectcodec: decode: %s", e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

func joinTypeField(typ, field string) string {
	switch {
	case typ != "" && field != "":
		return fmt.Sprintf("%s.%s", typ, field)
	case typ != "":
		return typ
	default:
		return field
	}
}
