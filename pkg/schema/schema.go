// Package schema describes the closed data model that binschema values
// conform to: scalars, strings, options, sequences, tuples, named-field
// records, tagged unions, and self-referential back-edges. A Schema is
// itself a plain Go value, comparable and fully describable, so it can be
// built programmatically, validated, pretty-printed, and shipped alongside
// the data it describes.
package schema

import "fmt"

// Kind discriminates the variant a Schema value holds.
type Kind int

const (
	KindScalar Kind = iota
	KindStr
	KindBytes
	KindUnit
	KindOption
	KindSeq
	KindTuple
	KindStruct
	KindEnum
	KindRecurse
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindStr:
		return "Str"
	case KindBytes:
		return "Bytes"
	case KindUnit:
		return "Unit"
	case KindOption:
		return "Option"
	case KindSeq:
		return "Seq"
	case KindTuple:
		return "Tuple"
	case KindStruct:
		return "Struct"
	case KindEnum:
		return "Enum"
	case KindRecurse:
		return "Recurse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ScalarType enumerates the permitted primitive scalar types.
type ScalarType int

const (
	U8 ScalarType = iota
	U16
	U32
	U64
	U128
	I8
	I16
	I32
	I64
	I128
	F32
	F64
	Char
	Bool
)

func (s ScalarType) String() string {
	switch s {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Char:
		return "char"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(s))
	}
}

// VariantName returns the capitalized name this scalar type carries as a
// variant of SelfSchema's nested Scalar enum, e.g. U128.VariantName() ==
// "U128". This is distinct from String, which renders the lowercase form
// used by Print.
func (s ScalarType) VariantName() string {
	switch s {
	case U8:
		return "U8"
	case U16:
		return "U16"
	case U32:
		return "U32"
	case U64:
		return "U64"
	case U128:
		return "U128"
	case I8:
		return "I8"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case I128:
		return "I128"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case Char:
		return "Char"
	case Bool:
		return "Bool"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(s))
	}
}

// Schema describes the shape of a value in the closed binschema data model.
//
// Go has no native tagged union, so Schema is represented as a struct
// carrying a Kind discriminant plus whichever of the payload fields are
// relevant to that Kind; all other fields are left zero. This mirrors the
// teacher's AST node style (a flat struct with a discriminant) generalized
// from a parse tree to a value schema.
type Schema struct {
	Kind Kind

	// valid when Kind == KindScalar
	Scalar ScalarType

	// valid when Kind == KindOption: the wrapped schema
	// valid when Kind == KindSeq: the element schema
	Inner *Schema

	// valid when Kind == KindSeq: nil means variable length, otherwise the
	// required fixed length
	SeqLen *int

	// valid when Kind == KindTuple: the ordered element schemas
	Elems []Schema

	// valid when Kind == KindStruct: the ordered, uniquely-named fields
	Fields []Field

	// valid when Kind == KindEnum: the ordered, uniquely-named variants
	Variants []Variant

	// valid when Kind == KindRecurse: the number of ancestor levels to walk
	// up when this node is resolved against the live schema stack
	RecurseLevel int
}

// Field is one named element of a Schema's Struct variant.
type Field struct {
	Name   string
	Schema Schema
}

// Variant is one named element of a Schema's Enum variant.
type Variant struct {
	Name   string
	Schema Schema
}
