package coder

import (
	"math/big"
	"unicode/utf8"

	"github.com/blockberries/binschema/internal/varint"
	"github.com/blockberries/binschema/pkg/schema"
)

// Decoder pairs a CoderState with an input byte slice and a read cursor.
// Like Encoder, a rejected coding call consumes no bytes: the cursor only
// advances once the schema check for that call has passed.
type Decoder struct {
	cs  *CoderState
	buf []byte
	pos int
}

// NewDecoder creates a Decoder over data that validates against root.
func NewDecoder(root *schema.Schema, data []byte, alloc *CoderStateAlloc) *Decoder {
	return &Decoder{cs: New(root, alloc), buf: data}
}

// State returns the underlying CoderState.
func (d *Decoder) State() *CoderState { return d.cs }

// Err returns the sticky error that broke the decoder, if any.
func (d *Decoder) Err() error { return d.cs.Err() }

// Remaining returns the bytes not yet consumed.
func (d *Decoder) Remaining() []byte { return d.buf[d.pos:] }

func (d *Decoder) need(op string, n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, d.cs.fail(op, "", ErrUnexpectedEOF)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) scalar(op string, t schema.ScalarType) error {
	return d.cs.CodeScalar(op, t)
}

func (d *Decoder) DecodeU8() (uint8, error) {
	if err := d.scalar("decode_u8", schema.U8); err != nil {
		return 0, err
	}
	b, err := d.need("decode_u8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) DecodeI8() (int8, error) {
	if err := d.scalar("decode_i8", schema.I8); err != nil {
		return 0, err
	}
	b, err := d.need("decode_i8", 1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	if err := d.scalar("decode_bool", schema.Bool); err != nil {
		return false, err
	}
	b, err := d.need("decode_bool", 1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (d *Decoder) DecodeU16() (uint16, error) {
	if err := d.scalar("decode_u16", schema.U16); err != nil {
		return 0, err
	}
	b, err := d.need("decode_u16", 2)
	if err != nil {
		return 0, err
	}
	return varint.Uint16(b), nil
}

func (d *Decoder) DecodeI16() (int16, error) {
	if err := d.scalar("decode_i16", schema.I16); err != nil {
		return 0, err
	}
	b, err := d.need("decode_i16", 2)
	if err != nil {
		return 0, err
	}
	return int16(varint.Uint16(b)), nil
}

func (d *Decoder) DecodeU32() (uint32, error) {
	if err := d.scalar("decode_u32", schema.U32); err != nil {
		return 0, err
	}
	v, n, err := varint.DecodeUvarint(d.buf[d.pos:])
	if err != nil {
		return 0, d.cs.fail("decode_u32", "", err)
	}
	if !varint.UintFitsWidth(v, 32) {
		return 0, d.cs.fail("decode_u32", "", ErrValueTooLarge)
	}
	d.pos += n
	return uint32(v), nil
}

func (d *Decoder) DecodeI32() (int32, error) {
	if err := d.scalar("decode_i32", schema.I32); err != nil {
		return 0, err
	}
	v, n, err := varint.DecodeSvarint(d.buf[d.pos:])
	if err != nil {
		return 0, d.cs.fail("decode_i32", "", err)
	}
	if !varint.IntFitsWidth(v, 32) {
		return 0, d.cs.fail("decode_i32", "", ErrValueTooLarge)
	}
	d.pos += n
	return int32(v), nil
}

func (d *Decoder) DecodeU64() (uint64, error) {
	if err := d.scalar("decode_u64", schema.U64); err != nil {
		return 0, err
	}
	v, n, err := varint.DecodeUvarint(d.buf[d.pos:])
	if err != nil {
		return 0, d.cs.fail("decode_u64", "", err)
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) DecodeI64() (int64, error) {
	if err := d.scalar("decode_i64", schema.I64); err != nil {
		return 0, err
	}
	v, n, err := varint.DecodeSvarint(d.buf[d.pos:])
	if err != nil {
		return 0, d.cs.fail("decode_i64", "", err)
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) DecodeU128() (*big.Int, error) {
	if err := d.scalar("decode_u128", schema.U128); err != nil {
		return nil, err
	}
	v, n, err := varint.DecodeUvarintBig(d.buf[d.pos:], varint.MaxLen128)
	if err != nil {
		return nil, d.cs.fail("decode_u128", "", err)
	}
	if !varint.Fits128Unsigned(v) {
		return nil, d.cs.fail("decode_u128", "", ErrValueTooLarge)
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) DecodeI128() (*big.Int, error) {
	if err := d.scalar("decode_i128", schema.I128); err != nil {
		return nil, err
	}
	v, n, err := varint.DecodeSvarintBig(d.buf[d.pos:], varint.MaxLen128+1)
	if err != nil {
		return nil, d.cs.fail("decode_i128", "", err)
	}
	if !varint.Fits128Signed(v) {
		return nil, d.cs.fail("decode_i128", "", ErrValueTooLarge)
	}
	d.pos += n
	return v, nil
}

func (d *Decoder) DecodeF32() (float32, error) {
	if err := d.scalar("decode_f32", schema.F32); err != nil {
		return 0, err
	}
	b, err := d.need("decode_f32", 4)
	if err != nil {
		return 0, err
	}
	return varint.Float32(b), nil
}

func (d *Decoder) DecodeF64() (float64, error) {
	if err := d.scalar("decode_f64", schema.F64); err != nil {
		return 0, err
	}
	b, err := d.need("decode_f64", 8)
	if err != nil {
		return 0, err
	}
	return varint.Float64(b), nil
}

func (d *Decoder) DecodeChar() (rune, error) {
	if err := d.scalar("decode_char", schema.Char); err != nil {
		return 0, err
	}
	b, err := d.need("decode_char", 4)
	if err != nil {
		return 0, err
	}
	cp := varint.Uint32(b)
	if cp > utf8.MaxRune || (cp >= 0xd800 && cp <= 0xdfff) {
		return 0, d.cs.fail("decode_char", "", ErrInvalidUTF8)
	}
	return rune(cp), nil
}

// DecodeStr decodes a length-prefixed UTF-8 string, allocating a fresh
// string for the result.
func (d *Decoder) DecodeStr() (string, error) {
	if err := d.cs.CodeStr("decode_str"); err != nil {
		return "", err
	}
	b, err := d.readLenPrefixed("decode_str")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", d.cs.fail("decode_str", "", ErrInvalidUTF8)
	}
	return string(b), nil
}

// DecodeStrInto decodes a length-prefixed UTF-8 string into dst, reusing
// its backing array when there is room, and returns the resulting string
// view plus the possibly-regrown buffer for the caller to keep reusing.
// If the bytes are not valid UTF-8, dst is left untouched and an error is
// returned, mirroring the reference decoder's buffer-return-on-error
// behavior.
func (d *Decoder) DecodeStrInto(dst []byte) (string, []byte, error) {
	if err := d.cs.CodeStr("decode_str_into"); err != nil {
		return "", dst, err
	}
	b, err := d.readLenPrefixed("decode_str_into")
	if err != nil {
		return "", dst, err
	}
	if !utf8.Valid(b) {
		return "", dst, d.cs.fail("decode_str_into", "", ErrInvalidUTF8)
	}
	dst = append(dst[:0], b...)
	return string(dst), dst, nil
}

// DecodeBytes decodes a length-prefixed opaque byte string, allocating a
// fresh slice for the result.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	if err := d.cs.CodeBytes("decode_bytes"); err != nil {
		return nil, err
	}
	b, err := d.readLenPrefixed("decode_bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// DecodeBytesInto decodes a length-prefixed opaque byte string into dst,
// reusing its backing array when there is room.
func (d *Decoder) DecodeBytesInto(dst []byte) ([]byte, error) {
	if err := d.cs.CodeBytes("decode_bytes_into"); err != nil {
		return dst, err
	}
	b, err := d.readLenPrefixed("decode_bytes_into")
	if err != nil {
		return dst, err
	}
	dst = append(dst[:0], b...)
	return dst, nil
}

func (d *Decoder) readLenPrefixed(op string) ([]byte, error) {
	n, nn, err := varint.DecodeUvarint(d.buf[d.pos:])
	if err != nil {
		return nil, d.cs.fail(op, "", err)
	}
	d.pos += nn
	if n > uint64(len(d.buf)-d.pos) {
		return nil, d.cs.fail(op, "", ErrUnexpectedEOF)
	}
	return d.need(op, int(n))
}

// DecodeUnit decodes the zero-byte Unit value.
func (d *Decoder) DecodeUnit() error {
	return d.cs.CodeUnit("decode_unit")
}

// PeekOption reports whether the next Option value is present, without
// consuming it or requiring the caller to commit to a branch first.
func (d *Decoder) PeekOption() (present bool, err error) {
	if d.pos >= len(d.buf) {
		return false, d.cs.fail("peek_option", "", ErrUnexpectedEOF)
	}
	return d.buf[d.pos] != 0, nil
}

// DecodeNone consumes the absent-case tag of an Option.
func (d *Decoder) DecodeNone() error {
	if err := d.cs.SetOptionNone("decode_none"); err != nil {
		return err
	}
	_, err := d.need("decode_none", 1)
	return err
}

// BeginSome consumes the present-case tag of an Option and opens its inner
// value for decoding.
func (d *Decoder) BeginSome() error {
	if err := d.cs.BeginOptionSome("begin_some"); err != nil {
		return err
	}
	_, err := d.need("begin_some", 1)
	return err
}

func (d *Decoder) BeginFixedLenSeq(n int) error {
	return d.cs.BeginFixedLenSeq("begin_fixed_len_seq", n)
}

func (d *Decoder) BeginVarLenSeq() error {
	return d.cs.BeginVarLenSeq("begin_var_len_seq")
}

// DecodeVarLenSeqLen reads the element count of a variable-length Seq and
// feeds it back into the coder state.
func (d *Decoder) DecodeVarLenSeqLen() (int, error) {
	n, nn, err := varint.DecodeUvarint(d.buf[d.pos:])
	if err != nil {
		return 0, d.cs.fail("set_var_len_seq_len", "", err)
	}
	if int(n) < 0 {
		return 0, d.cs.fail("set_var_len_seq_len", "", ErrValueTooLarge)
	}
	if err := d.cs.SetVarLenSeqLen("set_var_len_seq_len", int(n)); err != nil {
		return 0, err
	}
	d.pos += nn
	return int(n), nil
}

func (d *Decoder) BeginSeqElem() error { return d.cs.BeginSeqElem("begin_seq_elem") }

// FinishSeq closes the current Seq. Every declared element must already
// have been decoded.
func (d *Decoder) FinishSeq() error { return d.cs.FinishSeq("finish_seq") }

func (d *Decoder) BeginTuple() error     { return d.cs.BeginTuple("begin_tuple") }
func (d *Decoder) BeginTupleElem() error { return d.cs.BeginTupleElem("begin_tuple_elem") }

// FinishTuple closes the current Tuple. Every element must already have
// been decoded.
func (d *Decoder) FinishTuple() error { return d.cs.FinishTuple("finish_tuple") }

func (d *Decoder) BeginStruct() error { return d.cs.BeginStruct("begin_struct") }
func (d *Decoder) BeginStructField(name string) error {
	return d.cs.BeginStructField("begin_struct_field", name)
}

// FinishStruct closes the current Struct. Every field must already have
// been decoded.
func (d *Decoder) FinishStruct() error { return d.cs.FinishStruct("finish_struct") }

func (d *Decoder) BeginEnum() (int, error) { return d.cs.BeginEnum("begin_enum") }

// DecodeEnumOrdinal reads the ordinal tag for a variantCount-way enum
// without yet validating which variant name it corresponds to; callers
// look up the name from their own schema and pass both to BeginEnumVariant.
func (d *Decoder) DecodeEnumOrdinal(variantCount int) (int, error) {
	ord, n, err := varint.DecodeOrdinal(d.buf[d.pos:], variantCount)
	if err != nil {
		return 0, d.cs.fail("begin_enum_variant", "", err)
	}
	d.pos += n
	return ord, nil
}

func (d *Decoder) BeginEnumVariant(ord int, name string) error {
	return d.cs.BeginEnumVariant("begin_enum_variant", ord, name)
}

// CancelEnum undoes the most recent successful BeginEnumVariant call,
// restoring the enum frame so a variant can be chosen again. The input
// position is not moved back.
func (d *Decoder) CancelEnum() error { return d.cs.CancelEnum("cancel_enum") }

// MarkBroken poisons the decoder following a failure outside the schema
// check itself, reported by the caller.
func (d *Decoder) MarkBroken(cause error) error { return d.cs.MarkBroken("decoder_io", cause) }
