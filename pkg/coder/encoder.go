package coder

import (
	"math/big"
	"sync"

	"github.com/blockberries/binschema/internal/varint"
	"github.com/blockberries/binschema/pkg/schema"
)

// Encoder pairs a CoderState with a growable output buffer. Coding calls
// are validated against the schema first; only on success are bytes
// appended, so a rejected call never corrupts the buffer, mirroring the
// teacher's sticky-error, append-only Writer.
type Encoder struct {
	cs  *CoderState
	buf []byte
}

// encoderPool recycles Encoders the way the teacher's writerPool recycles
// Writers, avoiding a fresh buffer allocation per encode call.
var encoderPool = sync.Pool{
	New: func() any { return &Encoder{buf: make([]byte, 0, 256)} },
}

// NewEncoder creates an Encoder that validates against root, optionally
// reusing a recycled CoderStateAlloc.
func NewEncoder(root *schema.Schema, alloc *CoderStateAlloc) *Encoder {
	return &Encoder{cs: New(root, alloc), buf: make([]byte, 0, 256)}
}

// GetEncoder retrieves a pooled Encoder bound to root. Call PutEncoder when
// done to return its buffer to the pool.
func GetEncoder(root *schema.Schema, alloc *CoderStateAlloc) *Encoder {
	e := encoderPool.Get().(*Encoder)
	e.buf = e.buf[:0]
	e.cs = New(root, alloc)
	return e
}

// PutEncoder returns e's buffer to the pool. e must not be used afterward.
func PutEncoder(e *Encoder) {
	if e == nil {
		return
	}
	if cap(e.buf) > 64*1024 {
		return
	}
	e.cs = nil
	encoderPool.Put(e)
}

// State returns the underlying CoderState, for callers that need to check
// IsFinished or Err directly.
func (e *Encoder) State() *CoderState { return e.cs }

// Bytes returns the bytes written so far.
func (e *Encoder) Bytes() []byte { return e.buf }

// Err returns the sticky error that broke the encoder, if any.
func (e *Encoder) Err() error { return e.cs.Err() }

func (e *Encoder) scalar(op string, t schema.ScalarType, write func()) error {
	if err := e.cs.CodeScalar(op, t); err != nil {
		return err
	}
	write()
	return nil
}

func (e *Encoder) EncodeU8(v uint8) error {
	return e.scalar("encode_u8", schema.U8, func() { e.buf = append(e.buf, v) })
}

func (e *Encoder) EncodeI8(v int8) error {
	return e.scalar("encode_i8", schema.I8, func() { e.buf = append(e.buf, byte(v)) })
}

func (e *Encoder) EncodeBool(v bool) error {
	return e.scalar("encode_bool", schema.Bool, func() {
		if v {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
	})
}

func (e *Encoder) EncodeU16(v uint16) error {
	return e.scalar("encode_u16", schema.U16, func() {
		var tmp [2]byte
		varint.PutUint16(tmp[:], v)
		e.buf = append(e.buf, tmp[:]...)
	})
}

func (e *Encoder) EncodeI16(v int16) error {
	return e.scalar("encode_i16", schema.I16, func() {
		var tmp [2]byte
		varint.PutUint16(tmp[:], uint16(v))
		e.buf = append(e.buf, tmp[:]...)
	})
}

func (e *Encoder) EncodeU32(v uint32) error {
	return e.scalar("encode_u32", schema.U32, func() { e.buf = varint.AppendUvarint(e.buf, uint64(v)) })
}

func (e *Encoder) EncodeI32(v int32) error {
	return e.scalar("encode_i32", schema.I32, func() { e.buf = varint.AppendSvarint(e.buf, int64(v)) })
}

func (e *Encoder) EncodeU64(v uint64) error {
	return e.scalar("encode_u64", schema.U64, func() { e.buf = varint.AppendUvarint(e.buf, v) })
}

func (e *Encoder) EncodeI64(v int64) error {
	return e.scalar("encode_i64", schema.I64, func() { e.buf = varint.AppendSvarint(e.buf, v) })
}

func (e *Encoder) EncodeU128(v *big.Int) error {
	return e.scalar("encode_u128", schema.U128, func() { e.buf = varint.AppendUvarintBig(e.buf, v) })
}

func (e *Encoder) EncodeI128(v *big.Int) error {
	return e.scalar("encode_i128", schema.I128, func() { e.buf = varint.AppendSvarintBig(e.buf, v) })
}

func (e *Encoder) EncodeF32(v float32) error {
	return e.scalar("encode_f32", schema.F32, func() {
		var tmp [4]byte
		varint.PutFloat32(tmp[:], v)
		e.buf = append(e.buf, tmp[:]...)
	})
}

func (e *Encoder) EncodeF64(v float64) error {
	return e.scalar("encode_f64", schema.F64, func() {
		var tmp [8]byte
		varint.PutFloat64(tmp[:], v)
		e.buf = append(e.buf, tmp[:]...)
	})
}

func (e *Encoder) EncodeChar(v rune) error {
	return e.scalar("encode_char", schema.Char, func() {
		var tmp [4]byte
		varint.PutUint32(tmp[:], uint32(v))
		e.buf = append(e.buf, tmp[:]...)
	})
}

// EncodeStr encodes a UTF-8 string as a varint byte length followed by its
// raw bytes.
func (e *Encoder) EncodeStr(v string) error {
	if err := e.cs.CodeStr("encode_str"); err != nil {
		return err
	}
	e.buf = varint.AppendUvarint(e.buf, uint64(len(v)))
	e.buf = append(e.buf, v...)
	return nil
}

// EncodeBytes encodes an opaque byte string as a varint byte length
// followed by its raw bytes.
func (e *Encoder) EncodeBytes(v []byte) error {
	if err := e.cs.CodeBytes("encode_bytes"); err != nil {
		return err
	}
	e.buf = varint.AppendUvarint(e.buf, uint64(len(v)))
	e.buf = append(e.buf, v...)
	return nil
}

// EncodeUnit encodes the zero-byte Unit value.
func (e *Encoder) EncodeUnit() error {
	return e.cs.CodeUnit("encode_unit")
}

// EncodeNone encodes the absent case of an Option as a single zero byte.
func (e *Encoder) EncodeNone() error {
	if err := e.cs.SetOptionNone("encode_none"); err != nil {
		return err
	}
	e.buf = append(e.buf, 0)
	return nil
}

// BeginSome writes the Option present tag and opens the wrapped inner
// value for encoding. No corresponding FinishSome call exists: completing
// the inner value auto-finishes the option.
func (e *Encoder) BeginSome() error {
	if err := e.cs.BeginOptionSome("begin_some"); err != nil {
		return err
	}
	e.buf = append(e.buf, 1)
	return nil
}

// BeginFixedLenSeq opens a fixed-length sequence of n elements. No length
// prefix is written: n is already fixed by the schema.
func (e *Encoder) BeginFixedLenSeq(n int) error {
	return e.cs.BeginFixedLenSeq("begin_fixed_len_seq", n)
}

// BeginVarLenSeq opens a variable-length sequence. SetVarLenSeqLen must be
// called next with the element count, which is written as a varint.
func (e *Encoder) BeginVarLenSeq() error {
	return e.cs.BeginVarLenSeq("begin_var_len_seq")
}

func (e *Encoder) SetVarLenSeqLen(n int) error {
	if err := e.cs.SetVarLenSeqLen("set_var_len_seq_len", n); err != nil {
		return err
	}
	e.buf = varint.AppendUvarint(e.buf, uint64(n))
	return nil
}

func (e *Encoder) BeginSeqElem() error {
	return e.cs.BeginSeqElem("begin_seq_elem")
}

// FinishSeq closes the current Seq. Every declared element must already
// have been encoded; calling this early fails with an API usage error
// rather than silently truncating the sequence.
func (e *Encoder) FinishSeq() error { return e.cs.FinishSeq("finish_seq") }

func (e *Encoder) BeginTuple() error     { return e.cs.BeginTuple("begin_tuple") }
func (e *Encoder) BeginTupleElem() error { return e.cs.BeginTupleElem("begin_tuple_elem") }

// FinishTuple closes the current Tuple. Every element must already have
// been encoded.
func (e *Encoder) FinishTuple() error { return e.cs.FinishTuple("finish_tuple") }

func (e *Encoder) BeginStruct() error { return e.cs.BeginStruct("begin_struct") }
func (e *Encoder) BeginStructField(name string) error {
	return e.cs.BeginStructField("begin_struct_field", name)
}

// FinishStruct closes the current Struct. Every field must already have
// been encoded.
func (e *Encoder) FinishStruct() error { return e.cs.FinishStruct("finish_struct") }

// BeginEnum opens an enum for variant selection, returning the number of
// declared variants.
func (e *Encoder) BeginEnum() (int, error) { return e.cs.BeginEnum("begin_enum") }

// BeginEnumVariant selects variant ord (whose schema name must equal name)
// and writes its ordinal tag using the minimal fixed width the variant
// count requires. On a mismatch, no bytes are written and the frame stack
// is left as BeginEnum left it, but the CoderState is broken.
func (e *Encoder) BeginEnumVariant(ord int, name string, variantCount int) error {
	if err := e.cs.BeginEnumVariant("begin_enum_variant", ord, name); err != nil {
		return err
	}
	e.buf = varint.AppendOrdinal(e.buf, ord, variantCount)
	return nil
}

// CancelEnum undoes the most recent BeginEnumVariant call. It has no use
// against this in-memory buffer, which never fails to append, but is
// exposed for callers layering their own io.Writer on top of Encoder where
// flushing the ordinal tag can fail after the schema check already passed.
func (e *Encoder) CancelEnum() error { return e.cs.CancelEnum("cancel_enum") }

// MarkBroken poisons the encoder following a failure outside the schema
// check itself, such as an io.Writer wrapping this Encoder's output
// failing to flush.
func (e *Encoder) MarkBroken(cause error) error { return e.cs.MarkBroken("encoder_io", cause) }
