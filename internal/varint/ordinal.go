package varint

import "errors"

// ErrOrdinalRange indicates an ordinal value is not in [0, n).
var ErrOrdinalRange = errors.New("binschema: ordinal out of range")

// OrdinalSize returns the number of bytes needed to encode a value known to
// lie in [0, n): zero bytes if n <= 1 (nothing to distinguish), otherwise
// ceil(log256(n)) bytes. This is used to compress enum variant tags for
// small enums: a 2-variant enum costs one byte, a 1-variant enum costs zero.
func OrdinalSize(n int) int {
	if n <= 1 {
		return 0
	}
	max := uint64(n - 1)
	size := 1
	for max >= 0x100 {
		max >>= 8
		size++
	}
	return size
}

// AppendOrdinal appends ord, known to lie in [0, n), to buf using exactly
// OrdinalSize(n) little-endian bytes.
func AppendOrdinal(buf []byte, ord, n int) []byte {
	size := OrdinalSize(n)
	v := uint64(ord)
	for i := 0; i < size; i++ {
		buf = append(buf, byte(v))
		v >>= 8
	}
	return buf
}

// DecodeOrdinal decodes an ordinal known to lie in [0, n) from data, using
// exactly OrdinalSize(n) bytes. It returns the ordinal, bytes consumed, and
// an error if data is truncated or the decoded value is >= n.
func DecodeOrdinal(data []byte, n int) (int, int, error) {
	size := OrdinalSize(n)
	if size == 0 {
		return 0, 0, nil
	}
	if len(data) < size {
		return 0, 0, ErrTruncated
	}
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	if v >= uint64(n) {
		return 0, size, ErrOrdinalRange
	}
	return int(v), size, nil
}
