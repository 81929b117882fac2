package varint

import (
	"encoding/binary"
	"math"
)

// PutUint16 writes v to buf[0:2] in little-endian order.
func PutUint16(buf []byte, v uint16) {
	binary.LittleEndian.PutUint16(buf, v)
}

// Uint16 reads a little-endian uint16 from buf[0:2].
func Uint16(buf []byte) uint16 {
	return binary.LittleEndian.Uint16(buf)
}

// PutUint32 writes v to buf[0:4] in little-endian order.
func PutUint32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// Uint32 reads a little-endian uint32 from buf[0:4].
func Uint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// PutFloat32 writes the raw little-endian bit pattern of v to buf[0:4].
// No canonicalization is performed: NaN payloads and the sign of zero are
// preserved exactly as given, so that decoding reproduces the same bits.
func PutFloat32(buf []byte, v float32) {
	PutUint32(buf, math.Float32bits(v))
}

// Float32 reads a little-endian float32 from buf[0:4].
func Float32(buf []byte) float32 {
	return math.Float32frombits(Uint32(buf))
}

// PutFloat64 writes the raw little-endian bit pattern of v to buf[0:8].
func PutFloat64(buf []byte, v float64) {
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
}

// Float64 reads a little-endian float64 from buf[0:8].
func Float64(buf []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf))
}
