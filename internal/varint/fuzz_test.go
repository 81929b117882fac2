//go:build go1.18

package varint

import (
	"math"
	"testing"
)

// FuzzDecodeUvarint tests that DecodeUvarint never panics on arbitrary input.
func FuzzDecodeUvarint(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte{0x7f})
	f.Add([]byte{0x80, 0x01})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	f.Add([]byte{0x80}) // truncated

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _, _ = DecodeUvarint(data)
	})
}

// FuzzDecodeSvarint tests that DecodeSvarint never panics on arbitrary input.
func FuzzDecodeSvarint(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x01})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _, _ = DecodeSvarint(data)
	})
}

// FuzzUvarintRoundTrip tests that every uint64 round-trips through
// AppendUvarint/DecodeUvarint.
func FuzzUvarintRoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(1<<7 - 1))
	f.Add(uint64(1 << 7))
	f.Add(uint64(1<<14 - 1))
	f.Add(uint64(1 << 14))
	f.Add(uint64(math.MaxUint64))

	f.Fuzz(func(t *testing.T, v uint64) {
		buf := AppendUvarint(nil, v)
		if len(buf) != UvarintSize(v) {
			t.Fatalf("UvarintSize(%d) = %d, encoded length %d", v, UvarintSize(v), len(buf))
		}
		got, n, err := DecodeUvarint(buf)
		if err != nil {
			t.Fatalf("DecodeUvarint: %v", err)
		}
		if n != len(buf) || got != v {
			t.Fatalf("round-trip mismatch: got (%d, %d), want (%d, %d)", got, n, v, len(buf))
		}
	})
}

// FuzzSvarintRoundTrip tests that every int64 round-trips through
// AppendSvarint/DecodeSvarint.
func FuzzSvarintRoundTrip(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-1))
	f.Add(int64(1))
	f.Add(int64(math.MaxInt64))
	f.Add(int64(math.MinInt64))

	f.Fuzz(func(t *testing.T, v int64) {
		buf := AppendSvarint(nil, v)
		if len(buf) != SvarintSize(v) {
			t.Fatalf("SvarintSize(%d) = %d, encoded length %d", v, SvarintSize(v), len(buf))
		}
		got, n, err := DecodeSvarint(buf)
		if err != nil {
			t.Fatalf("DecodeSvarint: %v", err)
		}
		if n != len(buf) || got != v {
			t.Fatalf("round-trip mismatch: got (%d, %d), want (%d, %d)", got, n, v, len(buf))
		}
	})
}

// FuzzOrdinalRoundTrip tests that every ordinal in [0, n) round-trips through
// AppendOrdinal/DecodeOrdinal for a range of small variant counts.
func FuzzOrdinalRoundTrip(f *testing.F) {
	f.Add(0, 1)
	f.Add(1, 2)
	f.Add(255, 256)
	f.Add(256, 257)

	f.Fuzz(func(t *testing.T, ord, n int) {
		if n <= 0 || n > 1<<20 {
			return
		}
		if ord < 0 || ord >= n {
			return
		}
		buf := AppendOrdinal(nil, ord, n)
		if len(buf) != OrdinalSize(n) {
			t.Fatalf("OrdinalSize(%d) = %d, encoded length %d", n, OrdinalSize(n), len(buf))
		}
		got, consumed, err := DecodeOrdinal(buf, n)
		if err != nil {
			t.Fatalf("DecodeOrdinal: %v", err)
		}
		if consumed != len(buf) || got != ord {
			t.Fatalf("round-trip mismatch: got (%d, %d), want (%d, %d)", got, consumed, ord, len(buf))
		}
	})
}

// FuzzFloatRoundTrip tests fixed-width float encoding round-trips bit
// patterns exactly, including NaN and signed zero.
func FuzzFloatRoundTrip(f *testing.F) {
	f.Add(float32(0), float64(0))
	f.Add(float32(1.5), float64(1.5))
	f.Add(float32(-1.5), float64(-1.5))
	f.Add(float32(math.MaxFloat32), float64(math.MaxFloat64))
	f.Add(float32(math.NaN()), float64(math.NaN()))

	f.Fuzz(func(t *testing.T, f32 float32, f64 float64) {
		var b4 [4]byte
		PutFloat32(b4[:], f32)
		got32 := Float32(b4[:])
		if math.Float32bits(got32) != math.Float32bits(f32) {
			t.Fatalf("float32 bit pattern mismatch: got %v, want %v", got32, f32)
		}

		var b8 [8]byte
		PutFloat64(b8[:], f64)
		got64 := Float64(b8[:])
		if math.Float64bits(got64) != math.Float64bits(f64) {
			t.Fatalf("float64 bit pattern mismatch: got %v, want %v", got64, f64)
		}
	})
}
