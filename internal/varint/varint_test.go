package varint

import (
	"math"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{
		0, 1, 127, 128, 300,
		1<<7 - 1, 1 << 7, 1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 21,
		1<<28 - 1, 1 << 28, 1<<35 - 1, 1 << 35, 1<<42 - 1, 1 << 42,
		1<<49 - 1, 1 << 49, 1<<56 - 1, 1 << 56, 1<<63 - 1, 1 << 63,
		^uint64(0),
	}
	for _, v := range cases {
		buf := AppendUvarint(nil, v)
		if len(buf) != UvarintSize(v) {
			t.Fatalf("UvarintSize(%d) = %d, encoded %d bytes", v, UvarintSize(v), len(buf))
		}
		got, n, err := DecodeUvarint(buf)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if n != len(buf) || got != v {
			t.Fatalf("round trip %d: got %d (n=%d), want %d (n=%d)", v, got, n, v, len(buf))
		}
	}
}

func TestSvarintRoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 2, 1000, -1000, math.MinInt64, math.MaxInt64}
	for _, v := range cases {
		buf := AppendSvarint(nil, v)
		if len(buf) != SvarintSize(v) {
			t.Fatalf("SvarintSize(%d) = %d, encoded %d bytes", v, SvarintSize(v), len(buf))
		}
		got, n, err := DecodeSvarint(buf)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if n != len(buf) || got != v {
			t.Fatalf("round trip %d: got %d, want %d", v, got, v)
		}
	}
}

func TestSvarintSmallMagnitudeIsShort(t *testing.T) {
	for _, v := range []int64{0, -1, 1, -2, 2, 63, -64} {
		if n := SvarintSize(v); n != 1 {
			t.Errorf("SvarintSize(%d) = %d, want 1", v, n)
		}
	}
}

func TestDecodeUvarintTruncated(t *testing.T) {
	if _, _, err := DecodeUvarint(nil); err != ErrTruncated {
		t.Fatalf("empty input: got %v, want ErrTruncated", err)
	}
	if _, _, err := DecodeUvarint([]byte{0x80}); err != ErrTruncated {
		t.Fatalf("dangling continuation byte: got %v, want ErrTruncated", err)
	}
}

func TestDecodeUvarintOverflow(t *testing.T) {
	// 10 bytes, all continuation except the last, whose payload bit 1 is set,
	// which would require bit 64 of the result: overflow.
	data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}
	if _, _, err := DecodeUvarint(data); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestDecodeUvarintTooLong(t *testing.T) {
	data := make([]byte, 11)
	for i := range data {
		data[i] = 0xff
	}
	data[10] = 0x00
	if _, _, err := DecodeUvarint(data); err != ErrTooLong {
		t.Fatalf("got %v, want ErrTooLong", err)
	}
}

func TestFitsWidth(t *testing.T) {
	if !UintFitsWidth(255, 8) || UintFitsWidth(256, 8) {
		t.Fatal("UintFitsWidth(8) boundary wrong")
	}
	if !IntFitsWidth(127, 8) || IntFitsWidth(128, 8) {
		t.Fatal("IntFitsWidth(8) positive boundary wrong")
	}
	if !IntFitsWidth(-128, 8) || IntFitsWidth(-129, 8) {
		t.Fatal("IntFitsWidth(8) negative boundary wrong")
	}
}
