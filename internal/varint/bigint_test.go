package varint

import (
	"math/big"
	"testing"
)

func TestUvarintBigRoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0), big.NewInt(1), big.NewInt(127), big.NewInt(128),
		new(big.Int).Lsh(big.NewInt(1), 127),
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
	}
	for _, v := range cases {
		buf := AppendUvarintBig(nil, v)
		if len(buf) != UvarintSizeBig(v) {
			t.Fatalf("UvarintSizeBig(%v) = %d, encoded %d bytes", v, UvarintSizeBig(v), len(buf))
		}
		got, n, err := DecodeUvarintBig(buf, MaxLen128)
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if n != len(buf) || got.Cmp(v) != 0 {
			t.Fatalf("round trip %v: got %v (n=%d)", v, got, n)
		}
	}
}

func TestSvarintBigRoundTrip(t *testing.T) {
	maxU128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	cases := []*big.Int{
		big.NewInt(0), big.NewInt(-1), big.NewInt(1), big.NewInt(-2), big.NewInt(2),
		new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)),
		maxU128,
		new(big.Int).Neg(maxU128),
	}
	for _, v := range cases {
		buf := AppendSvarintBig(nil, v)
		if len(buf) != SvarintSizeBig(v) {
			t.Fatalf("SvarintSizeBig(%v) = %d, encoded %d bytes", v, SvarintSizeBig(v), len(buf))
		}
		got, n, err := DecodeSvarintBig(buf, MaxLen128+1)
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if n != len(buf) || got.Cmp(v) != 0 {
			t.Fatalf("round trip %v: got %v", v, got)
		}
	}
}

func TestZigZagBigSmallMagnitudeIsShort(t *testing.T) {
	for _, v := range []int64{0, -1, 1, -2, 2, 63, -64} {
		if n := SvarintSizeBig(big.NewInt(v)); n != 1 {
			t.Errorf("SvarintSizeBig(%d) = %d, want 1", v, n)
		}
	}
}

func TestFits128Unsigned(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	over := new(big.Int).Lsh(big.NewInt(1), 128)
	if !Fits128Unsigned(max) {
		t.Fatal("2^128-1 should fit in u128")
	}
	if Fits128Unsigned(over) {
		t.Fatal("2^128 should not fit in u128")
	}
	if Fits128Unsigned(big.NewInt(-1)) {
		t.Fatal("negative value should not fit in u128")
	}
}

func TestFits128Signed(t *testing.T) {
	minI128 := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	belowMin := new(big.Int).Sub(minI128, big.NewInt(1))
	maxI128 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	aboveMax := new(big.Int).Add(maxI128, big.NewInt(1))

	if !Fits128Signed(minI128) {
		t.Fatal("-2^127 should fit in i128")
	}
	if Fits128Signed(belowMin) {
		t.Fatal("-2^127-1 should not fit in i128")
	}
	if !Fits128Signed(maxI128) {
		t.Fatal("2^127-1 should fit in i128")
	}
	if Fits128Signed(aboveMax) {
		t.Fatal("2^127 should not fit in i128")
	}
}

func TestDecodeUvarintBigTooLong(t *testing.T) {
	data := make([]byte, MaxLen128+1)
	for i := range data {
		data[i] = 0xff
	}
	data[len(data)-1] = 0x00
	if _, _, err := DecodeUvarintBig(data, MaxLen128); err != ErrTooLong {
		t.Fatalf("got %v, want ErrTooLong", err)
	}
}
