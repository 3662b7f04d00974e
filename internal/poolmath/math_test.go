package poolmath

import (
	"math"
	"math/big"
	"testing"
)

func TestPriceToTick_RoundTripEqualDecimals(t *testing.T) {
	// Extreme ticks lose a few ulps through 1.0001^tick, so the exact
	// round-trip is checked over the range that matters for stable pairs and
	// the boundary behaviour is checked separately via clamping tests.
	for _, tick := range []int{-100000, -5000, -1, 0, 1, 30, 5000, 100000} {
		price := TickToPrice(tick, 6, 6)
		got := PriceToTick(price, 6, 6)
		if got != tick {
			t.Fatalf("round trip tick %d: got %d (price=%v)", tick, got, price)
		}
	}
}

func TestPriceToTick_Clamps(t *testing.T) {
	if got := PriceToTick(1e300, 6, 6); got != MaxTick {
		t.Fatalf("huge price: got %d want %d", got, MaxTick)
	}
	if got := PriceToTick(1e-300, 6, 6); got != MinTick {
		t.Fatalf("tiny price: got %d want %d", got, MinTick)
	}
}

func TestPriceToTick_DecimalShift(t *testing.T) {
	// With unequal decimals the price is scaled by 10^(quote-base) before the
	// log; 1 quote/base at (8, 6) decimals sits 100x above tick zero.
	lo := PriceToTick(1, 6, 6)
	hi := PriceToTick(100, 6, 8)
	if lo != 0 {
		t.Fatalf("tick(1, 6, 6): got %d want 0", lo)
	}
	if hi != 0 {
		t.Fatalf("tick(100, 6, 8): got %d want 0", hi)
	}
}

func TestHexQuantityToQuantity(t *testing.T) {
	got, err := HexQuantityToQuantity("0x0", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("0x0: got %v want 0", got)
	}

	got, err = HexQuantityToQuantity("0xf4240", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("0xf4240: got %v want 1", got)
	}
}

func TestHexQuantityToQuantity_LargeMagnitude(t *testing.T) {
	// 10^24 base units: the integer exceeds float64's 2^53 exact range, so a
	// naive float parse of the hex would drift before descaling.
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
	got, err := HexQuantityToQuantity(FormatHexAmount(v), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1e18 {
		t.Fatalf("got %v want 1e18", got)
	}
}

func TestHexQuantityToQuantity_Rejects(t *testing.T) {
	for _, bad := range []string{"", "f4240", "0x", "0xzz"} {
		if _, err := HexQuantityToQuantity(bad, 6); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSqrtPriceToPrice(t *testing.T) {
	// sqrt(1) * 2^96 encodes price 1 at equal decimals.
	one := FormatHexAmount(new(big.Int).Lsh(big.NewInt(1), 96))
	got, err := SqrtPriceToPrice(one, 6, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("got %v want 1", got)
	}
}

func TestSqrtPriceRoundTrip(t *testing.T) {
	for _, price := range []float64{0.5, 0.999, 1, 1.001, 2, 1500} {
		hex, err := PriceToSqrtPrice(price, 6, 6)
		if err != nil {
			t.Fatalf("encode %v: %v", price, err)
		}
		got, err := SqrtPriceToPrice(hex, 6, 6)
		if err != nil {
			t.Fatalf("decode %v: %v", price, err)
		}
		if math.Abs(got-price)/price > 1e-9 {
			t.Fatalf("round trip %v: got %v", price, got)
		}
	}
}

func TestHexPriceRoundTrip(t *testing.T) {
	hex, err := PriceToHexPrice(1.0005, 6, 6)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := HexPriceToPrice(hex, 6, 6)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(got-1.0005) > 1e-9 {
		t.Fatalf("got %v want 1.0005", got)
	}
}

func TestFormatHexAmount_EvenLength(t *testing.T) {
	cases := map[int64]string{
		0:    "0x00",
		1:    "0x01",
		15:   "0x0f",
		16:   "0x10",
		255:  "0xff",
		4096: "0x1000",
	}
	for in, want := range cases {
		if got := FormatHexAmount(big.NewInt(in)); got != want {
			t.Fatalf("%d: got %s want %s", in, got, want)
		}
	}
}

func TestParseHexAmount_AcceptsLeadingZeroes(t *testing.T) {
	v, err := ParseHexAmount("0x0f4240")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Int64() != 1_000_000 {
		t.Fatalf("got %v want 1000000", v)
	}
}
