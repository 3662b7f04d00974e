package poolmath

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Tick bounds of the pool price ladder (base 1.0001).
const (
	MinTick = -887272
	MaxTick = 887272
)

var (
	two96  = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	two128 = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 128))
)

// PriceToTick converts a decimal price (quote per base) to the nearest tick,
// clamped to [MinTick, MaxTick].
func PriceToTick(price float64, quoteDecimals, baseDecimals int) int {
	scaled := price * math.Pow(10, float64(quoteDecimals-baseDecimals))
	tick := int(math.Round(math.Log(scaled) / math.Log(1.0001)))
	if tick < MinTick {
		return MinTick
	}
	if tick > MaxTick {
		return MaxTick
	}
	return tick
}

// TickToPrice is the inverse of PriceToTick.
func TickToPrice(tick, quoteDecimals, baseDecimals int) float64 {
	return math.Pow(1.0001, float64(tick)) * math.Pow(10, float64(baseDecimals-quoteDecimals))
}

// ParseHexAmount parses a 0x-prefixed hex quantity into a big integer.
// Leading zero nibbles are accepted (the node pads to even length).
func ParseHexAmount(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return nil, fmt.Errorf("hex amount %q: missing 0x prefix", s)
	}
	digits := trimmed[2:]
	if digits == "" {
		return nil, fmt.Errorf("hex amount %q: empty digits", s)
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("hex amount %q: invalid hex", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("hex amount %q: negative", s)
	}
	return v, nil
}

// FormatHexAmount renders a big integer as a 0x-prefixed, even-length hex
// string, padding a leading zero nibble when the natural representation has
// odd length.
func FormatHexAmount(x *big.Int) string {
	h := x.Text(16)
	if len(h)%2 != 0 {
		h = "0" + h
	}
	return "0x" + h
}

// HexQuantityToQuantity descales a hex-encoded integer asset quantity to a
// human-readable amount. The integer part is parsed exactly before scaling, so
// magnitudes beyond float64 integer precision do not truncate.
func HexQuantityToQuantity(hex string, decimals int) (float64, error) {
	v, err := ParseHexAmount(hex)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).InexactFloat64(), nil
}

// SqrtPriceToPrice decodes the pool's sqrt(price)*2^96 encoding into a
// decimal price.
func SqrtPriceToPrice(hex string, quoteDecimals, baseDecimals int) (float64, error) {
	v, err := ParseHexAmount(hex)
	if err != nil {
		return 0, err
	}
	ratio, _ := new(big.Float).Quo(new(big.Float).SetInt(v), two96).Float64()
	return ratio * ratio * math.Pow(10, float64(baseDecimals-quoteDecimals)), nil
}

// PriceToSqrtPrice is the inverse encoding of SqrtPriceToPrice.
func PriceToSqrtPrice(price float64, quoteDecimals, baseDecimals int) (string, error) {
	if !(price > 0) {
		return "", fmt.Errorf("sqrt price encode: price %v must be > 0", price)
	}
	root := math.Sqrt(price / math.Pow(10, float64(baseDecimals-quoteDecimals)))
	v, _ := new(big.Float).Mul(big.NewFloat(root), two96).Int(nil)
	return FormatHexAmount(v), nil
}

// PriceToHexPrice encodes a decimal price as the pool's price*2^128 fixed
// point, adjusted for the assets' decimal counts.
func PriceToHexPrice(price float64, quoteDecimals, baseDecimals int) (string, error) {
	if !(price > 0) {
		return "", fmt.Errorf("hex price encode: price %v must be > 0", price)
	}
	shifted, _ := new(big.Float).Mul(big.NewFloat(price), two128).Int(nil)
	shifted.Mul(shifted, pow10(quoteDecimals))
	shifted.Quo(shifted, pow10(baseDecimals))
	return FormatHexAmount(shifted), nil
}

// HexPriceToPrice decodes the price*2^128 fixed point back to a decimal price.
func HexPriceToPrice(hex string, quoteDecimals, baseDecimals int) (float64, error) {
	v, err := ParseHexAmount(hex)
	if err != nil {
		return 0, err
	}
	ratio, _ := new(big.Float).Quo(new(big.Float).SetInt(v), two128).Float64()
	return ratio * math.Pow(10, float64(baseDecimals-quoteDecimals)), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
