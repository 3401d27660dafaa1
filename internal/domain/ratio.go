package domain

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// Ratio is an exact non-negative rational number Num/Den.
// The zero value is 0/1 once normalized; Den == 0 is treated as 1.
type Ratio struct {
	Num int64
	Den int64
}

// IntRatio returns the ratio n/1
func IntRatio(n int64) Ratio {
	return Ratio{Num: n, Den: 1}
}

// NewRatio returns num/den in lowest terms
func NewRatio(num, den int64) (Ratio, error) {
	if den <= 0 {
		return Ratio{}, fmt.Errorf("ratio denominator must be positive, got %d", den)
	}
	if num < 0 {
		return Ratio{}, fmt.Errorf("ratio must not be negative, got %d/%d", num, den)
	}
	return fromRat(new(big.Rat).SetFrac64(num, den))
}

// ParseRatio parses "20", "3/2" or "1.5" into an exact ratio
func ParseRatio(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ratio{}, fmt.Errorf("empty ratio")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Ratio{}, fmt.Errorf("invalid ratio %q", s)
	}
	if r.Sign() < 0 {
		return Ratio{}, fmt.Errorf("ratio must not be negative, got %s", s)
	}
	return fromRat(r)
}

func fromRat(r *big.Rat) (Ratio, error) {
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return Ratio{}, fmt.Errorf("ratio %s out of range", r.RatString())
	}
	return Ratio{Num: r.Num().Int64(), Den: r.Denom().Int64()}, nil
}

func (r Ratio) den() int64 {
	if r.Den == 0 {
		return 1
	}
	return r.Den
}

// IsPositive reports whether the ratio is strictly greater than zero
func (r Ratio) IsPositive() bool {
	return r.Num > 0 && r.den() > 0
}

// String renders the ratio as "n" or "n/d"
func (r Ratio) String() string {
	if r.den() == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.den())
}

// FloorMul returns floor(r * n) for n >= 0
func (r Ratio) FloorMul(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("cannot scale negative count %d", n)
	}
	p := new(big.Int).Mul(big.NewInt(r.Num), big.NewInt(int64(n)))
	p.Quo(p, big.NewInt(r.den()))
	return toInt(p)
}

// FloorDivOnePlus returns floor(n / (1 + r)) for n >= 0
func (r Ratio) FloorDivOnePlus(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("cannot split negative count %d", n)
	}
	d := r.den()
	// n / (1 + num/den) == n*den / (den + num)
	p := new(big.Int).Mul(big.NewInt(int64(n)), big.NewInt(d))
	q := new(big.Int).Add(big.NewInt(d), big.NewInt(r.Num))
	p.Quo(p, q)
	return toInt(p)
}

func toInt(v *big.Int) (int, error) {
	if !v.IsInt64() || v.Int64() > math.MaxInt {
		return 0, fmt.Errorf("count %s overflows int", v.String())
	}
	return int(v.Int64()), nil
}

// Set implements the flag value interface used by cobra/pflag
func (r *Ratio) Set(s string) error {
	v, err := ParseRatio(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Type implements the flag value interface used by cobra/pflag
func (r *Ratio) Type() string {
	return "ratio"
}

// MarshalText implements encoding.TextMarshaler
func (r Ratio) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so YAML scalars
// such as `20` or `"3/2"` decode into a Ratio
func (r *Ratio) UnmarshalText(text []byte) error {
	return r.Set(string(text))
}
