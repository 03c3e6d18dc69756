// Package rational implements exact fractions used for musical positions and durations.
// Besides finite values there are +Inf (n>0, d=0), -Inf (n<0, d=0) and NaN (0/0).
package rational

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsphweid/choirscore/util"
)

// Rational is always kept reduced with a non-negative denominator.
// The zero value is 0.
type Rational struct {
	num int64
	// denominator minus one, so the zero value means 0/1
	dm1 int64
}

var (
	Zero = Rational{}
	One  = Int(1)
	Inf  = New(1, 0)
	NaN  = New(0, 0)
)

func New(n, d int64) Rational {
	if d < 0 {
		n, d = -n, -d
	}
	if g := util.GCD(n, d); g > 1 {
		n, d = n/g, d/g
	}
	if d == 0 && n != 0 {
		// all infinities collapse onto ±1/0
		if n > 0 {
			n = 1
		} else {
			n = -1
		}
	}
	return Rational{num: n, dm1: d - 1}
}

func Int(n int64) Rational {
	return Rational{num: n}
}

func (r Rational) Num() int64 { return r.num }
func (r Rational) Den() int64 { return r.dm1 + 1 }

func (r Rational) IsNaN() bool      { return r.num == 0 && r.Den() == 0 }
func (r Rational) IsInf() bool      { return r.num != 0 && r.Den() == 0 }
func (r Rational) IsFinite() bool   { return r.Den() != 0 }
func (r Rational) IsZero() bool     { return r.num == 0 && r.Den() != 0 }
func (r Rational) IsNegative() bool { return r.num < 0 }

func (r Rational) Add(o Rational) Rational {
	switch {
	case r.IsNaN() || o.IsNaN():
		return NaN
	case r.IsInf() && o.IsInf():
		if (r.num > 0) == (o.num > 0) {
			return r
		}
		return NaN
	case r.IsInf():
		return r
	case o.IsInf():
		return o
	}
	rd, od := r.Den(), o.Den()
	lcm := util.LCM(rd, od)
	return New(r.num*(lcm/rd)+o.num*(lcm/od), lcm)
}

func (r Rational) Neg() Rational {
	return New(-r.num, r.Den())
}

func (r Rational) Sub(o Rational) Rational {
	return r.Add(o.Neg())
}

func (r Rational) Mul(o Rational) Rational {
	if r.IsNaN() || o.IsNaN() {
		return NaN
	}
	a, b := r.num, r.Den()
	c, d := o.num, o.Den()
	// cross reduce first to keep the products small
	if g := util.GCD(a, d); g > 1 {
		a, d = a/g, d/g
	}
	if g := util.GCD(c, b); g > 1 {
		c, b = c/g, b/g
	}
	return New(a*c, b*d)
}

func (r Rational) Reciprocal() Rational {
	return New(r.Den(), r.num)
}

func (r Rational) Div(o Rational) Rational {
	return r.Mul(o.Reciprocal())
}

func (r Rational) Magnitude() Rational {
	return New(util.Abs(r.num), r.Den())
}

// Cmp returns -1, 0 or 1. ok is false when either side is NaN.
func (r Rational) Cmp(o Rational) (c int, ok bool) {
	if r.IsNaN() || o.IsNaN() {
		return 0, false
	}
	if r.IsInf() || o.IsInf() {
		// an infinity's numerator is ±1, finite values map onto 0 here
		rs, os := infRank(r), infRank(o)
		if rs != os {
			return sign(rs - os), true
		}
		if r.IsInf() {
			return 0, true
		}
	}
	return sign(r.num*o.Den() - o.num*r.Den()), true
}

func infRank(r Rational) int64 {
	if r.IsInf() {
		return r.num
	}
	return 0
}

func sign(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func (r Rational) Equal(o Rational) bool {
	c, ok := r.Cmp(o)
	return ok && c == 0
}

func (r Rational) Less(o Rational) bool {
	c, ok := r.Cmp(o)
	return ok && c < 0
}

func (r Rational) LessOrEqual(o Rational) bool {
	c, ok := r.Cmp(o)
	return ok && c <= 0
}

func (r Rational) Greater(o Rational) bool {
	return o.Less(r)
}

func (r Rational) GreaterOrEqual(o Rational) bool {
	return o.LessOrEqual(r)
}

func (r Rational) Float64() float64 {
	switch {
	case r.IsNaN():
		return math.NaN()
	case r.IsInf():
		return math.Inf(int(r.num))
	}
	return float64(r.num) / float64(r.Den())
}

func (r Rational) String() string {
	switch {
	case r.IsNaN():
		return "NaN"
	case r.IsInf() && r.num > 0:
		return "+Inf"
	case r.IsInf():
		return "-Inf"
	case r.Den() == 1:
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.Den())
}

// Parse reads "n/d" or a plain integer "n".
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	numStr, denStr, found := strings.Cut(s, "/")
	n, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return NaN, fmt.Errorf("rational: parse %q: %w", s, err)
	}
	if !found {
		return Int(n), nil
	}
	d, err := strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return NaN, fmt.Errorf("rational: parse %q: %w", s, err)
	}
	return New(n, d), nil
}

func Min(a, b Rational) Rational {
	if b.Less(a) {
		return b
	}
	return a
}

func Max(a, b Rational) Rational {
	if b.Greater(a) {
		return b
	}
	return a
}
