package vm

import (
	"errors"
	"math"
	"strconv"
)

// Value is the content of a data cell or register: either an integer or a
// real number.
type Value struct {
	Int    int64   // Integer value, when not real.
	Real   float64 // Real value, when real.
	IsReal bool    // Set if the value is real.
}

// Int makes an integer value.
func Int(i int64) Value {
	return Value{Int: i}
}

// Real makes a real value.
func Real(r float64) Value {
	return Value{Real: r, IsReal: true}
}

// Float returns the value as a float64.
func (v Value) Float() float64 {
	if v.IsReal {
		return v.Real
	}
	return float64(v.Int)
}

// Integer returns the value as an integer, if it is one.
func (v Value) Integer() (i int64, ok bool) {
	if v.IsReal {
		return
	}
	return v.Int, true
}

// IsZero is true when the value equals zero.
func (v Value) IsZero() bool {
	if v.IsReal {
		return v.Real == 0
	}
	return v.Int == 0
}

// IsNegative is true when the value is less than zero.
func (v Value) IsNegative() bool {
	if v.IsReal {
		return v.Real < 0
	}
	return v.Int < 0
}

func (v Value) String() string {
	if v.IsReal {
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	}
	return strconv.FormatInt(v.Int, 10)
}

// decimal checks for an optionally negative run of decimal digits with at
// most one decimal point.
func decimal(text string) (ok bool, point bool) {
	if len(text) > 0 && text[0] == '-' {
		text = text[1:]
	}

	digits := 0
	for n := range len(text) {
		c := text[n]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !point:
			point = true
		default:
			return false, false
		}
	}

	ok = digits > 0
	return
}

// ParseValue parses a decimal literal. Text containing a decimal point is
// a real, otherwise an integer. Signs other than a leading '-', exponents
// and radix prefixes are rejected.
func ParseValue(text string) (v Value, err error) {
	ok, point := decimal(text)
	if !ok {
		err = &strconv.NumError{Func: "ParseValue", Num: text, Err: strconv.ErrSyntax}
		return
	}

	if point {
		var r float64
		r, err = strconv.ParseFloat(text, 64)
		if err != nil {
			return
		}
		v = Real(r)
		return
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return
	}
	v = Int(i)

	return
}

// ALU operations. Mixed integer and real operands produce a real.

func valueAdd(a, b Value) (Value, error) {
	if a.IsReal || b.IsReal {
		return Real(a.Float() + b.Float()), nil
	}
	return Int(a.Int + b.Int), nil
}

func valueSub(a, b Value) (Value, error) {
	if a.IsReal || b.IsReal {
		return Real(a.Float() - b.Float()), nil
	}
	return Int(a.Int - b.Int), nil
}

func valueMul(a, b Value) (Value, error) {
	if a.IsReal || b.IsReal {
		return Real(a.Float() * b.Float()), nil
	}
	return Int(a.Int * b.Int), nil
}

// valueDiv truncates toward zero, as Go's integer division does.
func valueDiv(a, b Value) (Value, error) {
	if b.IsZero() {
		return Value{}, ErrDivision
	}
	if a.IsReal || b.IsReal {
		return Real(math.Trunc(a.Float() / b.Float())), nil
	}
	return Int(a.Int / b.Int), nil
}

func valueFdiv(a, b Value) (Value, error) {
	if b.IsZero() {
		return Value{}, ErrDivision
	}
	return Real(a.Float() / b.Float()), nil
}

// bitwise applies an integer only operation.
func bitwise(op func(x, y int64) int64) func(a, b Value) (Value, error) {
	return func(a, b Value) (v Value, err error) {
		x, ok := a.Integer()
		if !ok {
			err = errors.Join(ErrValueType, ErrIntegerRequired)
			return
		}
		y, ok := b.Integer()
		if !ok {
			err = errors.Join(ErrValueType, ErrIntegerRequired)
			return
		}
		v = Int(op(x, y))
		return
	}
}

var (
	valueAnd = bitwise(func(x, y int64) int64 { return x & y })
	valueOr  = bitwise(func(x, y int64) int64 { return x | y })
	valueXor = bitwise(func(x, y int64) int64 { return x ^ y })
	valueNot = bitwise(func(x, _ int64) int64 { return ^x })
)
