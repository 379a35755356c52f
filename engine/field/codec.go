package field

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the time layout of date-string fields.
const DateLayout = "2006-01-02_15:04:05"

// DatePattern matches date-string fields.
var DatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}:\d{2}:\d{2}$`)

// DecodeErrorKind classifies malformed user input.
type DecodeErrorKind string

const (
	NotANumber    DecodeErrorKind = "not_a_number"
	NotAnInteger  DecodeErrorKind = "not_an_integer"
	BadDateFormat DecodeErrorKind = "bad_date_format"
)

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("decode error")

// DecodeError reports raw input that cannot be turned into a field value.
type DecodeError struct {
	Kind  DecodeErrorKind
	Input string
	Type  Type
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case NotANumber:
		return fmt.Sprintf("%q is not a number", e.Input)
	case NotAnInteger:
		return fmt.Sprintf("%q is not a whole number", e.Input)
	case BadDateFormat:
		return fmt.Sprintf("%q does not match YYYY-MM-DD_HH:MM:SS", e.Input)
	default:
		return fmt.Sprintf("cannot decode %q as %s", e.Input, e.Type)
	}
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// KindOf returns the DecodeErrorKind carried by err, if any.
func KindOf(err error) (DecodeErrorKind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// Decode converts raw form input into a scalar of the given type.
// Booleans come from a checked signal; use DecodeBool for them.
func Decode(raw string, typ Type) (Scalar, error) {
	trimmed := strings.TrimSpace(raw)
	switch typ {
	case TypeInt:
		i, err := strconv.ParseInt(trimmed, 10, 64)
		switch {
		case err == nil:
			return Int(i), nil
		case errors.Is(err, strconv.ErrRange):
			return Scalar{}, &DecodeError{Kind: NotAnInteger, Input: raw, Type: typ}
		}
		f, err := parseNumber(trimmed, typ)
		if err != nil {
			return Scalar{}, err
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return Scalar{}, &DecodeError{Kind: NotAnInteger, Input: raw, Type: typ}
		}
		return Int(int64(f)), nil
	case TypeFloat:
		f, err := parseNumber(trimmed, typ)
		if err != nil {
			return Scalar{}, err
		}
		return Float(f), nil
	case TypeDate:
		if !ValidDate(trimmed) {
			return Scalar{}, &DecodeError{Kind: BadDateFormat, Input: raw, Type: typ}
		}
		return DateString(trimmed), nil
	case TypeBool:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return Scalar{}, fmt.Errorf("%q is not a boolean", raw)
		}
		return Bool(b), nil
	default:
		return String(trimmed), nil
	}
}

// DecodeBool turns a checked/unchecked signal into a boolean scalar.
func DecodeBool(checked bool) Scalar {
	return Bool(checked)
}

func parseNumber(s string, typ Type) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &DecodeError{Kind: NotANumber, Input: s, Type: typ}
	}
	return f, nil
}

// Encode renders a scalar for display in a form control.
func Encode(s Scalar) string {
	switch s.typ {
	case TypeInt:
		return strconv.FormatInt(s.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(s.f, 'f', -1, 64)
	case TypeBool:
		return strconv.FormatBool(s.b)
	default:
		return s.s
	}
}

// EncodeValue renders every element of v, comma separated.
func EncodeValue(v Value) string {
	parts := make([]string, 0, v.Len())
	for _, s := range v.items {
		parts = append(parts, Encode(s))
	}
	return strings.Join(parts, ", ")
}

// ValidDate reports whether s matches the date pattern and names a real instant.
func ValidDate(s string) bool {
	if !DatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a date-string field.
func ParseDate(s string) (time.Time, error) {
	if !DatePattern.MatchString(s) {
		return time.Time{}, &DecodeError{Kind: BadDateFormat, Input: s, Type: TypeDate}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &DecodeError{Kind: BadDateFormat, Input: s, Type: TypeDate}
	}
	return t, nil
}

// FormatDate renders t in the date-string layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DecodeValue decodes comma separated form input. Blank input yields an unset
// value; more than one element is only accepted for sequences.
func DecodeValue(raw string, typ Type, seq bool) (Value, error) {
	if strings.TrimSpace(raw) == "" {
		return Value{}, nil
	}
	parts := []string{raw}
	if seq {
		parts = strings.Split(raw, ",")
	}
	items := make([]Scalar, 0, len(parts))
	for _, p := range parts {
		s, err := Decode(p, typ)
		if err != nil {
			return Value{}, err
		}
		items = append(items, s)
	}
	if seq {
		return Seq(items...), nil
	}
	return Of(items[0]), nil
}
