package host

import (
	"strconv"
)

// Key is an Array key: either an integer or a string. String keys that are
// the canonical decimal form of an int64 are stored as integer keys, so
// StringKey("3") and IntKey(3) address the same entry.
type Key struct {
	s     string
	n     int64
	isInt bool
}

// IntKey returns an integer key.
func IntKey(n int64) Key {
	return Key{n: n, isInt: true}
}

// StringKey returns a key for s, normalized to an integer key when s is a
// canonical decimal integer.
func StringKey(s string) Key {
	if n, ok := canonicalInt(s); ok {
		return IntKey(n)
	}
	return Key{s: s}
}

// ParseKey is StringKey under the name used when reading keys back from
// their rendered form.
func ParseKey(s string) Key {
	return StringKey(s)
}

// IsInt reports whether k is an integer key.
func (k Key) IsInt() bool { return k.isInt }

// Int returns the integer value of k and whether k is an integer key.
func (k Key) Int() (int64, bool) {
	return k.n, k.isInt
}

// String renders the key. Integer keys render in decimal.
func (k Key) String() string {
	if k.isInt {
		return strconv.FormatInt(k.n, 10)
	}
	return k.s
}

// canonicalInt accepts "0", "-7", "42" but not "", "007", "+1", "-0" or
// anything outside the int64 range.
func canonicalInt(s string) (int64, bool) {
	if s == "" || len(s) > 20 {
		return 0, false
	}
	digits := s
	if s[0] == '-' {
		digits = s[1:]
		if digits == "" || digits == "0" {
			return 0, false
		}
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
