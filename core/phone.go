package core

import "strings"

// NormalizePhone reduces a raw phone string to its canonical form: digits plus
// an optional single leading "+". Whitespace, punctuation, and any "+" that is
// not the first kept character are dropped. The same function is used on
// initiate, confirm, and resend so lookups always agree.
//
// NormalizePhone(NormalizePhone(x)) == NormalizePhone(x) for all x.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskPhone returns a redacted echo of a normalized phone number suitable for
// user-facing confirmation ("we sent a code to +15*******67"). The output is
// never equal to the input for a non-empty number.
func MaskPhone(phone string) string {
	prefix := ""
	digits := phone
	if strings.HasPrefix(digits, "+") {
		prefix = "+"
		digits = digits[1:]
	}
	if len(digits) <= 4 {
		return prefix + strings.Repeat("*", len(digits))
	}
	return prefix + digits[:2] + strings.Repeat("*", len(digits)-4) + digits[len(digits)-2:]
}
