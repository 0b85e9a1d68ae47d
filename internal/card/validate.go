package card

import "strings"

// Normalize strips separator whitespace from a card number, leaving the
// raw digit string (or whatever non-digit input the user typed).
func Normalize(number string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t':
			return -1
		default:
			return r
		}
	}, number)
}

// IsDigits reports whether s is non-empty and all ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidLuhn runs the mod-10 check-digit algorithm over the card number.
// Internal spaces are stripped first; any other non-digit input fails, as
// does the empty string. A string of all zeros sums to zero and passes.
func ValidLuhn(number string) bool {
	n := Normalize(number)
	if !IsDigits(n) {
		return false
	}

	sum, double := 0, false
	for i := len(n) - 1; i >= 0; i-- {
		d := int(n[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidLength reports whether the cleaned digit count is one of the
// scheme's accepted lengths.
func ValidLength(number string, scheme Scheme) bool {
	n := Normalize(number)
	return containsInt(schemeSpecs[spec(scheme)].lengths, len(n))
}

// ValidCVV reports whether cvv is a digit string of the scheme's CVV length.
func ValidCVV(cvv string, scheme Scheme) bool {
	return len(cvv) == CVVLength(scheme) && IsDigits(cvv)
}
