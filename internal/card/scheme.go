package card

import (
	"strconv"
	"strings"
)

// Scheme is the card network inferred from the number prefix.
type Scheme string

const (
	SchemeVisa       Scheme = "visa"
	SchemeMastercard Scheme = "mastercard"
	SchemeAmex       Scheme = "amex"
	SchemeDiscover   Scheme = "discover"
	SchemeDiners     Scheme = "diners"
	SchemeUnknown    Scheme = "unknown"
)

type schemeSpec struct {
	name      string
	lengths   []int
	cvvLength int
	// gaps are the digit positions a separator space goes before.
	gaps []int
}

var schemeSpecs = map[Scheme]schemeSpec{
	SchemeVisa:       {name: "Visa", lengths: []int{16}, cvvLength: 3, gaps: []int{4, 8, 12}},
	SchemeMastercard: {name: "Mastercard", lengths: []int{16}, cvvLength: 3, gaps: []int{4, 8, 12}},
	SchemeAmex:       {name: "American Express", lengths: []int{15}, cvvLength: 4, gaps: []int{4, 10}},
	SchemeDiscover:   {name: "Discover", lengths: []int{16}, cvvLength: 3, gaps: []int{4, 8, 12}},
	SchemeDiners:     {name: "Diners Club", lengths: []int{14, 16}, cvvLength: 3, gaps: []int{4, 10}},
	SchemeUnknown:    {name: "Unknown", lengths: []int{16}, cvvLength: 3, gaps: []int{4, 8, 12}},
}

// Name returns the display name of the scheme.
func (s Scheme) Name() string {
	return schemeSpecs[spec(s)].name
}

// spec guards lookups against schemes this package does not know about.
func spec(s Scheme) Scheme {
	if _, ok := schemeSpecs[s]; !ok {
		return SchemeUnknown
	}
	return s
}

// Detect classifies a (possibly partial, possibly formatted) card number by
// its leading digits. First match wins; the prefix ranges are disjoint.
func Detect(number string) Scheme {
	n := Normalize(number)

	switch {
	case strings.HasPrefix(n, "4"):
		return SchemeVisa
	case prefixInRange(n, 2, 51, 55), prefixInRange(n, 4, 2221, 2720):
		return SchemeMastercard
	case strings.HasPrefix(n, "34"), strings.HasPrefix(n, "37"):
		return SchemeAmex
	case strings.HasPrefix(n, "6011"), prefixInRange(n, 6, 622126, 622925),
		prefixInRange(n, 3, 644, 649), strings.HasPrefix(n, "65"):
		return SchemeDiscover
	case strings.HasPrefix(n, "36"), strings.HasPrefix(n, "38"), prefixInRange(n, 3, 300, 305):
		return SchemeDiners
	default:
		return SchemeUnknown
	}
}

// prefixInRange reports whether the first width digits of n form a number in
// [lo, hi]. Numbers shorter than width never match.
func prefixInRange(n string, width, lo, hi int) bool {
	if len(n) < width {
		return false
	}
	v, err := strconv.Atoi(n[:width])
	if err != nil {
		return false
	}
	return v >= lo && v <= hi
}

// Format inserts the scheme's separator spaces into a card number. Partial
// numbers format as far as the available digits allow, and formatting an
// already-formatted number reproduces the same string.
func Format(raw string, scheme Scheme) string {
	digits := Normalize(raw)
	gaps := schemeSpecs[spec(scheme)].gaps

	var b strings.Builder
	b.Grow(len(digits) + len(gaps))
	for i := 0; i < len(digits); i++ {
		if i > 0 && containsInt(gaps, i) {
			b.WriteByte(' ')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// MaxInputLength returns the longest formatted input for the scheme: the
// maximum digit count plus one position per separator gap. Used to cap
// interactive input.
func MaxInputLength(scheme Scheme) int {
	sp := schemeSpecs[spec(scheme)]
	max := 0
	for _, l := range sp.lengths {
		if l > max {
			max = l
		}
	}
	return max + len(sp.gaps)
}

// CVVLength returns the scheme's security code length.
func CVVLength(scheme Scheme) int {
	return schemeSpecs[spec(scheme)].cvvLength
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
