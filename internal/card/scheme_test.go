package card

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		number string
		want   Scheme
	}{
		{"4242424242424242", SchemeVisa},
		{"4", SchemeVisa},
		{"5555555555554444", SchemeMastercard},
		{"5105105105105100", SchemeMastercard},
		{"2221000000000009", SchemeMastercard},
		{"2720999999999996", SchemeMastercard},
		{"378282246310005", SchemeAmex},
		{"340000000000009", SchemeAmex},
		{"6011111111111117", SchemeDiscover},
		{"6500000000000002", SchemeDiscover},
		{"6445644564456445", SchemeDiscover},
		{"36227206271667", SchemeDiners},
		{"30569309025904", SchemeDiners},
		{"38520000023237", SchemeDiners},
		{"1234567812345678", SchemeUnknown},
		{"9999999999999999", SchemeUnknown},
		{"", SchemeUnknown},
		// formatted input is cleaned before matching
		{"4242 4242 4242 4242", SchemeVisa},
		// two digits are not enough to claim a 2-series mastercard
		{"22", SchemeUnknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.number); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.number, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		raw    string
		scheme Scheme
		want   string
	}{
		{"4242424242424242", SchemeVisa, "4242 4242 4242 4242"},
		{"42424", SchemeVisa, "4242 4"},
		{"378282246310005", SchemeAmex, "3782 822463 10005"},
		{"36227206271667", SchemeDiners, "3622 720627 1667"},
		{"", SchemeVisa, ""},
	}

	for _, tt := range tests {
		if got := Format(tt.raw, tt.scheme); got != tt.want {
			t.Errorf("Format(%q, %s) = %q, want %q", tt.raw, tt.scheme, got, tt.want)
		}
	}
}

func TestFormat_Idempotent(t *testing.T) {
	numbers := map[Scheme]string{
		SchemeVisa:   "4242424242424242",
		SchemeAmex:   "378282246310005",
		SchemeDiners: "36227206271667",
	}

	for scheme, n := range numbers {
		once := Format(n, scheme)
		twice := Format(once, scheme)
		if once != twice {
			t.Errorf("Format(%s) not idempotent: %q != %q", scheme, once, twice)
		}
	}
}

func TestMaxInputLength(t *testing.T) {
	tests := []struct {
		scheme Scheme
		want   int
	}{
		{SchemeVisa, 19},    // 16 digits + 3 gaps
		{SchemeAmex, 17},    // 15 digits + 2 gaps
		{SchemeDiners, 18},  // 16 digits + 2 gaps
		{SchemeUnknown, 19}, // conservative 16-digit layout
	}

	for _, tt := range tests {
		if got := MaxInputLength(tt.scheme); got != tt.want {
			t.Errorf("MaxInputLength(%s) = %d, want %d", tt.scheme, got, tt.want)
		}
	}
}
