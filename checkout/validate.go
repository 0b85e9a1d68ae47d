package checkout

import (
	"strconv"
	"strings"
	"time"

	"github.com/alovak/checkout-playground/checkout/models"
	"github.com/alovak/checkout-playground/internal/card"
)

// FieldError is a single local validation failure. Validation errors block
// submission before any session or network call exists; they are never
// payment failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failing field of a submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "invalid submission: " + strings.Join(msgs, "; ")
}

func validateSubmission(input models.CardInput, amount int64, currency string) error {
	var errs ValidationErrors

	if amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be positive"})
	}
	if len(currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a 3-letter ISO code"})
	}

	scheme := card.Detect(input.Number)
	if !card.ValidLength(input.Number, scheme) {
		errs = append(errs, FieldError{Field: "number", Message: "invalid " + schemeLabel(scheme) + " number length"})
	} else if !card.ValidLuhn(input.Number) {
		errs = append(errs, FieldError{Field: "number", Message: "invalid card number"})
	}

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "cardholder name is required"})
	}

	if month, err := strconv.Atoi(input.ExpiryMonth); err != nil || month < 1 || month > 12 {
		errs = append(errs, FieldError{Field: "expiry_month", Message: "month must be 01-12"})
	}
	if len(input.ExpiryYear) != 4 {
		errs = append(errs, FieldError{Field: "expiry_year", Message: "year must be 4 digits"})
	} else if year, err := strconv.Atoi(input.ExpiryYear); err != nil || year < time.Now().Year() {
		errs = append(errs, FieldError{Field: "expiry_year", Message: "card has expired"})
	}

	if !card.ValidCVV(input.CVV, scheme) {
		errs = append(errs, FieldError{Field: "cvv", Message: "cvv must be " + strconv.Itoa(card.CVVLength(scheme)) + " digits"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func schemeLabel(s card.Scheme) string {
	if s == card.SchemeUnknown {
		return "card"
	}
	return string(s)
}
