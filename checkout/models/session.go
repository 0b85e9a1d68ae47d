package models

import "time"

// Phase is the orchestrator's view of one payment attempt.
type Phase string

const (
	PhaseIdle                   Phase = "idle"
	PhaseSubmitting             Phase = "submitting"
	PhaseAwaitingAuthentication Phase = "awaiting_authentication"
	PhaseSucceeded              Phase = "succeeded"
	PhaseFailed                 Phase = "failed"
)

// Terminal reports whether the phase is final until a reset or a new
// submission.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// CardInput is raw user-entered card data. It is validated and handed to
// the gateway for tokenization, never persisted.
type CardInput struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
	Name        string `json:"name"`
}

// Session is the owned, mutable record of one payment attempt. It is the
// piece of state that survives the 3DS redirect: resolution callbacks look
// the session up by ID and complete it with no call-stack relationship to
// the submit that created it. All mutation goes through the orchestrator's
// transition functions.
type Session struct {
	ID           string    `json:"id"`
	Phase        Phase     `json:"phase"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	PaymentID    string    `json:"payment_id,omitempty"`
	RedirectURL  string    `json:"redirect_url,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
