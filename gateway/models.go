package gateway

// Card is the raw card data sent for tokenization. It exists only for the
// duration of one tokenize call and is never stored.
type Card struct {
	Number      string
	ExpiryMonth string
	ExpiryYear  string
	CVV         string
	Name        string
}

// PaymentRequest is one authorize attempt against the gateway.
type PaymentRequest struct {
	Card     Card
	Amount   int64 // minor currency units
	Currency string
}

// Status is the gateway's payment status.
type Status string

const (
	StatusAuthorized Status = "Authorized"
	StatusPending    Status = "Pending"
	StatusDeclined   Status = "Declined"
)

// PaymentOutcome is the normalized result of one payment attempt. An empty
// ID means no charge was created. Failures are carried in Error rather
// than as a Go error: a declined payment is a result, not an exception.
type PaymentOutcome struct {
	ID               string `json:"id"`
	Status           Status `json:"status"`
	Approved         bool   `json:"approved"`
	RequiresRedirect bool   `json:"requires_redirect"`
	RedirectURL      string `json:"redirect_url,omitempty"`
	Error            string `json:"error,omitempty"`
}

// PaymentDetails is the full payment record from the details-lookup
// endpoint.
type PaymentDetails struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Approved bool         `json:"approved"`
	ThreeDS  *ThreeDSInfo `json:"3ds,omitempty"`
}

// ThreeDSInfo reports 3-D Secure enrollment for a payment.
type ThreeDSInfo struct {
	Enrolled      bool `json:"enrolled"`
	Authenticated bool `json:"authenticated"`
}

// wire types

type tokenRequest struct {
	Type        string `json:"type"`
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
	Name        string `json:"name"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type paymentSource struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type threeDSRequest struct {
	Enabled bool `json:"enabled"`
}

type paymentRequest struct {
	Source     paymentSource  `json:"source"`
	Amount     int64          `json:"amount"`
	Currency   string         `json:"currency"`
	ThreeDS    threeDSRequest `json:"3ds"`
	SuccessURL string         `json:"success_url"`
	FailureURL string         `json:"failure_url"`
}

type paymentResponse struct {
	ID       string `json:"id"`
	Status   Status `json:"status"`
	Approved bool   `json:"approved"`
	Links    struct {
		Redirect *struct {
			Href string `json:"href"`
		} `json:"redirect"`
	} `json:"_links"`
}

type errorResponse struct {
	ErrorCodes []string `json:"error_codes"`
}
