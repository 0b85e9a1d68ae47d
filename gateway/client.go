// Package gateway is the client for the card-acquiring gateway's two-step
// protocol: a card is first exchanged for an opaque token against the
// publishable-key endpoint, then the token is charged against the
// secret-key endpoint. Neither step is ever retried here; a retry is a new
// payment attempt.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slog"
)

// genericFailure is the only failure text the caller ever sees for
// tokenization problems and transport-level authorize problems. Gateway
// detail is logged, not surfaced.
const genericFailure = "Payment failed"

// ErrTokenization replaces whatever actually went wrong during
// tokenization so gateway internals never leak to the presentation layer.
var ErrTokenization = errors.New("failed to tokenize card")

type Client struct {
	baseURL    string
	publicKey  string
	secretKey  string
	successURL string
	failureURL string
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL    string
	PublicKey  string // publishable credential, tokenization only
	SecretKey  string // confidential credential, payments and lookups
	SuccessURL string // 3DS redirect target on success
	FailureURL string // 3DS redirect target on failure
	Timeout    time.Duration
}

func NewClient(logger *slog.Logger, cfg Config, hc *http.Client) *Client {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		publicKey:  cfg.PublicKey,
		secretKey:  cfg.SecretKey,
		successURL: cfg.SuccessURL,
		failureURL: cfg.FailureURL,
		httpClient: hc,
		logger:     logger.With(slog.String("component", "gateway")),
	}
}

// Tokenize exchanges raw card data for an opaque token. Any transport
// failure or non-2xx response collapses into ErrTokenization; the detail
// is logged here and goes no further.
func (c *Client) Tokenize(ctx context.Context, card Card) (string, error) {
	month, err := strconv.Atoi(strings.TrimSpace(card.ExpiryMonth))
	if err != nil {
		return "", fmt.Errorf("parsing expiry month: %w", err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(card.ExpiryYear))
	if err != nil {
		return "", fmt.Errorf("parsing expiry year: %w", err)
	}

	req := tokenRequest{
		Type:        "card",
		Number:      card.Number,
		ExpiryMonth: month,
		ExpiryYear:  year,
		CVV:         card.CVV,
		Name:        card.Name,
	}

	var resp tokenResponse
	if err := c.post(ctx, "/tokens", c.publicKey, req, &resp); err != nil {
		c.logger.Error("tokenization failed", "err", err)
		return "", ErrTokenization
	}
	if resp.Token == "" {
		c.logger.Error("tokenization response missing token")
		return "", ErrTokenization
	}

	return resp.Token, nil
}

// Authorize charges a previously obtained token with 3DS enabled. On any
// failure it returns a Declined outcome with an empty ID: the comma-joined
// gateway error codes when the gateway supplied them, the generic message
// otherwise (and always for transport-level failures).
func (c *Client) Authorize(ctx context.Context, token string, amount int64, currency string) PaymentOutcome {
	req := paymentRequest{
		Source:     paymentSource{Type: "token", Token: token},
		Amount:     amount,
		Currency:   currency,
		ThreeDS:    threeDSRequest{Enabled: true},
		SuccessURL: c.successURL,
		FailureURL: c.failureURL,
	}

	var resp paymentResponse
	if err := c.post(ctx, "/payments", c.secretKey, req, &resp); err != nil {
		c.logger.Error("payment request failed", "err", err)

		var ge *gatewayError
		if errors.As(err, &ge) && len(ge.codes) > 0 {
			return declinedOutcome(strings.Join(ge.codes, ", "))
		}
		return declinedOutcome(genericFailure)
	}

	outcome := PaymentOutcome{
		ID:       resp.ID,
		Status:   resp.Status,
		Approved: resp.Approved,
	}
	if resp.Status == StatusPending && resp.Links.Redirect != nil {
		outcome.RequiresRedirect = true
		outcome.RedirectURL = resp.Links.Redirect.Href
	}

	return outcome
}

// ProcessPayment runs the two-step flow for one attempt. Authorization
// never runs when tokenization fails.
func (c *Client) ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentOutcome, error) {
	token, err := c.Tokenize(ctx, req.Card)
	if err != nil {
		return declinedOutcome(genericFailure), nil
	}

	return c.Authorize(ctx, token, req.Amount, req.Currency), nil
}

// PaymentDetails looks up the full payment record by gateway ID.
func (c *Client) PaymentDetails(ctx context.Context, paymentID string) (PaymentDetails, error) {
	target := fmt.Sprintf("%s/payments/%s", c.baseURL, paymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return PaymentDetails{}, fmt.Errorf("fetching payment %s: %w", paymentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return PaymentDetails{}, fmt.Errorf("fetching payment %s: status=%d body=%s", paymentID, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var details PaymentDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return PaymentDetails{}, fmt.Errorf("decoding payment %s: %w", paymentID, err)
	}

	return details, nil
}

func declinedOutcome(message string) PaymentOutcome {
	return PaymentOutcome{
		Status: StatusDeclined,
		Error:  message,
	}
}

// gatewayError is a non-2xx response with whatever error codes the
// gateway attached.
type gatewayError struct {
	status int
	codes  []string
}

func (e *gatewayError) Error() string {
	return fmt.Sprintf("gateway status=%d error_codes=%v", e.status, e.codes)
}

func (c *Client) post(ctx context.Context, path, credential string, body, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		ge := &gatewayError{status: resp.StatusCode}
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			ge.codes = errResp.ErrorCodes
		}
		return ge
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}
