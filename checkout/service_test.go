package checkout_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alovak/checkout-playground/checkout"
	"github.com/alovak/checkout-playground/checkout/models"
	"github.com/alovak/checkout-playground/gateway"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var validCard = models.CardInput{
	Number:      "4242424242424242",
	ExpiryMonth: "12",
	ExpiryYear:  "2099",
	CVV:         "123",
	Name:        "John Doe",
}

// fakeGateway scripts the two-step flow's result and records calls.
type fakeGateway struct {
	outcome gateway.PaymentOutcome
	err     error

	details    gateway.PaymentDetails
	detailsErr error

	calls   int
	lastReq gateway.PaymentRequest
}

func (f *fakeGateway) ProcessPayment(_ context.Context, req gateway.PaymentRequest) (gateway.PaymentOutcome, error) {
	f.calls++
	f.lastReq = req
	return f.outcome, f.err
}

func (f *fakeGateway) PaymentDetails(_ context.Context, _ string) (gateway.PaymentDetails, error) {
	return f.details, f.detailsErr
}

func newService(gw checkout.Gateway) *checkout.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard))
	return checkout.NewService(logger, checkout.NewRepository(), gw)
}

func TestSubmit_Approved(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		ID:       "pay_success123",
		Status:   gateway.StatusAuthorized,
		Approved: true,
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	require.Equal(t, models.PhaseSucceeded, session.Phase)
	require.Empty(t, session.ErrorMessage)
	require.Equal(t, "pay_success123", session.PaymentID)
	require.EqualValues(t, 1000, session.Amount)
	require.Equal(t, "GBP", session.Currency)

	require.Equal(t, 1, gw.calls)
	require.Equal(t, "4242424242424242", gw.lastReq.Card.Number)
}

func TestSubmit_RequiresRedirectThenResolveSuccess(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		ID:               "pay_3ds456",
		Status:           gateway.StatusPending,
		RequiresRedirect: true,
		RedirectURL:      "https://3ds.example.com/verify?session=abc123",
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	require.Equal(t, models.PhaseAwaitingAuthentication, session.Phase)
	require.Equal(t, "https://3ds.example.com/verify?session=abc123", session.RedirectURL)
	require.Empty(t, session.ErrorMessage)

	resolved, err := service.ResolveAuthenticationSuccess(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseSucceeded, resolved.Phase)
	require.Empty(t, resolved.ErrorMessage)
}

func TestSubmit_ResolveAuthenticationFailure(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		ID:               "pay_3ds456",
		Status:           gateway.StatusPending,
		RequiresRedirect: true,
		RedirectURL:      "https://3ds.example.com/verify",
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	resolved, err := service.ResolveAuthenticationFailure(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseFailed, resolved.Phase)
	require.Equal(t, checkout.MsgAuthenticationFailed, resolved.ErrorMessage)
}

func TestSubmit_OutcomeError(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		Status: gateway.StatusDeclined,
		Error:  "insufficient_funds, card_declined",
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	require.Equal(t, models.PhaseFailed, session.Phase)
	require.Equal(t, "insufficient_funds, card_declined", session.ErrorMessage)
	require.Empty(t, session.PaymentID)
}

func TestSubmit_DeclinedWithoutErrorOrRedirect(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		ID:     "pay_declined",
		Status: gateway.StatusDeclined,
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	require.Equal(t, models.PhaseFailed, session.Phase)
	require.Equal(t, checkout.MsgDeclined, session.ErrorMessage)
}

func TestSubmit_GatewayError(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection reset")}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	require.Equal(t, models.PhaseFailed, session.Phase)
	require.Equal(t, "connection reset", session.ErrorMessage)
}

func TestSubmit_ValidationBlocksGatewayCall(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.CardInput)
		amount   int64
		currency string
		field    string
	}{
		{name: "bad luhn", mutate: func(c *models.CardInput) { c.Number = "4242424242424243" }, amount: 1000, currency: "GBP", field: "number"},
		{name: "bad length", mutate: func(c *models.CardInput) { c.Number = "42424242" }, amount: 1000, currency: "GBP", field: "number"},
		{name: "bad cvv", mutate: func(c *models.CardInput) { c.CVV = "12" }, amount: 1000, currency: "GBP", field: "cvv"},
		{name: "amex wants 4-digit cvv", mutate: func(c *models.CardInput) { c.Number = "378282246310005"; c.CVV = "123" }, amount: 1000, currency: "GBP", field: "cvv"},
		{name: "missing name", mutate: func(c *models.CardInput) { c.Name = " " }, amount: 1000, currency: "GBP", field: "name"},
		{name: "bad month", mutate: func(c *models.CardInput) { c.ExpiryMonth = "13" }, amount: 1000, currency: "GBP", field: "expiry_month"},
		{name: "expired year", mutate: func(c *models.CardInput) { c.ExpiryYear = "2020" }, amount: 1000, currency: "GBP", field: "expiry_year"},
		{name: "zero amount", mutate: func(c *models.CardInput) {}, amount: 0, currency: "GBP", field: "amount"},
		{name: "bad currency", mutate: func(c *models.CardInput) {}, amount: 1000, currency: "POUNDS", field: "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			service := newService(gw)

			card := validCard
			tt.mutate(&card)

			_, err := service.Submit(context.Background(), card, tt.amount, tt.currency)
			require.Error(t, err)

			var verrs checkout.ValidationErrors
			require.ErrorAs(t, err, &verrs)

			found := false
			for _, fe := range verrs {
				if fe.Field == tt.field {
					found = true
				}
			}
			require.True(t, found, "expected a %s field error, got %v", tt.field, verrs)

			require.Zero(t, gw.calls, "validation failures must not reach the gateway")
		})
	}
}

func TestSubmit_SecondAttemptIsIndependent(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		Status: gateway.StatusDeclined,
		Error:  "card_declined",
	}}
	service := newService(gw)

	first, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)
	require.Equal(t, models.PhaseFailed, first.Phase)

	gw.outcome = gateway.PaymentOutcome{ID: "pay_retry", Status: gateway.StatusAuthorized, Approved: true}

	second, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, models.PhaseSucceeded, second.Phase)
	require.Empty(t, second.ErrorMessage)

	// the failed attempt keeps its own record
	kept, err := service.Session(context.Background(), first.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseFailed, kept.Phase)
	require.Equal(t, "card_declined", kept.ErrorMessage)
}

func TestCancelAuthentication(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		ID:               "pay_3ds",
		Status:           gateway.StatusPending,
		RequiresRedirect: true,
		RedirectURL:      "https://3ds.example.com/verify",
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)
	require.Equal(t, models.PhaseAwaitingAuthentication, session.Phase)

	cancelled, err := service.CancelAuthentication(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotEqual(t, models.PhaseAwaitingAuthentication, cancelled.Phase)
	require.Equal(t, checkout.MsgCancelled, cancelled.ErrorMessage)
}

// Resolution callbacks arrive out-of-band and may race a reset; they must
// apply last-write-wins instead of rejecting phases where no
// authentication is outstanding.
func TestResolveAuthentication_NoOutstandingChallenge(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{ID: "pay_1", Status: gateway.StatusAuthorized, Approved: true}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	_, err = service.Reset(context.Background(), session.ID)
	require.NoError(t, err)

	resolved, err := service.ResolveAuthenticationSuccess(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, models.PhaseSucceeded, resolved.Phase)
}

func TestReset(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{
		ID:               "pay_3ds",
		Status:           gateway.StatusPending,
		RequiresRedirect: true,
		RedirectURL:      "https://3ds.example.com/verify",
	}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	reset, err := service.Reset(context.Background(), session.ID)
	require.NoError(t, err)

	require.Equal(t, models.PhaseIdle, reset.Phase)
	require.Empty(t, reset.ErrorMessage)
	require.Empty(t, reset.RedirectURL)
	require.Empty(t, reset.PaymentID)
}

func TestUnknownSession(t *testing.T) {
	service := newService(&fakeGateway{})

	_, err := service.Session(context.Background(), "missing")
	require.ErrorIs(t, err, checkout.ErrNotFound)

	_, err = service.ResolveAuthenticationSuccess(context.Background(), "missing")
	require.ErrorIs(t, err, checkout.ErrNotFound)
}

func TestDetails(t *testing.T) {
	gw := &fakeGateway{
		outcome: gateway.PaymentOutcome{ID: "pay_1", Status: gateway.StatusAuthorized, Approved: true},
		details: gateway.PaymentDetails{
			ID:       "pay_1",
			Status:   "Authorized",
			Amount:   1000,
			Currency: "GBP",
			Approved: true,
			ThreeDS:  &gateway.ThreeDSInfo{Enrolled: true, Authenticated: true},
		},
	}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	details, err := service.Details(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, "pay_1", details.ID)
	require.True(t, details.Approved)
}

func TestDetails_NoPayment(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.PaymentOutcome{Status: gateway.StatusDeclined, Error: "card_declined"}}
	service := newService(gw)

	session, err := service.Submit(context.Background(), validCard, 1000, "GBP")
	require.NoError(t, err)

	// no charge was created, so there is nothing to look up
	_, err = service.Details(context.Background(), session.ID)
	require.ErrorIs(t, err, checkout.ErrNotFound)
}
