package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/alovak/checkout-playground/checkout/models"
	"github.com/alovak/checkout-playground/gateway"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Fixed user-facing messages. Gateway error codes take precedence where
// the gateway supplies them; everything else resolves to one of these.
const (
	MsgDeclined             = "Payment was declined"
	MsgAuthenticationFailed = "3D Secure verification failed"
	MsgCancelled            = "Payment cancelled"
	MsgUnexpected           = "An unexpected error occurred"
)

// Gateway is the two-step protocol surface the orchestrator drives.
type Gateway interface {
	ProcessPayment(ctx context.Context, req gateway.PaymentRequest) (gateway.PaymentOutcome, error)
	PaymentDetails(ctx context.Context, paymentID string) (gateway.PaymentDetails, error)
}

// Service is the payment orchestrator. It owns the session records: every
// phase transition goes through one of its methods, and the 3DS resolution
// methods are safe to call in any phase (last write wins on the session).
type Service struct {
	repo   *Repository
	gw     Gateway
	logger *slog.Logger
}

func NewService(logger *slog.Logger, repo *Repository, gw Gateway) *Service {
	return &Service{
		repo:   repo,
		gw:     gw,
		logger: logger.With(slog.String("component", "orchestrator")),
	}
}

// Submit starts a fresh payment attempt: validates the card locally,
// creates a submitting session, runs the gateway's two-step flow and
// settles the session into succeeded, failed or awaiting_authentication.
// Each call creates its own session, so a new submit supersedes rather
// than interleaves with an earlier attempt.
func (s *Service) Submit(ctx context.Context, input models.CardInput, amount int64, currency string) (*models.Session, error) {
	if err := validateSubmission(input, amount, currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New().String(),
		Phase:     models.PhaseSubmitting,
		Amount:    amount,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	outcome, err := s.gw.ProcessPayment(ctx, gateway.PaymentRequest{
		Card: gateway.Card{
			Number:      input.Number,
			ExpiryMonth: input.ExpiryMonth,
			ExpiryYear:  input.ExpiryYear,
			CVV:         input.CVV,
			Name:        input.Name,
		},
		Amount:   amount,
		Currency: currency,
	})
	if err != nil {
		s.logger.Error("payment attempt failed", slog.String("session_id", session.ID), "err", err)
		msg := err.Error()
		if msg == "" {
			msg = MsgUnexpected
		}
		return s.settle(ctx, session, models.PhaseFailed, msg)
	}

	session.PaymentID = outcome.ID

	switch {
	case outcome.Error != "":
		return s.settle(ctx, session, models.PhaseFailed, outcome.Error)
	case outcome.RequiresRedirect && outcome.RedirectURL != "":
		session.RedirectURL = outcome.RedirectURL
		return s.settle(ctx, session, models.PhaseAwaitingAuthentication, "")
	case outcome.Approved:
		return s.settle(ctx, session, models.PhaseSucceeded, "")
	default:
		return s.settle(ctx, session, models.PhaseFailed, MsgDeclined)
	}
}

// ResolveAuthenticationSuccess completes an outstanding 3DS challenge as
// passed. It is meaningful while the session awaits authentication but
// never rejects other phases: resolution arrives out-of-band and may race
// a reset.
func (s *Service) ResolveAuthenticationSuccess(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return s.settle(ctx, session, models.PhaseSucceeded, "")
}

// ResolveAuthenticationFailure completes an outstanding 3DS challenge as
// failed.
func (s *Service) ResolveAuthenticationFailure(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return s.settle(ctx, session, models.PhaseFailed, MsgAuthenticationFailed)
}

// CancelAuthentication records user abandonment of the 3DS challenge. For
// display purposes this is a failed outcome with its own fixed message.
func (s *Service) CancelAuthentication(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return s.settle(ctx, session, models.PhaseFailed, MsgCancelled)
}

// Reset returns the session to idle with all transient fields cleared,
// regardless of its current phase.
func (s *Service) Reset(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}

	session.PaymentID = ""
	session.RedirectURL = ""
	return s.settle(ctx, session, models.PhaseIdle, "")
}

// Session returns the current state of one attempt.
func (s *Service) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.repo.GetSession(ctx, sessionID)
}

// Details fetches the gateway's full payment record for a session.
func (s *Service) Details(ctx context.Context, sessionID string) (gateway.PaymentDetails, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return gateway.PaymentDetails{}, fmt.Errorf("finding session: %w", err)
	}
	if session.PaymentID == "" {
		return gateway.PaymentDetails{}, fmt.Errorf("session %s has no payment: %w", sessionID, ErrNotFound)
	}

	details, err := s.gw.PaymentDetails(ctx, session.PaymentID)
	if err != nil {
		return gateway.PaymentDetails{}, fmt.Errorf("fetching payment details: %w", err)
	}
	return details, nil
}

func (s *Service) settle(ctx context.Context, session *models.Session, phase models.Phase, message string) (*models.Session, error) {
	session.Phase = phase
	session.ErrorMessage = message
	session.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("updating session %s: %w", session.ID, err)
	}

	s.logger.Info("session settled",
		slog.String("session_id", session.ID),
		slog.String("phase", string(session.Phase)))

	return session, nil
}
