package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alovak/checkout-playground/checkout/models"
)

// RedirectOutcome classifies an inbound redirect URL.
type RedirectOutcome string

const (
	RedirectSuccess   RedirectOutcome = "success"
	RedirectFailure   RedirectOutcome = "failure"
	RedirectUnmatched RedirectOutcome = "unmatched"
)

// RedirectResolver maps redirect URLs delivered after the 3DS challenge
// back onto orchestrator transitions. Matching is a fixed prefix
// comparison against the two configured callback targets; anything else
// is ignored without a transition. The session ID travels in the URL
// itself (session_id query parameter), so a cold-start delivery resolves
// with no in-memory pending state.
type RedirectResolver struct {
	service       *Service
	successPrefix string
	failurePrefix string
}

func NewRedirectResolver(service *Service, successPrefix, failurePrefix string) *RedirectResolver {
	return &RedirectResolver{
		service:       service,
		successPrefix: successPrefix,
		failurePrefix: failurePrefix,
	}
}

// Classify reports which callback target, if any, the URL belongs to.
func (r *RedirectResolver) Classify(rawURL string) RedirectOutcome {
	switch {
	case strings.HasPrefix(rawURL, r.successPrefix):
		return RedirectSuccess
	case strings.HasPrefix(rawURL, r.failurePrefix):
		return RedirectFailure
	default:
		return RedirectUnmatched
	}
}

// Resolve classifies the URL and, when it matches, completes the session
// it names. Unmatched URLs produce no transition and a nil session.
func (r *RedirectResolver) Resolve(ctx context.Context, rawURL string) (*models.Session, RedirectOutcome, error) {
	outcome := r.Classify(rawURL)
	if outcome == RedirectUnmatched {
		return nil, RedirectUnmatched, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, outcome, fmt.Errorf("parsing redirect url: %w", err)
	}
	sessionID := u.Query().Get("session_id")
	if sessionID == "" {
		return nil, outcome, fmt.Errorf("redirect url missing session_id")
	}

	var session *models.Session
	switch outcome {
	case RedirectSuccess:
		session, err = r.service.ResolveAuthenticationSuccess(ctx, sessionID)
	case RedirectFailure:
		session, err = r.service.ResolveAuthenticationFailure(ctx, sessionID)
	}
	if err != nil {
		return nil, outcome, err
	}
	return session, outcome, nil
}
