package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alovak/checkout-playground/checkout/models"
	"github.com/go-chi/chi/v5"
)

// API is the HTTP surface over the payment orchestrator.
type API struct {
	service  *Service
	resolver *RedirectResolver
}

func NewAPI(service *Service, resolver *RedirectResolver) *API {
	return &API{
		service:  service,
		resolver: resolver,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", a.submitPayment)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", a.getSession)
			r.Get("/details", a.getDetails)
			r.Post("/cancel", a.cancelAuthentication)
			r.Post("/reset", a.resetSession)
		})
	})

	// The gateway sends the user's browser here after the 3DS challenge;
	// the same URLs arrive as deep links on mobile deliveries.
	r.Route("/callbacks/3ds", func(r chi.Router) {
		r.Get("/success", a.resolveRedirect)
		r.Get("/failure", a.resolveRedirect)
	})
}

type submitRequest struct {
	Card     models.CardInput `json:"card"`
	Amount   int64            `json:"amount"`
	Currency string           `json:"currency"`
}

func (a *API) submitPayment(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := a.service.Submit(r.Context(), req.Card, req.Amount, req.Currency)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, struct {
				Errors ValidationErrors `json:"errors"`
			}{verrs})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Gateway declines are session state, not HTTP errors.
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (a *API) getDetails(w http.ResponseWriter, r *http.Request) {
	details, err := a.service.Details(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (a *API) cancelAuthentication(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.CancelAuthentication(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (a *API) resetSession(w http.ResponseWriter, r *http.Request) {
	session, err := a.service.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (a *API) resolveRedirect(w http.ResponseWriter, r *http.Request) {
	// Reconstruct the full callback URL the way it was configured at the
	// gateway, so the resolver's prefix matching sees what the gateway sent.
	session, outcome, err := a.resolver.Resolve(r.Context(), requestURL(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	if outcome == RedirectUnmatched {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
