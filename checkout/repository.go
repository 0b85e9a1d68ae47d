package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/checkout-playground/checkout/models"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

var ErrNotFound = fmt.Errorf("not found")

var ErrConflict = fmt.Errorf("conflict")

// Repository stores payment sessions. The zero-db form keeps everything in
// memory behind a mutex (tests, local runs); with a db it reads and writes
// the checkout.sessions table.
type Repository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session

	db *sql.DB
}

func NewRepository() *Repository {
	return &Repository{
		sessions: make(map[string]*models.Session),
	}
}

// NewPGRepository constructs a db-backed repository.
func NewPGRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSession(ctx context.Context, session *models.Session) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.sessions[session.ID]; ok {
			return fmt.Errorf("session %s exists: %w", session.ID, ErrConflict)
		}
		r.sessions[session.ID] = session
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO checkout.sessions(session_id, phase, amount, currency, payment_id, redirect_url, error_message, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, session.ID, string(session.Phase), session.Amount, session.Currency,
		session.PaymentID, session.RedirectURL, session.ErrorMessage,
		session.CreatedAt, session.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	if r.db == nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		session, ok := r.sessions[sessionID]
		if !ok {
			return nil, ErrNotFound
		}
		copied := *session
		return &copied, nil
	}

	row := r.db.QueryRowContext(ctx, `
        SELECT session_id, phase, amount, currency, payment_id, redirect_url, error_message, created_at, updated_at
          FROM checkout.sessions WHERE session_id=$1
    `, sessionID)

	var s models.Session
	var phase string
	if err := row.Scan(&s.ID, &phase, &s.Amount, &s.Currency, &s.PaymentID, &s.RedirectURL, &s.ErrorMessage, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Phase = models.Phase(phase)
	return &s, nil
}

func (r *Repository) UpdateSession(ctx context.Context, session *models.Session) error {
	if r.db == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.sessions[session.ID]; !ok {
			return ErrNotFound
		}
		copied := *session
		r.sessions[session.ID] = &copied
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
        UPDATE checkout.sessions
           SET phase=$2, payment_id=$3, redirect_url=$4, error_message=$5, updated_at=$6
         WHERE session_id=$1
    `, session.ID, string(session.Phase), session.PaymentID, session.RedirectURL, session.ErrorMessage, session.UpdatedAt)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping returns DB readiness.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
