// Package session persists wizard drafts between HTTP requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

var (
	// ErrNotFound is a missing or expired draft.
	ErrNotFound = errors.New("wizard session not found")
	// ErrLocked means another request holds the session.
	ErrLocked = errors.New("wizard session is busy")
)

// LockTTL bounds how long a crashed holder can keep a session locked.  It
// must outlast a full submission against the booking backend.
const LockTTL = 2 * time.Minute

// Store keeps drafts keyed by session id.  Every successful Get or Save
// extends the draft's lifetime.
type Store interface {
	Get(ctx context.Context, id string) (model.BookingDraft, error)
	Save(ctx context.Context, d model.BookingDraft) error
	Delete(ctx context.Context, id string) error
	// Lock takes the per-session lock without waiting.  It fails with
	// ErrLocked while another holder has it.  unlock only releases the
	// lock this call acquired, so a late unlock after expiry is harmless.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// NewID returns a fresh session id.
func NewID() string { return uuid.NewString() }
