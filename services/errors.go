package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds returned by the occupancy operations. Controllers map them
// to status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrGenderMismatch    = errors.New("user gender does not match room gender")
	ErrCapacityExceeded  = errors.New("room capacity exceeded")
	ErrAlreadyInRoom     = errors.New("user already lives in this room")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrDuplicateID       = errors.New("room id already exists")
	ErrTransferConflict  = errors.New("users already live in another room")
	ErrPersistence       = errors.New("persistence failure")

	ErrUserBanned   = errors.New("user is banned")
	ErrForbidden    = errors.New("operation not permitted for this principal")
	ErrInvalidInput = errors.New("invalid input")

	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrPendingRequestExists = fmt.Errorf("%w: user already has a pending request", ErrInvalidTransition)
	ErrRequestNotPending    = fmt.Errorf("%w: request is not pending", ErrInvalidTransition)
	ErrAlreadyBanned        = fmt.Errorf("%w: user is already banned", ErrInvalidTransition)
)

// Transfer describes a user that a roster edit would pull out of another room.
type Transfer struct {
	UserID     uint   `json:"userId"`
	FromRoomID string `json:"fromRoomId"`
}

// TransferConflictError lists every cross-room move a roster edit attempted.
type TransferConflictError struct {
	RoomID    string
	Transfers []Transfer
}

func (e *TransferConflictError) Error() string {
	parts := make([]string, 0, len(e.Transfers))
	for _, t := range e.Transfers {
		parts = append(parts, fmt.Sprintf("user %d from %s", t.UserID, t.FromRoomID))
	}
	return fmt.Sprintf("%s: cannot move into %s (%s)", ErrTransferConflict, e.RoomID, strings.Join(parts, ", "))
}

func (e *TransferConflictError) Unwrap() error { return ErrTransferConflict }

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

var domainErrors = []error{
	ErrNotFound,
	ErrGenderMismatch,
	ErrCapacityExceeded,
	ErrAlreadyInRoom,
	ErrInvalidTransition,
	ErrDuplicateID,
	ErrTransferConflict,
	ErrPersistence,
	ErrUserBanned,
	ErrForbidden,
	ErrInvalidInput,
	ErrDuplicateEmail,
	ErrInvalidCredentials,
}

// classify leaves domain errors untouched and wraps anything coming from
// the store as ErrPersistence.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
