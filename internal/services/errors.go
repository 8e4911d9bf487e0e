package services

import (
	"context"
	"errors"
	"fmt"

	"gym_checkin_backend/internal/repositories"
)

// Validation errors. Every field-specific error wraps ErrValidation.
var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidName     = fmt.Errorf("%w: invalid name", ErrValidation)
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrInvalidCategory = fmt.Errorf("%w: invalid class category", ErrValidation)
	ErrInvalidSlot     = fmt.Errorf("%w: invalid time slot", ErrValidation)
	ErrInvalidTrainer  = fmt.Errorf("%w: invalid trainer", ErrValidation)
	ErrInvalidID       = fmt.Errorf("%w: malformed id", ErrValidation)
	ErrInvalidCard     = fmt.Errorf("%w: invalid card", ErrValidation)
)

// Identity and entitlement outcomes.
var (
	ErrAmbiguousMember = errors.New("several members share this name; an email is needed")
	ErrNameConflict    = errors.New("a member with this name already exists")
	ErrEmailConflict   = errors.New("email already belongs to another member")
	ErrMemberNotFound  = errors.New("member not found")
	ErrCheckInNotFound = errors.New("check-in not found")
	ErrNoValidCard     = errors.New("no valid card for this class")
)

// Persistence failures.
var (
	// ErrTransientFailure means nothing was written; the attempt may be
	// retried from the top.
	ErrTransientFailure = errors.New("temporary failure, nothing was recorded")
	// ErrOutcomeUnknown means the commit may or may not have been applied.
	ErrOutcomeUnknown = errors.New("commit outcome unknown")
	// ErrReferenceVanished means a referenced member, card or trainer was
	// removed while the request was in flight.
	ErrReferenceVanished = errors.New("referenced record no longer exists")
)

// errCardRaced is returned inside a check-in transaction when the selected
// card could not be decremented after all.
var errCardRaced = errors.New("selected card could not be decremented")

// classifyTxError maps an error returned by Transactor.InTx onto the service
// taxonomy. Errors that already belong to the taxonomy pass through.
func classifyTxError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNameConflict),
		errors.Is(err, ErrEmailConflict),
		errors.Is(err, ErrMemberNotFound),
		errors.Is(err, ErrReferenceVanished):
		return err
	case errors.Is(err, repositories.ErrCommitFailed):
		return fmt.Errorf("%w: %v", ErrOutcomeUnknown, err)
	case errors.Is(err, repositories.ErrForeignKey):
		return fmt.Errorf("%w: %v", ErrReferenceVanished, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTransientFailure, err)
	}
	return fmt.Errorf("%w: %v", ErrTransientFailure, err)
}

// failureReason labels a failed attempt for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNameConflict), errors.Is(err, ErrEmailConflict), errors.Is(err, ErrAmbiguousMember):
		return "identity_conflict"
	case errors.Is(err, ErrMemberNotFound):
		return "member_not_found"
	case errors.Is(err, ErrOutcomeUnknown):
		return "outcome_unknown"
	case errors.Is(err, ErrReferenceVanished):
		return "reference_vanished"
	}
	return "transient"
}
