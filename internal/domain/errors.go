package domain

import "errors"

var (
	// Validation errors. Decided locally, never retried.
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidAmount        = errors.New("amount must be a positive decimal")
	ErrInvalidEntryType     = errors.New("entry type must be 'credit' or 'debit'")
	ErrInvalidTransactionID = errors.New("transaction_id must be a uuid")
	ErrInvalidCreatedBy     = errors.New("created_by must be a 5-digit operator code")
	ErrCreatorNotSender     = errors.New("creator account must equal sender account")
	ErrSameAccount          = errors.New("cannot transfer to same account")

	// Conflict errors. The duplicate variants mean the idempotency guard
	// tripped; the writer decides whether the replay matches.
	ErrDuplicateEntry       = errors.New("entry already exists with a different payload")
	ErrDuplicateTransaction = errors.New("transaction already exists")
	ErrConcurrencyConflict  = errors.New("account state version conflict")

	// Store errors.
	ErrStoreUnavailable = errors.New("store unavailable, outcome unknown")
	ErrAccountNotFound  = errors.New("account not found")
	ErrEntryNotFound    = errors.New("entry not found")
)

// IsValidation reports whether err belongs to the validation class, i.e.
// was decided before any state was touched.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrMissingField,
		ErrInvalidAmount,
		ErrInvalidEntryType,
		ErrInvalidTransactionID,
		ErrInvalidCreatedBy,
		ErrCreatorNotSender,
		ErrSameAccount,
	} {
		if errors.Is(err, v) {
			return true
		}
	}

	return false
}

// IsConflict reports whether err is a non-retryable idempotency conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEntry) || errors.Is(err, ErrDuplicateTransaction)
}
