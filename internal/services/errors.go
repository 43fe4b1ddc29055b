package services

// Typed service errors. Handlers translate these to HTTP statuses in one
// place; anything else surfaces as a generic 500.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// SessionExpiredError marks a guest session past its expiry or switched off.
type SessionExpiredError struct{ Message string }

func (e *SessionExpiredError) Error() string { return e.Message }

func (e *SessionExpiredError) AuthCode() string { return "SESSION_EXPIRED" }

// AccountDisabledError marks a deactivated registered account.
type AccountDisabledError struct{ Message string }

func (e *AccountDisabledError) Error() string { return e.Message }

func (e *AccountDisabledError) AuthCode() string { return "ACCOUNT_DISABLED" }
