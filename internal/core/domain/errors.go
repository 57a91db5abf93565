package domain

import "errors"

// Error kinds. Every concrete error below wraps exactly one of them so
// callers can branch with errors.Is without knowing the specific reason.
var (
	ErrNotFound     = errors.New("not found")
	ErrIneligible   = errors.New("ineligible")
	ErrPremature    = errors.New("premature completion")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Error is a recoverable failure carrying the human-readable reason shown
// to the user. Kind is one of the error kinds above.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

var (
	ErrUserNotFound  = newError(ErrNotFound, "user not found")
	ErrAdNotFound    = newError(ErrNotFound, "ad not found")
	ErrAdminNotFound = newError(ErrNotFound, "admin not found")

	ErrAdInactive     = newError(ErrIneligible, "ad is no longer active")
	ErrViewCapReached = newError(ErrIneligible, "view cap reached")
	ErrAlreadyViewed  = newError(ErrIneligible, "you have already viewed this ad")
	ErrUserDisabled   = newError(ErrIneligible, "account is disabled")

	ErrInsufficientWatchTime = newError(ErrPremature, "insufficient watch time")
	ErrNotClicked            = newError(ErrPremature, "click the ad to start watching first")

	ErrNoActiveSession  = newError(ErrConflict, "no active view session")
	ErrCountdownRunning = newError(ErrConflict, "the countdown of this view is run by the server")
	ErrPhoneTaken       = newError(ErrConflict, "phone number is already registered")

	ErrInvalidPhone     = newError(ErrValidation, "invalid phone number")
	ErrInvalidPassword  = newError(ErrValidation, "password must be 6 to 20 characters long")
	ErrInvalidNickname  = newError(ErrValidation, "nickname must be 1 to 32 characters long")
	ErrInvalidStatus    = newError(ErrValidation, "unknown account status")
	ErrInvalidAd        = newError(ErrValidation, "ad needs a title, a non-negative reward, a positive duration and a positive view cap")
	ErrInvalidViewCap   = newError(ErrValidation, "view cap cannot be lower than the views already served")
	ErrInvalidDateRange = newError(ErrValidation, "dates must be YYYY-MM-DD and from must not be after to")

	ErrWrongPassword     = newError(ErrUnauthorized, "wrong password")
	ErrAdminUnauthorized = newError(ErrUnauthorized, "invalid admin credentials")

	ErrStorage = newError(ErrUnavailable, "operation failed, please try again later")
)

// Kind returns the error kind err belongs to, or nil when err is not a
// domain error.
func Kind(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return nil
}
