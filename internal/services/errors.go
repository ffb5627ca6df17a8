package services

import "errors"

// Kind classifies a service failure so the HTTP layer can pick a status code
// without knowing every sentinel.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInfrastructure for anything unclassified.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInfrastructure
}

const msgInvalidCredentials = "invalid email, password or code"

var (
	ErrInvalidCredentials    = newError(KindAuthentication, msgInvalidCredentials)
	ErrInvalidOTP            = newError(KindAuthentication, msgInvalidCredentials)
	ErrForbidden             = newError(KindAuthorization, "access denied")
	ErrEmailTaken            = newError(KindConflict, "email already registered")
	ErrPrincipalNotFound     = newError(KindNotFound, "user not found")
	ErrInvalidOrExpiredToken = newError(KindValidation, "invalid or expired reset token")
	ErrWeakPassword          = newError(KindValidation, "password must be between 8 and 72 characters")

	ErrAmbiguousTarget    = newError(KindValidation, "exactly one of lostItemId or foundItemId must be provided")
	ErrMissingContact     = newError(KindValidation, "contact information is required")
	ErrTargetNotFound     = newError(KindValidation, "the referenced item does not exist")
	ErrDuplicateClaim     = newError(KindConflict, "you have already submitted a claim for this item")
	ErrNotRequester       = newError(KindAuthorization, "only reporters can file claim requests")
	ErrClaimNotFound      = newError(KindNotFound, "claim request not found")
	ErrInvalidClaimStatus = newError(KindValidation, "status must be APPROVED or REJECTED")
	ErrAlreadyReviewed    = newError(KindConflict, "claim request has already been reviewed")
	ErrAdminNotFound      = newError(KindNotFound, "admin not found")
	ErrNotReviewed        = newError(KindConflict, "claim request has not been reviewed")
	ErrWrongAdmin         = newError(KindAuthorization, "only the admin who reviewed this claim can roll it back")
	ErrNotOwner           = newError(KindAuthorization, "you can only delete your own claim requests")
	ErrNotPending         = newError(KindConflict, "only pending claim requests can be deleted")

	ErrLostReportNotFound  = newError(KindNotFound, "lost item not found")
	ErrFoundReportNotFound = newError(KindNotFound, "found item not found")
	ErrStatusImmutable     = newError(KindValidation, "item status cannot be changed directly")
)
