package identity

import (
	goerrors "github.com/goliatone/go-errors"
)

// Failure taxonomy returned by the core operations. Every operation returns
// one of these values (or a wrapped CategoryInternal error); nothing is
// thrown past the package boundary unannotated.
var (
	// ErrInvalidCredentials is the deliberately uninformative login failure.
	// A missing account and a wrong password produce this same value so the
	// response cannot be used to enumerate registered emails.
	ErrInvalidCredentials = goerrors.New("Invalid email or password", goerrors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(goerrors.CodeUnauthorized)

	// ErrPendingApproval blocks admin-tier logins that have not been approved.
	ErrPendingApproval = goerrors.New("Your account is pending approval from Super Admin", goerrors.CategoryAuth).
				WithTextCode("PENDING_APPROVAL").
				WithCode(goerrors.CodeUnauthorized)

	// ErrEmailRegistered is returned when a signup hits an existing address.
	ErrEmailRegistered = goerrors.New("Email already registered", goerrors.CategoryConflict).
				WithTextCode("EMAIL_REGISTERED").
				WithCode(goerrors.CodeConflict)

	// ErrSuperAdminExists guards the one-time bootstrap.
	ErrSuperAdminExists = goerrors.New("Super admin already exists", goerrors.CategoryConflict).
				WithTextCode("SUPER_ADMIN_EXISTS").
				WithCode(goerrors.CodeConflict)

	// ErrServiceRequired rejects admin signups without a service assignment.
	ErrServiceRequired = goerrors.New("Service is required for admin accounts", goerrors.CategoryValidation).
				WithTextCode("SERVICE_REQUIRED").
				WithCode(goerrors.CodeBadRequest)

	// ErrNotAuthorized is the uniform capability-check failure.
	ErrNotAuthorized = goerrors.New("caller lacks the required role", goerrors.CategoryAuthz).
				WithTextCode("NOT_AUTHORIZED").
				WithCode(goerrors.CodeForbidden)

	// ErrPrincipalNotFound is returned on reads and updates of unknown ids.
	ErrPrincipalNotFound = goerrors.New("principal not found", goerrors.CategoryNotFound).
				WithTextCode("PRINCIPAL_NOT_FOUND").
				WithCode(goerrors.CodeNotFound)

	// ErrTokenExpired marks tokens whose expiry horizon has passed.
	ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(goerrors.CodeUnauthorized)

	// ErrTokenMalformed covers structural damage, signature mismatch, and
	// tokens missing the bearer scheme.
	ErrTokenMalformed = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(goerrors.CodeUnauthorized)

	// ErrNoEmptyString rejects empty passwords before hashing.
	ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
				WithTextCode("EMPTY_PASSWORD").
				WithCode(goerrors.CodeBadRequest)

	// ErrMismatchedHashAndPassword is the internal hash-verify miss. Login
	// translates it to ErrInvalidCredentials before returning.
	ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
					WithTextCode("PASSWORD_MISMATCH").
					WithCode(goerrors.CodeUnauthorized)
)

// IsConflict reports whether err is one of the duplicate-record failures.
func IsConflict(err error) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryConflict
	}
	return false
}

// IsAuthorizationFailure reports whether err is a capability-check failure,
// as opposed to a credential failure.
func IsAuthorizationFailure(err error) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.Category == goerrors.CategoryAuthz
	}
	return false
}
