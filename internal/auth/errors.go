package auth

import "errors"

var (
	// ErrInvalidInput indicates a malformed or incomplete request body.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateAccount indicates a registration against an existing email.
	ErrDuplicateAccount = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the account does not exist (forgot-password
	// lookup, or a user deleted after a challenge was issued).
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidChallenge covers every way a challenge token can fail
	// verification: bad signature, expiry, malformed token, or reuse.
	ErrInvalidChallenge = errors.New("invalid or expired OTP token")

	// ErrWrongPurpose indicates a challenge presented to the wrong flow,
	// e.g. a reset challenge submitted to OTP login verification.
	ErrWrongPurpose = errors.New("invalid token purpose")

	// ErrOTPMismatch indicates the submitted code does not match the
	// challenge.
	ErrOTPMismatch = errors.New("invalid OTP")

	// ErrInvalidSession indicates a session token that failed verification.
	ErrInvalidSession = errors.New("invalid session token")

	// ErrProvisioning indicates federated account provisioning failed.
	ErrProvisioning = errors.New("account provisioning failed")

	// ErrNotificationFailed indicates the OTP or temporary-password email
	// could not be delivered. The challenge is useless if the code never
	// arrives, so this surfaces to the caller.
	ErrNotificationFailed = errors.New("could not deliver email")
)
