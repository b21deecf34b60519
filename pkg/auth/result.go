package auth

// Status is the outcome class of an authentication attempt.
type Status string

const (
	// StatusAuthenticated means a fresh credential login succeeded.
	StatusAuthenticated Status = "authenticated"

	// StatusSessionRestored means a stored session validated live.
	StatusSessionRestored Status = "session_restored"

	// StatusLoginFailed means some step of a fresh login failed.
	StatusLoginFailed Status = "login_failed"

	// StatusInvalidCredentials means the portal rejected the credentials.
	StatusInvalidCredentials Status = "invalid_credentials"

	// StatusSessionExpired means the stored session had passed its horizon.
	StatusSessionExpired Status = "session_expired"
)

// Result is the typed outcome of an authentication attempt. The
// authenticator always returns one of these; it never surfaces a raw
// browsing fault to the caller.
type Result struct {
	Status  Status
	Message string

	// Identity and SessionDir are set on the two success statuses.
	Identity   string
	SessionDir string
}

// OK reports whether the result represents an authenticated session.
func (r Result) OK() bool {
	return r.Status == StatusAuthenticated || r.Status == StatusSessionRestored
}
