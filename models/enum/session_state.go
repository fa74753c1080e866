package enum

// SessionState represents the authentication state of the client session.
type SessionState string

const (
	SessionStateAnonymous     SessionState = "anonymous"
	SessionStateAuthenticated SessionState = "authenticated"
)
