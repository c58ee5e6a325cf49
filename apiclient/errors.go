// apiclient/errors.go
package apiclient

// AuthError is a session error. Errors are matched by Type with errors.Is, and the cause
// (usually a *response.APIError) stays reachable through errors.As.
type AuthError struct {
	Type string
	Err  error
}

var (
	// ErrUnauthenticated reports that no valid session exists or a token refresh failed.
	ErrUnauthenticated = &AuthError{Type: "unauthenticated"}
	// ErrWrongCredentials reports that the token endpoint rejected a grant with 401.
	ErrWrongCredentials = &AuthError{Type: "wrong_credentials"}
)

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Type + ": " + e.Err.Error()
	}
	return e.Type
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError with the same Type.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Type == e.Type
}

func authError(kind *AuthError, cause error) error {
	return &AuthError{Type: kind.Type, Err: cause}
}
