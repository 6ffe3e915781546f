package authstore

// FallbackLoginMessage is used when the auth service rejects a login
// without supplying a machine-readable message.
const FallbackLoginMessage = "Error al iniciar sesión"

// AuthError is a login rejected by the auth service. Message is the
// server-supplied detail or FallbackLoginMessage, rendered inline by the
// login form.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
