package auth

import "time"

// Claims representa la información extraída de la sesión verificada.
type Claims struct {
	UserID   string
	Email    string
	TenantID string

	// ExpiresAt es opcional; cero = el proveedor no informó expiración.
	ExpiresAt time.Time
}

// Session es el resultado explícito de la verificación, por request.
// Se calcula una sola vez en el gate y viaja en el context hasta los handlers.
type Session struct {
	Authenticated bool
	Claims        Claims
}

// Anonymous es la sesión de un request sin credenciales válidas.
func Anonymous() Session {
	return Session{}
}

// Authenticated construye una sesión válida a partir de claims.
func Authenticated(c Claims) Session {
	return Session{Authenticated: true, Claims: c}
}
