package auth

import "context"

// SessionVerifier verifica un token de sesión emitido por el proveedor de identidad
// y devuelve claims o error.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
