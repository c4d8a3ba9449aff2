package storage

import "errors"

// Errores comunes a los adapters de storage (memory / postgres).
// Los services los traducen a sus propios sentinels con errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
