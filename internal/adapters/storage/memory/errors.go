package memory

import "health-dashboard/internal/ports/storage"

var (
	ErrNotFound = storage.ErrNotFound
	ErrConflict = storage.ErrConflict
)
