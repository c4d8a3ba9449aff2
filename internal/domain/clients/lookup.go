package clients

import (
	"context"
	"errors"
)

// Exists lo usan programs, visits y laborders para validar el clientId
// sin importar este paquete.
func (s *Service) Exists(ctx context.Context, clientID string) (bool, error) {
	_, err := s.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
