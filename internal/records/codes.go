package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwantia/arsip/pkg/db/models"
)

func (s *Service) AddCode(ctx context.Context, code, description string) (*models.ReferenceCode, error) {
	ref := &models.ReferenceCode{
		Code:        strings.TrimSpace(code),
		Description: strings.TrimSpace(description),
	}
	if err := validateCode(ref); err != nil {
		return nil, err
	}

	if err := s.store.CreateCode(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *Service) UpdateCode(ctx context.Context, id uint, code, description string) (*models.ReferenceCode, error) {
	ref := &models.ReferenceCode{
		ID:          id,
		Code:        strings.TrimSpace(code),
		Description: strings.TrimSpace(description),
	}
	if err := validateCode(ref); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCode(ctx, ref); err != nil {
		return nil, fmt.Errorf("failed to update code %d: %w", id, err)
	}
	return ref, nil
}

func (s *Service) ListCodes(ctx context.Context) ([]models.ReferenceCode, error) {
	return s.store.ListCodes(ctx)
}

func (s *Service) DeleteCode(ctx context.Context, id uint) error {
	return s.store.DeleteCode(ctx, id)
}

func validateCode(ref *models.ReferenceCode) error {
	if ref.Code == "" {
		return fmt.Errorf("%w: code", ErrMissingField)
	}
	if ref.Description == "" {
		return fmt.Errorf("%w: description", ErrMissingField)
	}
	return nil
}
