package services

import (
	"errors"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/repository"
	"yieldvest/internal/valuation"
)

// storeError maps a storage error onto the AppError callers see.
func storeError(err error, notFound *apperrors.AppError) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// valuationError maps an engine error onto the AppError callers see.
func valuationError(err error) error {
	if errors.Is(err, valuation.ErrInconsistentSnapshot) {
		return apperrors.Wrap(apperrors.ErrInconsistentSnapshot, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
