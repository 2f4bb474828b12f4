package series

import (
	"context"
	"fmt"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/core/tx"
	"facturago/internal/domain"
	"facturago/pkg/logger"
)

// Service provides business operations for numbering series.
type Service struct {
	repo      Repository
	usage     UsageChecker
	txManager tx.Manager
}

// NewService creates a new series service.
func NewService(repo Repository, usage UsageChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		usage:     usage,
		txManager: txManager,
	}
}

// Create creates a numbering series. When the series is marked default, the
// default flag on every sibling of the same (owner, type) is cleared in the
// same transaction.
func (s *Service) Create(ctx context.Context, srs *Series) error {
	if err := srs.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if srs.IsDefault {
			if err := s.repo.ClearDefault(ctx, srs.OwnerID, srs.Type); err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}
		if err := s.repo.Create(ctx, srs); err != nil {
			return fmt.Errorf("create series: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "series created",
		"id", srs.ID, "pattern", srs.Pattern, "type", srs.Type, "default", srs.IsDefault)
	return nil
}

// GetByID retrieves a series.
func (s *Service) GetByID(ctx context.Context, seriesID id.ID) (*Series, error) {
	return s.repo.GetByID(ctx, seriesID)
}

// GetDefault retrieves the owner's default series for a type.
func (s *Service) GetDefault(ctx context.Context, ownerID string, typ Type) (*Series, error) {
	return s.repo.GetDefault(ctx, ownerID, typ)
}

// SetDefault makes the series the default for its (owner, type).
// Clear-then-set runs in one transaction so there is never a window with
// zero or two defaults.
func (s *Service) SetDefault(ctx context.Context, seriesID id.ID) error {
	srs, err := s.repo.GetByID(ctx, seriesID)
	if err != nil {
		return err
	}

	if srs.IsDefault {
		return nil
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.ClearDefault(ctx, srs.OwnerID, srs.Type); err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
		srs.IsDefault = true
		srs.Touch()
		if err := s.repo.Update(ctx, srs); err != nil {
			return fmt.Errorf("set default: %w", err)
		}
		return nil
	})
}

// Update modifies a series. Changing the pattern is rejected once any
// non-draft invoice exists in the series: finalized numbers were formatted
// under the old pattern and renumbering them is forbidden.
func (s *Service) Update(ctx context.Context, srs *Series) error {
	if err := srs.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByID(ctx, srs.ID)
	if err != nil {
		return err
	}

	if srs.Pattern != existing.Pattern {
		hasFinal, err := s.usage.SeriesHasFinal(ctx, srs.ID)
		if err != nil {
			return fmt.Errorf("check series usage: %w", err)
		}
		if hasFinal {
			return apperror.NewSeriesInUse(srs.ID.String(),
				"cannot change the pattern of a series with finalized invoices").
				WithDetail("pattern", existing.Pattern)
		}
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if srs.IsDefault && !existing.IsDefault {
			if err := s.repo.ClearDefault(ctx, srs.OwnerID, srs.Type); err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}
		if err := s.repo.Update(ctx, srs); err != nil {
			return fmt.Errorf("update series: %w", err)
		}
		return nil
	})
}

// Delete removes a series. The owner's default series and any series
// referenced by an invoice (draft included) cannot be deleted: that would
// orphan numbering history.
func (s *Service) Delete(ctx context.Context, seriesID id.ID) error {
	srs, err := s.repo.GetByID(ctx, seriesID)
	if err != nil {
		return err
	}

	if srs.IsDefault {
		return apperror.NewConflict("cannot delete the default series").
			WithDetail("series_id", seriesID.String()).
			WithDetail("type", string(srs.Type))
	}

	inUse, err := s.usage.SeriesInUse(ctx, seriesID)
	if err != nil {
		return fmt.Errorf("check series usage: %w", err)
	}
	if inUse {
		return apperror.NewSeriesInUse(seriesID.String(),
			"cannot delete a series that already has invoices")
	}

	if err := s.repo.Delete(ctx, seriesID); err != nil {
		return err
	}

	logger.Info(ctx, "series deleted", "id", seriesID)
	return nil
}

// List retrieves series with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Series], error) {
	return s.repo.List(ctx, filter)
}
