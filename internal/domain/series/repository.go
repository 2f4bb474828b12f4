package series

import (
	"context"

	"facturago/internal/core/id"
	"facturago/internal/domain"
)

// Repository defines storage operations for numbering series.
type Repository interface {
	Create(ctx context.Context, s *Series) error
	GetByID(ctx context.Context, seriesID id.ID) (*Series, error)
	GetDefault(ctx context.Context, ownerID string, typ Type) (*Series, error)
	Update(ctx context.Context, s *Series) error
	Delete(ctx context.Context, seriesID id.ID) error

	// ClearDefault drops the default flag from every series of the
	// (owner, type) pair. Called inside the same transaction that sets a
	// new default, so there is never a window with two defaults.
	ClearDefault(ctx context.Context, ownerID string, typ Type) error

	// IncrementCounter bumps the advisory counter by one in a single
	// UPDATE and returns the new value. Safe under concurrent finalizes.
	IncrementCounter(ctx context.Context, seriesID id.ID) (int, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Series], error)
}

// UsageChecker reports whether invoices reference a series.
// Implemented by the invoice repository; kept as a local interface so the
// series package does not depend on the invoice package.
type UsageChecker interface {
	// SeriesInUse reports whether any invoice (draft included) references
	// the series.
	SeriesInUse(ctx context.Context, seriesID id.ID) (bool, error)

	// SeriesHasFinal reports whether any non-draft invoice exists in the
	// series. Once true, the pattern is frozen.
	SeriesHasFinal(ctx context.Context, seriesID id.ID) (bool, error)
}

// ListFilter for filtering series.
type ListFilter struct {
	domain.ListFilter

	Type      *Type
	IsDefault *bool
}
