package invoice

import (
	"context"
	"time"

	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/domain/series"
)

// Repository defines storage operations for invoices.
//
// The postgres implementation also satisfies series.UsageChecker via
// SeriesInUse/SeriesHasFinal, so the series service and this package share
// one invoice store.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invoiceID id.ID) error

	GetLines(ctx context.Context, invoiceID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, invoiceID id.ID, lines []Line) error

	// FinalNumbers returns the display numbers of every non-draft,
	// non-deleted invoice in the series. This set is the authoritative
	// numbering state the allocator works against.
	FinalNumbers(ctx context.Context, seriesID id.ID) ([]string, error)

	// FinalNumberExists reports whether a different non-draft invoice in
	// the series already holds the display number. Defensive re-check on
	// finalize; the unique index is the last line of defense.
	FinalNumberExists(ctx context.Context, seriesID id.ID, display string, excludeID id.ID) (bool, error)

	SeriesInUse(ctx context.Context, seriesID id.ID) (bool, error)
	SeriesHasFinal(ctx context.Context, seriesID id.ID) (bool, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
}

// SeriesStore is the slice of the series repository the lifecycle service
// needs: pattern/counter reads, default lookup, and the atomic counter bump.
type SeriesStore interface {
	GetByID(ctx context.Context, seriesID id.ID) (*series.Series, error)
	GetDefault(ctx context.Context, ownerID string, typ series.Type) (*series.Series, error)
	IncrementCounter(ctx context.Context, seriesID id.ID) (int, error)
}

// ArtifactChecker reports whether a rendered document exists for an invoice.
// Supplied by the PDF/storage subsystem.
type ArtifactChecker interface {
	HasArtifact(ctx context.Context, invoiceID id.ID) (bool, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	SeriesID  *id.ID
	ClientID  *id.ID
	CompanyID *id.ID
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
}
