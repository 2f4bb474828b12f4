package invoice

import (
	"context"
	"fmt"
	"time"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/core/tx"
	"facturago/internal/domain"
	"facturago/internal/domain/series"
	"facturago/pkg/logger"
	"facturago/pkg/numfmt"
)

// maxFinalizeAttempts bounds the finalize retry loop. Two concurrent
// finalizes on the same series collide at most once per slot; three
// attempts absorb realistic contention without hiding a systemic problem.
const maxFinalizeAttempts = 3

// Service orchestrates the invoice lifecycle: draft creation with a
// provisional number, draft mutation, and the one-way draft -> final
// transition that assigns the authoritative sequential number.
type Service struct {
	repo        Repository
	seriesStore SeriesStore
	artifacts   ArtifactChecker
	txManager   tx.Manager

	// now is injected for testability; year substitution and audit
	// timestamps are the only wall-clock inputs.
	now func() time.Time

	// afterTransition, when set, runs after a successful finalize/submit.
	// Used for audit logging; failures are logged, not propagated.
	afterTransition func(ctx context.Context, inv *Invoice)
}

// OnTransition registers a callback invoked after a successful
// finalize/submit, outside the numbering transaction.
func (s *Service) OnTransition(fn func(ctx context.Context, inv *Invoice)) {
	s.afterTransition = fn
}

// NewService creates a new invoice lifecycle service.
func NewService(repo Repository, seriesStore SeriesStore, artifacts ArtifactChecker, txManager tx.Manager) *Service {
	return &Service{
		repo:        repo,
		seriesStore: seriesStore,
		artifacts:   artifacts,
		txManager:   txManager,
		now:         time.Now,
	}
}

// CreateDraft creates a draft invoice with a provisional display number.
//
// The provisional number previews counter+1 and is advisory only: nothing
// is committed to the series, so drafts are free to create, delete and
// recreate without consuming numbering. The number assigned at finalize
// time may differ (the allocator fills gaps; the preview does not).
func (s *Service) CreateDraft(ctx context.Context, inv *Invoice) error {
	srs, err := s.resolveSeries(ctx, inv)
	if err != nil {
		return err
	}

	if err := inv.Validate(ctx); err != nil {
		return err
	}

	provisional, err := numfmt.Format(srs.Pattern, srs.Counter+1, s.now())
	if err != nil {
		return apperror.NewValidation("series pattern cannot format a number").
			WithDetail("series_id", srs.ID.String()).
			WithCause(err)
	}
	inv.Number = DraftPrefix + provisional
	inv.Status = StatusDraft

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "draft invoice created", "id", inv.ID, "number", inv.Number)
	return nil
}

// resolveSeries loads the invoice's series, falling back to the owner's
// default standard series when none is set. Cross-owner references surface
// as not-found.
func (s *Service) resolveSeries(ctx context.Context, inv *Invoice) (*series.Series, error) {
	if id.IsNil(inv.SeriesID) {
		srs, err := s.seriesStore.GetDefault(ctx, inv.OwnerID, series.TypeStandard)
		if err != nil {
			return nil, err
		}
		inv.SeriesID = srs.ID
		return srs, nil
	}

	srs, err := s.seriesStore.GetByID(ctx, inv.SeriesID)
	if err != nil {
		return nil, err
	}
	if srs.OwnerID != inv.OwnerID {
		return nil, apperror.NewNotFound("series", inv.SeriesID.String())
	}
	return srs, nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	inv.Lines = lines

	return inv, nil
}

// UpdateDraft updates a draft invoice. Any field may change, including the
// series, which re-derives the provisional number. Non-drafts are locked.
func (s *Service) UpdateDraft(ctx context.Context, inv *Invoice) error {
	stored, err := s.repo.GetByID(ctx, inv.ID)
	if err != nil {
		return err
	}
	if err := stored.CanModify(); err != nil {
		return err
	}

	if inv.SeriesID != stored.SeriesID {
		srs, err := s.resolveSeries(ctx, inv)
		if err != nil {
			return err
		}
		provisional, err := numfmt.Format(srs.Pattern, srs.Counter+1, s.now())
		if err != nil {
			return apperror.NewValidation("series pattern cannot format a number").
				WithDetail("series_id", srs.ID.String()).
				WithCause(err)
		}
		inv.Number = DraftPrefix + provisional
	}

	if err := inv.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if err := s.repo.SaveLines(ctx, inv.ID, inv.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// AttachArtifact records the rendered document reference on a draft.
// The PDF subsystem calls this once rendering succeeds; finalization
// requires it.
func (s *Service) AttachArtifact(ctx context.Context, invoiceID id.ID, ref string) error {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := inv.CanModify(); err != nil {
		return err
	}

	inv.ArtifactRef = &ref
	return s.repo.Update(ctx, inv)
}

// Finalize transitions a draft to final, assigning the authoritative
// sequential number. One-way: there is no transition out of final.
func (s *Service) Finalize(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.transition(ctx, invoiceID, StatusFinal)
}

// Submit transitions a draft to submitted. Numbering-wise identical to
// Finalize; submitted is the immutable sibling used when the document goes
// straight to the tax agency.
func (s *Service) Submit(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.transition(ctx, invoiceID, StatusSubmitted)
}

func (s *Service) transition(ctx context.Context, invoiceID id.ID, target Status) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if !inv.IsDraft() {
		return nil, apperror.NewInvoiceFinalized(invoiceID.String()).
			WithDetail("status", string(inv.Status))
	}

	hasArtifact, err := s.artifacts.HasArtifact(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("check document artifact: %w", err)
	}
	if !hasArtifact {
		return nil, apperror.NewMissingArtifact(invoiceID.String())
	}

	srs, err := s.seriesStore.GetByID(ctx, inv.SeriesID)
	if err != nil {
		return nil, err
	}

	// Bounded retry: a concurrent finalize on the same series may win the
	// slot between our read of the final set and our write. Each attempt
	// re-reads the set inside a fresh serializable transaction. Never
	// recursive, never unbounded.
	var lastErr error
	for attempt := 1; attempt <= maxFinalizeAttempts; attempt++ {
		err := s.txManager.RunSerializable(ctx, func(ctx context.Context) error {
			return s.assignFinalNumber(ctx, inv, srs, target)
		})
		if err == nil {
			logger.Info(ctx, "invoice finalized",
				"id", inv.ID, "number", inv.Number, "status", string(target), "attempt", attempt)
			if s.afterTransition != nil {
				s.afterTransition(ctx, inv)
			}
			return inv, nil
		}

		if !isNumberingRace(err) {
			return nil, err
		}
		lastErr = err

		// Refresh before retrying: the row version moved if anything
		// touched the invoice, and the draft may even have been finalized
		// by a concurrent request.
		fresh, readErr := s.repo.GetByID(ctx, invoiceID)
		if readErr != nil {
			return nil, readErr
		}
		if !fresh.IsDraft() {
			return nil, apperror.NewInvoiceFinalized(invoiceID.String()).
				WithDetail("status", string(fresh.Status))
		}
		inv = fresh

		logger.Warn(ctx, "finalize retry after numbering race",
			"id", invoiceID, "attempt", attempt, "error", err)
	}

	return nil, apperror.NewConcurrentModification("invoice", invoiceID.String()).
		WithDetail("reason", "numbering retries exhausted").
		WithCause(lastErr)
}

// assignFinalNumber runs inside the serializable transaction: read the
// authoritative final-number set, allocate the lowest free slot, stamp the
// invoice and advance the advisory counter.
func (s *Service) assignFinalNumber(ctx context.Context, inv *Invoice, srs *series.Series, target Status) error {
	displays, err := s.repo.FinalNumbers(ctx, inv.SeriesID)
	if err != nil {
		return fmt.Errorf("read final numbers: %w", err)
	}

	seq := nextSequence(usedSequences(srs.Pattern, displays))

	display, err := numfmt.Format(srs.Pattern, seq, s.now())
	if err != nil {
		return apperror.NewValidation("series pattern cannot format a number").
			WithDetail("series_id", srs.ID.String()).
			WithCause(err)
	}

	// The allocator works off the set we just read; this guards against a
	// write that slipped in between reads under weaker isolation.
	taken, err := s.repo.FinalNumberExists(ctx, inv.SeriesID, display, inv.ID)
	if err != nil {
		return fmt.Errorf("check number uniqueness: %w", err)
	}
	if taken {
		return apperror.NewDuplicate("invoice", "display_number", display)
	}

	inv.Number = display
	inv.Status = target
	inv.UpdatedAtNow(s.now())

	if err := s.repo.Update(ctx, inv); err != nil {
		return err
	}

	if _, err := s.seriesStore.IncrementCounter(ctx, inv.SeriesID); err != nil {
		return fmt.Errorf("increment series counter: %w", err)
	}

	return nil
}

// isNumberingRace reports whether the error is a lost race on the final
// number (unique-index violation, serialization failure, or stale row
// version) rather than a genuine failure.
func isNumberingRace(err error) bool {
	if apperror.IsConcurrentModification(err) {
		return true
	}
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Code == apperror.CodeDuplicate
	}
	return false
}

// Delete soft-deletes a draft invoice. Final and submitted invoices can
// never be deleted; deleting one would tear a hole in the numbering.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if err := inv.CanModify(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, invoiceID); err != nil {
		return err
	}

	logger.Info(ctx, "draft invoice deleted", "id", invoiceID)
	return nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
