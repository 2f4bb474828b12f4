package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/core/types"
	"facturago/internal/domain/series"
)

const testOwner = "owner-1"

var testClock = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo  *memInvoiceRepo
	store *memSeriesStore
	svc   *Service
	srs   *series.Series
}

func newFixture(t *testing.T, pattern string) *fixture {
	t.Helper()

	srs := series.New(testOwner, pattern, series.TypeStandard, true)
	repo := newMemInvoiceRepo()
	store := newMemSeriesStore(srs)

	svc := NewService(repo, store, repo, passTxManager{})
	svc.now = func() time.Time { return testClock }

	return &fixture{repo: repo, store: store, svc: svc, srs: srs}
}

func (f *fixture) newDraft(t *testing.T) *Invoice {
	t.Helper()

	inv := New(testOwner, f.srs.ID, id.New(), id.New())
	inv.AddLine("Consultoría", types.NewQuantityFromFloat64(2), types.MinorUnits(10000), "21")
	require.NoError(t, f.svc.CreateDraft(context.Background(), inv))
	return inv
}

func (f *fixture) newDraftWithArtifact(t *testing.T) *Invoice {
	t.Helper()

	inv := f.newDraft(t)
	require.NoError(t, f.svc.AttachArtifact(context.Background(), inv.ID, "pdf/"+inv.ID.String()))
	return inv
}

func TestCreateDraftAssignsProvisionalNumber(t *testing.T) {
	f := newFixture(t, "FAC-####")

	inv := f.newDraft(t)

	assert.Equal(t, "DRAFT-FAC-0001", inv.Number)
	assert.Equal(t, StatusDraft, inv.Status)
	// The preview must not touch the counter.
	assert.Equal(t, 0, f.store.counter(f.srs.ID))
}

func TestCreateDraftSubstitutesYear(t *testing.T) {
	f := newFixture(t, "F%%-####")

	inv := f.newDraft(t)

	assert.Equal(t, "DRAFT-F25-0001", inv.Number)
}

func TestCreateDraftFallsBackToDefaultSeries(t *testing.T) {
	f := newFixture(t, "FAC-####")

	inv := New(testOwner, id.Nil(), id.New(), id.New())
	inv.AddLine("Servicio", types.NewQuantityFromFloat64(1), types.MinorUnits(5000), "21")
	require.NoError(t, f.svc.CreateDraft(context.Background(), inv))

	assert.Equal(t, f.srs.ID, inv.SeriesID)
	assert.Equal(t, "DRAFT-FAC-0001", inv.Number)
}

func TestCreateDraftRejectsForeignSeries(t *testing.T) {
	f := newFixture(t, "FAC-####")
	foreign := series.New("someone-else", "X-####", series.TypeStandard, true)
	f.store.series[foreign.ID] = foreign

	inv := New(testOwner, foreign.ID, id.New(), id.New())
	err := f.svc.CreateDraft(context.Background(), inv)

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFinalizeAssignsFirstNumber(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	got, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "FAC-0001", got.Number)
	assert.Equal(t, StatusFinal, got.Status)
	assert.Equal(t, 1, f.store.counter(f.srs.ID))

	stored, err := f.repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "FAC-0001", stored.Number)
	assert.Equal(t, StatusFinal, stored.Status)
}

func TestFinalizeAdvancesSequence(t *testing.T) {
	f := newFixture(t, "FAC-####")

	first := f.newDraftWithArtifact(t)
	second := f.newDraftWithArtifact(t)

	got1, err := f.svc.Finalize(context.Background(), first.ID)
	require.NoError(t, err)
	got2, err := f.svc.Finalize(context.Background(), second.ID)
	require.NoError(t, err)

	assert.Equal(t, "FAC-0001", got1.Number)
	assert.Equal(t, "FAC-0002", got2.Number)
}

func TestFinalizeFillsGap(t *testing.T) {
	f := newFixture(t, "FAC-####")

	// Finalized history with a hole at 2.
	for _, n := range []string{"FAC-0001", "FAC-0003"} {
		old := New(testOwner, f.srs.ID, id.New(), id.New())
		old.Number = n
		old.Status = StatusFinal
		require.NoError(t, f.repo.Create(context.Background(), old))
	}

	inv := f.newDraftWithArtifact(t)
	got, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "FAC-0002", got.Number)
}

func TestDeletedDraftDoesNotConsumeNumber(t *testing.T) {
	f := newFixture(t, "FAC-####")

	abandoned := f.newDraft(t)
	kept := f.newDraftWithArtifact(t)
	require.NoError(t, f.svc.Delete(context.Background(), abandoned.ID))

	got, err := f.svc.Finalize(context.Background(), kept.ID)
	require.NoError(t, err)

	assert.Equal(t, "FAC-0001", got.Number)
}

func TestFinalizeRequiresArtifact(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraft(t)

	_, err := f.svc.Finalize(context.Background(), inv.ID)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeMissingArtifact, appErr.Code)
}

func TestFinalizeTwiceFails(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	_, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	_, err = f.svc.Finalize(context.Background(), inv.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvoiceFinalized, appErr.Code)
}

func TestFinalizeRetriesAfterNumberingRace(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	// A concurrent finalize wins FAC-0001 between our read of the final
	// set and our uniqueness check; it becomes visible on the retry.
	f.repo.phantom["FAC-0001"] = 1
	f.repo.onRace = func() {
		winner := New(testOwner, f.srs.ID, id.New(), id.New())
		winner.Number = "FAC-0001"
		winner.Status = StatusFinal
		f.repo.invoices[winner.ID] = winner
	}

	got, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "FAC-0002", got.Number)
	assert.Equal(t, StatusFinal, got.Status)
}

func TestFinalizeGivesUpAfterRetriesExhausted(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	// Every write loses its row version race.
	f.repo.updateErr = apperror.NewConcurrentModification("invoice", inv.ID.String())

	_, err := f.svc.Finalize(context.Background(), inv.ID)

	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "numbering retries exhausted", appErr.Details["reason"])
}

func TestFinalizeDetectsConcurrentFinalizeOfSameDraft(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	// The race loser re-reads its row and finds another request already
	// finalized this very draft.
	f.repo.phantom["FAC-0001"] = 1
	f.repo.onRace = func() {
		stored := f.repo.invoices[inv.ID]
		stored.Number = "FAC-0001"
		stored.Status = StatusFinal
	}

	_, err := f.svc.Finalize(context.Background(), inv.ID)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvoiceFinalized, appErr.Code)
}

func TestSubmitAssignsNumberAndNotifies(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	var notified *Invoice
	f.svc.OnTransition(func(ctx context.Context, inv *Invoice) { notified = inv })

	got, err := f.svc.Submit(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "FAC-0001", got.Number)
	assert.Equal(t, StatusSubmitted, got.Status)
	require.NotNil(t, notified)
	assert.Equal(t, got.ID, notified.ID)
}

func TestFinalizedNumberHasNoDraftMarker(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	got, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.False(t, strings.HasPrefix(got.Number, DraftPrefix))
}

func TestUpdateDraftLockedOnceFinal(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	got, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	got.Comment = "late edit"
	err = f.svc.UpdateDraft(context.Background(), got)

	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateDraftSeriesChangeRefreshesProvisional(t *testing.T) {
	f := newFixture(t, "FAC-####")
	other := series.New(testOwner, "B-####", series.TypeStandard, false)
	other.Counter = 7
	f.store.series[other.ID] = other

	inv := f.newDraft(t)
	inv.SeriesID = other.ID
	require.NoError(t, f.svc.UpdateDraft(context.Background(), inv))

	assert.Equal(t, "DRAFT-B-0008", inv.Number)
}

func TestDeleteRejectsFinalInvoice(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraftWithArtifact(t)

	_, err := f.svc.Finalize(context.Background(), inv.ID)
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), inv.ID)

	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestGetByIDLoadsLines(t *testing.T) {
	f := newFixture(t, "FAC-####")
	inv := f.newDraft(t)

	got, err := f.svc.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)

	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Consultoría", got.Lines[0].Description)
}
