package series

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain"
)

const testOwner = "owner-1"

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memSeriesRepo struct {
	series map[id.ID]*Series
}

func newMemSeriesRepo(ss ...*Series) *memSeriesRepo {
	r := &memSeriesRepo{series: make(map[id.ID]*Series)}
	for _, s := range ss {
		r.series[s.ID] = s
	}
	return r
}

func (r *memSeriesRepo) Create(ctx context.Context, s *Series) error {
	cp := *s
	r.series[s.ID] = &cp
	return nil
}

func (r *memSeriesRepo) GetByID(ctx context.Context, seriesID id.ID) (*Series, error) {
	s, ok := r.series[seriesID]
	if !ok || s.DeletionMark {
		return nil, apperror.NewNotFound("series", seriesID.String())
	}
	cp := *s
	return &cp, nil
}

func (r *memSeriesRepo) GetDefault(ctx context.Context, ownerID string, typ Type) (*Series, error) {
	for _, s := range r.series {
		if s.OwnerID == ownerID && s.Type == typ && s.IsDefault && !s.DeletionMark {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("default series", string(typ))
}

func (r *memSeriesRepo) Update(ctx context.Context, s *Series) error {
	if _, ok := r.series[s.ID]; !ok {
		return apperror.NewNotFound("series", s.ID.String())
	}
	cp := *s
	r.series[s.ID] = &cp
	return nil
}

func (r *memSeriesRepo) Delete(ctx context.Context, seriesID id.ID) error {
	s, ok := r.series[seriesID]
	if !ok {
		return apperror.NewNotFound("series", seriesID.String())
	}
	s.DeletionMark = true
	return nil
}

func (r *memSeriesRepo) ClearDefault(ctx context.Context, ownerID string, typ Type) error {
	for _, s := range r.series {
		if s.OwnerID == ownerID && s.Type == typ {
			s.IsDefault = false
		}
	}
	return nil
}

func (r *memSeriesRepo) IncrementCounter(ctx context.Context, seriesID id.ID) (int, error) {
	s, ok := r.series[seriesID]
	if !ok {
		return 0, apperror.NewNotFound("series", seriesID.String())
	}
	s.Counter++
	return s.Counter, nil
}

func (r *memSeriesRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Series], error) {
	var items []*Series
	for _, s := range r.series {
		if s.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		if filter.OwnerID != "" && s.OwnerID != filter.OwnerID {
			continue
		}
		cp := *s
		items = append(items, &cp)
	}
	return domain.ListResult[*Series]{Items: items, TotalCount: int64(len(items))}, nil
}

var _ Repository = (*memSeriesRepo)(nil)

// stubUsage answers the two usage questions with fixed values.
type stubUsage struct {
	inUse    bool
	hasFinal bool
}

func (u stubUsage) SeriesInUse(ctx context.Context, seriesID id.ID) (bool, error) {
	return u.inUse, nil
}

func (u stubUsage) SeriesHasFinal(ctx context.Context, seriesID id.ID) (bool, error) {
	return u.hasFinal, nil
}

func newTestService(repo *memSeriesRepo, usage UsageChecker) *Service {
	if usage == nil {
		usage = stubUsage{}
	}
	return NewService(repo, usage, passTxManager{})
}

func TestCreateValidatesPattern(t *testing.T) {
	repo := newMemSeriesRepo()
	svc := newTestService(repo, nil)

	err := svc.Create(context.Background(), New(testOwner, "no-sequence-run", TypeStandard, false))

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCreateDefaultClearsSiblings(t *testing.T) {
	old := New(testOwner, "FAC-####", TypeStandard, true)
	repo := newMemSeriesRepo(old)
	svc := newTestService(repo, nil)

	next := New(testOwner, "F%%-####", TypeStandard, true)
	require.NoError(t, svc.Create(context.Background(), next))

	assert.False(t, repo.series[old.ID].IsDefault)
	assert.True(t, repo.series[next.ID].IsDefault)
}

func TestCreateDefaultLeavesOtherTypeAlone(t *testing.T) {
	rect := New(testOwner, "R-####", TypeRectifying, true)
	repo := newMemSeriesRepo(rect)
	svc := newTestService(repo, nil)

	std := New(testOwner, "FAC-####", TypeStandard, true)
	require.NoError(t, svc.Create(context.Background(), std))

	// Types number independently; each keeps its own default.
	assert.True(t, repo.series[rect.ID].IsDefault)
	assert.True(t, repo.series[std.ID].IsDefault)
}

func TestSetDefaultMovesFlag(t *testing.T) {
	current := New(testOwner, "FAC-####", TypeStandard, true)
	other := New(testOwner, "B-####", TypeStandard, false)
	repo := newMemSeriesRepo(current, other)
	svc := newTestService(repo, nil)

	require.NoError(t, svc.SetDefault(context.Background(), other.ID))

	assert.False(t, repo.series[current.ID].IsDefault)
	assert.True(t, repo.series[other.ID].IsDefault)
}

func TestSetDefaultIdempotent(t *testing.T) {
	current := New(testOwner, "FAC-####", TypeStandard, true)
	repo := newMemSeriesRepo(current)
	svc := newTestService(repo, nil)

	require.NoError(t, svc.SetDefault(context.Background(), current.ID))

	assert.True(t, repo.series[current.ID].IsDefault)
}

func TestUpdatePatternFrozenWithFinalInvoices(t *testing.T) {
	srs := New(testOwner, "FAC-####", TypeStandard, true)
	repo := newMemSeriesRepo(srs)
	svc := newTestService(repo, stubUsage{inUse: true, hasFinal: true})

	changed := *srs
	changed.Pattern = "NEW-####"
	err := svc.Update(context.Background(), &changed)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSeriesInUse, appErr.Code)
	assert.Equal(t, "FAC-####", repo.series[srs.ID].Pattern)
}

func TestUpdatePatternAllowedWithDraftsOnly(t *testing.T) {
	srs := New(testOwner, "FAC-####", TypeStandard, true)
	repo := newMemSeriesRepo(srs)
	// Drafts reference the series but never occupy the final space.
	svc := newTestService(repo, stubUsage{inUse: true, hasFinal: false})

	changed := *srs
	changed.Pattern = "NEW-####"
	require.NoError(t, svc.Update(context.Background(), &changed))

	assert.Equal(t, "NEW-####", repo.series[srs.ID].Pattern)
}

func TestUpdateNonPatternFieldAllowed(t *testing.T) {
	srs := New(testOwner, "FAC-####", TypeStandard, false)
	repo := newMemSeriesRepo(srs)
	svc := newTestService(repo, stubUsage{inUse: true, hasFinal: true})

	changed := *srs
	changed.IsDefault = true
	require.NoError(t, svc.Update(context.Background(), &changed))

	assert.True(t, repo.series[srs.ID].IsDefault)
}

func TestDeleteDefaultRejected(t *testing.T) {
	srs := New(testOwner, "FAC-####", TypeStandard, true)
	repo := newMemSeriesRepo(srs)
	svc := newTestService(repo, nil)

	err := svc.Delete(context.Background(), srs.ID)

	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.False(t, repo.series[srs.ID].DeletionMark)
}

func TestDeleteInUseRejected(t *testing.T) {
	srs := New(testOwner, "FAC-####", TypeStandard, false)
	repo := newMemSeriesRepo(srs)
	svc := newTestService(repo, stubUsage{inUse: true})

	err := svc.Delete(context.Background(), srs.ID)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSeriesInUse, appErr.Code)
}

func TestDeleteUnusedSeries(t *testing.T) {
	srs := New(testOwner, "FAC-####", TypeStandard, false)
	repo := newMemSeriesRepo(srs)
	svc := newTestService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), srs.ID))

	assert.True(t, repo.series[srs.ID].DeletionMark)
}

func TestGetDefaultFallsThroughToRepo(t *testing.T) {
	std := New(testOwner, "FAC-####", TypeStandard, true)
	repo := newMemSeriesRepo(std)
	svc := newTestService(repo, nil)

	got, err := svc.GetDefault(context.Background(), testOwner, TypeStandard)
	require.NoError(t, err)
	assert.Equal(t, std.ID, got.ID)

	_, err = svc.GetDefault(context.Background(), testOwner, TypeRectifying)
	assert.True(t, apperror.IsNotFound(err))
}
