package invoice

import (
	"context"
	"sync"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/domain/series"
)

// passTxManager executes callbacks inline; isolation is the real
// implementation's concern, not the service's.
type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passTxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memSeriesStore keeps series in a map and counts counter bumps.
type memSeriesStore struct {
	mu     sync.Mutex
	series map[id.ID]*series.Series
}

func newMemSeriesStore(ss ...*series.Series) *memSeriesStore {
	st := &memSeriesStore{series: make(map[id.ID]*series.Series)}
	for _, s := range ss {
		st.series[s.ID] = s
	}
	return st
}

func (st *memSeriesStore) GetByID(ctx context.Context, seriesID id.ID) (*series.Series, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.series[seriesID]
	if !ok {
		return nil, apperror.NewNotFound("series", seriesID.String())
	}
	cp := *s
	return &cp, nil
}

func (st *memSeriesStore) GetDefault(ctx context.Context, ownerID string, typ series.Type) (*series.Series, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.series {
		if s.OwnerID == ownerID && s.Type == typ && s.IsDefault {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("default series", string(typ))
}

func (st *memSeriesStore) IncrementCounter(ctx context.Context, seriesID id.ID) (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.series[seriesID]
	if !ok {
		return 0, apperror.NewNotFound("series", seriesID.String())
	}
	s.Counter++
	return s.Counter, nil
}

func (st *memSeriesStore) counter(seriesID id.ID) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.series[seriesID].Counter
}

// memInvoiceRepo is an in-memory Repository. Like the postgres one it also
// answers artifact checks from the stored row.
type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[id.ID]*Invoice
	lines    map[id.ID][]Line

	// phantom maps a display number to how many more times
	// FinalNumberExists should report it taken, simulating a concurrent
	// finalize that committed the slot after FinalNumbers was read.
	phantom map[string]int

	// updateErr, when set, is returned by every Update call.
	updateErr error

	// onRace fires each time a phantom collision is consumed. Runs with
	// the repo mutex held: mutate maps directly, do not call repo methods.
	onRace func()
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{
		invoices: make(map[id.ID]*Invoice),
		lines:    make(map[id.ID][]Line),
		phantom:  make(map[string]int),
	}
}

func cloneInvoice(inv *Invoice) *Invoice {
	cp := *inv
	cp.Lines = append([]Line(nil), inv.Lines...)
	return &cp
}

func (r *memInvoiceRepo) Create(ctx context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *memInvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok || inv.DeletionMark {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return cloneInvoice(inv), nil
}

func (r *memInvoiceRepo) Update(ctx context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.invoices[inv.ID]; !ok {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	r.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *memInvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	inv.DeletionMark = true
	return nil
}

func (r *memInvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Line(nil), r.lines[invoiceID]...), nil
}

func (r *memInvoiceRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[invoiceID] = append([]Line(nil), lines...)
	return nil
}

func (r *memInvoiceRepo) FinalNumbers(ctx context.Context, seriesID id.ID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, inv := range r.invoices {
		if inv.SeriesID == seriesID && inv.Status != StatusDraft && !inv.DeletionMark {
			out = append(out, inv.Number)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) FinalNumberExists(ctx context.Context, seriesID id.ID, display string, excludeID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.phantom[display]; n > 0 {
		r.phantom[display] = n - 1
		if r.onRace != nil {
			r.onRace()
		}
		return true, nil
	}
	for _, inv := range r.invoices {
		if inv.ID == excludeID {
			continue
		}
		if inv.SeriesID == seriesID && inv.Status != StatusDraft && inv.Number == display {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) SeriesInUse(ctx context.Context, seriesID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.SeriesID == seriesID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) SeriesHasFinal(ctx context.Context, seriesID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.SeriesID == seriesID && inv.Status != StatusDraft && !inv.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) HasArtifact(ctx context.Context, invoiceID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return false, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return inv.ArtifactRef != nil, nil
}

func (r *memInvoiceRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Invoice
	for _, inv := range r.invoices {
		if inv.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		if filter.OwnerID != "" && inv.OwnerID != filter.OwnerID {
			continue
		}
		items = append(items, cloneInvoice(inv))
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

var (
	_ Repository      = (*memInvoiceRepo)(nil)
	_ ArtifactChecker = (*memInvoiceRepo)(nil)
	_ SeriesStore     = (*memSeriesStore)(nil)
)
