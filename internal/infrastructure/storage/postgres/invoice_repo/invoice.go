// Package invoice_repo provides the PostgreSQL repository for invoices.
package invoice_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"facturago/internal/core/apperror"
	"facturago/internal/core/id"
	"facturago/internal/domain"
	"facturago/internal/domain/invoice"
	"facturago/internal/domain/series"
	"facturago/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "invoices"
	invoiceLinesTable = "invoice_lines"

	// Partial unique index on (series_id, display_number) for non-draft
	// rows. The last line of defense against duplicate final numbers.
	finalNumberConstraint = "invoices_series_final_number_idx"
)

// Compile-time checks: one store serves the invoice repository, the series
// usage checker, and the artifact checker.
var (
	_ invoice.Repository      = (*InvoiceRepo)(nil)
	_ series.UsageChecker     = (*InvoiceRepo)(nil)
	_ invoice.ArtifactChecker = (*InvoiceRepo)(nil)
)

var invoiceCols = postgres.ExtractDBColumns[invoice.Invoice]()

// InvoiceRepo is the PostgreSQL repository for invoices and their lines.
type InvoiceRepo struct {
	txManager *postgres.TxManager
}

// NewInvoiceRepo creates an invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{txManager: txManager}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new invoice header. Lines are saved separately via
// SaveLines inside the same transaction.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	data := postgres.StructToMap(inv)

	q := r.builder().
		Insert(invoicesTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, finalNumberConstraint) {
			return apperror.NewDuplicate("invoice", "displayNumber", inv.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice with its lines.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	q := r.builder().
		Select(invoiceCols...).
		From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	lines, err := r.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	return &inv, nil
}

// Update modifies an invoice header with optimistic locking. The version
// bump and updated_at are managed here; unique violations on the final
// number index surface as duplicates so the finalize path can retry.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	data := postgres.StructToMap(inv)

	setData := make(map[string]any, len(data))
	for col, val := range data {
		if col == "id" || col == "owner_id" || col == "created_at" || col == "created_by" {
			continue
		}
		if col == "version" {
			continue
		}
		setData[col] = val
	}

	q := r.builder().
		Update(invoicesTable).
		SetMap(setData).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": inv.ID}).
		Where(squirrel.Eq{"version": inv.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err, finalNumberConstraint) {
			return apperror.NewDuplicate("invoice", "displayNumber", inv.Number)
		}
		return fmt.Errorf("update invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("invoice", inv.ID)
	}

	return nil
}

// Delete soft-deletes an invoice. The lifecycle guard (drafts only) lives
// in the service.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	q := r.builder().
		Update(invoicesTable).
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}

	return nil
}

// GetLines retrieves invoice lines ordered by line number.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]invoice.Line, error) {
	q := r.builder().
		Select(
			"line_id", "line_no", "description",
			"quantity", "unit_price", "vat_rate", "vat_amount", "amount",
		).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []invoice.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines replaces the invoice's lines (delete-and-insert).
func (r *InvoiceRepo) SaveLines(ctx context.Context, invoiceID id.ID, lines []invoice.Line) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + invoiceLinesTable + " WHERE invoice_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, invoiceID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().
		Insert(invoiceLinesTable).
		Columns(
			"line_id", "invoice_id", "line_no", "description",
			"quantity", "unit_price", "vat_rate", "vat_amount", "amount",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, invoiceID, line.LineNo, line.Description,
			line.Quantity, line.UnitPrice, line.VATRate, line.VATAmount, line.Amount,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// FinalNumbers returns the display numbers of every non-draft, non-deleted
// invoice in the series. Under SERIALIZABLE this read establishes the
// predicate lock that makes concurrent finalizes conflict.
func (r *InvoiceRepo) FinalNumbers(ctx context.Context, seriesID id.ID) ([]string, error) {
	q := r.builder().
		Select("display_number").
		From(invoicesTable).
		Where(squirrel.Eq{"series_id": seriesID}).
		Where(squirrel.NotEq{"status": invoice.StatusDraft}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var numbers []string
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &numbers, sql, args...); err != nil {
		return nil, fmt.Errorf("final numbers: %w", err)
	}

	return numbers, nil
}

// FinalNumberExists reports whether a different non-draft invoice in the
// series already holds the display number.
func (r *InvoiceRepo) FinalNumberExists(ctx context.Context, seriesID id.ID, display string, excludeID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(invoicesTable).
		Where(squirrel.Eq{"series_id": seriesID}).
		Where(squirrel.Eq{"display_number": display}).
		Where(squirrel.NotEq{"status": invoice.StatusDraft}).
		Where(squirrel.NotEq{"id": excludeID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.exists(ctx, q)
}

// SeriesInUse reports whether any invoice (draft included) references the
// series. Soft-deleted invoices count: their rows still carry the number.
func (r *InvoiceRepo) SeriesInUse(ctx context.Context, seriesID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(invoicesTable).
		Where(squirrel.Eq{"series_id": seriesID}).
		Limit(1)

	return r.exists(ctx, q)
}

// SeriesHasFinal reports whether any non-draft invoice exists in the series.
func (r *InvoiceRepo) SeriesHasFinal(ctx context.Context, seriesID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(invoicesTable).
		Where(squirrel.Eq{"series_id": seriesID}).
		Where(squirrel.NotEq{"status": invoice.StatusDraft}).
		Limit(1)

	return r.exists(ctx, q)
}

// HasArtifact reports whether a rendered document is attached.
func (r *InvoiceRepo) HasArtifact(ctx context.Context, invoiceID id.ID) (bool, error) {
	q := r.builder().
		Select("1").
		From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		Where(squirrel.NotEq{"artifact_ref": nil}).
		Limit(1)

	return r.exists(ctx, q)
}

func (r *InvoiceRepo) exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var one int
	err = querier.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return true, nil
}

// List retrieves invoices with filtering and pagination. Lines are not
// loaded here; use GetByID for the full document.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result := domain.ListResult[*invoice.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(invoiceCols...).
		From(invoicesTable)

	if filter.OwnerID != "" {
		q = q.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.SeriesID != nil {
		q = q.Where(squirrel.Eq{"series_id": *filter.SeriesID})
	}

	if filter.ClientID != nil {
		q = q.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"display_number": searchPattern},
			squirrel.ILike{"comment": searchPattern},
		})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" && filter.OrderBy != "name" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list invoices: %w", err)
	}

	return result, nil
}
