// Package postgres implements the engine contract on top of PostgreSQL.
// All search behavior lives in procedures under the functional schema; this
// package only binds parameters, unpacks result sets, and translates errors.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/movelaria/search-service/internal/engine"
	"github.com/movelaria/search-service/pkg/database"
)

// Procedure names, fixed by the engine deployment.
const (
	procProductSearch = "functional.search_product_list"
	procSuggestions   = "functional.search_suggestions_get"
	procFilterOptions = "functional.search_filter_options_get"
	procAlternatives  = "functional.search_alternatives_get"
	procHistoryCreate = "functional.search_history_create"
	procHistoryList   = "functional.search_history_list"
)

// businessErrorCode is the SQLSTATE the procedures raise for rule violations
// whose message is meant for the caller.
const businessErrorCode = "51000"

// Expected result set counts for the cursor-returning procedures.
const (
	filterOptionsSets = 6
	alternativesSets  = 2
)

// Engine invokes the search procedures over a pgx connection pool.
type Engine struct {
	db     database.DBTX
	logger *slog.Logger
}

// New creates a PostgreSQL-backed search engine.
func New(db database.DBTX, logger *slog.Logger) *Engine {
	return &Engine{db: db, logger: logger}
}

// Ping verifies connectivity for health checks.
func (e *Engine) Ping(ctx context.Context) error {
	var one int
	if err := e.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// jsonArrayParam serializes a string slice as JSON array text for the engine.
// A nil slice becomes SQL NULL; an empty slice is a deliberate empty filter.
func jsonArrayParam(vals []string) (any, error) {
	if vals == nil {
		return nil, nil
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return nil, fmt.Errorf("marshal filter array: %w", err)
	}
	return string(data), nil
}

// translateErr converts engine-raised business errors into BusinessError and
// leaves everything else wrapped and opaque.
func translateErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == businessErrorCode {
		return &engine.BusinessError{Message: pgErr.Message}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ProductSearch invokes the product search procedure.
func (e *Engine) ProductSearch(ctx context.Context, params engine.ProductSearchParams) ([]engine.ProductRow, error) {
	categories, err := jsonArrayParam(params.Categories)
	if err != nil {
		return nil, err
	}
	materials, err := jsonArrayParam(params.Materials)
	if err != nil {
		return nil, err
	}
	colors, err := jsonArrayParam(params.Colors)
	if err != nil {
		return nil, err
	}
	styles, err := jsonArrayParam(params.Styles)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id_product, product_code, name, description, category, material,
		       color, style, price, height, width, depth, date_created,
		       total_results, total_pages, current_page
		FROM ` + procProductSearch + `($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	rows, err := e.db.Query(ctx, query,
		params.AccountID,
		params.SearchTerm,
		params.ProductCode,
		categories,
		params.PriceMin,
		params.PriceMax,
		materials,
		colors,
		styles,
		params.HeightMin,
		params.HeightMax,
		params.WidthMin,
		params.WidthMax,
		params.DepthMin,
		params.DepthMax,
		params.SortBy,
		params.Page,
		params.PageSize,
	)
	if err != nil {
		return nil, translateErr("product search", err)
	}
	defer rows.Close()

	products, err := scanProductRows(rows)
	if err != nil {
		return nil, translateErr("product search", err)
	}
	return products, nil
}

// Suggestions invokes the suggestions procedure.
func (e *Engine) Suggestions(ctx context.Context, params engine.SuggestionsParams) ([]engine.SuggestionRow, error) {
	query := `
		SELECT suggestion, type, priority
		FROM ` + procSuggestions + `($1, $2, $3)`

	rows, err := e.db.Query(ctx, query, params.AccountID, params.PartialTerm, params.MaxSuggestions)
	if err != nil {
		return nil, translateErr("suggestions", err)
	}
	defer rows.Close()

	var suggestions []engine.SuggestionRow
	for rows.Next() {
		var s engine.SuggestionRow
		if err := rows.Scan(&s.Suggestion, &s.Type, &s.Priority); err != nil {
			return nil, translateErr("suggestions", err)
		}
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr("suggestions", err)
	}
	return suggestions, nil
}

// FilterOptions invokes the filter-options procedure. The procedure returns
// six refcursors; they are fetched positionally inside one transaction and
// the count is asserted before any set is read.
func (e *Engine) FilterOptions(ctx context.Context, params engine.FilterOptionsParams) (*engine.FilterOptionsResult, error) {
	categories, err := jsonArrayParam(params.Categories)
	if err != nil {
		return nil, err
	}
	materials, err := jsonArrayParam(params.Materials)
	if err != nil {
		return nil, err
	}
	colors, err := jsonArrayParam(params.Colors)
	if err != nil {
		return nil, err
	}
	styles, err := jsonArrayParam(params.Styles)
	if err != nil {
		return nil, err
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("filter options: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	cursors, err := openCursors(ctx, tx, procFilterOptions, filterOptionsSets,
		params.AccountID, categories, params.PriceMin, params.PriceMax, materials, colors, styles)
	if err != nil {
		return nil, translateErr("filter options", err)
	}

	result := &engine.FilterOptionsResult{}

	if result.Categories, err = fetchStrings(ctx, tx, cursors[0]); err != nil {
		return nil, translateErr("filter options: categories", err)
	}
	if result.Materials, err = fetchStrings(ctx, tx, cursors[1]); err != nil {
		return nil, translateErr("filter options: materials", err)
	}
	if result.Colors, err = fetchStrings(ctx, tx, cursors[2]); err != nil {
		return nil, translateErr("filter options: colors", err)
	}
	if result.Styles, err = fetchStrings(ctx, tx, cursors[3]); err != nil {
		return nil, translateErr("filter options: styles", err)
	}
	if result.PriceRange, err = fetchPriceRange(ctx, tx, cursors[4]); err != nil {
		return nil, translateErr("filter options: price range", err)
	}
	if result.DimensionRanges, err = fetchDimensionRanges(ctx, tx, cursors[5]); err != nil {
		return nil, translateErr("filter options: dimension ranges", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("filter options: commit: %w", err)
	}
	return result, nil
}

// Alternatives invokes the alternatives procedure: two refcursors, fetched
// positionally like FilterOptions.
func (e *Engine) Alternatives(ctx context.Context, params engine.AlternativesParams) (*engine.AlternativesResult, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("alternatives: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	cursors, err := openCursors(ctx, tx, procAlternatives, alternativesSets,
		params.AccountID, params.SearchTerm, params.MaxSuggestions, params.MaxProducts)
	if err != nil {
		return nil, translateErr("alternatives", err)
	}

	result := &engine.AlternativesResult{}

	if result.Suggestions, err = fetchStrings(ctx, tx, cursors[0]); err != nil {
		return nil, translateErr("alternatives: suggestions", err)
	}
	if result.RelatedProducts, err = fetchProducts(ctx, tx, cursors[1]); err != nil {
		return nil, translateErr("alternatives: related products", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("alternatives: commit: %w", err)
	}
	return result, nil
}

// HistoryCreate invokes the history create procedure and returns the new ID.
func (e *Engine) HistoryCreate(ctx context.Context, params engine.HistoryCreateParams) (int64, error) {
	query := `SELECT ` + procHistoryCreate + `($1, $2, $3, $4)`

	var id int64
	err := e.db.QueryRow(ctx, query,
		params.AccountID,
		params.SearchTerm,
		params.Filters,
		params.ResultCount,
	).Scan(&id)
	if err != nil {
		return 0, translateErr("history create", err)
	}
	return id, nil
}

// HistoryList invokes the history list procedure.
func (e *Engine) HistoryList(ctx context.Context, accountID int64, maxResults int) ([]engine.HistoryRow, error) {
	query := `
		SELECT id_search_history, search_term, filters, result_count, date_created
		FROM ` + procHistoryList + `($1, $2)`

	rows, err := e.db.Query(ctx, query, accountID, maxResults)
	if err != nil {
		return nil, translateErr("history list", err)
	}
	defer rows.Close()

	var entries []engine.HistoryRow
	for rows.Next() {
		var h engine.HistoryRow
		if err := rows.Scan(&h.ID, &h.SearchTerm, &h.Filters, &h.ResultCount, &h.DateCreated); err != nil {
			return nil, translateErr("history list", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr("history list", err)
	}
	return entries, nil
}

// openCursors calls a SETOF refcursor procedure and returns the cursor names
// in positional order. A set count other than want means the deployed
// procedure does not match this binary; fail loudly instead of guessing.
func openCursors(ctx context.Context, tx pgx.Tx, proc string, want int, args ...any) ([]string, error) {
	placeholders := make([]byte, 0, len(args)*4)
	for i := range args {
		if i > 0 {
			placeholders = append(placeholders, ", "...)
		}
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1)...)
	}

	rows, err := tx.Query(ctx, fmt.Sprintf("SELECT %s(%s)", proc, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cursors []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cursors = append(cursors, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(cursors) != want {
		return nil, &engine.ResultShapeError{Procedure: proc, Want: want, Got: len(cursors)}
	}
	return cursors, nil
}

func fetchAll(ctx context.Context, tx pgx.Tx, cursor string) (pgx.Rows, error) {
	return tx.Query(ctx, "FETCH ALL FROM "+pgx.Identifier{cursor}.Sanitize())
}

// fetchStrings reads a single-column cursor into a string slice.
func fetchStrings(ctx context.Context, tx pgx.Tx, cursor string) ([]string, error) {
	rows, err := fetchAll(ctx, tx, cursor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// fetchPriceRange reads the single-row price range cursor. An empty catalog
// yields a zero range.
func fetchPriceRange(ctx context.Context, tx pgx.Tx, cursor string) (engine.PriceRangeRow, error) {
	rows, err := fetchAll(ctx, tx, cursor)
	if err != nil {
		return engine.PriceRangeRow{}, err
	}
	defer rows.Close()

	var pr engine.PriceRangeRow
	if rows.Next() {
		if err := rows.Scan(&pr.MinPrice, &pr.MaxPrice); err != nil {
			return engine.PriceRangeRow{}, err
		}
	}
	return pr, rows.Err()
}

// fetchDimensionRanges reads the single-row dimension ranges cursor.
func fetchDimensionRanges(ctx context.Context, tx pgx.Tx, cursor string) (engine.DimensionRangesRow, error) {
	rows, err := fetchAll(ctx, tx, cursor)
	if err != nil {
		return engine.DimensionRangesRow{}, err
	}
	defer rows.Close()

	var dr engine.DimensionRangesRow
	if rows.Next() {
		if err := rows.Scan(&dr.MinHeight, &dr.MaxHeight, &dr.MinWidth, &dr.MaxWidth, &dr.MinDepth, &dr.MaxDepth); err != nil {
			return engine.DimensionRangesRow{}, err
		}
	}
	return dr, rows.Err()
}

// fetchProducts reads a related-products cursor. These carry the product
// columns only, without the pagination metadata of the search result set.
func fetchProducts(ctx context.Context, tx pgx.Tx, cursor string) ([]engine.ProductRow, error) {
	rows, err := fetchAll(ctx, tx, cursor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []engine.ProductRow
	for rows.Next() {
		var p engine.ProductRow
		if err := rows.Scan(
			&p.ID, &p.ProductCode, &p.Name, &p.Description, &p.Category,
			&p.Material, &p.Color, &p.Style, &p.Price, &p.Height, &p.Width,
			&p.Depth, &p.DateCreated,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProductRows(rows pgx.Rows) ([]engine.ProductRow, error) {
	var products []engine.ProductRow
	for rows.Next() {
		var p engine.ProductRow
		if err := rows.Scan(
			&p.ID, &p.ProductCode, &p.Name, &p.Description, &p.Category,
			&p.Material, &p.Color, &p.Style, &p.Price, &p.Height, &p.Width,
			&p.Depth, &p.DateCreated, &p.TotalResults, &p.TotalPages, &p.CurrentPage,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
