package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/internal/engine"
	"github.com/movelaria/search-service/internal/service"
	"github.com/movelaria/search-service/pkg/httputil"
	"github.com/movelaria/search-service/pkg/middleware"
	"github.com/movelaria/search-service/pkg/validator"
)

// The internal surface guards every route with this securable.
const (
	securableSearch  = "SEARCH"
	permissionRead   = "READ"
	permissionCreate = "CREATE"
)

// SearchHandler handles the authenticated internal search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates the internal search handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: svc, logger: logger}
}

// writeServiceError surfaces engine business errors as 400 with their
// message; everything else goes through the standard error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var bizErr *engine.BusinessError
	if errors.As(err, &bizErr) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   bizErr.Message,
		})
		return
	}
	httputil.WriteError(w, r, err, logger)
}

// --- Request DTOs ---

type productSearchQuery struct {
	SearchTerm  *string  `validate:"omitempty,min=2,max=100"`
	ProductCode *string  `validate:"omitempty,max=50"`
	PriceMin    *float64 `validate:"omitempty,gte=0"`
	PriceMax    *float64 `validate:"omitempty,gte=0"`
	HeightMin   *float64 `validate:"omitempty,gte=0"`
	HeightMax   *float64 `validate:"omitempty,gte=0"`
	WidthMin    *float64 `validate:"omitempty,gte=0"`
	WidthMax    *float64 `validate:"omitempty,gte=0"`
	DepthMin    *float64 `validate:"omitempty,gte=0"`
	DepthMax    *float64 `validate:"omitempty,gte=0"`
	SortBy      string   `validate:"omitempty,oneof=relevancia nome_asc nome_desc preco_asc preco_desc data_cadastro_desc"`
	PageNumber  int      `validate:"omitempty,gte=1"`
	PageSize    int      `validate:"omitempty,oneof=12 24 36 48"`
}

type suggestionsQuery struct {
	PartialTerm    string `validate:"required,min=2,max=100"`
	MaxSuggestions int    `validate:"omitempty,gte=1,lte=20"`
}

type filterOptionsQuery struct {
	PriceMin *float64 `validate:"omitempty,gte=0"`
	PriceMax *float64 `validate:"omitempty,gte=0"`
}

type historyCreateRequest struct {
	SearchTerm  string  `json:"searchTerm" validate:"required,min=1,max=100"`
	Filters     *string `json:"filters" validate:"omitempty,max=5000"`
	ResultCount *int    `json:"resultCount" validate:"required,gte=0"`
}

// --- Handlers ---

// Products handles GET /api/v1/search/products
func (h *SearchHandler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := fieldErrors{}

	req := productSearchQuery{
		SearchTerm:  queryString(q, "searchTerm"),
		ProductCode: queryString(q, "productCode"),
		PriceMin:    queryFloat(q, "priceMin", errs),
		PriceMax:    queryFloat(q, "priceMax", errs),
		HeightMin:   queryFloat(q, "heightMin", errs),
		HeightMax:   queryFloat(q, "heightMax", errs),
		WidthMin:    queryFloat(q, "widthMin", errs),
		WidthMax:    queryFloat(q, "widthMax", errs),
		DepthMin:    queryFloat(q, "depthMin", errs),
		DepthMax:    queryFloat(q, "depthMax", errs),
		SortBy:      q.Get("sortBy"),
		PageNumber:  queryInt(q, "pageNumber", errs),
		PageSize:    queryInt(q, "pageSize", errs),
	}
	categories := queryJSONArray(q, "categories", errs)
	materials := queryJSONArray(q, "materials", errs)
	colors := queryJSONArray(q, "colors", errs)
	styles := queryJSONArray(q, "styles", errs)

	if err := validateRequest(req, errs); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	query := domain.SearchQuery{
		AccountID:   middleware.AccountIDFromContext(r.Context()),
		SearchTerm:  req.SearchTerm,
		ProductCode: req.ProductCode,
		Filters: domain.SearchFilters{
			Categories: categories,
			PriceMin:   req.PriceMin,
			PriceMax:   req.PriceMax,
			Materials:  materials,
			Colors:     colors,
			Styles:     styles,
			Dimensions: domain.DimensionFilters{
				HeightMin: req.HeightMin,
				HeightMax: req.HeightMax,
				WidthMin:  req.WidthMin,
				WidthMax:  req.WidthMax,
				DepthMin:  req.DepthMin,
				DepthMax:  req.DepthMax,
			},
		},
		SortBy:   req.SortBy,
		Page:     req.PageNumber,
		PageSize: req.PageSize,
	}

	result, err := h.service.SearchProducts(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, result)
}

// Suggestions handles GET /api/v1/search/suggestions
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := fieldErrors{}

	req := suggestionsQuery{
		MaxSuggestions: queryInt(q, "maxSuggestions", errs),
	}
	if term := queryString(q, "partialTerm"); term != nil {
		req.PartialTerm = *term
	}

	if err := validateRequest(req, errs); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	suggestions, err := h.service.Suggestions(r.Context(),
		middleware.AccountIDFromContext(r.Context()), req.PartialTerm, req.MaxSuggestions)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, suggestions)
}

// FilterOptions handles GET /api/v1/search/filter-options
func (h *SearchHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := fieldErrors{}

	req := filterOptionsQuery{
		PriceMin: queryFloat(q, "priceMin", errs),
		PriceMax: queryFloat(q, "priceMax", errs),
	}
	categories := queryJSONArray(q, "categories", errs)
	materials := queryJSONArray(q, "materials", errs)
	colors := queryJSONArray(q, "colors", errs)
	styles := queryJSONArray(q, "styles", errs)

	if err := validateRequest(req, errs); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	options, err := h.service.FilterOptions(r.Context(), domain.FilterOptionsQuery{
		AccountID:  middleware.AccountIDFromContext(r.Context()),
		Categories: categories,
		PriceMin:   req.PriceMin,
		PriceMax:   req.PriceMax,
		Materials:  materials,
		Colors:     colors,
		Styles:     styles,
	})
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, options)
}

// HistoryList handles GET /api/v1/search/history
func (h *SearchHandler) HistoryList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.HistoryList(r.Context(), middleware.AccountIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, entries)
}

// HistoryCreate handles POST /api/v1/search/history
func (h *SearchHandler) HistoryCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req historyCreateRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	id, err := h.service.HistoryCreate(r.Context(),
		middleware.AccountIDFromContext(r.Context()), req.SearchTerm, req.Filters, *req.ResultCount)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, map[string]int64{"idSearchHistory": id})
}
