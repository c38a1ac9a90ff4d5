package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/movelaria/search-service/internal/domain"
	"github.com/movelaria/search-service/internal/service"
	"github.com/movelaria/search-service/pkg/httputil"
	"github.com/movelaria/search-service/pkg/validator"
)

// PublicHandler handles the unauthenticated storefront endpoints. All
// requests run under the configured storefront account.
type PublicHandler struct {
	service   *service.SearchService
	accountID int64
	logger    *slog.Logger
}

// NewPublicHandler creates the public search handler.
func NewPublicHandler(svc *service.SearchService, accountID int64, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{service: svc, accountID: accountID, logger: logger}
}

// --- Request DTOs ---

type publicSearchRequest struct {
	// SearchTerm is length-checked after trimming, not via tag.
	SearchTerm  *string  `json:"searchTerm"`
	ProductCode *string  `json:"productCode" validate:"omitempty,max=50"`
	Categories  []string `json:"categories"`
	PriceMin    *float64 `json:"priceMin" validate:"omitempty,gte=0"`
	PriceMax    *float64 `json:"priceMax" validate:"omitempty,gte=0"`
	Materials   []string `json:"materials"`
	Colors      []string `json:"colors"`
	Styles      []string `json:"styles"`
	HeightMin   *float64 `json:"heightMin" validate:"omitempty,gte=0"`
	HeightMax   *float64 `json:"heightMax" validate:"omitempty,gte=0"`
	WidthMin    *float64 `json:"widthMin" validate:"omitempty,gte=0"`
	WidthMax    *float64 `json:"widthMax" validate:"omitempty,gte=0"`
	DepthMin    *float64 `json:"depthMin" validate:"omitempty,gte=0"`
	DepthMax    *float64 `json:"depthMax" validate:"omitempty,gte=0"`
	SortBy      string   `json:"sortBy" validate:"omitempty,oneof=relevancia nome_asc nome_desc preco_asc preco_desc data_cadastro_desc"`
	Page        int      `json:"page" validate:"omitempty,gte=1"`
	PageSize    int      `json:"pageSize" validate:"omitempty,oneof=12 24 36 48"`
	SessionID   string   `json:"sessionId" validate:"omitempty,max=100"`
}

type autocompleteQuery struct {
	SearchTerm     string `validate:"required,min=2,max=100"`
	MaxSuggestions int    `validate:"omitempty,gte=1,lte=20"`
}

type alternativesQuery struct {
	SearchTerm     string `validate:"required,min=2,max=100"`
	MaxSuggestions int    `validate:"omitempty,gte=1,lte=10"`
	MaxProducts    int    `validate:"omitempty,gte=1,lte=20"`
}

type recentQuery struct {
	SessionID string `validate:"required,max=100"`
}

// --- Response DTOs ---

// The public surface nests pagination under a metadata object; the internal
// surface keeps the flat page shape.
type searchMetadata struct {
	TotalResults int `json:"totalResults"`
	Page         int `json:"page"`
	PageSize     int `json:"pageSize"`
	TotalPages   int `json:"totalPages"`
}

type publicSearchResponse struct {
	Products []domain.Product `json:"products"`
	Metadata searchMetadata   `json:"metadata"`
}

// --- Handlers ---

// Search handles POST /api/v1/public/search
func (h *PublicHandler) Search(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req publicSearchRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	// The term is compared after trimming; "  ab  " is a valid 2-char term.
	if req.SearchTerm != nil {
		trimmed := strings.TrimSpace(*req.SearchTerm)
		if len([]rune(trimmed)) < 2 || len([]rune(trimmed)) > 100 {
			httputil.WriteValidationError(w, validator.NewFieldError("searchTerm", "must be between 2 and 100 characters"))
			return
		}
		req.SearchTerm = &trimmed
	}

	query := domain.SearchQuery{
		AccountID:   h.accountID,
		SearchTerm:  req.SearchTerm,
		ProductCode: req.ProductCode,
		Filters: domain.SearchFilters{
			Categories: req.Categories,
			PriceMin:   req.PriceMin,
			PriceMax:   req.PriceMax,
			Materials:  req.Materials,
			Colors:     req.Colors,
			Styles:     req.Styles,
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
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	result, err := h.service.PublicSearch(r.Context(), query, req.SessionID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, publicSearchResponse{
		Products: result.Products,
		Metadata: searchMetadata{
			TotalResults: result.TotalResults,
			Page:         result.PageNumber,
			PageSize:     result.PageSize,
			TotalPages:   result.TotalPages,
		},
	})
}

// Autocomplete handles GET /api/v1/public/search/autocomplete
func (h *PublicHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := fieldErrors{}

	req := autocompleteQuery{
		MaxSuggestions: queryInt(q, "maxSuggestions", errs),
	}
	if term := queryString(q, "searchTerm"); term != nil {
		req.SearchTerm = *term
	}

	if err := validateRequest(req, errs); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	suggestions, err := h.service.Suggestions(r.Context(), h.accountID, req.SearchTerm, req.MaxSuggestions)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, suggestions)
}

// FilterOptions handles GET /api/v1/public/search/filter-options
func (h *PublicHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := fieldErrors{}

	categories := queryJSONArray(q, "appliedCategories", errs)
	materials := queryJSONArray(q, "appliedMaterials", errs)
	colors := queryJSONArray(q, "appliedColors", errs)
	styles := queryJSONArray(q, "appliedStyles", errs)

	if len(errs) > 0 {
		httputil.WriteValidationError(w, &validator.ValidationError{Extra: errs})
		return
	}

	options, err := h.service.FilterOptions(r.Context(), domain.FilterOptionsQuery{
		AccountID:  h.accountID,
		Categories: categories,
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

// Alternatives handles GET /api/v1/public/search/alternatives
func (h *PublicHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := fieldErrors{}

	req := alternativesQuery{
		MaxSuggestions: queryInt(q, "maxSuggestions", errs),
		MaxProducts:    queryInt(q, "maxProducts", errs),
	}
	if term := queryString(q, "searchTerm"); term != nil {
		req.SearchTerm = *term
	}

	if err := validateRequest(req, errs); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	alternatives, err := h.service.Alternatives(r.Context(), h.accountID,
		req.SearchTerm, req.MaxSuggestions, req.MaxProducts)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, alternatives)
}

// Recent handles GET /api/v1/public/search/recent
func (h *PublicHandler) Recent(w http.ResponseWriter, r *http.Request) {
	req := recentQuery{}
	if v := queryString(r.URL.Query(), "sessionId"); v != nil {
		req.SessionID = *v
	}

	if err := validateRequest(req, nil); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	terms, err := h.service.RecentSearches(r.Context(), req.SessionID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, map[string]any{"terms": terms})
}
