/*
handlers.go - HTTP API handlers for the quoting service

PURPOSE:
  Exposes the premium engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Quotes:
    POST   /api/quotes/calculate             Price a quote (no persistence)
    POST   /api/quotes                       Price and save a quote
    GET    /api/quotes/{id}                  Get a saved quote
    GET    /api/quotes/reference/{reference} Lookup by reference number
    POST   /api/quotes/{id}/email            Email a saved quote

  Reference data:
    GET    /api/reference/provinces                  List provinces
    GET    /api/reference/provinces/{id}/coverages   Province coverage sets
    GET    /api/reference/makes                      List vehicle makes
    GET    /api/reference/makes/{id}/models          Models for a make
    GET    /api/reference/usages                     Primary-use categories
    GET    /api/reference/endorsements               List endorsements
    GET    /api/reference/discounts                  List discounts

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (rating tables + quotes)
  - Engine: Premium calculation
  - Mailer: Outbound quote emails
  - Cached reference catalog for the listing endpoints

REQUEST FLOW:
  1. Decode JSON body
  2. Validate with go-playground/validator
  3. Call domain logic (engine, store)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, missing required rating inputs
  - 404: Quote or reference row not found
  - 409: Lifecycle conflicts (e.g. emailing an expired quote)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - rating/engine.go: The premium engine
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aurora/quote-engine/catalog"
	"github.com/aurora/quote-engine/rating"
	"github.com/aurora/quote-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Engine *rating.Engine
	Mailer Mailer
	Logger *zap.Logger

	validate *validator.Validate

	// Cached reference data for the listing endpoints. Engine reads go
	// through the live store; only listings use the cache.
	mu      sync.RWMutex
	catalog *catalog.Catalog
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store *sqlite.Store, engine *rating.Engine, mailer Mailer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Engine:   engine,
		Mailer:   mailer,
		Logger:   logger,
		validate: validator.New(),
		catalog:  catalog.New(),
	}
}

// LoadReferenceData loads the reference tables into the listing cache.
// Call on startup and after reseeding.
func (h *Handler) LoadReferenceData(ctx context.Context) error {
	c, err := h.Store.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.catalog = c
	h.mu.Unlock()
	return nil
}

func (h *Handler) refCatalog() *catalog.Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalog
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

// CalculateQuote prices a quote without persisting anything.
// POST /api/quotes/calculate
func (h *Handler) CalculateQuote(w http.ResponseWriter, r *http.Request) {
	var req CalculateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	breakdown, err := h.runCalculation(r.Context(), req)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBreakdownDTO(breakdown))
}

// CreateQuote prices a quote and persists it with a reference number.
// POST /api/quotes
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	breakdown, err := h.runCalculation(r.Context(), req.CalculateQuoteRequest)
	if err != nil {
		writeCalculationError(w, err)
		return
	}

	quote, err := buildQuoteRecord(req, breakdown)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quote data", err)
		return
	}
	if err := h.Store.SaveQuote(r.Context(), quote); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save quote", err)
		return
	}

	h.Logger.Info("quote created",
		zap.String("quote_id", quote.ID),
		zap.String("reference", quote.ReferenceNumber),
		zap.Float64("annual_premium", quote.AnnualPremium.InexactFloat64()))

	writeJSON(w, http.StatusCreated, CreateQuoteResponse{
		Quote:     toQuoteDTO(quote),
		Breakdown: toBreakdownDTO(breakdown),
	})
}

// CreateQuoteResponse pairs the saved quote with the full breakdown, so
// the client does not need a second round trip.
type CreateQuoteResponse struct {
	Quote     QuoteDTO            `json:"quote"`
	Breakdown PremiumBreakdownDTO `json:"breakdown"`
}

// GetQuote returns a saved quote by id.
// GET /api/quotes/{id}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	quote, err := h.Store.GetQuote(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quote", err)
		return
	}
	if quote == nil {
		writeError(w, http.StatusNotFound, "Quote not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

// GetQuoteByReference returns a saved quote by its customer-facing
// reference number.
// GET /api/quotes/reference/{reference}
func (h *Handler) GetQuoteByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	quote, err := h.Store.GetQuoteByReference(r.Context(), reference)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quote", err)
		return
	}
	if quote == nil {
		writeError(w, http.StatusNotFound, "Quote not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

// EmailQuote sends a saved quote to the customer and marks it emailed.
// POST /api/quotes/{id}/email
func (h *Handler) EmailQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req EmailQuoteRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		if err := h.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", err)
			return
		}
	}

	quote, err := h.Store.GetQuote(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get quote", err)
		return
	}
	if quote == nil {
		writeError(w, http.StatusNotFound, "Quote not found", nil)
		return
	}
	if quote.Status == sqlite.QuoteStatusExpired {
		writeError(w, http.StatusConflict, "Quote has expired", nil)
		return
	}

	recipient := quote.Email
	if req.Email != "" {
		recipient = req.Email
	}

	if err := h.Mailer.SendQuote(r.Context(), recipient, quote); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send quote email", err)
		return
	}

	if err := h.Store.UpdateQuoteStatus(r.Context(), quote.ID, sqlite.QuoteStatusEmailed); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update quote status", err)
		return
	}
	quote.Status = sqlite.QuoteStatusEmailed

	h.Logger.Info("quote emailed",
		zap.String("quote_id", quote.ID),
		zap.String("recipient", recipient))

	writeJSON(w, http.StatusOK, toQuoteDTO(quote))
}

// runCalculation converts the request and invokes the engine.
func (h *Handler) runCalculation(ctx context.Context, req CalculateQuoteRequest) (*rating.PremiumBreakdown, error) {
	input, err := toQuoteInput(req, time.Time{})
	if err != nil {
		return nil, &rating.PreconditionError{Field: "driver.dateOfBirth"}
	}
	return h.Engine.Calculate(ctx, input)
}

// buildQuoteRecord assembles the persistence model from the request and
// the corrected breakdown. Stored coverage lines reflect the corrected
// selections, not the raw input.
func buildQuoteRecord(req CreateQuoteRequest, b *rating.PremiumBreakdown) (*sqlite.Quote, error) {
	dob, err := time.Parse("2006-01-02", req.Driver.DateOfBirth)
	if err != nil {
		return nil, err
	}

	q := &sqlite.Quote{
		FirstName:    req.Contact.FirstName,
		LastName:     req.Contact.LastName,
		Email:        req.Contact.Email,
		Phone:        req.Contact.Phone,
		Gender:       req.Contact.Gender,
		AddressLine1: req.Contact.AddressLine1,
		AddressLine2: req.Contact.AddressLine2,
		City:         req.Contact.City,
		PostalCode:   req.Contact.PostalCode,

		DateOfBirth:      dob,
		ProvinceID:       rating.ProvinceID(req.Driver.Province),
		LicenseYears:     req.Driver.LicenseYears,
		Accidents3Years:  req.Driver.Accidents3Years,
		Violations3Years: req.Driver.Violations3Years,
		Claims3Years:     req.Driver.Claims3Years,

		BasePremium:    b.BasePremium.Value,
		DiscountAmount: b.DiscountAmount.Value,
		Fees:           b.Fees.Value,
		Taxes:          b.Taxes.Value,
		AnnualPremium:  b.AnnualPremium.Value,
		MonthlyPremium: b.MonthlyPremium.Value,

		Vehicle: sqlite.QuoteVehicle{
			ModelID:       rating.ModelID(req.Vehicle.ModelID),
			Year:          req.Vehicle.Year,
			BodyType:      req.Vehicle.BodyType,
			UsageID:       rating.UsageID(req.Vehicle.PrimaryUse),
			AnnualMileage: req.Vehicle.AnnualMileage,
			Parking:       rating.ParkingLocation(req.Vehicle.Parking),
			AntiTheft:     req.Vehicle.AntiTheft,
			WinterTires:   req.Vehicle.WinterTires,
		},
	}

	corrected := b.CorrectedSelections
	for id, premium := range b.CoveragePremiums {
		sel, ok := corrected.MandatoryCoverages[id]
		if !ok {
			sel = corrected.OptionalCoverages[id]
		}
		q.Coverages = append(q.Coverages, sqlite.QuoteCoverage{
			CoverageID: id,
			Amount:     sel.Amount,
			Deductible: sel.Deductible,
			Level:      sel.Level,
			Premium:    premium.Value,
		})
	}
	for id, premium := range b.EndorsementPremiums {
		q.Endorsements = append(q.Endorsements, sqlite.QuoteEndorsement{
			EndorsementID: id,
			Premium:       premium.Value,
		})
	}
	for id, amount := range b.DiscountAmounts {
		q.Discounts = append(q.Discounts, sqlite.QuoteDiscount{
			DiscountID: id,
			Amount:     amount.Value,
		})
	}
	return q, nil
}

// =============================================================================
// REFERENCE DATA HANDLERS
// =============================================================================

// ListProvinces returns all provinces.
// GET /api/reference/provinces
func (h *Handler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces := h.refCatalog().ListProvinces()

	dtos := make([]ProvinceDTO, len(provinces))
	for i, p := range provinces {
		dtos[i] = ProvinceDTO{
			ID:                 string(p.ID),
			Name:               p.Name,
			MinLiabilityAmount: p.MinLiabilityAmount,
			InsuranceSystem:    p.InsuranceSystem,
			MandatoryCoverages: coverageIDStrings(p.MandatoryCoverages),
			OptionalCoverages:  coverageIDStrings(p.OptionalCoverages),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ProvinceCoverages returns a province's mandatory and optional coverage
// definitions, grouped for the selection UI.
// GET /api/reference/provinces/{id}/coverages
func (h *Handler) ProvinceCoverages(w http.ResponseWriter, r *http.Request) {
	id := rating.ProvinceID(chi.URLParam(r, "id"))
	c := h.refCatalog()

	if _, ok := c.Provinces[id]; !ok {
		writeError(w, http.StatusNotFound, "Province not found", nil)
		return
	}

	mandatory, optional := c.CoveragesForProvince(id)
	resp := ProvinceCoveragesDTO{
		Mandatory: make([]CoverageDTO, 0, len(mandatory)),
		Optional:  make([]CoverageDTO, 0, len(optional)),
	}
	for _, def := range mandatory {
		resp.Mandatory = append(resp.Mandatory, toCoverageDTO(def))
	}
	for _, def := range optional {
		resp.Optional = append(resp.Optional, toCoverageDTO(def))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMakes returns all vehicle makes.
// GET /api/reference/makes
func (h *Handler) ListMakes(w http.ResponseWriter, r *http.Request) {
	makes := h.refCatalog().ListMakes()

	dtos := make([]MakeDTO, len(makes))
	for i, m := range makes {
		dtos[i] = MakeDTO{ID: int64(m.ID), Name: m.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListModels returns the models for one make.
// GET /api/reference/makes/{id}/models
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	makeID, err := parseInt64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid make id", err)
		return
	}

	models := h.refCatalog().ModelsByMake(rating.MakeID(makeID))
	dtos := make([]ModelDTO, len(models))
	for i, m := range models {
		dtos[i] = ModelDTO{
			ID:             int64(m.ID),
			MakeID:         int64(m.MakeID),
			Name:           m.Name,
			InsuranceGroup: string(m.InsuranceGroup),
			SafetyRating:   m.SafetyRating.InexactFloat64(),
			Years:          m.Years,
			BodyTypes:      m.BodyTypes,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListUsages returns the primary-use categories.
// GET /api/reference/usages
func (h *Handler) ListUsages(w http.ResponseWriter, r *http.Request) {
	usages := h.refCatalog().ListUsages()

	dtos := make([]UsageDTO, len(usages))
	for i, u := range usages {
		dtos[i] = UsageDTO{ID: string(u.ID), Name: u.Name, AnnualKMRange: u.AnnualKMRange}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEndorsements returns all endorsements.
// GET /api/reference/endorsements
func (h *Handler) ListEndorsements(w http.ResponseWriter, r *http.Request) {
	rows := h.refCatalog().ListEndorsements()

	dtos := make([]EndorsementDTO, len(rows))
	for i, e := range rows {
		dtos[i] = EndorsementDTO{ID: string(e.ID), Name: e.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListDiscounts returns all discounts.
// GET /api/reference/discounts
func (h *Handler) ListDiscounts(w http.ResponseWriter, r *http.Request) {
	rows := h.refCatalog().ListDiscounts()

	dtos := make([]DiscountDTO, len(rows))
	for i, d := range rows {
		dtos[i] = DiscountDTO{ID: string(d.ID), Name: d.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeCalculationError maps engine errors to HTTP statuses. Missing
// required inputs are the caller's fault; everything else is ours.
func writeCalculationError(w http.ResponseWriter, err error) {
	if rating.IsClientError(err) {
		writeError(w, http.StatusBadRequest, "Invalid quote input", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Failed to calculate premium", err)
}

func coverageIDStrings(ids []rating.CoverageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func parseInt64Param(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
