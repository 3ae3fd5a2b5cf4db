/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

  JSON fields are camelCase; that is the wire contract the frontend
  consumes.

TYPES:
  Quoting:
    CalculateQuoteRequest, CreateQuoteRequest, PremiumBreakdownDTO,
    QuoteDTO, EmailQuoteRequest

  Reference data:
    ProvinceDTO, MakeDTO, ModelDTO, UsageDTO, CoverageDTO,
    EndorsementDTO, DiscountDTO

VALIDATION:
  Struct tags drive go-playground/validator. Handlers call
  validate.Struct before touching the payload; anything deeper
  (unknown ids, inconsistent selections) is the engine's business and
  surfaces as corrections, not errors.

SEE ALSO:
  - handlers.go: Uses these types
  - rating/types.go: Domain equivalents
*/
package api

import (
	"sort"
	"time"

	"github.com/aurora/quote-engine/rating"
	"github.com/aurora/quote-engine/store/sqlite"
)

// =============================================================================
// QUOTE REQUEST TYPES
// =============================================================================

// DriverDTO carries the rating-relevant driver attributes.
type DriverDTO struct {
	Province         string `json:"province" validate:"required"`
	DateOfBirth      string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	LicenseYears     int    `json:"licenseYears" validate:"min=0"`
	Accidents3Years  int    `json:"accidents3Years" validate:"min=0"`
	Violations3Years int    `json:"violations3Years" validate:"min=0"`
	Claims3Years     int    `json:"claims3Years" validate:"min=0"`
}

// VehicleDTO carries the rated vehicle attributes.
type VehicleDTO struct {
	ModelID       int64  `json:"modelId" validate:"required"`
	Year          int    `json:"year" validate:"required,min=1950"`
	BodyType      string `json:"bodyType"`
	PrimaryUse    string `json:"primaryUse" validate:"required"`
	AnnualMileage int    `json:"annualMileage" validate:"min=0"`
	Parking       string `json:"parking" validate:"omitempty,oneof=garage driveway street parking_lot"`
	AntiTheft     bool   `json:"antiTheft"`
	WinterTires   bool   `json:"winterTires"`
}

// CoverageSelectionDTO is one coverage choice. Exactly one of amount,
// deductible, or level is meaningful, determined by the coverage's kind.
type CoverageSelectionDTO struct {
	CoverageID string  `json:"coverageId" validate:"required"`
	Selected   bool    `json:"selected"`
	Amount     *int64  `json:"amount,omitempty"`
	Deductible *int64  `json:"deductible,omitempty"`
	Level      *string `json:"level,omitempty"`
}

// CalculateQuoteRequest prices a quote without persisting it.
type CalculateQuoteRequest struct {
	Driver             DriverDTO              `json:"driver" validate:"required"`
	Vehicle            VehicleDTO             `json:"vehicle" validate:"required"`
	MandatoryCoverages []CoverageSelectionDTO `json:"mandatoryCoverages" validate:"dive"`
	OptionalCoverages  []CoverageSelectionDTO `json:"optionalCoverages" validate:"dive"`
	Endorsements       []string               `json:"endorsements"`
	Discounts          []string               `json:"discounts"`
}

// ContactDTO is the customer contact block required to save a quote.
type ContactDTO struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone"`
	Gender       string `json:"gender"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
}

// CreateQuoteRequest prices and persists a quote.
type CreateQuoteRequest struct {
	CalculateQuoteRequest
	Contact ContactDTO `json:"contact" validate:"required"`
}

// EmailQuoteRequest optionally overrides the recipient address.
type EmailQuoteRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// =============================================================================
// QUOTE RESPONSE TYPES
// =============================================================================

// CorrectionDTO surfaces a recoverable substitution the engine applied.
type CorrectionDTO struct {
	Kind       string `json:"kind"`
	CoverageID string `json:"coverageId,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// PremiumBreakdownDTO is the priced result, rounded to 2 decimal places.
type PremiumBreakdownDTO struct {
	BasePremium    float64 `json:"basePremium"`
	DiscountAmount float64 `json:"discountAmount"`
	Fees           float64 `json:"fees"`
	Taxes          float64 `json:"taxes"`
	AnnualPremium  float64 `json:"annualPremium"`
	MonthlyPremium float64 `json:"monthlyPremium"`

	CoveragePremiums    map[string]float64 `json:"coveragePremiums"`
	EndorsementPremiums map[string]float64 `json:"endorsementPremiums"`
	DiscountAmounts     map[string]float64 `json:"discountAmounts"`

	CorrectedSelections CorrectedSelectionsDTO `json:"correctedSelections"`
	Corrections         []CorrectionDTO        `json:"corrections,omitempty"`
}

// CorrectedSelectionsDTO mirrors the input selections after fallback and
// default substitution, so the client can display what was actually priced.
type CorrectedSelectionsDTO struct {
	MandatoryCoverages []CoverageSelectionDTO `json:"mandatoryCoverages"`
	OptionalCoverages  []CoverageSelectionDTO `json:"optionalCoverages"`
}

// QuoteLineDTO is one stored premium line.
type QuoteLineDTO struct {
	ID         string  `json:"id"`
	Amount     *int64  `json:"amount,omitempty"`
	Deductible *int64  `json:"deductible,omitempty"`
	Level      *string `json:"level,omitempty"`
	Premium    float64 `json:"premium"`
}

// QuoteDTO is a persisted quote in API responses.
type QuoteDTO struct {
	ID              string `json:"id"`
	ReferenceNumber string `json:"referenceNumber"`
	Status          string `json:"status"`

	Contact ContactDTO `json:"contact"`
	Driver  DriverDTO  `json:"driver"`
	Vehicle VehicleDTO `json:"vehicle"`

	BasePremium    float64 `json:"basePremium"`
	DiscountAmount float64 `json:"discountAmount"`
	Fees           float64 `json:"fees"`
	Taxes          float64 `json:"taxes"`
	AnnualPremium  float64 `json:"annualPremium"`
	MonthlyPremium float64 `json:"monthlyPremium"`

	Coverages    []QuoteLineDTO `json:"coverages"`
	Endorsements []QuoteLineDTO `json:"endorsements"`
	Discounts    []QuoteLineDTO `json:"discounts"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// =============================================================================
// REFERENCE DATA TYPES
// =============================================================================

type ProvinceDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	MinLiabilityAmount int64    `json:"minLiabilityAmount"`
	InsuranceSystem    string   `json:"insuranceSystem,omitempty"`
	MandatoryCoverages []string `json:"mandatoryCoverages"`
	OptionalCoverages  []string `json:"optionalCoverages"`
}

type MakeDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ModelDTO struct {
	ID             int64    `json:"id"`
	MakeID         int64    `json:"makeId"`
	Name           string   `json:"name"`
	InsuranceGroup string   `json:"insuranceGroup"`
	SafetyRating   float64  `json:"safetyRating"`
	Years          []int    `json:"years,omitempty"`
	BodyTypes      []string `json:"bodyTypes,omitempty"`
}

type UsageDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AnnualKMRange string `json:"annualKmRange,omitempty"`
}

type CoverageOptionDTO struct {
	Amount     *int64  `json:"amount,omitempty"`
	Deductible *int64  `json:"deductible,omitempty"`
	Level      *string `json:"level,omitempty"`
}

type CoverageDTO struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Mandatory bool                `json:"mandatory"`
	Kind      string              `json:"kind"`
	Options   []CoverageOptionDTO `json:"options"`
}

type EndorsementDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DiscountDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProvinceCoveragesDTO groups a province's coverages for the selection UI.
type ProvinceCoveragesDTO struct {
	Mandatory []CoverageDTO `json:"mandatory"`
	Optional  []CoverageDTO `json:"optional"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSelectionSet(req CalculateQuoteRequest) rating.SelectionSet {
	sel := rating.SelectionSet{
		MandatoryCoverages: map[rating.CoverageID]rating.CoverageSelection{},
		OptionalCoverages:  map[rating.CoverageID]rating.CoverageSelection{},
		Endorsements:       map[rating.EndorsementID]bool{},
		Discounts:          map[rating.DiscountID]bool{},
	}
	for _, c := range req.MandatoryCoverages {
		sel.MandatoryCoverages[rating.CoverageID(c.CoverageID)] = toCoverageSelection(c)
	}
	for _, c := range req.OptionalCoverages {
		sel.OptionalCoverages[rating.CoverageID(c.CoverageID)] = toCoverageSelection(c)
	}
	for _, id := range req.Endorsements {
		sel.Endorsements[rating.EndorsementID(id)] = true
	}
	for _, id := range req.Discounts {
		sel.Discounts[rating.DiscountID(id)] = true
	}
	return sel
}

func toCoverageSelection(c CoverageSelectionDTO) rating.CoverageSelection {
	return rating.CoverageSelection{
		Selected:   c.Selected,
		Amount:     c.Amount,
		Deductible: c.Deductible,
		Level:      c.Level,
	}
}

func toQuoteInput(req CalculateQuoteRequest, now time.Time) (rating.QuoteInput, error) {
	dob, err := time.Parse("2006-01-02", req.Driver.DateOfBirth)
	if err != nil {
		return rating.QuoteInput{}, err
	}
	return rating.QuoteInput{
		Driver: rating.DriverProfile{
			Province:         rating.ProvinceID(req.Driver.Province),
			DateOfBirth:      dob,
			LicenseYears:     req.Driver.LicenseYears,
			Accidents3Years:  req.Driver.Accidents3Years,
			Violations3Years: req.Driver.Violations3Years,
			Claims3Years:     req.Driver.Claims3Years,
		},
		Vehicle: rating.VehicleProfile{
			Model:         rating.ModelID(req.Vehicle.ModelID),
			Year:          req.Vehicle.Year,
			BodyType:      req.Vehicle.BodyType,
			PrimaryUse:    rating.UsageID(req.Vehicle.PrimaryUse),
			AnnualMileage: req.Vehicle.AnnualMileage,
			Parking:       rating.ParkingLocation(req.Vehicle.Parking),
			AntiTheft:     req.Vehicle.AntiTheft,
			WinterTires:   req.Vehicle.WinterTires,
		},
		Selections: toSelectionSet(req),
		Now:        now,
	}, nil
}

func toBreakdownDTO(b *rating.PremiumBreakdown) PremiumBreakdownDTO {
	dto := PremiumBreakdownDTO{
		BasePremium:         b.BasePremium.Float(),
		DiscountAmount:      b.DiscountAmount.Float(),
		Fees:                b.Fees.Float(),
		Taxes:               b.Taxes.Float(),
		AnnualPremium:       b.AnnualPremium.Float(),
		MonthlyPremium:      b.MonthlyPremium.Float(),
		CoveragePremiums:    map[string]float64{},
		EndorsementPremiums: map[string]float64{},
		DiscountAmounts:     map[string]float64{},
	}
	for id, p := range b.CoveragePremiums {
		dto.CoveragePremiums[string(id)] = p.Float()
	}
	for id, p := range b.EndorsementPremiums {
		dto.EndorsementPremiums[string(id)] = p.Float()
	}
	for id, a := range b.DiscountAmounts {
		dto.DiscountAmounts[string(id)] = a.Float()
	}
	dto.CorrectedSelections = CorrectedSelectionsDTO{
		MandatoryCoverages: toSelectionDTOs(b.CorrectedSelections.MandatoryCoverages),
		OptionalCoverages:  toSelectionDTOs(b.CorrectedSelections.OptionalCoverages),
	}
	for _, c := range b.Corrections {
		dto.Corrections = append(dto.Corrections, CorrectionDTO{
			Kind:       string(c.Kind),
			CoverageID: string(c.Coverage),
			Detail:     c.Detail,
		})
	}
	return dto
}

func toSelectionDTOs(m map[rating.CoverageID]rating.CoverageSelection) []CoverageSelectionDTO {
	out := make([]CoverageSelectionDTO, 0, len(m))
	for id, sel := range m {
		out = append(out, CoverageSelectionDTO{
			CoverageID: string(id),
			Selected:   sel.Selected,
			Amount:     sel.Amount,
			Deductible: sel.Deductible,
			Level:      sel.Level,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CoverageID < out[j].CoverageID })
	return out
}

func toQuoteDTO(q *sqlite.Quote) QuoteDTO {
	dto := QuoteDTO{
		ID:              q.ID,
		ReferenceNumber: q.ReferenceNumber,
		Status:          string(q.Status),
		Contact: ContactDTO{
			FirstName:    q.FirstName,
			LastName:     q.LastName,
			Email:        q.Email,
			Phone:        q.Phone,
			Gender:       q.Gender,
			AddressLine1: q.AddressLine1,
			AddressLine2: q.AddressLine2,
			City:         q.City,
			PostalCode:   q.PostalCode,
		},
		Driver: DriverDTO{
			Province:         string(q.ProvinceID),
			DateOfBirth:      q.DateOfBirth.Format("2006-01-02"),
			LicenseYears:     q.LicenseYears,
			Accidents3Years:  q.Accidents3Years,
			Violations3Years: q.Violations3Years,
			Claims3Years:     q.Claims3Years,
		},
		Vehicle: VehicleDTO{
			ModelID:       int64(q.Vehicle.ModelID),
			Year:          q.Vehicle.Year,
			BodyType:      q.Vehicle.BodyType,
			PrimaryUse:    string(q.Vehicle.UsageID),
			AnnualMileage: q.Vehicle.AnnualMileage,
			Parking:       string(q.Vehicle.Parking),
			AntiTheft:     q.Vehicle.AntiTheft,
			WinterTires:   q.Vehicle.WinterTires,
		},
		BasePremium:    q.BasePremium.InexactFloat64(),
		DiscountAmount: q.DiscountAmount.InexactFloat64(),
		Fees:           q.Fees.InexactFloat64(),
		Taxes:          q.Taxes.InexactFloat64(),
		AnnualPremium:  q.AnnualPremium.InexactFloat64(),
		MonthlyPremium: q.MonthlyPremium.InexactFloat64(),
		CreatedAt:      q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      q.UpdatedAt.Format(time.RFC3339),
	}
	for _, c := range q.Coverages {
		dto.Coverages = append(dto.Coverages, QuoteLineDTO{
			ID:         string(c.CoverageID),
			Amount:     c.Amount,
			Deductible: c.Deductible,
			Level:      c.Level,
			Premium:    c.Premium.InexactFloat64(),
		})
	}
	for _, e := range q.Endorsements {
		dto.Endorsements = append(dto.Endorsements, QuoteLineDTO{
			ID:      string(e.EndorsementID),
			Premium: e.Premium.InexactFloat64(),
		})
	}
	for _, d := range q.Discounts {
		dto.Discounts = append(dto.Discounts, QuoteLineDTO{
			ID:      string(d.DiscountID),
			Premium: d.Amount.InexactFloat64(),
		})
	}
	return dto
}

func toCoverageDTO(def rating.CoverageDefinition) CoverageDTO {
	dto := CoverageDTO{
		ID:        string(def.ID),
		Name:      def.Name,
		Mandatory: def.Mandatory,
		Kind:      string(def.Kind),
		Options:   make([]CoverageOptionDTO, 0, len(def.Options)),
	}
	for _, opt := range def.Options {
		dto.Options = append(dto.Options, CoverageOptionDTO{
			Amount:     opt.Amount,
			Deductible: opt.Deductible,
			Level:      opt.Level,
		})
	}
	return dto
}
