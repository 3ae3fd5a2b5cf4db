/*
quotes.go - Quote persistence

PURPOSE:
  Saves calculated quotes with their full premium breakdown and retrieves
  them by id or by customer-facing reference number. A saved quote is a
  point-in-time record: rating tables may change afterwards, the stored
  breakdown does not.

STATUS LIFECYCLE:
  draft -> completed -> emailed -> expired

  Quotes are saved as completed once a premium has been calculated.
  The expiry sweeper moves stale completed/emailed quotes to expired;
  expired quotes stay readable but are no longer valid offers.

REFERENCE NUMBERS:
  Customer-facing lookup keys of the form Q-XXXXXXXX, derived from the
  quote's UUID. Unique by construction (UNIQUE index as backstop).

SEE ALSO:
  - sqlite.go: Store, schema, rating-table reads
  - api/: The only writer
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurora/quote-engine/rating"
)

// =============================================================================
// QUOTE MODEL
// =============================================================================

// QuoteStatus tracks where a saved quote sits in its lifecycle.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusCompleted QuoteStatus = "completed"
	QuoteStatusEmailed   QuoteStatus = "emailed"
	QuoteStatusExpired   QuoteStatus = "expired"
)

// Quote is a persisted quote with its premium breakdown.
type Quote struct {
	ID              string
	ReferenceNumber string

	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth time.Time
	Gender      string

	AddressLine1 string
	AddressLine2 string
	City         string
	ProvinceID   rating.ProvinceID
	PostalCode   string

	LicenseYears     int
	Accidents3Years  int
	Violations3Years int
	Claims3Years     int

	BasePremium    decimal.Decimal
	DiscountAmount decimal.Decimal
	Fees           decimal.Decimal
	Taxes          decimal.Decimal
	AnnualPremium  decimal.Decimal
	MonthlyPremium decimal.Decimal

	Status    QuoteStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	Vehicle      QuoteVehicle
	Coverages    []QuoteCoverage
	Endorsements []QuoteEndorsement
	Discounts    []QuoteDiscount
}

// QuoteVehicle is the vehicle a quote was rated against.
type QuoteVehicle struct {
	ModelID       rating.ModelID
	Year          int
	BodyType      string
	UsageID       rating.UsageID
	AnnualMileage int
	Parking       rating.ParkingLocation
	AntiTheft     bool
	WinterTires   bool
}

// QuoteCoverage is a priced coverage line with its corrected option values.
type QuoteCoverage struct {
	CoverageID rating.CoverageID
	Amount     *int64
	Deductible *int64
	Level      *string
	Premium    decimal.Decimal
}

// QuoteEndorsement is a priced endorsement line.
type QuoteEndorsement struct {
	EndorsementID rating.EndorsementID
	Premium       decimal.Decimal
}

// QuoteDiscount is an applied discount line.
type QuoteDiscount struct {
	DiscountID rating.DiscountID
	Amount     decimal.Decimal
}

// NewReferenceNumber derives a customer-facing reference from a quote id.
func NewReferenceNumber(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "Q-" + strings.ToUpper(compact)
}

// =============================================================================
// WRITES
// =============================================================================

// SaveQuote persists a quote and its line items in one transaction.
// Missing id, reference number, status, or timestamps are filled in.
func (s *Store) SaveQuote(ctx context.Context, q *Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.ReferenceNumber == "" {
		q.ReferenceNumber = NewReferenceNumber(q.ID)
	}
	if q.Status == "" {
		q.Status = QuoteStatusCompleted
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotes
		(id, reference_number, first_name, last_name, email, phone,
		 date_of_birth, gender, address_line1, address_line2, city,
		 province_id, postal_code, license_years, accidents_3_years,
		 violations_3_years, claims_3_years, base_premium, discount_amount,
		 fees, taxes, annual_premium, monthly_premium, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.ReferenceNumber, q.FirstName, q.LastName, q.Email, q.Phone,
		q.DateOfBirth.Format("2006-01-02"), q.Gender,
		q.AddressLine1, q.AddressLine2, q.City,
		string(q.ProvinceID), q.PostalCode, q.LicenseYears, q.Accidents3Years,
		q.Violations3Years, q.Claims3Years,
		q.BasePremium.String(), q.DiscountAmount.String(),
		q.Fees.String(), q.Taxes.String(),
		q.AnnualPremium.String(), q.MonthlyPremium.String(),
		string(q.Status),
		q.CreatedAt.Format(time.RFC3339), q.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}

	v := q.Vehicle
	var annualMileage any
	if v.AnnualMileage > 0 {
		annualMileage = v.AnnualMileage
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO quote_vehicles
		(id, quote_id, model_id, year, body_type, usage_id, annual_mileage,
		 parking, anti_theft, winter_tires)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), q.ID, int64(v.ModelID), v.Year, v.BodyType,
		string(v.UsageID), annualMileage, string(v.Parking), v.AntiTheft, v.WinterTires)
	if err != nil {
		return fmt.Errorf("failed to save quote vehicle: %w", err)
	}

	for _, cov := range q.Coverages {
		var amount, deductible, level any
		if cov.Amount != nil {
			amount = *cov.Amount
		}
		if cov.Deductible != nil {
			deductible = *cov.Deductible
		}
		if cov.Level != nil {
			level = *cov.Level
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quote_coverages (quote_id, coverage_id, amount, deductible, level, premium)
			VALUES (?, ?, ?, ?, ?, ?)`,
			q.ID, string(cov.CoverageID), amount, deductible, level, cov.Premium.String()); err != nil {
			return fmt.Errorf("failed to save quote coverage: %w", err)
		}
	}

	for _, e := range q.Endorsements {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quote_endorsements (quote_id, endorsement_id, premium)
			VALUES (?, ?, ?)`,
			q.ID, string(e.EndorsementID), e.Premium.String()); err != nil {
			return fmt.Errorf("failed to save quote endorsement: %w", err)
		}
	}

	for _, d := range q.Discounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quote_discounts (quote_id, discount_id, amount)
			VALUES (?, ?, ?)`,
			q.ID, string(d.DiscountID), d.Amount.String()); err != nil {
			return fmt.Errorf("failed to save quote discount: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateQuoteStatus moves a quote to a new lifecycle status.
// Returns sql.ErrNoRows if the quote does not exist.
func (s *Store) UpdateQuoteStatus(ctx context.Context, id string, status QuoteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE quotes SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExpireQuotesBefore marks completed and emailed quotes created before the
// cutoff as expired. Returns the number of quotes expired.
func (s *Store) ExpireQuotesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE quotes SET status = ?, updated_at = ?
		WHERE status IN (?, ?) AND created_at < ?`,
		string(QuoteStatusExpired), time.Now().UTC().Format(time.RFC3339),
		string(QuoteStatusCompleted), string(QuoteStatusEmailed),
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// =============================================================================
// READS
// =============================================================================

// GetQuote returns the quote with the given id, or (nil, nil) if not found.
func (s *Store) GetQuote(ctx context.Context, id string) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quoteWhere(ctx, "id = ?", id)
}

// GetQuoteByReference returns the quote with the given customer-facing
// reference number, or (nil, nil) if not found.
func (s *Store) GetQuoteByReference(ctx context.Context, reference string) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quoteWhere(ctx, "reference_number = ?", reference)
}

func (s *Store) quoteWhere(ctx context.Context, where string, arg any) (*Quote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, reference_number, first_name, last_name, email, phone,
		       date_of_birth, gender, address_line1, address_line2, city,
		       province_id, postal_code, license_years, accidents_3_years,
		       violations_3_years, claims_3_years, base_premium, discount_amount,
		       fees, taxes, annual_premium, monthly_premium, status, created_at, updated_at
		FROM quotes WHERE `+where, arg)

	var q Quote
	var phone, gender, addr1, addr2, city, postal sql.NullString
	var dob, basePremium, discountAmount, fees, taxes, annual, monthly string
	var createdAt, updatedAt string
	err := row.Scan(
		&q.ID, &q.ReferenceNumber, &q.FirstName, &q.LastName, &q.Email, &phone,
		&dob, &gender, &addr1, &addr2, &city,
		&q.ProvinceID, &postal, &q.LicenseYears, &q.Accidents3Years,
		&q.Violations3Years, &q.Claims3Years, &basePremium, &discountAmount,
		&fees, &taxes, &annual, &monthly, &q.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q.Phone = phone.String
	q.Gender = gender.String
	q.AddressLine1 = addr1.String
	q.AddressLine2 = addr2.String
	q.City = city.String
	q.PostalCode = postal.String

	if q.DateOfBirth, err = time.Parse("2006-01-02", dob); err != nil {
		return nil, fmt.Errorf("quote %s: invalid date of birth: %w", q.ID, err)
	}
	if q.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("quote %s: invalid created_at: %w", q.ID, err)
	}
	if q.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("quote %s: invalid updated_at: %w", q.ID, err)
	}

	q.BasePremium = rating.MustParseDecimal(basePremium)
	q.DiscountAmount = rating.MustParseDecimal(discountAmount)
	q.Fees = rating.MustParseDecimal(fees)
	q.Taxes = rating.MustParseDecimal(taxes)
	q.AnnualPremium = rating.MustParseDecimal(annual)
	q.MonthlyPremium = rating.MustParseDecimal(monthly)

	if err := s.loadQuoteLines(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Store) loadQuoteLines(ctx context.Context, q *Quote) error {
	row := s.db.QueryRowContext(ctx, `
		SELECT model_id, year, body_type, usage_id, annual_mileage,
		       parking, anti_theft, winter_tires
		FROM quote_vehicles WHERE quote_id = ?`, q.ID)

	var bodyType, parking sql.NullString
	var mileage sql.NullInt64
	err := row.Scan(&q.Vehicle.ModelID, &q.Vehicle.Year, &bodyType, &q.Vehicle.UsageID,
		&mileage, &parking, &q.Vehicle.AntiTheft, &q.Vehicle.WinterTires)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	q.Vehicle.BodyType = bodyType.String
	q.Vehicle.Parking = rating.ParkingLocation(parking.String)
	q.Vehicle.AnnualMileage = int(mileage.Int64)

	rows, err := s.db.QueryContext(ctx, `
		SELECT coverage_id, amount, deductible, level, premium
		FROM quote_coverages WHERE quote_id = ? ORDER BY coverage_id`, q.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cov QuoteCoverage
		var amount, deductible sql.NullInt64
		var level sql.NullString
		var premium string
		if err := rows.Scan(&cov.CoverageID, &amount, &deductible, &level, &premium); err != nil {
			rows.Close()
			return err
		}
		if amount.Valid {
			cov.Amount = &amount.Int64
		}
		if deductible.Valid {
			cov.Deductible = &deductible.Int64
		}
		if level.Valid {
			cov.Level = &level.String
		}
		cov.Premium = rating.MustParseDecimal(premium)
		q.Coverages = append(q.Coverages, cov)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT endorsement_id, premium
		FROM quote_endorsements WHERE quote_id = ? ORDER BY endorsement_id`, q.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var e QuoteEndorsement
		var premium string
		if err := rows.Scan(&e.EndorsementID, &premium); err != nil {
			rows.Close()
			return err
		}
		e.Premium = rating.MustParseDecimal(premium)
		q.Endorsements = append(q.Endorsements, e)
	}
	if err := closeRows(rows); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT discount_id, amount
		FROM quote_discounts WHERE quote_id = ? ORDER BY discount_id`, q.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var d QuoteDiscount
		var amount string
		if err := rows.Scan(&d.DiscountID, &amount); err != nil {
			rows.Close()
			return err
		}
		d.Amount = rating.MustParseDecimal(amount)
		q.Discounts = append(q.Discounts, d)
	}
	return closeRows(rows)
}
