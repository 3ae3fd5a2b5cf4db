/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements rating.Source (the rating-table read interface) and quote
  persistence using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  rating.Source: Rating-table reads for the premium engine

KEY TABLES:
  provinces:          Jurisdictions with mandatory/optional coverage lists
  makes, models:      Vehicle catalog
  vehicle_usages:     Primary-use rating factors
  driver_categories:  Interval and categorical driver rating rows
  coverages:          Coverage definitions (options as JSON config)
  endorsements:       Endorsement factors
  discounts:          Discount factors
  quotes:             Persisted quotes with premium breakdown columns
  quote_vehicles:     One vehicle row per quote
  quote_coverages:    Selected coverages with corrected option values
  quote_endorsements: Selected endorsements with contributed premiums
  quote_discounts:    Applied discounts with amounts

PRECISION:
  Monetary values and factors are stored as TEXT decimal strings, never
  as floats, so a round-trip through the database is exact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/quotes.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  store.Seed(ctx, catalog.Default())

  engine := rating.Engine{Source: store}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - rating/source.go: Interface definitions
  - quotes.go: Quote persistence
  - catalog/: In-memory equivalent used for seeding and tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aurora/quote-engine/catalog"
	"github.com/aurora/quote-engine/rating"
)

// Store implements rating.Source and quote persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store implements rating.Source.
var _ rating.Source = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reference data
	CREATE TABLE IF NOT EXISTS provinces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		min_liability_amount INTEGER NOT NULL,
		insurance_system TEXT,
		mandatory_coverages_json TEXT NOT NULL,
		optional_coverages_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS makes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS models (
		id INTEGER PRIMARY KEY,
		make_id INTEGER NOT NULL REFERENCES makes(id),
		name TEXT NOT NULL,
		insurance_group TEXT NOT NULL,
		safety_rating TEXT NOT NULL,
		years_json TEXT,
		body_types_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_models_make ON models(make_id);

	CREATE TABLE IF NOT EXISTS vehicle_usages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		premium_factor TEXT NOT NULL,
		annual_km_range TEXT
	);

	-- Interval rows (age_group, experience) carry min/max bounds; categorical
	-- rows (history) are looked up by id. Discriminated by category_type.
	CREATE TABLE IF NOT EXISTS driver_categories (
		id TEXT PRIMARY KEY,
		category_type TEXT NOT NULL,
		min_value INTEGER,
		max_value INTEGER,
		premium_factor TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_driver_categories_type
		ON driver_categories(category_type, min_value, max_value);

	CREATE TABLE IF NOT EXISTS coverages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_mandatory BOOLEAN NOT NULL DEFAULT FALSE,
		option_kind TEXT NOT NULL,
		default_amount INTEGER,
		default_level TEXT,
		options_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS endorsements (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		premium_factor TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS discounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		discount_factor TEXT NOT NULL
	);

	-- Quotes
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		reference_number TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		date_of_birth TEXT NOT NULL,
		gender TEXT,
		address_line1 TEXT,
		address_line2 TEXT,
		city TEXT,
		province_id TEXT NOT NULL,
		postal_code TEXT,
		license_years INTEGER NOT NULL,
		accidents_3_years INTEGER NOT NULL DEFAULT 0,
		violations_3_years INTEGER NOT NULL DEFAULT 0,
		claims_3_years INTEGER NOT NULL DEFAULT 0,
		base_premium TEXT NOT NULL,
		discount_amount TEXT NOT NULL,
		fees TEXT NOT NULL,
		taxes TEXT NOT NULL,
		annual_premium TEXT NOT NULL,
		monthly_premium TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'completed',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_reference ON quotes(reference_number);
	CREATE INDEX IF NOT EXISTS idx_quotes_status_created ON quotes(status, created_at);

	CREATE TABLE IF NOT EXISTS quote_vehicles (
		id TEXT PRIMARY KEY,
		quote_id TEXT NOT NULL REFERENCES quotes(id),
		model_id INTEGER NOT NULL,
		year INTEGER NOT NULL,
		body_type TEXT,
		usage_id TEXT NOT NULL,
		annual_mileage INTEGER,
		parking TEXT,
		anti_theft BOOLEAN NOT NULL DEFAULT FALSE,
		winter_tires BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_quote_vehicles_quote ON quote_vehicles(quote_id);

	CREATE TABLE IF NOT EXISTS quote_coverages (
		quote_id TEXT NOT NULL REFERENCES quotes(id),
		coverage_id TEXT NOT NULL,
		amount INTEGER,
		deductible INTEGER,
		level TEXT,
		premium TEXT NOT NULL,
		PRIMARY KEY (quote_id, coverage_id)
	);

	CREATE TABLE IF NOT EXISTS quote_endorsements (
		quote_id TEXT NOT NULL REFERENCES quotes(id),
		endorsement_id TEXT NOT NULL,
		premium TEXT NOT NULL,
		PRIMARY KEY (quote_id, endorsement_id)
	);

	CREATE TABLE IF NOT EXISTS quote_discounts (
		quote_id TEXT NOT NULL REFERENCES quotes(id),
		discount_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (quote_id, discount_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SEEDING
// =============================================================================

// HasReferenceData reports whether the reference tables are populated.
func (s *Store) HasReferenceData(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM provinces`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Seed replaces the reference tables with the catalog's contents.
// Quote tables are untouched.
func (s *Store) Seed(ctx context.Context, c *catalog.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range c.ListProvinces() {
		mand, err := json.Marshal(p.MandatoryCoverages)
		if err != nil {
			return err
		}
		opt, err := json.Marshal(p.OptionalCoverages)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO provinces
			(id, name, min_liability_amount, insurance_system, mandatory_coverages_json, optional_coverages_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			string(p.ID), p.Name, p.MinLiabilityAmount, p.InsuranceSystem, string(mand), string(opt)); err != nil {
			return err
		}
	}

	for _, m := range c.ListMakes() {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO makes (id, name) VALUES (?, ?)`,
			int64(m.ID), m.Name); err != nil {
			return err
		}
		for _, mdl := range c.ModelsByMake(m.ID) {
			years, err := json.Marshal(mdl.Years)
			if err != nil {
				return err
			}
			bodies, err := json.Marshal(mdl.BodyTypes)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO models
				(id, make_id, name, insurance_group, safety_rating, years_json, body_types_json)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				int64(mdl.ID), int64(mdl.MakeID), mdl.Name, string(mdl.InsuranceGroup),
				mdl.SafetyRating.String(), string(years), string(bodies)); err != nil {
				return err
			}
		}
	}

	for _, u := range c.ListUsages() {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO vehicle_usages (id, name, premium_factor, annual_km_range)
			VALUES (?, ?, ?, ?)`,
			string(u.ID), u.Name, u.Factor.String(), u.AnnualKMRange); err != nil {
			return err
		}
	}

	insertBand := func(categoryType string, b rating.Band, interval bool) error {
		var minV, maxV any
		if interval {
			minV, maxV = b.Min, b.Max
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO driver_categories
			(id, category_type, min_value, max_value, premium_factor)
			VALUES (?, ?, ?, ?, ?)`,
			b.ID, categoryType, minV, maxV, b.Factor.String())
		return err
	}
	for _, b := range c.AgeBands {
		if err := insertBand("age_group", b, true); err != nil {
			return err
		}
	}
	for _, b := range c.ExperienceBands {
		if err := insertBand("experience", b, true); err != nil {
			return err
		}
	}
	for _, b := range c.HistoryBands {
		if err := insertBand("history", b, false); err != nil {
			return err
		}
	}

	for id, def := range c.CoverageDefs {
		options, err := json.Marshal(def.Options)
		if err != nil {
			return err
		}
		var defAmount any
		if def.DefaultAmount != nil {
			defAmount = *def.DefaultAmount
		}
		var defLevel any
		if def.DefaultLevel != nil {
			defLevel = *def.DefaultLevel
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO coverages
			(id, name, is_mandatory, option_kind, default_amount, default_level, options_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(id), def.Name, def.Mandatory, string(def.Kind), defAmount, defLevel, string(options)); err != nil {
			return err
		}
	}

	for id, e := range c.EndorsementRows {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO endorsements (id, name, premium_factor) VALUES (?, ?, ?)`,
			string(id), e.Name, e.Factor.String()); err != nil {
			return err
		}
	}
	for id, d := range c.DiscountRows {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO discounts (id, name, discount_factor) VALUES (?, ?, ?)`,
			string(id), d.Name, d.Factor.String()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// RATING SOURCE
// =============================================================================

func (s *Store) Province(ctx context.Context, id rating.ProvinceID) (*rating.Province, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.province(ctx, id)
}

func (s *Store) province(ctx context.Context, id rating.ProvinceID) (*rating.Province, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, min_liability_amount, insurance_system,
		       mandatory_coverages_json, optional_coverages_json
		FROM provinces WHERE id = ?`, string(id))

	var p rating.Province
	var system sql.NullString
	var mandJSON, optJSON string
	err := row.Scan(&p.ID, &p.Name, &p.MinLiabilityAmount, &system, &mandJSON, &optJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.InsuranceSystem = system.String
	if err := json.Unmarshal([]byte(mandJSON), &p.MandatoryCoverages); err != nil {
		return nil, fmt.Errorf("province %s: invalid mandatory coverage list: %w", id, err)
	}
	if err := json.Unmarshal([]byte(optJSON), &p.OptionalCoverages); err != nil {
		return nil, fmt.Errorf("province %s: invalid optional coverage list: %w", id, err)
	}
	return &p, nil
}

func (s *Store) Model(ctx context.Context, id rating.ModelID) (*rating.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, make_id, name, insurance_group, safety_rating, years_json, body_types_json
		FROM models WHERE id = ?`, int64(id))

	m, err := scanModel(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanModel(scan func(dest ...any) error) (*rating.Model, error) {
	var m rating.Model
	var safety string
	var yearsJSON, bodiesJSON sql.NullString
	if err := scan(&m.ID, &m.MakeID, &m.Name, &m.InsuranceGroup, &safety, &yearsJSON, &bodiesJSON); err != nil {
		return nil, err
	}
	m.SafetyRating = rating.MustParseDecimal(safety)
	if yearsJSON.Valid {
		if err := json.Unmarshal([]byte(yearsJSON.String), &m.Years); err != nil {
			return nil, err
		}
	}
	if bodiesJSON.Valid {
		if err := json.Unmarshal([]byte(bodiesJSON.String), &m.BodyTypes); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func (s *Store) Usage(ctx context.Context, id rating.UsageID) (*rating.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, premium_factor, annual_km_range
		FROM vehicle_usages WHERE id = ?`, string(id))

	var u rating.Usage
	var factor string
	var kmRange sql.NullString
	err := row.Scan(&u.ID, &u.Name, &factor, &kmRange)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Factor = rating.MustParseDecimal(factor)
	u.AnnualKMRange = kmRange.String
	return &u, nil
}

func (s *Store) AgeBand(ctx context.Context, age int) (*rating.Band, error) {
	return s.intervalBand(ctx, "age_group", age)
}

func (s *Store) ExperienceBand(ctx context.Context, years int) (*rating.Band, error) {
	return s.intervalBand(ctx, "experience", years)
}

func (s *Store) intervalBand(ctx context.Context, categoryType string, v int) (*rating.Band, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, min_value, max_value, premium_factor
		FROM driver_categories
		WHERE category_type = ? AND min_value <= ? AND max_value >= ?
		LIMIT 1`, categoryType, v, v)

	var b rating.Band
	var factor string
	err := row.Scan(&b.ID, &b.Min, &b.Max, &factor)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Factor = rating.MustParseDecimal(factor)
	return &b, nil
}

func (s *Store) HistoryBand(ctx context.Context, id rating.HistoryBandID) (*rating.Band, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, premium_factor FROM driver_categories
		WHERE category_type = 'history' AND id = ?`, string(id))

	var b rating.Band
	var factor string
	err := row.Scan(&b.ID, &factor)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Factor = rating.MustParseDecimal(factor)
	return &b, nil
}

func (s *Store) Coverages(ctx context.Context, ids []rating.CoverageID) ([]rating.CoverageDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []rating.CoverageDefinition
	seen := map[rating.CoverageID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		def, err := s.coverage(ctx, id)
		if err != nil {
			return nil, err
		}
		if def != nil {
			out = append(out, *def)
		}
	}
	return out, nil
}

func (s *Store) coverage(ctx context.Context, id rating.CoverageID) (*rating.CoverageDefinition, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, is_mandatory, option_kind, default_amount, default_level, options_json
		FROM coverages WHERE id = ?`, string(id))

	var def rating.CoverageDefinition
	var defAmount sql.NullInt64
	var defLevel sql.NullString
	var optionsJSON string
	err := row.Scan(&def.ID, &def.Name, &def.Mandatory, &def.Kind, &defAmount, &defLevel, &optionsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if defAmount.Valid {
		v := defAmount.Int64
		def.DefaultAmount = &v
	}
	if defLevel.Valid {
		v := defLevel.String
		def.DefaultLevel = &v
	}
	if err := json.Unmarshal([]byte(optionsJSON), &def.Options); err != nil {
		return nil, fmt.Errorf("coverage %s: invalid options config: %w", id, err)
	}
	return &def, nil
}

func (s *Store) Endorsements(ctx context.Context, ids []rating.EndorsementID) ([]rating.Endorsement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []rating.Endorsement
	for _, id := range ids {
		row := s.db.QueryRowContext(ctx,
			`SELECT id, name, premium_factor FROM endorsements WHERE id = ?`, string(id))
		var e rating.Endorsement
		var factor string
		err := row.Scan(&e.ID, &e.Name, &factor)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		e.Factor = rating.MustParseDecimal(factor)
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) Discounts(ctx context.Context, ids []rating.DiscountID) ([]rating.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []rating.Discount
	for _, id := range ids {
		row := s.db.QueryRowContext(ctx,
			`SELECT id, name, discount_factor FROM discounts WHERE id = ?`, string(id))
		var d rating.Discount
		var factor string
		err := row.Scan(&d.ID, &d.Name, &factor)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		d.Factor = rating.MustParseDecimal(factor)
		out = append(out, d)
	}
	return out, nil
}

// =============================================================================
// CATALOG LOAD
// =============================================================================

// LoadCatalog reads the reference tables into an in-memory catalog.
// The API layer caches the result for its listing endpoints; engine
// reads still go through the live Source methods above.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := catalog.New()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM provinces`)
	if err != nil {
		return nil, err
	}
	provinceIDs, err := collectIDs[rating.ProvinceID](rows)
	if err != nil {
		return nil, err
	}
	for _, id := range provinceIDs {
		p, err := s.province(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			c.Provinces[p.ID] = *p
		}
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name FROM makes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m rating.Make
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			rows.Close()
			return nil, err
		}
		c.Makes[m.ID] = m
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, make_id, name, insurance_group, safety_rating, years_json, body_types_json
		FROM models`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		m, err := scanModel(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		c.Models[m.ID] = *m
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name, premium_factor, annual_km_range FROM vehicle_usages`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var u rating.Usage
		var factor string
		var kmRange sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &factor, &kmRange); err != nil {
			rows.Close()
			return nil, err
		}
		u.Factor = rating.MustParseDecimal(factor)
		u.AnnualKMRange = kmRange.String
		c.Usages[u.ID] = u
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, category_type, min_value, max_value, premium_factor
		FROM driver_categories
		ORDER BY min_value`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var b rating.Band
		var categoryType, factor string
		var minV, maxV sql.NullInt64
		if err := rows.Scan(&b.ID, &categoryType, &minV, &maxV, &factor); err != nil {
			rows.Close()
			return nil, err
		}
		b.Min, b.Max = int(minV.Int64), int(maxV.Int64)
		b.Factor = rating.MustParseDecimal(factor)
		switch categoryType {
		case "age_group":
			c.AgeBands = append(c.AgeBands, b)
		case "experience":
			c.ExperienceBands = append(c.ExperienceBands, b)
		case "history":
			c.HistoryBands[rating.HistoryBandID(b.ID)] = b
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id FROM coverages`)
	if err != nil {
		return nil, err
	}
	coverageIDs, err := collectIDs[rating.CoverageID](rows)
	if err != nil {
		return nil, err
	}
	for _, id := range coverageIDs {
		def, err := s.coverage(ctx, id)
		if err != nil {
			return nil, err
		}
		if def != nil {
			c.CoverageDefs[def.ID] = *def
		}
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name, premium_factor FROM endorsements`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var e rating.Endorsement
		var factor string
		if err := rows.Scan(&e.ID, &e.Name, &factor); err != nil {
			rows.Close()
			return nil, err
		}
		e.Factor = rating.MustParseDecimal(factor)
		c.EndorsementRows[e.ID] = e
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT id, name, discount_factor FROM discounts`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d rating.Discount
		var factor string
		if err := rows.Scan(&d.ID, &d.Name, &factor); err != nil {
			rows.Close()
			return nil, err
		}
		d.Factor = rating.MustParseDecimal(factor)
		c.DiscountRows[d.ID] = d
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	return c, nil
}

func collectIDs[T ~string](rows *sql.Rows) ([]T, error) {
	var out []T
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, T(id))
	}
	return out, closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
