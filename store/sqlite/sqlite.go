/*
Package sqlite provides a SQLite-backed fee catalog store.

PURPOSE:
  Persists property fee catalogs (fees, association edges, inventory
  groups, inventories, lease terms, amenity prices, concessions) and
  serves the pricing.SnapshotStore interface: a single upfront read of
  everything one resolution run consumes. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  pricing.SnapshotStore: the engine's only I/O boundary

KEY TABLES:
  fees:              chargeable-item templates
  fee_associations:  primary -> associated dependency edges
  inventory_groups:  unit groupings with per-period base prices
  inventories:       unit records (parent link, layout, building, rent)
  lease_terms:       offered term lengths with market rents
  amenity_prices:    per-group amenity price deltas
  concessions:       discounts, matching criteria stored as JSON

MATCHING CRITERIA:
  Concession criteria documents are stored serialized and validated via
  pricing.ParseMatchingCriteria exactly once per concession per snapshot
  load - never per evaluation.

DECIMALS:
  Monetary values are stored as TEXT and parsed with shopspring/decimal;
  SQLite REALs would reintroduce float drift.

CONCURRENCY:
  Opened with WAL so readers don't block each other; a sync.RWMutex
  serializes writers.

USAGE:
  st, err := sqlite.New("./data/catalog.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  engine := quoting.NewEngine(st, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - pricing/snapshot.go: interface definition
  - pricing/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/pricing-engine/pricing"
)

// Store implements pricing.SnapshotStore over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a catalog database. Use ":memory:" for an
// in-memory database.
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

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fees (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL,
		display_name TEXT NOT NULL,
		fee_type TEXT NOT NULL,
		service_period TEXT NOT NULL,
		relative_price TEXT,
		absolute_price TEXT,
		relative_default_price TEXT,
		absolute_default_price TEXT,
		price_floor_ceiling INTEGER NOT NULL DEFAULT 0,
		quote_section_name TEXT NOT NULL DEFAULT '',
		max_quantity_in_quote INTEGER NOT NULL DEFAULT 0,
		lease_state TEXT NOT NULL DEFAULT '',
		renewal_letter_display INTEGER NOT NULL DEFAULT 0,
		external_charge_code TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (property_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_fees_property ON fees(property_id);

	CREATE TABLE IF NOT EXISTS fee_associations (
		property_id TEXT NOT NULL,
		primary_fee TEXT NOT NULL,
		associated_fee TEXT NOT NULL,
		is_additional INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (property_id, primary_fee, associated_fee)
	);
	CREATE INDEX IF NOT EXISTS idx_fee_assoc_primary
		ON fee_associations(property_id, primary_fee);

	CREATE TABLE IF NOT EXISTS inventory_groups (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		fee_id TEXT NOT NULL DEFAULT '',
		lease_name_id TEXT NOT NULL DEFAULT '',
		base_price_monthly TEXT NOT NULL DEFAULT '0',
		base_price_weekly TEXT NOT NULL DEFAULT '0',
		base_price_daily TEXT NOT NULL DEFAULT '0',
		base_price_hourly TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (property_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_groups_fee ON inventory_groups(property_id, fee_id);

	CREATE TABLE IF NOT EXISTS inventories (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		parent_inventory TEXT,
		layout_id TEXT NOT NULL DEFAULT '',
		building_id TEXT NOT NULL DEFAULT '',
		market_rent TEXT NOT NULL DEFAULT '0',
		pooled_quantity INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (property_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_inventories_group ON inventories(property_id, group_id);

	CREATE TABLE IF NOT EXISTS lease_terms (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		term_length INTEGER NOT NULL,
		period TEXT NOT NULL,
		lease_name_id TEXT NOT NULL DEFAULT '',
		adjusted_market_rent TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (property_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_terms_lease_name ON lease_terms(property_id, lease_name_id);

	CREATE TABLE IF NOT EXISTS amenity_prices (
		property_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		amenity_id TEXT NOT NULL,
		relative_price TEXT,
		absolute_price TEXT,
		PRIMARY KEY (property_id, group_id, amenity_id)
	);

	CREATE TABLE IF NOT EXISTS concessions (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		relative_adjustment TEXT,
		absolute_adjustment TEXT,
		variable_adjustment INTEGER NOT NULL DEFAULT 0,
		recurring INTEGER NOT NULL DEFAULT 0,
		recurring_count INTEGER NOT NULL DEFAULT 0,
		non_recurring_applied_at TEXT NOT NULL DEFAULT '',
		baked_into_applied_fee INTEGER NOT NULL DEFAULT 0,
		hide_in_self_service INTEGER NOT NULL DEFAULT 0,
		adjustment_floor_ceiling INTEGER NOT NULL DEFAULT 0,
		start_date TEXT,
		end_date TEXT,
		matching_criteria TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (property_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_concessions_property ON concessions(property_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT READ - The engine's single I/O boundary
// =============================================================================

// SnapshotForProperty loads the property's full catalog, filtered by
// lease-state compatibility with the requested context. Association edges
// whose endpoints were filtered out are dropped with them.
func (s *Store) SnapshotForProperty(ctx context.Context, propertyID pricing.PropertyID, state pricing.LeaseState) (*pricing.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fees, err := s.loadFees(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if len(fees) == 0 {
		exists, err := s.propertyExists(ctx, propertyID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, pricing.ErrPropertyNotFound
		}
	}

	snap := &pricing.Snapshot{PropertyID: propertyID, LeaseState: state}

	kept := make(map[pricing.FeeID]bool, len(fees))
	for _, f := range fees {
		if f.LeaseState.Matches(state) {
			snap.Fees = append(snap.Fees, f)
			kept[f.ID] = true
		}
	}

	edges, err := s.loadAssociations(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if kept[e.PrimaryFee] && kept[e.AssociatedFee] {
			snap.AssociatedFees = append(snap.AssociatedFees, e)
		}
	}

	if snap.InventoryGroups, err = s.loadGroups(ctx, propertyID); err != nil {
		return nil, err
	}
	if snap.Inventories, err = s.loadInventories(ctx, propertyID); err != nil {
		return nil, err
	}
	if snap.LeaseTerms, err = s.loadLeaseTerms(ctx, propertyID); err != nil {
		return nil, err
	}
	if snap.AmenityPrices, err = s.loadAmenityPrices(ctx, propertyID); err != nil {
		return nil, err
	}
	if snap.Concessions, err = s.loadConcessions(ctx, propertyID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) propertyExists(ctx context.Context, propertyID pricing.PropertyID) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT property_id FROM fees WHERE property_id = ?
			UNION SELECT property_id FROM lease_terms WHERE property_id = ?
			UNION SELECT property_id FROM concessions WHERE property_id = ?
		)`, propertyID, propertyID, propertyID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// CATALOG IMPORT
// =============================================================================

// ReplaceCatalog atomically replaces the property's entire catalog with
// the given snapshot. The import path always writes full catalogs;
// incremental edits go through the Save* helpers.
func (s *Store) ReplaceCatalog(ctx context.Context, snap *pricing.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pid := snap.PropertyID
	for _, table := range []string{"fees", "fee_associations", "inventory_groups", "inventories", "lease_terms", "amenity_prices", "concessions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE property_id = ?", pid); err != nil {
			return err
		}
	}

	for _, f := range snap.Fees {
		if err := insertFee(ctx, tx, pid, f); err != nil {
			return err
		}
	}
	for _, e := range snap.AssociatedFees {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fee_associations (property_id, primary_fee, associated_fee, is_additional)
			VALUES (?, ?, ?, ?)`,
			pid, e.PrimaryFee, e.AssociatedFee, boolInt(e.IsAdditional)); err != nil {
			return err
		}
	}
	for _, g := range snap.InventoryGroups {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_groups (id, property_id, name, fee_id, lease_name_id,
				base_price_monthly, base_price_weekly, base_price_daily, base_price_hourly)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, pid, g.Name, g.FeeID, g.LeaseNameID,
			g.BasePriceMonthly.String(), g.BasePriceWeekly.String(),
			g.BasePriceDaily.String(), g.BasePriceHourly.String()); err != nil {
			return err
		}
	}
	for _, inv := range snap.Inventories {
		var parent interface{}
		if inv.ParentInventory != nil {
			parent = string(*inv.ParentInventory)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventories (id, property_id, group_id, parent_inventory,
				layout_id, building_id, market_rent, pooled_quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, pid, inv.GroupID, parent, inv.LayoutID, inv.BuildingID,
			inv.MarketRent.String(), inv.PooledQuantity); err != nil {
			return err
		}
	}
	for _, t := range snap.LeaseTerms {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lease_terms (id, property_id, term_length, period, lease_name_id, adjusted_market_rent)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, pid, t.TermLength, t.Period, t.LeaseNameID, t.AdjustedMarketRent.String()); err != nil {
			return err
		}
	}
	for _, a := range snap.AmenityPrices {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO amenity_prices (property_id, group_id, amenity_id, relative_price, absolute_price)
			VALUES (?, ?, ?, ?, ?)`,
			pid, a.GroupID, a.AmenityID, decText(a.RelativePrice), decText(a.AbsolutePrice)); err != nil {
			return err
		}
	}
	for _, c := range snap.Concessions {
		if err := insertConcession(ctx, tx, pid, c); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveFee upserts a single fee.
func (s *Store) SaveFee(ctx context.Context, propertyID pricing.PropertyID, fee pricing.Fee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fees WHERE property_id = ? AND id = ?`, propertyID, fee.ID); err != nil {
		return err
	}
	return insertFee(ctx, s.db, propertyID, fee)
}

// SaveConcession upserts a single concession.
func (s *Store) SaveConcession(ctx context.Context, propertyID pricing.PropertyID, c pricing.Concession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM concessions WHERE property_id = ? AND id = ?`, propertyID, c.ID); err != nil {
		return err
	}
	return insertConcession(ctx, s.db, propertyID, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFee(ctx context.Context, db execer, pid pricing.PropertyID, f pricing.Fee) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fees (id, property_id, name, display_name, fee_type, service_period,
			relative_price, absolute_price, relative_default_price, absolute_default_price,
			price_floor_ceiling, quote_section_name, max_quantity_in_quote,
			lease_state, renewal_letter_display, external_charge_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, pid, f.Name, f.DisplayName, f.Type, f.ServicePeriod,
		decText(f.RelativePrice), decText(f.AbsolutePrice),
		decText(f.RelativeDefaultPrice), decText(f.AbsoluteDefaultPrice),
		boolInt(f.PriceFloorCeiling), f.QuoteSectionName, f.MaxQuantityInQuote,
		f.LeaseState, boolInt(f.RenewalLetterDisplay), f.ExternalChargeCode)
	return err
}

func insertConcession(ctx context.Context, db execer, pid pricing.PropertyID, c pricing.Concession) error {
	criteria, err := json.Marshal(c.Criteria)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO concessions (id, property_id, display_name,
			relative_adjustment, absolute_adjustment, variable_adjustment,
			recurring, recurring_count, non_recurring_applied_at,
			baked_into_applied_fee, hide_in_self_service, adjustment_floor_ceiling,
			start_date, end_date, matching_criteria)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, pid, c.DisplayName,
		decText(c.RelativeAdjustment), decText(c.AbsoluteAdjustment), boolInt(c.VariableAdjustment),
		boolInt(c.Recurring), c.RecurringCount, c.NonRecurringAppliedAt,
		boolInt(c.BakedIntoAppliedFee), boolInt(c.HideInSelfService), boolInt(c.AdjustmentFloorCeiling),
		timeText(c.StartDate), timeText(c.EndDate), string(criteria))
	return err
}

// =============================================================================
// LOADERS
// =============================================================================

func (s *Store) loadFees(ctx context.Context, pid pricing.PropertyID) ([]pricing.Fee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, display_name, fee_type, service_period,
			relative_price, absolute_price, relative_default_price, absolute_default_price,
			price_floor_ceiling, quote_section_name, max_quantity_in_quote,
			lease_state, renewal_letter_display, external_charge_code
		FROM fees WHERE property_id = ? ORDER BY id`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []pricing.Fee
	for rows.Next() {
		var f pricing.Fee
		var rel, abs, relDef, absDef sql.NullString
		var floorCeiling, renewalDisplay int
		if err := rows.Scan(&f.ID, &f.Name, &f.DisplayName, &f.Type, &f.ServicePeriod,
			&rel, &abs, &relDef, &absDef,
			&floorCeiling, &f.QuoteSectionName, &f.MaxQuantityInQuote,
			&f.LeaseState, &renewalDisplay, &f.ExternalChargeCode); err != nil {
			return nil, err
		}
		if f.RelativePrice, err = decFromNull(rel); err != nil {
			return nil, err
		}
		if f.AbsolutePrice, err = decFromNull(abs); err != nil {
			return nil, err
		}
		if f.RelativeDefaultPrice, err = decFromNull(relDef); err != nil {
			return nil, err
		}
		if f.AbsoluteDefaultPrice, err = decFromNull(absDef); err != nil {
			return nil, err
		}
		f.PriceFloorCeiling = floorCeiling != 0
		f.RenewalLetterDisplay = renewalDisplay != 0
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

func (s *Store) loadAssociations(ctx context.Context, pid pricing.PropertyID) ([]pricing.AssociatedFee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT primary_fee, associated_fee, is_additional
		FROM fee_associations WHERE property_id = ? ORDER BY primary_fee, associated_fee`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []pricing.AssociatedFee
	for rows.Next() {
		var e pricing.AssociatedFee
		var additional int
		if err := rows.Scan(&e.PrimaryFee, &e.AssociatedFee, &additional); err != nil {
			return nil, err
		}
		e.IsAdditional = additional != 0
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *Store) loadGroups(ctx context.Context, pid pricing.PropertyID) ([]pricing.InventoryGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, fee_id, lease_name_id,
			base_price_monthly, base_price_weekly, base_price_daily, base_price_hourly
		FROM inventory_groups WHERE property_id = ? ORDER BY id`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []pricing.InventoryGroup
	for rows.Next() {
		var g pricing.InventoryGroup
		var monthly, weekly, daily, hourly string
		if err := rows.Scan(&g.ID, &g.Name, &g.FeeID, &g.LeaseNameID,
			&monthly, &weekly, &daily, &hourly); err != nil {
			return nil, err
		}
		if g.BasePriceMonthly, err = decimal.NewFromString(monthly); err != nil {
			return nil, err
		}
		if g.BasePriceWeekly, err = decimal.NewFromString(weekly); err != nil {
			return nil, err
		}
		if g.BasePriceDaily, err = decimal.NewFromString(daily); err != nil {
			return nil, err
		}
		if g.BasePriceHourly, err = decimal.NewFromString(hourly); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) loadInventories(ctx context.Context, pid pricing.PropertyID) ([]pricing.Inventory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, parent_inventory, layout_id, building_id, market_rent, pooled_quantity
		FROM inventories WHERE property_id = ? ORDER BY id`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []pricing.Inventory
	for rows.Next() {
		var inv pricing.Inventory
		var parent sql.NullString
		var rent string
		if err := rows.Scan(&inv.ID, &inv.GroupID, &parent, &inv.LayoutID, &inv.BuildingID, &rent, &inv.PooledQuantity); err != nil {
			return nil, err
		}
		if parent.Valid {
			p := pricing.InventoryID(parent.String)
			inv.ParentInventory = &p
		}
		if inv.MarketRent, err = decimal.NewFromString(rent); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (s *Store) loadLeaseTerms(ctx context.Context, pid pricing.PropertyID) ([]pricing.LeaseTerm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, term_length, period, lease_name_id, adjusted_market_rent
		FROM lease_terms WHERE property_id = ? ORDER BY term_length, id`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []pricing.LeaseTerm
	for rows.Next() {
		var t pricing.LeaseTerm
		var rent string
		if err := rows.Scan(&t.ID, &t.TermLength, &t.Period, &t.LeaseNameID, &rent); err != nil {
			return nil, err
		}
		if t.AdjustedMarketRent, err = decimal.NewFromString(rent); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (s *Store) loadAmenityPrices(ctx context.Context, pid pricing.PropertyID) ([]pricing.AmenityPrice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_id, amenity_id, relative_price, absolute_price
		FROM amenity_prices WHERE property_id = ? ORDER BY group_id, amenity_id`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prices []pricing.AmenityPrice
	for rows.Next() {
		var a pricing.AmenityPrice
		var rel, abs sql.NullString
		if err := rows.Scan(&a.GroupID, &a.AmenityID, &rel, &abs); err != nil {
			return nil, err
		}
		if a.RelativePrice, err = decFromNull(rel); err != nil {
			return nil, err
		}
		if a.AbsolutePrice, err = decFromNull(abs); err != nil {
			return nil, err
		}
		prices = append(prices, a)
	}
	return prices, rows.Err()
}

func (s *Store) loadConcessions(ctx context.Context, pid pricing.PropertyID) ([]pricing.Concession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, relative_adjustment, absolute_adjustment, variable_adjustment,
			recurring, recurring_count, non_recurring_applied_at,
			baked_into_applied_fee, hide_in_self_service, adjustment_floor_ceiling,
			start_date, end_date, matching_criteria
		FROM concessions WHERE property_id = ? ORDER BY id`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var concessions []pricing.Concession
	for rows.Next() {
		var c pricing.Concession
		var rel, abs, start, end sql.NullString
		var variable, recurring, baked, hide, floorCeiling int
		var criteria string
		if err := rows.Scan(&c.ID, &c.DisplayName, &rel, &abs, &variable,
			&recurring, &c.RecurringCount, &c.NonRecurringAppliedAt,
			&baked, &hide, &floorCeiling,
			&start, &end, &criteria); err != nil {
			return nil, err
		}
		if c.RelativeAdjustment, err = decFromNull(rel); err != nil {
			return nil, err
		}
		if c.AbsoluteAdjustment, err = decFromNull(abs); err != nil {
			return nil, err
		}
		c.VariableAdjustment = variable != 0
		c.Recurring = recurring != 0
		c.BakedIntoAppliedFee = baked != 0
		c.HideInSelfService = hide != 0
		c.AdjustmentFloorCeiling = floorCeiling != 0
		if c.StartDate, err = timeFromNull(start); err != nil {
			return nil, err
		}
		if c.EndDate, err = timeFromNull(end); err != nil {
			return nil, err
		}
		// Criteria are validated once here, never per evaluation.
		if c.Criteria, err = pricing.ParseMatchingCriteria([]byte(criteria)); err != nil {
			return nil, fmt.Errorf("concession %s: %w", c.ID, err)
		}
		concessions = append(concessions, c)
	}
	return concessions, rows.Err()
}

// =============================================================================
// SCAN/ENCODE HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decText(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}

func decFromNull(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func timeText(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func timeFromNull(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
