package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/pricing-engine/pricing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Note: dec, decp and the fee constructors here are shared by the other
// _test.go files in this package.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func absoluteFee(id, name, price string, period pricing.ServicePeriod) pricing.Fee {
	return pricing.Fee{
		ID:               pricing.FeeID(id),
		Name:             name,
		DisplayName:      name,
		Type:             pricing.FeeTypeService,
		ServicePeriod:    period,
		AbsolutePrice:    decp(price),
		QuoteSectionName: "fees",
	}
}

func relativeFee(id, name, rel string, period pricing.ServicePeriod) pricing.Fee {
	return pricing.Fee{
		ID:               pricing.FeeID(id),
		Name:             name,
		DisplayName:      name,
		Type:             pricing.FeeTypeService,
		ServicePeriod:    period,
		RelativePrice:    decp(rel),
		QuoteSectionName: "fees",
	}
}

func inventoryGroupFee(id, name string) pricing.Fee {
	return pricing.Fee{
		ID:               pricing.FeeID(id),
		Name:             name,
		DisplayName:      name,
		Type:             pricing.FeeTypeInventoryGroup,
		ServicePeriod:    pricing.PeriodMonth,
		QuoteSectionName: "inventory",
	}
}

func invID(s string) *pricing.InventoryID {
	id := pricing.InventoryID(s)
	return &id
}

func resolveMonth(t *testing.T, in pricing.ResolveInput) []pricing.ResolvedFee {
	t.Helper()
	in.Period = pricing.PeriodMonth
	fees, err := pricing.ResolveFees(in)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	return fees
}

func feeIDs(fees []pricing.ResolvedFee) []string {
	ids := make([]string, len(fees))
	for i, f := range fees {
		ids[i] = f.ID()
	}
	return ids
}

// =============================================================================
// SINGLE FEE RESOLUTION
// =============================================================================

func TestResolveFees_SingleAbsoluteFee(t *testing.T) {
	// GIVEN: one first-level Parking fee, absolute 100, monthly, no children
	// WHEN: resolving the month period
	// THEN: output is exactly one instance with amount 100

	parking := absoluteFee("parking", "Parking", "100", pricing.PeriodMonth)

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{parking},
		Fees:           []pricing.Fee{parking},
	})

	if len(fees) != 1 {
		t.Fatalf("expected 1 resolved fee, got %d (%v)", len(fees), feeIDs(fees))
	}
	if fees[0].ID() != "parking" {
		t.Errorf("expected id parking, got %s", fees[0].ID())
	}
	if !fees[0].Amount.Equal(dec("100")) {
		t.Errorf("expected amount 100, got %v", fees[0].Amount)
	}
	if len(fees[0].Concessions) != 0 {
		t.Errorf("expected no concessions, got %d", len(fees[0].Concessions))
	}
}

func TestResolveFees_WrongPeriodIsSilentlyDropped(t *testing.T) {
	// GIVEN: a weekly fee and a one-time fee
	// WHEN: resolving the month period
	// THEN: the weekly fee is dropped without error, the one-time fee kept

	weekly := absoluteFee("cleaning", "Cleaning", "30", pricing.PeriodWeek)
	oneTime := absoluteFee("application", "Application", "50", pricing.PeriodOneTime)

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{weekly, oneTime},
		Fees:           []pricing.Fee{weekly, oneTime},
	})

	if len(fees) != 1 || fees[0].ID() != "application" {
		t.Fatalf("expected only the one-time fee, got %v", feeIDs(fees))
	}
}

// =============================================================================
// CHILD PRICING
// =============================================================================

func TestResolveFees_RelativeChildPricesAgainstParent(t *testing.T) {
	// GIVEN: Pet (absolute 40) with child PetDeposit (relative 50)
	// WHEN: Pet is present in the frontier
	// THEN: PetDeposit.amount = 40 * 1.5 = 60

	pet := absoluteFee("pet", "Pet", "40", pricing.PeriodMonth)
	petDeposit := relativeFee("pet-deposit", "Pet Deposit", "50", pricing.PeriodOneTime)

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{pet},
		Fees:           []pricing.Fee{pet, petDeposit},
		AssociatedFees: []pricing.AssociatedFee{{PrimaryFee: "pet", AssociatedFee: "pet-deposit"}},
	})

	if len(fees) != 2 {
		t.Fatalf("expected 2 resolved fees, got %v", feeIDs(fees))
	}

	var deposit *pricing.ResolvedFee
	for i := range fees {
		if fees[i].OriginalID == "pet-deposit" {
			deposit = &fees[i]
		}
	}
	if deposit == nil {
		t.Fatal("pet deposit missing from output")
	}
	if !deposit.Amount.Equal(dec("60")) {
		t.Errorf("expected 60, got %v", deposit.Amount)
	}
	if deposit.ParentFeeDisplayName != "Pet" {
		t.Errorf("expected parent display name Pet, got %q", deposit.ParentFeeDisplayName)
	}

	// Parent carries the child in its children list.
	var parent *pricing.ResolvedFee
	for i := range fees {
		if fees[i].OriginalID == "pet" {
			parent = &fees[i]
		}
	}
	if parent == nil || len(parent.Children) != 1 || parent.Children[0] != deposit.Key {
		t.Errorf("expected parent to reference the deposit child, got %+v", parent)
	}
}

func TestResolveFees_DanglingRelativeFeeFails(t *testing.T) {
	// GIVEN: PetDeposit (relative 50) seeded first-level because Pet is
	//        absent from the fee set
	// WHEN: resolving
	// THEN: resolution aborts with a RelativePriceError naming the fee

	petDeposit := relativeFee("pet-deposit", "Pet Deposit", "50", pricing.PeriodOneTime)

	_, err := pricing.ResolveFees(pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{petDeposit},
		Fees:           []pricing.Fee{petDeposit},
		Period:         pricing.PeriodMonth,
	})

	if !errors.Is(err, pricing.ErrRelativePriceUnresolvable) {
		t.Fatalf("expected ErrRelativePriceUnresolvable, got %v", err)
	}
	var rpe *pricing.RelativePriceError
	if !errors.As(err, &rpe) {
		t.Fatalf("expected *RelativePriceError, got %T", err)
	}
	if rpe.DisplayName != "Pet Deposit" {
		t.Errorf("error should name the fee, got %q", rpe.DisplayName)
	}
	if !pricing.IsConfigurationError(err) {
		t.Error("relative price errors are configuration errors")
	}
}

func TestResolveFees_CarrierFeePassesChildrenThrough(t *testing.T) {
	// GIVEN: Pet -> bundle (no quote section) -> PetDeposit (relative 50)
	// WHEN: resolving
	// THEN: the bundle is not emitted, and PetDeposit prices against Pet

	pet := absoluteFee("pet", "Pet", "40", pricing.PeriodMonth)
	bundle := pricing.Fee{
		ID:          "pet-bundle",
		DisplayName: "Pet Bundle",
		Type:        pricing.FeeTypeOther,
	}
	petDeposit := relativeFee("pet-deposit", "Pet Deposit", "50", pricing.PeriodOneTime)

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{pet},
		Fees:           []pricing.Fee{pet, bundle, petDeposit},
		AssociatedFees: []pricing.AssociatedFee{
			{PrimaryFee: "pet", AssociatedFee: "pet-bundle"},
			{PrimaryFee: "pet-bundle", AssociatedFee: "pet-deposit"},
		},
	})

	if len(fees) != 2 {
		t.Fatalf("expected pet and deposit only, got %v", feeIDs(fees))
	}
	for _, f := range fees {
		if f.OriginalID == "pet-deposit" && !f.Amount.Equal(dec("60")) {
			t.Errorf("expected deposit 60 through the carrier, got %v", f.Amount)
		}
	}
}

// =============================================================================
// INVENTORY GROUP EXPANSION
// =============================================================================

func TestResolveFees_GroupExpansion_ExcludesChildOnlyGroups(t *testing.T) {
	// GIVEN: GarageIG fee bound to two groups; one group's only inventory
	//        has a parent inventory, the other's does not
	// WHEN: resolving
	// THEN: exactly one group-derived instance survives

	garage := inventoryGroupFee("garage-fee", "Garage")

	groups := []pricing.InventoryGroup{
		{ID: "g-standalone", Name: "Garage Standalone", FeeID: "garage-fee", BasePriceMonthly: dec("120")},
		{ID: "g-attached", Name: "Garage Attached", FeeID: "garage-fee", BasePriceMonthly: dec("90")},
	}
	inventories := []pricing.Inventory{
		{ID: "inv-1", GroupID: "g-standalone", MarketRent: dec("120")},
		{ID: "inv-2", GroupID: "g-attached", ParentInventory: invID("unit-7"), MarketRent: dec("90")},
	}

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees:  []pricing.Fee{garage},
		Fees:            []pricing.Fee{garage},
		InventoryGroups: groups,
		Inventories:     inventories,
	})

	if len(fees) != 1 {
		t.Fatalf("expected 1 group-derived instance, got %v", feeIDs(fees))
	}
	if fees[0].ID() != "g-standalone--garage-fee" {
		t.Errorf("unexpected instance id %s", fees[0].ID())
	}
	if !fees[0].Amount.Equal(dec("120")) {
		t.Errorf("expected the group base price, got %v", fees[0].Amount)
	}
}

func TestResolveFees_GroupExpansion_AmenityDeltasAndRentBounds(t *testing.T) {
	// GIVEN: a group with base 100, a +10% amenity and a +5 absolute
	//        amenity, and two priceable inventories at 95 and 130
	// WHEN: resolving
	// THEN: amount = 100 + 10 + 5 = 115, rent bounds [95, 130], pool flag set

	garage := inventoryGroupFee("garage-fee", "Garage")

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{garage},
		Fees:           []pricing.Fee{garage},
		InventoryGroups: []pricing.InventoryGroup{
			{ID: "g1", Name: "Garage", FeeID: "garage-fee", BasePriceMonthly: dec("100")},
		},
		Inventories: []pricing.Inventory{
			{ID: "inv-1", GroupID: "g1", MarketRent: dec("130"), PooledQuantity: 4},
			{ID: "inv-2", GroupID: "g1", MarketRent: dec("95")},
		},
		AmenityPrices: []pricing.AmenityPrice{
			{GroupID: "g1", AmenityID: "remote", RelativePrice: decp("10")},
			{GroupID: "g1", AmenityID: "ev", AbsolutePrice: decp("5")},
		},
	})

	if len(fees) != 1 {
		t.Fatalf("expected 1 instance, got %v", feeIDs(fees))
	}
	got := fees[0]
	if !got.Amount.Equal(dec("115")) {
		t.Errorf("expected 115, got %v", got.Amount)
	}
	if got.MinRent == nil || !got.MinRent.Equal(dec("95")) {
		t.Errorf("expected min rent 95, got %v", got.MinRent)
	}
	if got.MaxRent == nil || !got.MaxRent.Equal(dec("130")) {
		t.Errorf("expected max rent 130, got %v", got.MaxRent)
	}
	if !got.HasInventoryPool {
		t.Error("expected pool flag from pooled inventory")
	}
}

func TestResolveFees_GroupExpansion_LeaseTermTripleCheck(t *testing.T) {
	// GIVEN: two groups bound to lease names; the selected term matches
	//        one group's terms on the strict (length, period, rent) triple
	//        and misses the other on rent
	// WHEN: resolving with that selected term
	// THEN: only the compatible group expands

	garage := inventoryGroupFee("garage-fee", "Garage")

	term12 := pricing.LeaseTerm{ID: "t-12", TermLength: 12, Period: pricing.PeriodMonth, LeaseNameID: "standard", AdjustedMarketRent: dec("1500")}
	sameTriple := pricing.LeaseTerm{ID: "t-12b", TermLength: 12, Period: pricing.PeriodMonth, LeaseNameID: "garage-ln", AdjustedMarketRent: dec("1500")}
	differentRent := pricing.LeaseTerm{ID: "t-12c", TermLength: 12, Period: pricing.PeriodMonth, LeaseNameID: "other-ln", AdjustedMarketRent: dec("1450")}

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{garage},
		Fees:           []pricing.Fee{garage},
		InventoryGroups: []pricing.InventoryGroup{
			{ID: "g-compatible", FeeID: "garage-fee", LeaseNameID: "garage-ln", BasePriceMonthly: dec("100")},
			{ID: "g-incompatible", FeeID: "garage-fee", LeaseNameID: "other-ln", BasePriceMonthly: dec("100")},
		},
		AllLeaseTerms:      []pricing.LeaseTerm{term12, sameTriple, differentRent},
		SelectedLeaseTerms: []pricing.LeaseTerm{term12},
	})

	if len(fees) != 1 || fees[0].InventoryGroupID != "g-compatible" {
		t.Fatalf("expected only the triple-compatible group, got %v", feeIDs(fees))
	}
}

func TestResolveFees_GroupExpansion_NoSurvivorsDropsFee(t *testing.T) {
	// GIVEN: an inventoryGroup fee with no matching groups at all
	// WHEN: resolving
	// THEN: the fee contributes nothing, with no error

	garage := inventoryGroupFee("garage-fee", "Garage")

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{garage},
		Fees:           []pricing.Fee{garage},
	})

	if len(fees) != 0 {
		t.Fatalf("expected empty output, got %v", feeIDs(fees))
	}
}

func TestResolveFees_DepositUnderGroupPricesAgainstGroup(t *testing.T) {
	// GIVEN: GarageIG -> SecurityDeposit (deposit, relative 100)
	// WHEN: resolving with one group at base 120
	// THEN: the deposit resolves per group at 120 * 2 = 240

	garage := inventoryGroupFee("garage-fee", "Garage")
	deposit := pricing.Fee{
		ID:               "garage-deposit",
		DisplayName:      "Garage Deposit",
		Type:             pricing.FeeTypeDeposit,
		ServicePeriod:    pricing.PeriodOneTime,
		RelativePrice:    decp("100"),
		QuoteSectionName: "deposits",
	}

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{garage},
		Fees:           []pricing.Fee{garage, deposit},
		AssociatedFees: []pricing.AssociatedFee{{PrimaryFee: "garage-fee", AssociatedFee: "garage-deposit"}},
		InventoryGroups: []pricing.InventoryGroup{
			{ID: "g1", Name: "Garage", FeeID: "garage-fee", BasePriceMonthly: dec("120")},
		},
	})

	if len(fees) != 2 {
		t.Fatalf("expected group instance plus deposit, got %v", feeIDs(fees))
	}
	for _, f := range fees {
		if f.OriginalID == "garage-deposit" && !f.Amount.Equal(dec("240")) {
			t.Errorf("expected deposit 240, got %v", f.Amount)
		}
	}
}

func TestResolveFees_RelativeDepositWithPlainParentFails(t *testing.T) {
	// GIVEN: a relative deposit reached through a plain fee, with no
	//        inventory-group ancestor anywhere on the branch
	// WHEN: resolving
	// THEN: configuration error

	pet := absoluteFee("pet", "Pet", "40", pricing.PeriodMonth)
	deposit := pricing.Fee{
		ID:               "pet-deposit",
		DisplayName:      "Pet Deposit",
		Type:             pricing.FeeTypeDeposit,
		ServicePeriod:    pricing.PeriodOneTime,
		RelativePrice:    decp("50"),
		QuoteSectionName: "deposits",
	}

	_, err := pricing.ResolveFees(pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{pet},
		Fees:           []pricing.Fee{pet, deposit},
		AssociatedFees: []pricing.AssociatedFee{{PrimaryFee: "pet", AssociatedFee: "pet-deposit"}},
		Period:         pricing.PeriodMonth,
	})

	if !errors.Is(err, pricing.ErrRelativePriceUnresolvable) {
		t.Fatalf("expected ErrRelativePriceUnresolvable, got %v", err)
	}
}

func TestResolveFees_DepositAnchoringGroupWithRelativePriceFails(t *testing.T) {
	// GIVEN: a deposit fee that an inventory group points at while the fee
	//        also carries a relative price
	// WHEN: resolving
	// THEN: DepositGroupPricingError

	deposit := pricing.Fee{
		ID:               "unit-deposit",
		DisplayName:      "Unit Deposit",
		Type:             pricing.FeeTypeDeposit,
		ServicePeriod:    pricing.PeriodOneTime,
		RelativePrice:    decp("100"),
		QuoteSectionName: "deposits",
	}

	_, err := pricing.ResolveFees(pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{deposit},
		Fees:           []pricing.Fee{deposit},
		InventoryGroups: []pricing.InventoryGroup{
			{ID: "g1", FeeID: "unit-deposit", BasePriceMonthly: dec("1000")},
		},
		Period: pricing.PeriodMonth,
	})

	if !errors.Is(err, pricing.ErrDepositGroupPricing) {
		t.Fatalf("expected ErrDepositGroupPricing, got %v", err)
	}
	var dge *pricing.DepositGroupPricingError
	if !errors.As(err, &dge) || dge.DisplayName != "Unit Deposit" {
		t.Errorf("error should identify the fee, got %v", err)
	}
}

// =============================================================================
// GRAPH SAFETY
// =============================================================================

func TestResolveFees_CycleFailsInsteadOfLooping(t *testing.T) {
	// GIVEN: a -> b -> a in the association edges
	// WHEN: resolving
	// THEN: CycleError, not an endless walk

	a := absoluteFee("a", "Alpha", "10", pricing.PeriodMonth)
	b := absoluteFee("b", "Beta", "20", pricing.PeriodMonth)

	_, err := pricing.ResolveFees(pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{a},
		Fees:           []pricing.Fee{a, b},
		AssociatedFees: []pricing.AssociatedFee{
			{PrimaryFee: "a", AssociatedFee: "b"},
			{PrimaryFee: "b", AssociatedFee: "a"},
		},
		Period: pricing.PeriodMonth,
	})

	if !errors.Is(err, pricing.ErrFeeCycle) {
		t.Fatalf("expected ErrFeeCycle, got %v", err)
	}
	if !pricing.IsConfigurationError(err) {
		t.Error("cycles are configuration errors")
	}
}

func TestResolveFees_DanglingEdgeFails(t *testing.T) {
	// GIVEN: an edge pointing at a fee missing from the snapshot
	// WHEN: resolving
	// THEN: a lookup failure, no partial recovery

	a := absoluteFee("a", "Alpha", "10", pricing.PeriodMonth)

	_, err := pricing.ResolveFees(pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{a},
		Fees:           []pricing.Fee{a},
		AssociatedFees: []pricing.AssociatedFee{{PrimaryFee: "a", AssociatedFee: "ghost"}},
		Period:         pricing.PeriodMonth,
	})

	if !errors.Is(err, pricing.ErrFeeNotFound) {
		t.Fatalf("expected ErrFeeNotFound, got %v", err)
	}
}

// =============================================================================
// OUTPUT SHAPE
// =============================================================================

func TestResolveFees_NoDuplicateIDs(t *testing.T) {
	// GIVEN: the same child fee listed twice under one parent
	// WHEN: resolving
	// THEN: distinct instances get distinct ids and no id repeats

	pet := absoluteFee("pet", "Pet", "40", pricing.PeriodMonth)
	wash := absoluteFee("wash", "Pet Wash", "15", pricing.PeriodMonth)

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{pet},
		Fees:           []pricing.Fee{pet, wash},
		AssociatedFees: []pricing.AssociatedFee{
			{PrimaryFee: "pet", AssociatedFee: "wash"},
			{PrimaryFee: "pet", AssociatedFee: "wash"},
		},
	})

	seen := make(map[string]bool)
	for _, f := range fees {
		if seen[f.ID()] {
			t.Fatalf("duplicate id %s in output", f.ID())
		}
		seen[f.ID()] = true
	}
}

func TestResolveFees_AdditionalFeesSortLast(t *testing.T) {
	// GIVEN: core fees Zebra/Apple and additional children Banana/Aardvark
	// WHEN: resolving
	// THEN: core fees sorted by name, then additional sorted by name

	zebra := absoluteFee("zebra", "Zebra", "10", pricing.PeriodMonth)
	apple := absoluteFee("apple", "Apple", "10", pricing.PeriodMonth)
	banana := absoluteFee("banana", "Banana", "5", pricing.PeriodMonth)
	aardvark := absoluteFee("aardvark", "Aardvark", "5", pricing.PeriodMonth)

	fees := resolveMonth(t, pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{zebra, apple},
		Fees:           []pricing.Fee{zebra, apple, banana, aardvark},
		AssociatedFees: []pricing.AssociatedFee{
			{PrimaryFee: "zebra", AssociatedFee: "banana", IsAdditional: true},
			{PrimaryFee: "apple", AssociatedFee: "aardvark", IsAdditional: true},
		},
	})

	var names []string
	for _, f := range fees {
		names = append(names, f.DisplayName)
	}
	want := []string{"Apple", "Zebra", "Aardvark", "Banana"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestResolveFees_Deterministic(t *testing.T) {
	// GIVEN: a fixed snapshot with groups, children and amenities
	// WHEN: resolving twice
	// THEN: identical ids, amounts, and ordering

	garage := inventoryGroupFee("garage-fee", "Garage")
	deposit := pricing.Fee{
		ID:               "garage-deposit",
		DisplayName:      "Garage Deposit",
		Type:             pricing.FeeTypeDeposit,
		ServicePeriod:    pricing.PeriodOneTime,
		RelativePrice:    decp("100"),
		QuoteSectionName: "deposits",
	}
	in := pricing.ResolveInput{
		FirstLevelFees: []pricing.Fee{garage},
		Fees:           []pricing.Fee{garage, deposit},
		AssociatedFees: []pricing.AssociatedFee{{PrimaryFee: "garage-fee", AssociatedFee: "garage-deposit"}},
		InventoryGroups: []pricing.InventoryGroup{
			{ID: "g1", Name: "Garage A", FeeID: "garage-fee", BasePriceMonthly: dec("100")},
			{ID: "g2", Name: "Garage B", FeeID: "garage-fee", BasePriceMonthly: dec("150")},
		},
		AmenityPrices: []pricing.AmenityPrice{{GroupID: "g1", AmenityID: "ev", AbsolutePrice: decp("5")}},
		Period:         pricing.PeriodMonth,
	}

	first, err := pricing.ResolveFees(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := pricing.ResolveFees(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID() != second[i].ID() || !first[i].Amount.Equal(second[i].Amount) {
			t.Fatalf("runs diverge at %d: %s/%v vs %s/%v",
				i, first[i].ID(), first[i].Amount, second[i].ID(), second[i].Amount)
		}
	}
}
