package gate_test

import (
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCatalog() *gate.PriceList {
	return gate.NewPriceList([]gate.CatalogItem{
		{Ref: "antrieb", Name: "Antrieb", Unit: gate.UnitPiece, BasePrice: dec("100")},
		{Ref: "griff", Name: "Griffgarnitur", Unit: gate.UnitPiece, BasePrice: dec("50")},
		{Ref: "paneel", Name: "Paneel", Unit: gate.UnitGateArea, BasePrice: dec("80")},
		{Ref: "verglasung", Name: "Verglasung", Unit: gate.UnitGlassArea, BasePrice: dec("120")},
		{Ref: "folie", Name: "Schutzfolie", Unit: gate.UnitTotalArea, BasePrice: dec("4.5")},
	})
}

func TestComputePricing_Scenario(t *testing.T) {
	selection := []gate.SelectedProduct{
		{CatalogRef: "antrieb", Quantity: 2},
		{CatalogRef: "griff", Quantity: 1},
	}

	pricing, err := gate.ComputePricing(gate.Areas{}, selection, 10, 0.19, testCatalog())
	require.NoError(t, err)

	assert.True(t, pricing.Subtotal.Equal(dec("250")), "subtotal %s", pricing.Subtotal)
	assert.True(t, pricing.MarkupAmount.Equal(dec("25")), "markup %s", pricing.MarkupAmount)
	assert.True(t, pricing.NetTotal.Equal(dec("275")), "net %s", pricing.NetTotal)
	assert.True(t, pricing.GrossTotal.Equal(dec("327.25")), "gross %s", pricing.GrossTotal)
	require.Len(t, pricing.Lines, 2)
	assert.Equal(t, "Antrieb", pricing.Lines[0].Name)
	assert.True(t, pricing.Lines[0].Total.Equal(dec("200")))
}

func TestComputePricing_ZeroMarkup(t *testing.T) {
	selections := [][]gate.SelectedProduct{
		{{CatalogRef: "antrieb", Quantity: 1}},
		{{CatalogRef: "paneel", Quantity: 3}, {CatalogRef: "folie", Quantity: 1}},
		{{CatalogRef: "verglasung", Quantity: 2, Sides: 2}, {CatalogRef: "griff", Quantity: 7}},
	}
	areas, err := gate.ComputeAreas(213, 187, 41, gate.TypeSectional)
	require.NoError(t, err)

	for _, selection := range selections {
		pricing, err := gate.ComputePricing(areas, selection, 0, 0.19, testCatalog())
		require.NoError(t, err)

		assert.True(t, pricing.MarkupAmount.IsZero())
		assert.True(t, pricing.NetTotal.Equal(pricing.Subtotal))
	}
}

func TestComputePricing_AreaUnits(t *testing.T) {
	areas, err := gate.ComputeAreas(200, 250, 50, gate.TypeSectional)
	require.NoError(t, err)

	tests := []struct {
		name     string
		product  gate.SelectedProduct
		expected string
	}{
		{"gate area", gate.SelectedProduct{CatalogRef: "paneel", Quantity: 1}, "320"},
		{"gate area both sides", gate.SelectedProduct{CatalogRef: "paneel", Quantity: 1, Sides: 2}, "640"},
		{"glass area", gate.SelectedProduct{CatalogRef: "verglasung", Quantity: 1}, "120"},
		{"total area", gate.SelectedProduct{CatalogRef: "folie", Quantity: 2}, "45"},
		{"piece ignores sides", gate.SelectedProduct{CatalogRef: "griff", Quantity: 1, Sides: 2}, "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing, err := gate.ComputePricing(areas, []gate.SelectedProduct{tt.product}, 0, 0, testCatalog())
			require.NoError(t, err)
			assert.True(t, pricing.Subtotal.Equal(dec(tt.expected)), "got %s", pricing.Subtotal)
		})
	}
}

func TestComputePricing_OverrideWins(t *testing.T) {
	override := dec("75.5")
	selection := []gate.SelectedProduct{
		{CatalogRef: "antrieb", Quantity: 2, UnitPriceOverride: &override},
	}

	pricing, err := gate.ComputePricing(gate.Areas{}, selection, 0, 0.19, testCatalog())
	require.NoError(t, err)

	assert.True(t, pricing.Subtotal.Equal(dec("151")))
	assert.True(t, pricing.Lines[0].Overridden)
}

func TestComputePricing_EmptySelectionIsZero(t *testing.T) {
	pricing, err := gate.ComputePricing(gate.Areas{TotalM2: 5}, nil, 15, 0.19, testCatalog())
	require.NoError(t, err)

	assert.True(t, pricing.Subtotal.IsZero())
	assert.True(t, pricing.GrossTotal.IsZero())
	assert.Empty(t, pricing.Lines)
	assert.ErrorIs(t, gate.ValidateForSave(nil), gate.ErrEmptyProductSelection)
}

func TestComputePricing_UnknownProduct(t *testing.T) {
	selection := []gate.SelectedProduct{{CatalogRef: "gibtsnicht", Quantity: 1}}

	_, err := gate.ComputePricing(gate.Areas{}, selection, 0, 0.19, testCatalog())
	assert.ErrorIs(t, err, gate.ErrCatalogLookupFailed)
}

func TestComputePricing_RoundsOnlyTotals(t *testing.T) {
	catalog := gate.NewPriceList([]gate.CatalogItem{
		{Ref: "kleinteil", Name: "Kleinteil", Unit: gate.UnitPiece, BasePrice: dec("0.335")},
	})
	selection := []gate.SelectedProduct{{CatalogRef: "kleinteil", Quantity: 3}}

	pricing, err := gate.ComputePricing(gate.Areas{}, selection, 0, 0, catalog)
	require.NoError(t, err)

	assert.True(t, pricing.Subtotal.Equal(dec("1.005")), "subtotal %s", pricing.Subtotal)
	assert.True(t, pricing.GrossTotal.Equal(dec("1.01")), "gross %s", pricing.GrossTotal)
}

func TestComputePricing_InvalidInput(t *testing.T) {
	_, err := gate.ComputePricing(gate.Areas{}, nil, -1, 0.19, testCatalog())
	assert.ErrorIs(t, err, gate.ErrInvalidMarkup)

	_, err = gate.ComputePricing(gate.Areas{}, nil, 0, -0.1, testCatalog())
	assert.ErrorIs(t, err, gate.ErrInvalidVATRate)

	_, err = gate.ComputePricing(gate.Areas{}, []gate.SelectedProduct{{CatalogRef: "griff", Quantity: 0}}, 0, 0, testCatalog())
	assert.ErrorIs(t, err, gate.ErrInvalidQuantity)
}

func TestPriceList(t *testing.T) {
	var empty *gate.PriceList
	_, ok := empty.Lookup("antrieb")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())

	list := gate.NewPriceList([]gate.CatalogItem{
		{Ref: "b", Name: "B"},
		{Ref: "a", Name: "A"},
		{Ref: "b", Name: "B2"},
	})
	assert.Equal(t, 2, list.Len())
	items := list.Items()
	assert.Equal(t, "b", items[0].Ref)
	assert.Equal(t, "B2", items[0].Name)
	assert.Equal(t, "a", items[1].Ref)
}
