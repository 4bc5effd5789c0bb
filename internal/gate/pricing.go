package gate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceUnit describes what a catalog base price is multiplied with.
type PriceUnit string

const (
	UnitPiece     PriceUnit = "stk"
	UnitGateArea  PriceUnit = "m2"
	UnitGlassArea PriceUnit = "m2_glas"
	UnitTotalArea PriceUnit = "m2_gesamt"
)

var hundred = decimal.NewFromInt(100)

// CatalogItem is a priceable product line.
type CatalogItem struct {
	Ref       string          `json:"ref"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      PriceUnit       `json:"unit"`
	BasePrice decimal.Decimal `json:"basePrice"`
}

// AreaBased reports whether the price scales with an area and therefore with the number of sides.
func (i CatalogItem) AreaBased() bool {
	switch i.Unit {
	case UnitGateArea, UnitGlassArea, UnitTotalArea:
		return true
	default:
		return false
	}
}

// PriceAt returns the listed unit price of the item for the given areas.
func (i CatalogItem) PriceAt(areas Areas, sides int) decimal.Decimal {
	var factor float64
	switch i.Unit {
	case UnitGateArea:
		factor = areas.GateM2
	case UnitGlassArea:
		factor = areas.GlassM2
	case UnitTotalArea:
		factor = areas.TotalM2
	default:
		return i.BasePrice
	}
	return i.BasePrice.
		Mul(decimal.NewFromFloat(factor)).
		Mul(decimal.NewFromInt(int64(effectiveSides(sides))))
}

// PriceSource resolves catalog references.
type PriceSource interface {
	Lookup(ref string) (CatalogItem, bool)
}

// PriceList is an in-memory catalog snapshot. The zero value and a nil
// *PriceList are empty lists.
type PriceList struct {
	items map[string]CatalogItem
	order []string
}

// NewPriceList builds a snapshot; a later item with the same ref replaces an earlier one.
func NewPriceList(items []CatalogItem) *PriceList {
	p := &PriceList{items: make(map[string]CatalogItem, len(items))}
	for _, item := range items {
		if _, exists := p.items[item.Ref]; !exists {
			p.order = append(p.order, item.Ref)
		}
		p.items[item.Ref] = item
	}
	return p
}

func (p *PriceList) Lookup(ref string) (CatalogItem, bool) {
	if p == nil {
		return CatalogItem{}, false
	}
	item, ok := p.items[ref]
	return item, ok
}

// Items returns the catalog in its original order.
func (p *PriceList) Items() []CatalogItem {
	if p == nil {
		return nil
	}
	items := make([]CatalogItem, 0, len(p.order))
	for _, ref := range p.order {
		items = append(items, p.items[ref])
	}
	return items
}

func (p *PriceList) Len() int {
	if p == nil {
		return 0
	}
	return len(p.order)
}

// SelectedProduct is one entry of a gate's product selection.
// Sides is 0 when the user did not choose, which prices like a single side.
type SelectedProduct struct {
	CatalogRef        string
	Quantity          int
	Sides             int
	UnitPriceOverride *decimal.Decimal
}

// LineItem is a priced SelectedProduct.
type LineItem struct {
	CatalogRef string
	Name       string
	Unit       PriceUnit
	Quantity   int
	Sides      int
	Overridden bool
	UnitPrice  decimal.Decimal
	Total      decimal.Decimal
}

// Pricing holds the derived totals of a configuration. Subtotal is exact;
// MarkupAmount and GrossTotal are rounded to two decimals.
type Pricing struct {
	Lines        []LineItem
	Subtotal     decimal.Decimal
	MarkupAmount decimal.Decimal
	NetTotal     decimal.Decimal
	GrossTotal   decimal.Decimal
}

// ComputePricing prices a selection at the given areas. An empty selection
// yields zero totals; use ValidateForSave before persisting.
func ComputePricing(areas Areas, selection []SelectedProduct, markupPercent, vatRate float64, prices PriceSource) (Pricing, error) {
	if err := validateMarkup(markupPercent, 0); err != nil {
		return Pricing{}, err
	}
	if !isFinite(vatRate) || vatRate < 0 {
		return Pricing{}, fmt.Errorf("%w: %v", ErrInvalidVATRate, vatRate)
	}

	result := Pricing{Lines: make([]LineItem, 0, len(selection))}
	subtotal := decimal.Zero
	for _, sp := range selection {
		line, err := priceLine(areas, sp, prices)
		if err != nil {
			return Pricing{}, err
		}
		result.Lines = append(result.Lines, line)
		subtotal = subtotal.Add(line.Total)
	}

	result.Subtotal = subtotal
	result.MarkupAmount = subtotal.Mul(decimal.NewFromFloat(markupPercent)).Div(hundred).Round(2)
	result.NetTotal = subtotal.Add(result.MarkupAmount)
	result.GrossTotal = result.NetTotal.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(vatRate))).Round(2)
	return result, nil
}

// ValidateForSave rejects selections that must not be persisted.
func ValidateForSave(selection []SelectedProduct) error {
	if len(selection) == 0 {
		return ErrEmptyProductSelection
	}
	return nil
}

func priceLine(areas Areas, sp SelectedProduct, prices PriceSource) (LineItem, error) {
	if sp.Quantity < 1 {
		return LineItem{}, fieldError(ErrInvalidQuantity, "quantity", "must be a positive integer")
	}

	line := LineItem{
		CatalogRef: sp.CatalogRef,
		Name:       sp.CatalogRef,
		Quantity:   sp.Quantity,
		Sides:      sp.Sides,
	}

	item, found := CatalogItem{}, false
	if prices != nil {
		item, found = prices.Lookup(sp.CatalogRef)
	}
	if found {
		line.Name = item.Name
		line.Unit = item.Unit
	}

	switch {
	case sp.UnitPriceOverride != nil:
		line.UnitPrice = *sp.UnitPriceOverride
		line.Overridden = true
	case found:
		line.UnitPrice = item.PriceAt(areas, sp.Sides)
	default:
		return LineItem{}, fmt.Errorf("%w: %q", ErrCatalogLookupFailed, sp.CatalogRef)
	}

	line.Total = line.UnitPrice.Mul(decimal.NewFromInt(int64(sp.Quantity)))
	return line, nil
}

func validateMarkup(percent, max float64) error {
	if !isFinite(percent) {
		return fieldError(ErrInvalidMarkup, "markup", "must be a finite number")
	}
	if percent < 0 {
		return fieldError(ErrInvalidMarkup, "markup", "must not be negative")
	}
	if max > 0 && percent > max {
		return fieldError(ErrInvalidMarkup, "markup", fmt.Sprintf("must not exceed %g percent", max))
	}
	return nil
}

func validateSides(sides int) error {
	if sides < 0 || sides > 2 {
		return fieldError(ErrInvalidQuantity, "sides", "must be 1 or 2")
	}
	return nil
}

func effectiveSides(sides int) int {
	if sides < 1 {
		return 1
	}
	return sides
}

// Round2 converts an amount to float64 at two decimals for persistence and display.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
