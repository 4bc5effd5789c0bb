package gate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/shopspring/decimal"
)

// selectionEntry is one element of the selected_products column. Older
// records store bare refs; entries with a chosen number of sides are objects.
type selectionEntry struct {
	Ref   string `json:"ref"`
	Sides int    `json:"sides,omitempty"`
}

func (e selectionEntry) MarshalJSON() ([]byte, error) {
	if e.Sides == 0 {
		return json.Marshal(e.Ref)
	}
	type plain selectionEntry
	return json.Marshal(plain(e))
}

func (e *selectionEntry) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		*e = selectionEntry{Ref: ref}
		return nil
	}
	var obj struct {
		Ref   string `json:"ref"`
		ID    string `json:"id"`
		Sides int    `json:"sides"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Ref = obj.Ref
	if e.Ref == "" {
		e.Ref = obj.ID
	}
	e.Sides = obj.Sides
	return nil
}

// ToRecord converts a finalized configuration into the persisted record.
// Pricing is stored at two decimals; the selection summary is kept current in the notes.
func ToRecord(cfg GateConfiguration, ownerID string) domain.Gate {
	selection := make([]selectionEntry, 0, len(cfg.Products))
	quantities := make(map[string]int, len(cfg.Products))
	customPrices := make(map[string]float64)
	for _, p := range cfg.Products {
		selection = append(selection, selectionEntry{Ref: p.CatalogRef, Sides: p.Sides})
		quantities[p.CatalogRef] = p.Quantity
		if p.UnitPriceOverride != nil {
			customPrices[p.CatalogRef] = p.UnitPriceOverride.InexactFloat64()
		}
	}

	quantity := cfg.Quantity
	if quantity < 1 {
		quantity = 1
	}

	rec := domain.Gate{
		ID:                cfg.ID,
		UserID:            ownerID,
		CustomerID:        cfg.CustomerID,
		Name:              cfg.Name,
		GateType:          string(cfg.GateType),
		Notizen:           WithSelectionSummary(cfg.Notes, cfg),
		Breite:            cfg.Dimensions.WidthCm,
		Hoehe:             cfg.Dimensions.HeightCm,
		Glashoehe:         cfg.Dimensions.GlassHeightCm,
		Gesamtflaeche:     cfg.Areas.TotalM2,
		Glasflaeche:       cfg.Areas.GlassM2,
		Torflaeche:        cfg.Areas.GateM2,
		SelectedProducts:  mustJSON(selection),
		ProductQuantities: mustJSON(quantities),
		CustomPrices:      mustJSON(customPrices),
		Aufschlag:         cfg.MarkupPercent,
		Subtotal:          Round2(cfg.Pricing.Subtotal),
		AufschlagBetrag:   Round2(cfg.Pricing.MarkupAmount),
		ExklusiveMwst:     Round2(cfg.Pricing.NetTotal),
		InklMwst:          Round2(cfg.Pricing.GrossTotal),
		Quantity:          quantity,
		CreatedAt:         cfg.CreatedAt,
		UpdatedAt:         cfg.UpdatedAt,
	}
	if cfg.OrderID != "" {
		orderID := cfg.OrderID
		rec.OrderID = &orderID
	}
	return rec
}

// FromRecord reconstructs a configuration from a stored record. Missing
// areas are derived from the dimensions and absent JSON columns decode to
// empty collections.
func FromRecord(rec domain.Gate) (GateConfiguration, error) {
	var selection []selectionEntry
	if err := decodeJSONColumn(rec.SelectedProducts, &selection); err != nil {
		return GateConfiguration{}, fmt.Errorf("%w: selected_products: %v", ErrMalformedRecord, err)
	}
	quantities := map[string]float64{}
	if err := decodeJSONColumn(rec.ProductQuantities, &quantities); err != nil {
		return GateConfiguration{}, fmt.Errorf("%w: product_quantities: %v", ErrMalformedRecord, err)
	}
	customPrices := map[string]float64{}
	if err := decodeJSONColumn(rec.CustomPrices, &customPrices); err != nil {
		return GateConfiguration{}, fmt.Errorf("%w: custom_prices: %v", ErrMalformedRecord, err)
	}

	products := make([]SelectedProduct, 0, len(selection))
	for _, entry := range selection {
		if entry.Ref == "" {
			continue
		}
		qty := int(math.Round(quantities[entry.Ref]))
		if qty < 1 {
			qty = 1
		}
		sp := SelectedProduct{CatalogRef: entry.Ref, Quantity: qty, Sides: entry.Sides}
		if price, ok := customPrices[entry.Ref]; ok {
			d := decimal.NewFromFloat(price)
			sp.UnitPriceOverride = &d
		}
		products = append(products, sp)
	}

	dims := Dimensions{WidthCm: rec.Breite, HeightCm: rec.Hoehe, GlassHeightCm: rec.Glashoehe}
	areas := Areas{TotalM2: rec.Gesamtflaeche, GlassM2: rec.Glasflaeche, GateM2: rec.Torflaeche}
	if areas.TotalM2 <= 0 {
		areas.TotalM2 = AreaM2(dims.WidthCm, dims.HeightCm)
	}
	if areas.GlassM2 <= 0 && dims.GlassHeightCm > 0 {
		areas.GlassM2 = AreaM2(dims.WidthCm, dims.GlassHeightCm)
	}
	if areas.GateM2 <= 0 {
		areas.GateM2 = areas.TotalM2 - areas.GlassM2
		if areas.GateM2 < 0 {
			areas.GateM2 = 0
		}
	}

	quantity := rec.Quantity
	if quantity < 1 {
		quantity = 1
	}

	cfg := GateConfiguration{
		ID:            rec.ID,
		CustomerID:    rec.CustomerID,
		Name:          rec.Name,
		GateType:      ParseType(rec.GateType),
		Notes:         rec.Notizen,
		Quantity:      quantity,
		Dimensions:    dims,
		Areas:         areas,
		Products:      products,
		MarkupPercent: rec.Aufschlag,
		Pricing: Pricing{
			Subtotal:     decimal.NewFromFloat(rec.Subtotal),
			MarkupAmount: decimal.NewFromFloat(rec.AufschlagBetrag),
			NetTotal:     decimal.NewFromFloat(rec.ExklusiveMwst),
			GrossTotal:   decimal.NewFromFloat(rec.InklMwst),
		},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.OrderID != nil {
		cfg.OrderID = *rec.OrderID
	}
	return cfg, nil
}

// RestoreFromRecord decodes a record and rebuilds its editable state.
func RestoreFromRecord(rec domain.Gate, opts Options) (*ConfigState, error) {
	cfg, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}
	return RestoreConfigState(cfg, opts)
}

func decodeJSONColumn(raw string, target interface{}) error {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.Unmarshal(trimmed, target)
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		// only plain slices and maps of strings and numbers are encoded here
		panic(fmt.Sprintf("gate: encode json column: %v", err))
	}
	return string(data)
}
