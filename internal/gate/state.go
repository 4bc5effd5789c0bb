package gate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the wizard progress of a ConfigState.
type Status string

const (
	StatusEmpty             Status = "empty"
	StatusDimensionsEntered Status = "dimensions_entered"
	StatusProductsSelected  Status = "products_selected"
	StatusPricingComputed   Status = "pricing_computed"
	StatusSaved             Status = "saved"
)

func (s Status) rank() int {
	switch s {
	case StatusDimensionsEntered:
		return 1
	case StatusProductsSelected:
		return 2
	case StatusPricingComputed:
		return 3
	case StatusSaved:
		return 4
	default:
		return 0
	}
}

// Options carry the collaborators and configuration of a ConfigState.
type Options struct {
	VATRate          float64
	MaxMarkupPercent float64
	Prices           PriceSource
	AreaRules        AreaRules
	Now              func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// GateConfiguration is an immutable snapshot of a configured gate.
type GateConfiguration struct {
	ID            string
	CustomerID    string
	OrderID       string
	Name          string
	GateType      Type
	Notes         string
	Quantity      int
	Dimensions    Dimensions
	Areas         Areas
	Products      []SelectedProduct
	MarkupPercent float64
	Pricing       Pricing
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Revision      uint64
}

// ConfigState is the in-progress configuration of one gate. Every mutation
// recomputes areas and pricing synchronously. It is not safe for concurrent use.
type ConfigState struct {
	opts Options

	id         string
	customerID string
	orderID    string
	name       string
	gateType   Type
	notes      string
	quantity   int

	dims    Dimensions
	dimsSet bool
	areas   Areas

	products []SelectedProduct
	markup   float64
	pricing  Pricing

	pricingErr error
	status     Status
	revision   uint64
	persisted  bool

	createdAt time.Time
	updatedAt time.Time
}

// NewConfigState starts an empty configuration for a customer and optional order.
func NewConfigState(customerID, orderID string, opts Options) *ConfigState {
	now := opts.now()
	return &ConfigState{
		opts:       opts,
		id:         uuid.NewString(),
		customerID: customerID,
		orderID:    orderID,
		gateType:   TypeUnknown,
		quantity:   1,
		status:     StatusEmpty,
		createdAt:  now,
		updatedAt:  now,
	}
}

// RestoreConfigState rebuilds the state of a persisted configuration. Pricing
// is re-derived against opts.Prices.
func RestoreConfigState(cfg GateConfiguration, opts Options) (*ConfigState, error) {
	areas, err := opts.AreaRules.Compute(cfg.Dimensions, cfg.GateType)
	if err != nil {
		return nil, err
	}
	quantity := cfg.Quantity
	if quantity < 1 {
		quantity = 1
	}

	s := &ConfigState{
		opts:       opts,
		id:         cfg.ID,
		customerID: cfg.CustomerID,
		orderID:    cfg.OrderID,
		name:       cfg.Name,
		gateType:   cfg.GateType,
		notes:      cfg.Notes,
		quantity:   quantity,
		dims:       cfg.Dimensions,
		dimsSet:    true,
		areas:      areas,
		products:   copyProducts(cfg.Products),
		markup:     cfg.MarkupPercent,
		persisted:  true,
		createdAt:  cfg.CreatedAt,
		updatedAt:  cfg.UpdatedAt,
	}
	s.recompute()
	if s.status == StatusPricingComputed {
		s.status = StatusSaved
	}
	return s, nil
}

func (s *ConfigState) ID() string          { return s.id }
func (s *ConfigState) CustomerID() string  { return s.customerID }
func (s *ConfigState) Status() Status      { return s.status }
func (s *ConfigState) Revision() uint64    { return s.revision }
func (s *ConfigState) Persisted() bool     { return s.persisted }
func (s *ConfigState) PricingError() error { return s.pricingErr }

// SetPriceSource swaps the catalog snapshot, e.g. after a reload, and reprices.
// A priced gate whose totals come out unchanged keeps its status and revision,
// so a reload neither unsaves it nor invalidates a save in flight.
func (s *ConfigState) SetPriceSource(prices PriceSource) {
	s.opts.Prices = prices
	if s.status == StatusPricingComputed || s.status == StatusSaved {
		pricing, err := ComputePricing(s.areas, s.products, s.markup, s.opts.VATRate, prices)
		if err == nil && samePricing(pricing, s.pricing) {
			s.pricing = pricing
			return
		}
	}
	s.recompute()
}

// SetGateType changes the classification and re-derives areas when a type rule applies.
func (s *ConfigState) SetGateType(t Type) error {
	if t == "" {
		t = TypeUnknown
	}
	if s.dimsSet {
		areas, err := s.opts.AreaRules.Compute(s.dims, t)
		if err != nil {
			return err
		}
		s.areas = areas
	}
	s.gateType = t
	s.recompute()
	return nil
}

// SetDimensions validates and applies new dimensions. An empty gateType keeps the current type.
func (s *ConfigState) SetDimensions(d Dimensions, gateType Type) error {
	if gateType == "" {
		gateType = s.gateType
	}
	areas, err := s.opts.AreaRules.Compute(d, gateType)
	if err != nil {
		return err
	}
	s.dims = d
	s.dimsSet = true
	s.areas = areas
	s.gateType = gateType
	s.recompute()
	return nil
}

// SetDetails updates the free-text fields and the number of identical gates.
func (s *ConfigState) SetDetails(name, notes string, quantity int) error {
	if quantity < 1 {
		return fieldError(ErrInvalidQuantity, "quantity", "must be a positive integer")
	}
	s.name = strings.TrimSpace(name)
	s.notes = notes
	s.quantity = quantity
	s.recompute()
	return nil
}

// AddProduct appends a catalog product. Selecting a product that is already
// selected adds to its quantity.
func (s *ConfigState) AddProduct(ref string, quantity, sides int) error {
	if !s.dimsSet {
		return fmt.Errorf("%w: dimensions must be entered before products", ErrIncompleteConfiguration)
	}
	ref = strings.TrimSpace(ref)
	if quantity < 1 {
		return fieldError(ErrInvalidQuantity, "quantity", "must be a positive integer")
	}
	if err := validateSides(sides); err != nil {
		return err
	}
	if s.opts.Prices == nil {
		return fmt.Errorf("%w: %q", ErrCatalogLookupFailed, ref)
	}
	if _, ok := s.opts.Prices.Lookup(ref); !ok {
		return fmt.Errorf("%w: %q", ErrCatalogLookupFailed, ref)
	}

	if i := s.indexOf(ref); i >= 0 {
		s.products[i].Quantity += quantity
		if sides > 0 {
			s.products[i].Sides = sides
		}
	} else {
		s.products = append(s.products, SelectedProduct{
			CatalogRef: ref,
			Quantity:   quantity,
			Sides:      sides,
		})
	}
	s.recompute()
	return nil
}

// RemoveProduct drops the product at index. Removing the last product
// returns the state to StatusDimensionsEntered.
func (s *ConfigState) RemoveProduct(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.products = append(s.products[:index], s.products[index+1:]...)
	s.recompute()
	return nil
}

func (s *ConfigState) SetQuantity(index, quantity int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if quantity < 1 {
		return fieldError(ErrInvalidQuantity, "quantity", "must be a positive integer")
	}
	s.products[index].Quantity = quantity
	s.recompute()
	return nil
}

func (s *ConfigState) SetSides(index, sides int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if err := validateSides(sides); err != nil {
		return err
	}
	s.products[index].Sides = sides
	s.recompute()
	return nil
}

// SetUnitPriceOverride replaces the catalog price of a product. nil restores the catalog price.
func (s *ConfigState) SetUnitPriceOverride(index int, price *decimal.Decimal) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if price != nil && price.IsNegative() {
		return fieldError(ErrInvalidPrice, "unitPrice", "must not be negative")
	}
	if price != nil {
		p := *price
		price = &p
	}
	s.products[index].UnitPriceOverride = price
	s.recompute()
	return nil
}

func (s *ConfigState) SetMarkup(percent float64) error {
	if err := validateMarkup(percent, s.opts.MaxMarkupPercent); err != nil {
		return err
	}
	s.markup = percent
	s.recompute()
	return nil
}

// Current returns a snapshot without validating it.
func (s *ConfigState) Current() GateConfiguration {
	return GateConfiguration{
		ID:            s.id,
		CustomerID:    s.customerID,
		OrderID:       s.orderID,
		Name:          s.name,
		GateType:      s.gateType,
		Notes:         s.notes,
		Quantity:      s.quantity,
		Dimensions:    s.dims,
		Areas:         s.areas,
		Products:      copyProducts(s.products),
		MarkupPercent: s.markup,
		Pricing:       copyPricing(s.pricing),
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
		Revision:      s.revision,
	}
}

// Finalize returns the configuration ready for persistence.
func (s *ConfigState) Finalize() (GateConfiguration, error) {
	if !s.dimsSet {
		return GateConfiguration{}, fmt.Errorf("%w: dimensions are missing", ErrIncompleteConfiguration)
	}
	if err := ValidateForSave(s.products); err != nil {
		return GateConfiguration{}, fmt.Errorf("%w: %w", ErrIncompleteConfiguration, err)
	}
	if s.pricingErr != nil {
		return GateConfiguration{}, s.pricingErr
	}
	if s.status.rank() < StatusProductsSelected.rank() {
		return GateConfiguration{}, fmt.Errorf("%w: status %s", ErrIncompleteConfiguration, s.status)
	}
	return s.Current(), nil
}

// MarkPersisted records a successful write of the given revision. The state
// becomes StatusSaved only if nothing changed since that revision was finalized.
func (s *ConfigState) MarkPersisted(revision uint64, createdAt, updatedAt time.Time) bool {
	s.persisted = true
	if !createdAt.IsZero() {
		s.createdAt = createdAt
	}
	if !updatedAt.IsZero() {
		s.updatedAt = updatedAt
	}
	if revision != s.revision || s.status != StatusPricingComputed {
		return false
	}
	s.status = StatusSaved
	return true
}

func (s *ConfigState) recompute() {
	s.revision++
	s.pricingErr = nil

	switch {
	case !s.dimsSet:
		s.status = StatusEmpty
		s.pricing = Pricing{}
	case len(s.products) == 0:
		s.status = StatusDimensionsEntered
		s.pricing = Pricing{}
	default:
		s.status = StatusProductsSelected
		pricing, err := ComputePricing(s.areas, s.products, s.markup, s.opts.VATRate, s.opts.Prices)
		if err != nil {
			s.pricing = Pricing{}
			s.pricingErr = err
			return
		}
		s.pricing = pricing
		s.status = StatusPricingComputed
	}
}

func samePricing(a, b Pricing) bool {
	if len(a.Lines) != len(b.Lines) ||
		!a.Subtotal.Equal(b.Subtotal) ||
		!a.MarkupAmount.Equal(b.MarkupAmount) ||
		!a.NetTotal.Equal(b.NetTotal) ||
		!a.GrossTotal.Equal(b.GrossTotal) {
		return false
	}
	for i := range a.Lines {
		x, y := a.Lines[i], b.Lines[i]
		if x.CatalogRef != y.CatalogRef || x.Name != y.Name || x.Unit != y.Unit ||
			!x.UnitPrice.Equal(y.UnitPrice) || !x.Total.Equal(y.Total) {
			return false
		}
	}
	return true
}

func (s *ConfigState) indexOf(ref string) int {
	for i, p := range s.products {
		if p.CatalogRef == ref {
			return i
		}
	}
	return -1
}

func (s *ConfigState) checkIndex(index int) error {
	if index < 0 || index >= len(s.products) {
		return fmt.Errorf("%w: %d", ErrProductIndex, index)
	}
	return nil
}

func copyProducts(in []SelectedProduct) []SelectedProduct {
	out := make([]SelectedProduct, len(in))
	for i, p := range in {
		out[i] = p
		if p.UnitPriceOverride != nil {
			v := *p.UnitPriceOverride
			out[i].UnitPriceOverride = &v
		}
	}
	return out
}

func copyPricing(p Pricing) Pricing {
	out := p
	out.Lines = append([]LineItem(nil), p.Lines...)
	return out
}
