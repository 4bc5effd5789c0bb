package appstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// View is the screen the presentation layer shows.
type View string

const (
	ViewCustomerSelect View = "customer-select"
	ViewTypeSelect     View = "type-select"
	ViewGateConfig     View = "gate-config"
)

// Options configure the gate states created by a Store.
type Options struct {
	VATRate          float64
	MaxMarkupPercent float64
	AreaRules        gate.AreaRules
	Now              func() time.Time
}

// Deps are the collaborators of a Store. Notifier and Metrics may be nil.
type Deps struct {
	Storage  Storage
	Catalog  CatalogSource
	Notifier Notifier
	Metrics  *metrics.Metrics
}

// Listener is called with a snapshot after every state transition. Listeners
// run without the store lock held and may call back into the Store; snapshots
// produced by such calls are delivered after the current one.
type Listener func(Snapshot)

// Snapshot is a copy of the store's state safe to hand to other goroutines.
type Snapshot struct {
	View               View
	Customers          []domain.Customer
	SelectedCustomerID string
	CurrentGate        *gate.GateConfiguration
	GateStatus         gate.Status
	GatePersisted      bool
	PricingError       error
	Catalog            []gate.CatalogItem
}

// Store is the single source of truth of one wizard session: the visible view,
// the owner's customers and the gate being edited. Storage I/O happens outside
// the lock; saves are tagged with the gate identity so a result that arrives
// after the gate was abandoned is dropped.
type Store struct {
	ownerID  string
	storage  Storage
	catalog  CatalogSource
	notifier Notifier
	metrics  *metrics.Metrics
	opts     Options
	logger   *zap.Logger

	mu                 sync.Mutex
	view               View
	customers          []domain.Customer
	selectedCustomerID string
	current            *gate.ConfigState
	generation         uint64
	prices             *gate.PriceList
	lastAccess         time.Time

	listeners      []listenerEntry
	nextListenerID int

	// pending holds snapshots not yet delivered; delivering is set while one
	// goroutine drains it so snapshots reach listeners in mutation order.
	pending    []Snapshot
	delivering bool
}

type listenerEntry struct {
	id int
	fn Listener
}

type saveTicket struct {
	generation uint64
	gateID     string
	customerID string
	revision   uint64
	persisted  bool
}

// New creates an empty store on the customer selection view.
func New(ownerID string, deps Deps, opts Options, logger *zap.Logger) *Store {
	s := &Store{
		ownerID:  ownerID,
		storage:  deps.Storage,
		catalog:  deps.Catalog,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		opts:     opts,
		logger:   logger,
		view:     ViewCustomerSelect,
	}
	s.lastAccess = s.now()
	return s
}

func (s *Store) OwnerID() string { return s.ownerID }

// LastAccess returns when the store was last read or mutated.
func (s *Store) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = s.now()
	return s.snapshotLocked()
}

// LoadFromStorage replaces the customer list and the catalog snapshot wholesale.
func (s *Store) LoadFromStorage(ctx context.Context) error {
	customers, err := s.storage.LoadCustomers(ctx, s.ownerID)
	if err != nil {
		s.logger.Error("failed to load customers", zap.String("owner_id", s.ownerID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	prices, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to load catalog", zap.Error(err))
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	return s.mutate(func() error {
		s.customers = customers
		s.prices = prices
		if s.selectedCustomerID != "" && s.customerIndex(s.selectedCustomerID) < 0 {
			s.selectedCustomerID = ""
		}
		if s.current != nil {
			s.current.SetPriceSource(prices)
		}
		return nil
	})
}

// SelectCustomer marks a loaded customer as selected.
func (s *Store) SelectCustomer(customerID string) error {
	return s.mutate(func() error {
		if s.customerIndex(customerID) < 0 {
			return ErrCustomerNotFound
		}
		s.selectedCustomerID = customerID
		return nil
	})
}

// StartNewGate begins an empty gate for a customer and optional order and
// shows the type selection.
func (s *Store) StartNewGate(customerID, orderID string) error {
	return s.mutate(func() error {
		if s.customerIndex(customerID) < 0 {
			return ErrCustomerNotFound
		}
		s.generation++
		s.current = gate.NewConfigState(customerID, orderID, s.gateOptions())
		s.selectedCustomerID = customerID
		s.view = ViewTypeSelect
		return nil
	})
}

// SelectGateType classifies the current gate and opens the configuration view.
func (s *Store) SelectGateType(t gate.Type) error {
	return s.mutate(func() error {
		if s.current == nil {
			return ErrNoCurrentGate
		}
		if err := s.current.SetGateType(t); err != nil {
			return err
		}
		s.view = ViewGateConfig
		return nil
	})
}

// EditGate loads a stored gate and makes it the current gate.
func (s *Store) EditGate(ctx context.Context, gateID string) error {
	rec, err := s.storage.LoadGate(ctx, gateID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if rec == nil || rec.UserID != s.ownerID {
		return ErrGateNotFound
	}

	return s.mutate(func() error {
		opts := s.gateOptions()
		state, err := gate.RestoreFromRecord(*rec, opts)
		if err != nil {
			return err
		}
		s.generation++
		s.current = state
		s.selectedCustomerID = rec.CustomerID
		s.view = ViewGateConfig
		return nil
	})
}

func (s *Store) SetDimensions(d gate.Dimensions) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.SetDimensions(d, "") })
}

func (s *Store) SetDetails(name, notes string, quantity int) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.SetDetails(name, notes, quantity) })
}

func (s *Store) AddProduct(ref string, quantity, sides int) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.AddProduct(ref, quantity, sides) })
}

func (s *Store) RemoveProduct(index int) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.RemoveProduct(index) })
}

func (s *Store) SetQuantity(index, quantity int) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.SetQuantity(index, quantity) })
}

func (s *Store) SetSides(index, sides int) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.SetSides(index, sides) })
}

func (s *Store) SetUnitPriceOverride(index int, price *decimal.Decimal) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.SetUnitPriceOverride(index, price) })
}

func (s *Store) SetMarkup(percent float64) error {
	return s.withGate(func(g *gate.ConfigState) error { return g.SetMarkup(percent) })
}

// ClearCurrentGate discards the gate being edited without persisting it.
// A save still in flight for it will be discarded.
func (s *Store) ClearCurrentGate() {
	_ = s.mutate(func() error {
		s.dropCurrentLocked()
		return nil
	})
}

// GoHome clears the current gate and the customer selection.
func (s *Store) GoHome() {
	_ = s.mutate(func() error {
		s.dropCurrentLocked()
		s.selectedCustomerID = ""
		return nil
	})
}

// SaveCurrentGate finalizes the current gate and writes it through Storage.
// New gates are created, gates already in storage are updated.
func (s *Store) SaveCurrentGate(ctx context.Context) (gate.GateConfiguration, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return gate.GateConfiguration{}, ErrNoCurrentGate
	}
	cfg, err := s.current.Finalize()
	if err != nil {
		s.mu.Unlock()
		s.metrics.GateSave(metrics.SaveIncomplete)
		return gate.GateConfiguration{}, err
	}
	ticket := saveTicket{
		generation: s.generation,
		gateID:     cfg.ID,
		customerID: cfg.CustomerID,
		revision:   cfg.Revision,
		persisted:  s.current.Persisted(),
	}
	rec := gate.ToRecord(cfg, s.ownerID)
	rec.UpdatedAt = s.now()
	s.mu.Unlock()

	var (
		saved *domain.Gate
		ioErr error
	)
	if ticket.persisted {
		saved, ioErr = s.storage.UpdateGate(ctx, ticket.gateID, rec)
	} else {
		saved, ioErr = s.storage.SaveGate(ctx, ticket.customerID, rec)
	}

	var event GateSavedEvent
	err = s.mutate(func() error {
		if s.generation != ticket.generation || s.current == nil || s.current.ID() != ticket.gateID {
			s.logger.Info("discarded stale gate save",
				zap.String("owner_id", s.ownerID),
				zap.String("gate_id", ticket.gateID),
				zap.NamedError("save_error", ioErr),
			)
			s.metrics.GateSave(metrics.SaveStale)
			return ErrStaleSaveDiscarded
		}
		if ioErr != nil {
			s.logger.Error("failed to save gate",
				zap.String("owner_id", s.ownerID),
				zap.String("gate_id", ticket.gateID),
				zap.Error(ioErr),
			)
			s.metrics.GateSave(metrics.SaveFailed)
			return fmt.Errorf("%w: %w", ErrPersistenceFailure, ioErr)
		}
		if saved == nil {
			saved = &rec
		}

		s.upsertGateLocked(*saved)
		s.current.MarkPersisted(ticket.revision, saved.CreatedAt, saved.UpdatedAt)
		cfg = s.current.Current()
		s.metrics.GateSave(metrics.SaveSaved)

		event = GateSavedEvent{
			OwnerID:    s.ownerID,
			CustomerID: saved.CustomerID,
			GateID:     saved.ID,
			SavedAt:    saved.UpdatedAt,
		}
		if saved.OrderID != nil {
			event.OrderID = *saved.OrderID
		}
		return nil
	})
	if err != nil {
		return gate.GateConfiguration{}, err
	}

	if s.notifier != nil {
		s.notifier.GateSaved(ctx, event)
	}
	return cfg, nil
}

// DeleteGate removes a stored gate and drops it from the customer list.
// Deleting the gate being edited also clears it.
func (s *Store) DeleteGate(ctx context.Context, gateID string) error {
	if err := s.storage.DeleteGate(ctx, gateID); err != nil {
		if errors.Is(err, ErrGateNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	return s.mutate(func() error {
		for i := range s.customers {
			gates := s.customers[i].Gates
			for j := range gates {
				if gates[j].ID == gateID {
					s.customers[i].Gates = append(gates[:j:j], gates[j+1:]...)
					break
				}
			}
		}
		if s.current != nil && s.current.ID() == gateID {
			s.dropCurrentLocked()
		}
		return nil
	})
}

// mutate runs fn under the lock and, when it succeeds, notifies listeners
// after the lock is released.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lastAccess = s.now()
	s.pending = append(s.pending, s.snapshotLocked())
	if s.delivering {
		s.mu.Unlock()
		return nil
	}
	s.delivering = true
	s.mu.Unlock()

	s.deliver()
	return nil
}

// deliver drains pending snapshots until none are left.
func (s *Store) deliver() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.delivering = false
			s.pending = nil
			s.mu.Unlock()
			panic(r)
		}
	}()
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		batch := s.pending
		s.pending = nil
		listeners := make([]Listener, len(s.listeners))
		for i, l := range s.listeners {
			listeners[i] = l.fn
		}
		s.mu.Unlock()

		for _, snap := range batch {
			for _, fn := range listeners {
				fn(snap)
			}
		}
	}
}

func (s *Store) withGate(fn func(g *gate.ConfigState) error) error {
	return s.mutate(func() error {
		if s.current == nil {
			return ErrNoCurrentGate
		}
		return fn(s.current)
	})
}

func (s *Store) dropCurrentLocked() {
	s.generation++
	s.current = nil
	s.view = ViewCustomerSelect
}

func (s *Store) upsertGateLocked(rec domain.Gate) {
	i := s.customerIndex(rec.CustomerID)
	if i < 0 {
		return
	}
	gates := s.customers[i].Gates
	for j := range gates {
		if gates[j].ID == rec.ID {
			gates[j] = rec
			return
		}
	}
	s.customers[i].Gates = append(gates, rec)
}

func (s *Store) customerIndex(id string) int {
	for i := range s.customers {
		if s.customers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) gateOptions() gate.Options {
	return gate.Options{
		VATRate:          s.opts.VATRate,
		MaxMarkupPercent: s.opts.MaxMarkupPercent,
		Prices:           s.prices,
		AreaRules:        s.opts.AreaRules,
		Now:              s.opts.Now,
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		View:               s.view,
		Customers:          make([]domain.Customer, len(s.customers)),
		SelectedCustomerID: s.selectedCustomerID,
		Catalog:            s.prices.Items(),
	}
	for i, c := range s.customers {
		c.Gates = append([]domain.Gate(nil), c.Gates...)
		c.Orders = append([]domain.Order(nil), c.Orders...)
		snap.Customers[i] = c
	}
	if s.current != nil {
		cfg := s.current.Current()
		snap.CurrentGate = &cfg
		snap.GateStatus = s.current.Status()
		snap.GatePersisted = s.current.Persisted()
		snap.PricingError = s.current.PricingError()
	}
	return snap
}

func (s *Store) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now().UTC()
}
