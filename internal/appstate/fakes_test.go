package appstate_test

import (
	"context"
	"sync"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/shopspring/decimal"
)

const testOwner = "owner-1"

type fakeStorage struct {
	mu        sync.Mutex
	customers []domain.Customer
	gates     map[string]domain.Gate
	loadErr   error
	saveErr   error

	// when set, SaveGate signals started and waits for release
	started chan struct{}
	release chan struct{}

	saves   int
	updates int
}

func newFakeStorage(customers ...domain.Customer) *fakeStorage {
	return &fakeStorage{customers: customers, gates: map[string]domain.Gate{}}
}

func (f *fakeStorage) LoadCustomers(_ context.Context, ownerID string) ([]domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	var out []domain.Customer
	for _, c := range f.customers {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStorage) LoadGate(_ context.Context, gateID string) (*domain.Gate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.gates[gateID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeStorage) SaveGate(_ context.Context, customerID string, rec domain.Gate) (*domain.Gate, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saves++
	rec.CustomerID = customerID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	}
	f.gates[rec.ID] = rec
	return &rec, nil
}

func (f *fakeStorage) UpdateGate(_ context.Context, gateID string, rec domain.Gate) (*domain.Gate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if _, ok := f.gates[gateID]; !ok {
		return nil, appstate.ErrGateNotFound
	}
	f.updates++
	f.gates[gateID] = rec
	return &rec, nil
}

func (f *fakeStorage) DeleteGate(_ context.Context, gateID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.gates[gateID]; !ok {
		return appstate.ErrGateNotFound
	}
	delete(f.gates, gateID)
	return nil
}

type fakeCatalog struct {
	prices *gate.PriceList
	err    error
}

func (f *fakeCatalog) Snapshot(context.Context) (*gate.PriceList, error) {
	return f.prices, f.err
}

func testPrices() *gate.PriceList {
	return gate.NewPriceList([]gate.CatalogItem{
		{Ref: "antrieb", Name: "Antrieb", Unit: gate.UnitPiece, BasePrice: decimal.NewFromInt(100)},
		{Ref: "griff", Name: "Griffgarnitur", Unit: gate.UnitPiece, BasePrice: decimal.NewFromInt(50)},
		{Ref: "paneel", Name: "Paneel", Unit: gate.UnitGateArea, BasePrice: decimal.NewFromInt(80)},
	})
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []appstate.GateSavedEvent
}

func (n *recordingNotifier) GateSaved(_ context.Context, event appstate.GateSavedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []appstate.GateSavedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]appstate.GateSavedEvent(nil), n.events...)
}

func testCustomer(id, name string) domain.Customer {
	return domain.Customer{BaseModel: domain.BaseModel{ID: id}, UserID: testOwner, Name: name}
}
