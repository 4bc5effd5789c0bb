package appstate

import (
	"context"
	"errors"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
)

var (
	// ErrPersistenceFailure wraps any error returned by the Storage collaborator
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrStaleSaveDiscarded is returned when a save completed after its gate was abandoned
	ErrStaleSaveDiscarded = errors.New("stale save discarded")

	// ErrNoCurrentGate is returned by wizard operations when no gate is being edited
	ErrNoCurrentGate = errors.New("no gate is being edited")

	// ErrCustomerNotFound is returned when a customer is not in the loaded list
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrGateNotFound is returned when a gate does not exist or belongs to another owner
	ErrGateNotFound = errors.New("gate not found")

	// ErrSessionNotFound is returned by the Registry for unknown or foreign sessions
	ErrSessionNotFound = errors.New("session not found")
)

// Storage persists customers and gate records. Implementations return
// ErrGateNotFound for missing gates.
type Storage interface {
	// LoadCustomers returns the owner's customers with their gates.
	LoadCustomers(ctx context.Context, ownerID string) ([]domain.Customer, error)
	// LoadGate returns nil, nil when the gate does not exist.
	LoadGate(ctx context.Context, gateID string) (*domain.Gate, error)
	SaveGate(ctx context.Context, customerID string, rec domain.Gate) (*domain.Gate, error)
	UpdateGate(ctx context.Context, gateID string, rec domain.Gate) (*domain.Gate, error)
	DeleteGate(ctx context.Context, gateID string) error
}

// CatalogSource provides the current product catalog.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*gate.PriceList, error)
}

// GateSavedEvent tells embedding views which order and customer changed.
type GateSavedEvent struct {
	OwnerID    string    `json:"-"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	GateID     string    `json:"gateId"`
	SavedAt    time.Time `json:"savedAt"`
}

// Notifier receives fire-and-forget notifications after successful saves.
// Implementations must not block.
type Notifier interface {
	GateSaved(ctx context.Context, event GateSavedEvent)
}
