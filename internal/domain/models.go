package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the text primary key and timestamps shared by all entities.
// IDs are text so records exported by earlier clients ("gate_…", "order_…") import unchanged.
type BaseModel struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate assigns a new ID when none was supplied
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Customer is owned by exactly one user
type Customer struct {
	BaseModel
	UserID       string  `gorm:"type:text;not null;index" json:"user_id"`
	Name         string  `gorm:"type:varchar(200);not null" json:"name"`
	Company      string  `gorm:"type:varchar(200)" json:"company"`
	Address      string  `gorm:"type:varchar(500)" json:"address"`
	City         string  `gorm:"type:varchar(100)" json:"city"`
	Phone        string  `gorm:"type:varchar(50)" json:"phone"`
	Email        string  `gorm:"type:varchar(255)" json:"email"`
	Source       string  `gorm:"type:varchar(100)" json:"source"`
	Type         string  `gorm:"type:varchar(50);not null;default:'standard'" json:"type"`
	Status       string  `gorm:"type:varchar(50);not null;default:'active'" json:"status"`
	SageRef      string  `gorm:"type:varchar(100);column:sage_ref" json:"sage_ref"`
	FollowUpDate string  `gorm:"type:varchar(50);column:follow_up_date" json:"follow_up_date"`
	Notes        string  `gorm:"type:text" json:"notes"`
	Orders       []Order `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"orders,omitempty"`
	Gates        []Gate  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"gates"`
}

// OrderStatus is the processing state of an order ("Auftrag")
type OrderStatus string

const (
	OrderStatusInquiry   OrderStatus = "anfrage"
	OrderStatusOffer     OrderStatus = "angebot"
	OrderStatusOrdered   OrderStatus = "auftrag"
	OrderStatusCompleted OrderStatus = "abgeschlossen"
)

// IsValidOrderStatus reports whether s is a known order status
func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusInquiry, OrderStatusOffer, OrderStatusOrdered, OrderStatusCompleted:
		return true
	}
	return false
}

// Order groups the gates of one customer request
type Order struct {
	BaseModel
	UserID       string      `gorm:"type:text;not null;index" json:"user_id"`
	CustomerID   string      `gorm:"type:text;not null;index;uniqueIndex:idx_orders_customer_number" json:"customer_id"`
	OrderNumber  string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_customer_number;column:order_number" json:"order_number"`
	Type         string      `gorm:"type:varchar(50);not null;default:'standard'" json:"type"`
	Status       OrderStatus `gorm:"type:varchar(50);not null;default:'anfrage'" json:"status"`
	SageRef      string      `gorm:"type:varchar(100);column:sage_ref" json:"sage_ref"`
	Appointment  string      `gorm:"type:varchar(100)" json:"appointment"`
	FollowUpDate string      `gorm:"type:varchar(50);column:follow_up_date" json:"follow_up_date"`
	Notes        string      `gorm:"type:text" json:"notes"`
	Gates        []Gate      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"gates,omitempty"`
}

// Gate is the persisted gate record. Column and JSON names are shared with
// earlier clients and must not change: dimensions in centimeters, areas in
// square meters, product selection as JSON text.
type Gate struct {
	ID                string    `gorm:"type:text;primaryKey" json:"id"`
	UserID            string    `gorm:"type:text;not null;index" json:"user_id"`
	CustomerID        string    `gorm:"type:text;not null;index" json:"customer_id"`
	OrderID           *string   `gorm:"type:text;index" json:"order_id"`
	Name              string    `gorm:"type:varchar(200)" json:"name"`
	GateType          string    `gorm:"type:varchar(50);column:gate_type" json:"gate_type"`
	Notizen           string    `gorm:"type:text" json:"notizen"`
	Breite            float64   `gorm:"not null;default:0" json:"breite"`
	Hoehe             float64   `gorm:"not null;default:0" json:"hoehe"`
	Glashoehe         float64   `gorm:"not null;default:0" json:"glashoehe"`
	Gesamtflaeche     float64   `gorm:"not null;default:0" json:"gesamtflaeche"`
	Glasflaeche       float64   `gorm:"not null;default:0" json:"glasflaeche"`
	Torflaeche        float64   `gorm:"not null;default:0" json:"torflaeche"`
	SelectedProducts  string    `gorm:"type:text;column:selected_products" json:"selected_products"`
	ProductQuantities string    `gorm:"type:text;column:product_quantities" json:"product_quantities"`
	CustomPrices      string    `gorm:"type:text;column:custom_prices" json:"custom_prices"`
	Aufschlag         float64   `gorm:"not null;default:0" json:"aufschlag"`
	Subtotal          float64   `gorm:"not null;default:0" json:"subtotal"`
	AufschlagBetrag   float64   `gorm:"not null;default:0;column:aufschlag_betrag" json:"aufschlag_betrag"`
	ExklusiveMwst     float64   `gorm:"not null;default:0;column:exklusive_mwst" json:"exklusive_mwst"`
	InklMwst          float64   `gorm:"not null;default:0;column:inkl_mwst" json:"inkl_mwst"`
	Quantity          int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate assigns a new ID when none was supplied
func (g *Gate) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Product is a catalog line item. BasePrice is per unit (piece or square meter).
type Product struct {
	Ref       string    `gorm:"type:varchar(100);primaryKey" json:"ref"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Category  string    `gorm:"type:varchar(100)" json:"category"`
	Unit      string    `gorm:"type:varchar(20);not null;default:'stk'" json:"unit"`
	BasePrice float64   `gorm:"type:numeric(12,2);not null;default:0;column:base_price" json:"base_price"`
	Active    bool      `gorm:"not null" json:"active"`
	SortOrder int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
