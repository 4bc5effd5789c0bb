package domain

// CustomerDTO is the API shape of a customer
type CustomerDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Gates     []GateDTO `json:"gates"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Company string `json:"company,omitempty" validate:"max=200"`
	Address string `json:"address,omitempty" validate:"max=500"`
	City    string `json:"city,omitempty" validate:"max=100"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Email   string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Source  string `json:"source,omitempty" validate:"max=100"`
	Notes   string `json:"notes,omitempty"`
}

// OrderDTO is the API shape of an order ("Auftrag")
type OrderDTO struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customerId"`
	OrderNumber  string      `json:"orderNumber"`
	Type         string      `json:"type"`
	Status       OrderStatus `json:"status"`
	SageRef      string      `json:"sageRef,omitempty"`
	Appointment  string      `json:"appointment,omitempty"`
	FollowUpDate string      `json:"followUpDate,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	GateCount    int         `json:"gateCount"`
	Gates        []GateDTO   `json:"gates,omitempty"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt"`
}

type CreateOrderRequest struct {
	Type         string `json:"type,omitempty" validate:"max=50"`
	SageRef      string `json:"sageRef,omitempty" validate:"max=100"`
	Appointment  string `json:"appointment,omitempty" validate:"max=100"`
	FollowUpDate string `json:"followUpDate,omitempty" validate:"max=50"`
	Notes        string `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=anfrage angebot auftrag abgeschlossen"`
}

// GateDTO is the API shape of a gate. Dimensions are in meters, areas in square meters.
type GateDTO struct {
	ID            string               `json:"id"`
	CustomerID    string               `json:"customerId"`
	OrderID       string               `json:"orderId,omitempty"`
	Name          string               `json:"name"`
	GateType      string               `json:"gateType"`
	Notes         string               `json:"notes"`
	Quantity      int                  `json:"quantity"`
	WidthM        float64              `json:"widthM"`
	HeightM       float64              `json:"heightM"`
	GlassHeightM  float64              `json:"glassHeightM"`
	TotalAreaM2   float64              `json:"totalAreaM2"`
	GlassAreaM2   float64              `json:"glassAreaM2"`
	GateAreaM2    float64              `json:"gateAreaM2"`
	Products      []SelectedProductDTO `json:"products"`
	MarkupPercent float64              `json:"markupPercent"`
	Subtotal      float64              `json:"subtotal"`
	MarkupAmount  float64              `json:"markupAmount"`
	NetTotal      float64              `json:"netTotal"`
	GrossTotal    float64              `json:"grossTotal"`
	CreatedAt     string               `json:"createdAt,omitempty"`
	UpdatedAt     string               `json:"updatedAt,omitempty"`
}

type SelectedProductDTO struct {
	CatalogRef  string  `json:"catalogRef"`
	Name        string  `json:"name,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    int     `json:"quantity"`
	Sides       int     `json:"sides,omitempty"`
	CustomPrice bool    `json:"customPrice"`
	UnitPrice   float64 `json:"unitPrice"`
	LineTotal   float64 `json:"lineTotal"`
}

type CatalogItemDTO struct {
	Ref       string  `json:"ref"`
	Name      string  `json:"name"`
	Category  string  `json:"category,omitempty"`
	Unit      string  `json:"unit"`
	BasePrice float64 `json:"basePrice"`
}

type ProductInput struct {
	Ref       string   `json:"ref" validate:"required,max=100"`
	Name      string   `json:"name" validate:"required,max=200"`
	Category  string   `json:"category,omitempty" validate:"max=100"`
	Unit      string   `json:"unit" validate:"required,oneof=stk m2 m2_glas m2_gesamt"`
	BasePrice *float64 `json:"basePrice" validate:"required,gte=0"`
	Active    *bool    `json:"active,omitempty"`
	SortOrder int      `json:"sortOrder"`
}

type UpdateProductsRequest struct {
	Products []ProductInput `json:"products" validate:"required,min=1,dive"`
}

// SessionDTO is the rendered state of a wizard session
type SessionDTO struct {
	ID                 string           `json:"id"`
	View               string           `json:"view"`
	Customers          []CustomerDTO    `json:"customers"`
	SelectedCustomerID string           `json:"selectedCustomerId,omitempty"`
	CurrentGate        *GateDTO         `json:"currentGate,omitempty"`
	GateStatus         string           `json:"gateStatus,omitempty"`
	GatePersisted      bool             `json:"gatePersisted"`
	PricingError       string           `json:"pricingError,omitempty"`
	Catalog            []CatalogItemDTO `json:"catalog"`
}

type StartGateRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
	OrderID    string `json:"orderId,omitempty"`
}

type SelectCustomerRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
}

type SelectGateTypeRequest struct {
	GateType string `json:"gateType" validate:"required,max=50"`
}

type SetDimensionsRequest struct {
	WidthM       *float64 `json:"widthM" validate:"required"`
	HeightM      *float64 `json:"heightM" validate:"required"`
	GlassHeightM float64  `json:"glassHeightM"`
}

type SetDetailsRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Notes    string `json:"notes"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

type AddProductRequest struct {
	CatalogRef string `json:"catalogRef" validate:"required,max=100"`
	Quantity   int    `json:"quantity" validate:"omitempty,min=1"`
	Sides      int    `json:"sides" validate:"min=0,max=2"`
}

type UpdateProductRequest struct {
	Quantity       *int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Sides          *int     `json:"sides,omitempty" validate:"omitempty,min=0,max=2"`
	UnitPrice      *float64 `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	ClearUnitPrice bool     `json:"clearUnitPrice,omitempty"`
}

type SetMarkupRequest struct {
	Percent *float64 `json:"percent" validate:"required"`
}

// BackupDTO describes a stored backup document
type BackupDTO struct {
	Key       string `json:"key"`
	Size      int64  `json:"size"`
	Customers int    `json:"customers,omitempty"`
	Gates     int    `json:"gates,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type ImportBackupRequest struct {
	Key string `json:"key" validate:"required"`
}

// ImportResultDTO reports what a backup import wrote
type ImportResultDTO struct {
	Customers int `json:"customers"`
	Orders    int `json:"orders"`
	Gates     int `json:"gates"`
}
