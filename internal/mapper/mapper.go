package mapper

import (
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// ToCustomerDTO converts Customer to CustomerDTO including its gates
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	dto := domain.CustomerDTO{
		ID:        customer.ID,
		Name:      customer.Name,
		Company:   customer.Company,
		Address:   customer.Address,
		City:      customer.City,
		Phone:     customer.Phone,
		Email:     customer.Email,
		Notes:     customer.Notes,
		Gates:     make([]domain.GateDTO, 0, len(customer.Gates)),
		CreatedAt: formatTime(customer.CreatedAt),
		UpdatedAt: formatTime(customer.UpdatedAt),
	}
	for i := range customer.Gates {
		dto.Gates = append(dto.Gates, ToGateRecordDTO(&customer.Gates[i]))
	}
	return dto
}

// ToOrderDTO converts Order to OrderDTO. Gates are included when preloaded.
func ToOrderDTO(order *domain.Order, gateCount int) domain.OrderDTO {
	dto := domain.OrderDTO{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		OrderNumber:  order.OrderNumber,
		Type:         order.Type,
		Status:       order.Status,
		SageRef:      order.SageRef,
		Appointment:  order.Appointment,
		FollowUpDate: order.FollowUpDate,
		Notes:        order.Notes,
		GateCount:    gateCount,
		CreatedAt:    formatTime(order.CreatedAt),
		UpdatedAt:    formatTime(order.UpdatedAt),
	}
	if len(order.Gates) > 0 {
		dto.GateCount = len(order.Gates)
		dto.Gates = make([]domain.GateDTO, 0, len(order.Gates))
		for i := range order.Gates {
			dto.Gates = append(dto.Gates, ToGateRecordDTO(&order.Gates[i]))
		}
	}
	return dto
}

func ToOrderListDTOs(rows []repository.OrderWithGateCount) []domain.OrderDTO {
	dtos := make([]domain.OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, ToOrderDTO(&rows[i].Order, rows[i].GateCount))
	}
	return dtos
}

// ToGateDTO converts a configuration. Line prices come from its pricing.
func ToGateDTO(cfg gate.GateConfiguration) domain.GateDTO {
	dto := domain.GateDTO{
		ID:            cfg.ID,
		CustomerID:    cfg.CustomerID,
		OrderID:       cfg.OrderID,
		Name:          cfg.Name,
		GateType:      string(cfg.GateType),
		Notes:         gate.StripSelectionSummary(cfg.Notes),
		Quantity:      cfg.Quantity,
		WidthM:        gate.CentimetersToMeters(cfg.Dimensions.WidthCm),
		HeightM:       gate.CentimetersToMeters(cfg.Dimensions.HeightCm),
		GlassHeightM:  gate.CentimetersToMeters(cfg.Dimensions.GlassHeightCm),
		TotalAreaM2:   cfg.Areas.TotalM2,
		GlassAreaM2:   cfg.Areas.GlassM2,
		GateAreaM2:    cfg.Areas.GateM2,
		Products:      make([]domain.SelectedProductDTO, 0, len(cfg.Products)),
		MarkupPercent: cfg.MarkupPercent,
		Subtotal:      gate.Round2(cfg.Pricing.Subtotal),
		MarkupAmount:  gate.Round2(cfg.Pricing.MarkupAmount),
		NetTotal:      gate.Round2(cfg.Pricing.NetTotal),
		GrossTotal:    gate.Round2(cfg.Pricing.GrossTotal),
		CreatedAt:     formatTime(cfg.CreatedAt),
		UpdatedAt:     formatTime(cfg.UpdatedAt),
	}

	lines := make(map[string]gate.LineItem, len(cfg.Pricing.Lines))
	for _, l := range cfg.Pricing.Lines {
		lines[l.CatalogRef] = l
	}
	for _, p := range cfg.Products {
		product := domain.SelectedProductDTO{
			CatalogRef:  p.CatalogRef,
			Quantity:    p.Quantity,
			Sides:       p.Sides,
			CustomPrice: p.UnitPriceOverride != nil,
		}
		if l, ok := lines[p.CatalogRef]; ok {
			product.Name = l.Name
			product.Unit = string(l.Unit)
			product.UnitPrice = gate.Round2(l.UnitPrice)
			product.LineTotal = gate.Round2(l.Total)
		} else if p.UnitPriceOverride != nil {
			product.UnitPrice = gate.Round2(*p.UnitPriceOverride)
		}
		dto.Products = append(dto.Products, product)
	}
	return dto
}

// ToGateRecordDTO converts a stored record using its persisted totals.
// A record whose selection columns cannot be decoded is shown without products.
func ToGateRecordDTO(rec *domain.Gate) domain.GateDTO {
	cfg, err := gate.FromRecord(*rec)
	if err != nil {
		cfg = gate.GateConfiguration{
			ID:         rec.ID,
			CustomerID: rec.CustomerID,
			Name:       rec.Name,
			GateType:   gate.ParseType(rec.GateType),
			Notes:      rec.Notizen,
			Quantity:   rec.Quantity,
			Dimensions: gate.Dimensions{WidthCm: rec.Breite, HeightCm: rec.Hoehe, GlassHeightCm: rec.Glashoehe},
			Areas:      gate.Areas{TotalM2: rec.Gesamtflaeche, GlassM2: rec.Glasflaeche, GateM2: rec.Torflaeche},
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		}
		if rec.OrderID != nil {
			cfg.OrderID = *rec.OrderID
		}
	}
	dto := ToGateDTO(cfg)
	dto.MarkupPercent = rec.Aufschlag
	dto.Subtotal = rec.Subtotal
	dto.MarkupAmount = rec.AufschlagBetrag
	dto.NetTotal = rec.ExklusiveMwst
	dto.GrossTotal = rec.InklMwst
	return dto
}

func ToCatalogItemDTO(item gate.CatalogItem) domain.CatalogItemDTO {
	return domain.CatalogItemDTO{
		Ref:       item.Ref,
		Name:      item.Name,
		Category:  item.Category,
		Unit:      string(item.Unit),
		BasePrice: item.BasePrice.InexactFloat64(),
	}
}

func ToCatalogItemDTOs(items []gate.CatalogItem) []domain.CatalogItemDTO {
	dtos := make([]domain.CatalogItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ToCatalogItemDTO(item))
	}
	return dtos
}

// ToProduct converts an API product into the stored form. Products are active unless stated otherwise.
func ToProduct(in domain.ProductInput) domain.Product {
	p := domain.Product{
		Ref:       in.Ref,
		Name:      in.Name,
		Category:  in.Category,
		Unit:      in.Unit,
		Active:    true,
		SortOrder: in.SortOrder,
	}
	if in.BasePrice != nil {
		p.BasePrice = *in.BasePrice
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return p
}

// ToSessionDTO renders a wizard session snapshot
func ToSessionDTO(id string, snap appstate.Snapshot) domain.SessionDTO {
	dto := domain.SessionDTO{
		ID:                 id,
		View:               string(snap.View),
		Customers:          make([]domain.CustomerDTO, 0, len(snap.Customers)),
		SelectedCustomerID: snap.SelectedCustomerID,
		GateStatus:         string(snap.GateStatus),
		GatePersisted:      snap.GatePersisted,
		Catalog:            ToCatalogItemDTOs(snap.Catalog),
	}
	for i := range snap.Customers {
		dto.Customers = append(dto.Customers, ToCustomerDTO(&snap.Customers[i]))
	}
	if snap.CurrentGate != nil {
		g := ToGateDTO(*snap.CurrentGate)
		dto.CurrentGate = &g
	}
	if snap.PricingError != nil {
		dto.PricingError = snap.PricingError.Error()
	}
	return dto
}
