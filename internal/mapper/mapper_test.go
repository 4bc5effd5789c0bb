package mapper_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/mapper"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configured(t *testing.T) gate.GateConfiguration {
	t.Helper()
	prices := gate.NewPriceList([]gate.CatalogItem{
		{Ref: "antrieb", Name: "Antrieb", Unit: gate.UnitPiece, BasePrice: decimal.NewFromInt(100)},
		{Ref: "paneel", Name: "Paneel", Unit: gate.UnitGateArea, BasePrice: decimal.NewFromInt(80)},
	})
	s := gate.NewConfigState("c1", "o1", gate.Options{VATRate: 0.19, MaxMarkupPercent: 100, Prices: prices})
	require.NoError(t, s.SetDimensions(gate.Dimensions{WidthCm: 200, HeightCm: 250, GlassHeightCm: 50}, gate.TypeSectional))
	require.NoError(t, s.AddProduct("antrieb", 1, 0))
	require.NoError(t, s.AddProduct("paneel", 1, 2))
	cfg, err := s.Finalize()
	require.NoError(t, err)
	return cfg
}

func TestToGateDTO_UsesMeters(t *testing.T) {
	dto := mapper.ToGateDTO(configured(t))

	assert.Equal(t, 2.0, dto.WidthM)
	assert.Equal(t, 2.5, dto.HeightM)
	assert.Equal(t, 0.5, dto.GlassHeightM)
	assert.Equal(t, 5.0, dto.TotalAreaM2)
	assert.Equal(t, 4.0, dto.GateAreaM2)
	assert.Equal(t, "o1", dto.OrderID)

	require.Len(t, dto.Products, 2)
	assert.Equal(t, "Paneel", dto.Products[1].Name)
	assert.Equal(t, 640.0, dto.Products[1].UnitPrice, "80 per m2 x 4 m2 x 2 sides")
	assert.Equal(t, 740.0, dto.Subtotal)
}

func TestToGateRecordDTO(t *testing.T) {
	cfg := configured(t)
	rec := gate.ToRecord(cfg, "owner-1")

	dto := mapper.ToGateRecordDTO(&rec)
	assert.Equal(t, rec.InklMwst, dto.GrossTotal)
	assert.Equal(t, 2.0, dto.WidthM)
	assert.NotContains(t, dto.Notes, "Produktauswahl")
	assert.Len(t, dto.Products, 2)

	t.Run("malformed selection", func(t *testing.T) {
		broken := rec
		broken.SelectedProducts = "{"
		dto := mapper.ToGateRecordDTO(&broken)
		assert.Empty(t, dto.Products)
		assert.Equal(t, rec.InklMwst, dto.GrossTotal)
		assert.Equal(t, 2.5, dto.HeightM)
	})
}

func TestToOrderDTO(t *testing.T) {
	created := time.Date(2024, 5, 17, 8, 30, 0, 0, time.UTC)
	order := &domain.Order{
		BaseModel:   domain.BaseModel{ID: "o1", CreatedAt: created, UpdatedAt: created},
		CustomerID:  "c1",
		OrderNumber: "ORD-20240517-001",
		Status:      domain.OrderStatusInquiry,
	}

	dto := mapper.ToOrderDTO(order, 3)
	assert.Equal(t, 3, dto.GateCount)
	assert.Equal(t, "2024-05-17T08:30:00Z", dto.CreatedAt)
	assert.Nil(t, dto.Gates)
}

func TestToSessionDTO(t *testing.T) {
	cfg := configured(t)
	snap := appstate.Snapshot{
		View:         appstate.ViewGateConfig,
		Customers:    []domain.Customer{{BaseModel: domain.BaseModel{ID: "c1"}, Name: "Huber"}},
		CurrentGate:  &cfg,
		GateStatus:   gate.StatusPricingComputed,
		PricingError: errors.New("catalog lookup failed"),
	}

	dto := mapper.ToSessionDTO("s1", snap)
	assert.Equal(t, "gate-config", dto.View)
	require.NotNil(t, dto.CurrentGate)
	assert.Equal(t, cfg.ID, dto.CurrentGate.ID)
	assert.Equal(t, "catalog lookup failed", dto.PricingError)
	require.Len(t, dto.Customers, 1)
	assert.NotNil(t, dto.Customers[0].Gates)
	assert.NotNil(t, dto.Catalog)
}

func TestToProduct(t *testing.T) {
	price := 12.5
	inactive := false

	p := mapper.ToProduct(domain.ProductInput{Ref: "griff", Name: "Griff", Unit: "stk", BasePrice: &price})
	assert.True(t, p.Active)
	assert.Equal(t, 12.5, p.BasePrice)

	p = mapper.ToProduct(domain.ProductInput{Ref: "griff", Name: "Griff", Unit: "stk", BasePrice: &price, Active: &inactive})
	assert.False(t, p.Active)
}
