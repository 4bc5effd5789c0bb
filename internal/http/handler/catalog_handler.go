package handler

import (
	"net/http"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/catalog"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/mapper"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewCatalogHandler(catalogService *catalog.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService, logger: logger}
}

// List godoc
// @Summary List active catalog products
// @Tags Catalog
// @Produce json
// @Success 200 {array} domain.CatalogItemDTO
// @Security BearerAuth
// @Router /catalog [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	prices, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		respondDomainError(w, h.logger, err, "load catalog")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToCatalogItemDTOs(prices.Items()))
}

// Update godoc
// @Summary Create or update catalog products
// @Description Open sessions pick the new prices up on their next reload
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.UpdateProductsRequest true "Products"
// @Success 200 {array} domain.CatalogItemDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /catalog [put]
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProductsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	products := make([]domain.Product, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, mapper.ToProduct(p))
	}
	if err := h.catalog.UpdateProducts(r.Context(), products); err != nil {
		respondDomainError(w, h.logger, err, "update catalog")
		return
	}
	h.logger.Info("catalog updated", zap.Int("products", len(products)))
	h.List(w, r)
}
