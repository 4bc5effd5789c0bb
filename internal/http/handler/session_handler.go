package handler

import (
	"net/http"
	"strconv"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/logger"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/mapper"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StoreFactory builds the wizard store of a new session for an owner.
type StoreFactory func(ownerID string) *appstate.Store

// SessionHandler exposes wizard sessions. Every response carries the
// session snapshot after the operation.
type SessionHandler struct {
	registry *appstate.Registry
	newStore StoreFactory
	logger   *zap.Logger
}

func NewSessionHandler(registry *appstate.Registry, newStore StoreFactory, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		newStore: newStore,
		logger:   logger,
	}
}

// Create godoc
// @Summary Open a wizard session
// @Description Loads the caller's customers and the product catalog into a new session
// @Tags Sessions
// @Produce json
// @Success 201 {object} domain.SessionDTO
// @Failure 401 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())
	if ownerID == "" {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	store := h.newStore(ownerID)
	if err := store.LoadFromStorage(r.Context()); err != nil {
		respondDomainError(w, h.logger, err, "load session data")
		return
	}
	id := h.registry.Add(store)
	logger.WithSession(h.logger, ownerID, id).Info("session opened")

	respondJSON(w, http.StatusCreated, mapper.ToSessionDTO(id, store.Snapshot()))
}

// Get godoc
// @Summary Get the session snapshot
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(*appstate.Store) error { return nil })
}

// Delete godoc
// @Summary Close a session
// @Tags Sessions
// @Param sid path string true "Session ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid} [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerFromContext(r.Context())
	if err := h.registry.Remove(ownerID, chi.URLParam(r, "sid")); err != nil {
		respondDomainError(w, h.logger, err, "close session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reload godoc
// @Summary Reload customers and catalog from storage
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/reload [post]
func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *appstate.Store) error { return s.LoadFromStorage(r.Context()) })
}

// Home godoc
// @Summary Return to the customer list, dropping the gate being edited
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/home [post]
func (h *SessionHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *appstate.Store) error {
		s.GoHome()
		return nil
	})
}

// SelectCustomer godoc
// @Summary Select a customer
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.SelectCustomerRequest true "Customer"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/customer [put]
func (h *SessionHandler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.SelectCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.with(w, r, func(s *appstate.Store) error { return s.SelectCustomer(req.CustomerID) })
}

// StartGate godoc
// @Summary Start configuring a new gate
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.StartGateRequest true "Customer and optional order"
// @Success 200 {object} domain.SessionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate [post]
func (h *SessionHandler) StartGate(w http.ResponseWriter, r *http.Request) {
	var req domain.StartGateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.with(w, r, func(s *appstate.Store) error { return s.StartNewGate(req.CustomerID, req.OrderID) })
}

// ClearGate godoc
// @Summary Abandon the gate being edited
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/gate [delete]
func (h *SessionHandler) ClearGate(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *appstate.Store) error {
		s.ClearCurrentGate()
		return nil
	})
}

// EditGate godoc
// @Summary Load a stored gate for editing
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Param gid path string true "Gate ID"
// @Success 200 {object} domain.SessionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate/edit/{gid} [post]
func (h *SessionHandler) EditGate(w http.ResponseWriter, r *http.Request) {
	gateID := chi.URLParam(r, "gid")
	h.with(w, r, func(s *appstate.Store) error { return s.EditGate(r.Context(), gateID) })
}

// SelectGateType godoc
// @Summary Choose the gate type
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.SelectGateTypeRequest true "Gate type"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/gate/type [put]
func (h *SessionHandler) SelectGateType(w http.ResponseWriter, r *http.Request) {
	var req domain.SelectGateTypeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.with(w, r, func(s *appstate.Store) error { return s.SelectGateType(gate.ParseType(req.GateType)) })
}

// SetDimensions godoc
// @Summary Enter the gate dimensions in meters
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.SetDimensionsRequest true "Dimensions"
// @Success 200 {object} domain.SessionDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate/dimensions [put]
func (h *SessionHandler) SetDimensions(w http.ResponseWriter, r *http.Request) {
	var req domain.SetDimensionsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	dims := gate.Dimensions{
		WidthCm:       gate.MetersToCentimeters(*req.WidthM),
		HeightCm:      gate.MetersToCentimeters(*req.HeightM),
		GlassHeightCm: gate.MetersToCentimeters(req.GlassHeightM),
	}
	h.with(w, r, func(s *appstate.Store) error { return s.SetDimensions(dims) })
}

// SetDetails godoc
// @Summary Set name, notes and quantity of the gate
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.SetDetailsRequest true "Details"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/gate/details [put]
func (h *SessionHandler) SetDetails(w http.ResponseWriter, r *http.Request) {
	var req domain.SetDetailsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	h.with(w, r, func(s *appstate.Store) error { return s.SetDetails(req.Name, req.Notes, quantity) })
}

// AddProduct godoc
// @Summary Add a catalog product to the gate
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.AddProductRequest true "Product"
// @Success 200 {object} domain.SessionDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate/products [post]
func (h *SessionHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.AddProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	h.with(w, r, func(s *appstate.Store) error { return s.AddProduct(req.CatalogRef, quantity, req.Sides) })
}

// UpdateProduct godoc
// @Summary Change quantity, sides or unit price of a selected product
// @Description Fields are applied in that order; the first failing change stops the request
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param index path int true "Position in the selection"
// @Param request body domain.UpdateProductRequest true "Changes"
// @Success 200 {object} domain.SessionDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate/products/{index} [patch]
func (h *SessionHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	index, ok := productIndex(w, r)
	if !ok {
		return
	}
	var req domain.UpdateProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.with(w, r, func(s *appstate.Store) error {
		if req.Quantity != nil {
			if err := s.SetQuantity(index, *req.Quantity); err != nil {
				return err
			}
		}
		if req.Sides != nil {
			if err := s.SetSides(index, *req.Sides); err != nil {
				return err
			}
		}
		switch {
		case req.ClearUnitPrice:
			return s.SetUnitPriceOverride(index, nil)
		case req.UnitPrice != nil:
			price := decimal.NewFromFloat(*req.UnitPrice)
			return s.SetUnitPriceOverride(index, &price)
		}
		return nil
	})
}

// RemoveProduct godoc
// @Summary Remove a product from the selection
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Param index path int true "Position in the selection"
// @Success 200 {object} domain.SessionDTO
// @Security BearerAuth
// @Router /sessions/{sid}/gate/products/{index} [delete]
func (h *SessionHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	index, ok := productIndex(w, r)
	if !ok {
		return
	}
	h.with(w, r, func(s *appstate.Store) error { return s.RemoveProduct(index) })
}

// SetMarkup godoc
// @Summary Set the markup percentage
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param request body domain.SetMarkupRequest true "Markup"
// @Success 200 {object} domain.SessionDTO
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate/markup [put]
func (h *SessionHandler) SetMarkup(w http.ResponseWriter, r *http.Request) {
	var req domain.SetMarkupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.with(w, r, func(s *appstate.Store) error { return s.SetMarkup(*req.Percent) })
}

// Save godoc
// @Summary Save the gate being edited
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} domain.SessionDTO
// @Failure 409 {object} domain.APIError "Gate was abandoned while saving"
// @Failure 422 {object} domain.APIError "Configuration incomplete"
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gate/save [post]
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.with(w, r, func(s *appstate.Store) error {
		_, err := s.SaveCurrentGate(r.Context())
		return err
	})
}

// DeleteGate godoc
// @Summary Delete a stored gate
// @Tags Sessions
// @Produce json
// @Param sid path string true "Session ID"
// @Param gid path string true "Gate ID"
// @Success 200 {object} domain.SessionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /sessions/{sid}/gates/{gid} [delete]
func (h *SessionHandler) DeleteGate(w http.ResponseWriter, r *http.Request) {
	gateID := chi.URLParam(r, "gid")
	h.with(w, r, func(s *appstate.Store) error { return s.DeleteGate(r.Context(), gateID) })
}

// with resolves the caller's session, applies op and responds with the snapshot.
func (h *SessionHandler) with(w http.ResponseWriter, r *http.Request, op func(*appstate.Store) error) {
	ownerID := auth.OwnerFromContext(r.Context())
	sessionID := chi.URLParam(r, "sid")
	store, err := h.registry.Get(ownerID, sessionID)
	if err != nil {
		respondDomainError(w, h.logger, err, "find session")
		return
	}
	if err := op(store); err != nil {
		respondDomainError(w, logger.WithSession(h.logger, ownerID, sessionID), err, "update session")
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSessionDTO(sessionID, store.Snapshot()))
}

func productIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product index")
		return 0, false
	}
	return index, true
}
