package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/homeride-be/internal/http/respond"
	"github.com/hongminglow/homeride-be/internal/models/dto"
	"github.com/hongminglow/homeride-be/internal/service"
)

// DriverHandler exposes driver profiles. Ownership is enforced by the service.
type DriverHandler struct {
	drivers *service.DriverService
}

func NewDriverHandler(drivers *service.DriverService) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

func (h *DriverHandler) Register(r chi.Router) {
	r.Post("/drivers", h.handleCreate)
	r.Get("/drivers/{id}", h.handleGet)
	r.Patch("/drivers/{id}", h.handleUpdate)
}

func (h *DriverHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.CreateDriverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	driver, err := h.drivers.Create(r.Context(), subject, req)
	if err != nil {
		respondServiceError(w, r, err, "driver already exists")
		return
	}
	respond.JSON(w, r, http.StatusCreated, "driver created", driver)
}

func (h *DriverHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	driver, err := h.drivers.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}
	respond.JSON(w, r, http.StatusOK, "ok", driver)
}

func (h *DriverHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateDriverRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	driver, err := h.drivers.Update(r.Context(), subject, id, req)
	if err != nil {
		respondServiceError(w, r, err, "driver already exists")
		return
	}
	respond.JSON(w, r, http.StatusOK, "driver updated", driver)
}
