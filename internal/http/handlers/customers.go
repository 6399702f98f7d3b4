package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/homeride-be/internal/http/respond"
	"github.com/hongminglow/homeride-be/internal/models/dto"
	"github.com/hongminglow/homeride-be/internal/service"
)

// CustomerHandler exposes customer profiles. Ownership is enforced by the service.
type CustomerHandler struct {
	customers *service.CustomerService
}

func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Register(r chi.Router) {
	r.Post("/customers", h.handleCreate)
	r.Get("/customers/{id}", h.handleGet)
	r.Patch("/customers/{id}", h.handleUpdate)
}

func (h *CustomerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.CreateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	customer, err := h.customers.Create(r.Context(), subject, req)
	if err != nil {
		respondServiceError(w, r, err, "customer already exists")
		return
	}
	respond.JSON(w, r, http.StatusCreated, "customer created", customer)
}

func (h *CustomerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	customer, err := h.customers.Get(r.Context(), subject, id)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}
	respond.JSON(w, r, http.StatusOK, "ok", customer)
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	subject, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	customer, err := h.customers.Update(r.Context(), subject, id, req)
	if err != nil {
		respondServiceError(w, r, err, "customer already exists")
		return
	}
	respond.JSON(w, r, http.StatusOK, "customer updated", customer)
}
