package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/services"
)

// AddressService is satisfied by *services.AddressService.
type AddressService interface {
	List(ctx context.Context, rawUserID string) (assembler.AddressesResponse, error)
	Get(ctx context.Context, rawUserID, rawAddressID string) (assembler.AddressResponse, error)
	Create(ctx context.Context, rawUserID string, req *services.AddressRequest) (assembler.AddressResponse, error)
	Update(ctx context.Context, rawUserID, rawAddressID string, req *services.PatchAddressRequest) (assembler.AddressResponse, error)
	Delete(ctx context.Context, rawUserID, rawAddressID string) error
}

// AddressHandler provides HTTP handlers for a user's addresses.
type AddressHandler struct {
	addresses AddressService
}

// NewAddressHandler constructs a handler with the provided service.
func NewAddressHandler(addresses AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	resp, err := h.addresses.List(r.Context(), chi.URLParam(r, paramUserID))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AddressHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	resp, err := h.addresses.Get(r.Context(), chi.URLParam(r, paramUserID), chi.URLParam(r, paramAddressID))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req services.AddressRequest
	ok, err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body *services.AddressRequest
	if ok {
		body = &req
	}

	resp, err := h.addresses.Create(r.Context(), chi.URLParam(r, paramUserID), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req services.PatchAddressRequest
	ok, err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body *services.PatchAddressRequest
	if ok {
		body = &req
	}

	resp, err := h.addresses.Update(r.Context(), chi.URLParam(r, paramUserID), chi.URLParam(r, paramAddressID), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	err := h.addresses.Delete(r.Context(), chi.URLParam(r, paramUserID), chi.URLParam(r, paramAddressID))
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
