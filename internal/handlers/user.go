package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/userservice/internal/assembler"
	"github.com/jjudge-oj/userservice/internal/services"
)

const (
	paramUserID    = "userId"
	paramAddressID = "addressId"
)

// UserService is satisfied by *services.UserService.
type UserService interface {
	GetUser(ctx context.Context, rawID string) (assembler.UserResponse, error)
	ListUsers(ctx context.Context, params services.ListUsersParams) (assembler.UsersPageResponse, error)
	CreateUser(ctx context.Context, req *services.CreateUserRequest) (assembler.UserResponse, error)
	UpdateUser(ctx context.Context, rawID string, req *services.PatchUserRequest) (assembler.UserResponse, error)
	DeleteUser(ctx context.Context, rawID string) error
}

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	users UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UserRouter registers user, profile and address routes on the given router.
func UserRouter(r chi.Router, users UserService, profiles ProfileService, addresses AddressService, maxImageBytes int64) {
	handler := NewUserHandler(users)
	profileHandler := NewProfileHandler(profiles, maxImageBytes)
	addressHandler := NewAddressHandler(addresses)

	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Route("/{userId}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Patch("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/image", profileHandler.UploadImage)
			r.Get("/image", profileHandler.GetImage)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", addressHandler.ListAddresses)
			r.Post("/", addressHandler.CreateAddress)
			r.Route("/{addressId}", func(r chi.Router) {
				r.Get("/", addressHandler.GetAddress)
				r.Patch("/", addressHandler.UpdateAddress)
				r.Delete("/", addressHandler.DeleteAddress)
			})
		})
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.users.ListUsers(r.Context(), params)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.users.GetUser(r.Context(), chi.URLParam(r, paramUserID))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	ok, err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body *services.CreateUserRequest
	if ok {
		body = &req
	}

	resp, err := h.users.CreateUser(r.Context(), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req services.PatchUserRequest
	ok, err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body *services.PatchUserRequest
	if ok {
		body = &req
	}

	resp, err := h.users.UpdateUser(r.Context(), chi.URLParam(r, paramUserID), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, paramUserID)); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
