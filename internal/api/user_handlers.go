package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"nexuios/internal/auth"
	"nexuios/internal/entities"
	"nexuios/internal/service"
)

type UserHandler struct {
	Service *service.UserService
	log     zerolog.Logger
}

func NewUserHandler(svc *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{Service: svc, log: log}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	fieldErrors := map[string][]string{}
	if req.Name == "" {
		fieldErrors["name"] = append(fieldErrors["name"], "The name field is required.")
	}
	if req.Email == "" {
		fieldErrors["email"] = append(fieldErrors["email"], "The email field is required.")
	}
	if req.Password == "" {
		fieldErrors["password"] = append(fieldErrors["password"], "The password field is required.")
	}
	if len(fieldErrors) > 0 {
		respondValidation(w, fieldErrors)
		return
	}

	user, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User registered successfully.",
		"data":    entities.NewUserResponse(user),
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout exists for client symmetry; tokens are stateless and simply expire.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, entities.NewUserResponse(user))
}

func (h *UserHandler) Authenticated(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	out := make([]entities.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, entities.NewUserResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "user deleted successfully")
}
