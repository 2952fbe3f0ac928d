package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/shared"
)

// Handler wires HTTP endpoints for admin account flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *Gate
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *Gate) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers admin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAdmin)
		r.Get("/profile", h.profile)
		r.Put("/profile", h.updateProfile)
		r.Put("/change-password", h.changePassword)
		r.Get("/dashboard", h.dashboard)
	})
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Username string `json:"username" validate:"omitempty"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type loginResponse struct {
	Token string `json:"token"`
	Admin *Admin `json:"admin"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	admin, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Admin registered successfully", admin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	admin, signed, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Login successful", loginResponse{Token: signed, Admin: admin})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	admin, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", admin)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req updateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	admin, err := h.service.UpdateProfile(r.Context(), principal.ID, req.Username, req.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Profile updated successfully", admin)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.service.ChangePassword(r.Context(), principal.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", stats)
}

// decode parses and validates a JSON body, replying with a 400 envelope on
// failure. Returns false when the request was already answered.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fe.Error())
			}
			httpx.FailFields(w, http.StatusBadRequest, "Validation Error", msgs)
			return false
		}
		httpx.Fail(w, http.StatusBadRequest, "Validation Error")
		return false
	}
	return true
}
