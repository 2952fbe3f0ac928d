package contacts

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/folio-api/folio/internal/auth"
	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/shared"
)

// Handler wires HTTP endpoints for the contact inbox.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *auth.Gate
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		gate:      gate,
		validator: validator.New(),
	}
}

// MountRoutes registers contact routes. Submission is public; inbox
// management requires an administrator token.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAdmin)
		r.Get("/", h.list)
		r.Get("/stats", h.stats)
		r.Get("/{id}", h.get)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
	})
}

type submitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}

	contact, err := h.service.Submit(r.Context(), SubmitInput{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Message:   strings.TrimSpace(req.Message),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("contact submission failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Thank you for your message! I will get back to you soon.", contact)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := ListRequest{
		Page:   intQuery(query.Get("page"), 1),
		Limit:  intQuery(query.Get("limit"), 20),
		Status: query.Get("status"),
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list contacts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Contact{}
	}
	httpx.Page(w, http.StatusOK, items, shared.NewPagination(req.Page, req.Limit, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", contact)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	contact, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Contact status updated", contact)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Contact deleted successfully", nil)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("contact stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", stats)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(w, http.StatusBadRequest, "invalid contact id")
		return 0, false
	}
	return id, true
}

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

// clientIP prefers proxy headers so the stored address survives deployment
// behind a load balancer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
