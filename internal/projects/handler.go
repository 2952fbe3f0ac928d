package projects

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/folio-api/folio/internal/auth"
	"github.com/folio-api/folio/internal/platform/httpx"
	"github.com/folio-api/folio/internal/shared"
)

// Handler wires HTTP endpoints for the project catalogue. Reads are public;
// every mutation sits behind the authorization gate.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	gate           *auth.Gate
	maxUploadBytes int64
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *auth.Gate, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &Handler{logger: logger, service: service, gate: gate, maxUploadBytes: maxUploadBytes}
}

// MountRoutes registers project routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Get("/stats/all", h.stats)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := ListRequest{
		Page:  intQuery(query.Get("page"), 1),
		Limit: intQuery(query.Get("limit"), 10),
		Tag:   query.Get("tag"),
	}
	if query.Get("featured") == "true" {
		featured := true
		req.Featured = &featured
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list projects failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Project{}
	}
	httpx.Page(w, http.StatusOK, items, shared.NewPagination(req.Page, req.Limit, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	project, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", project)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form, upload, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}
	if upload == nil {
		httpx.Fail(w, http.StatusBadRequest, "image is required")
		return
	}

	input := CreateInput{
		Title:            form.value("title"),
		Description:      form.value("description"),
		ShortDescription: form.value("shortDescription"),
		LiveURL:          form.value("liveUrl"),
		GithubURL:        form.value("githubUrl"),
		Tags:             splitCSV(form.value("tags")),
		Technologies:     splitCSV(form.value("technologies")),
		Featured:         form.value("featured") == "true",
		Order:            intQuery(form.value("order"), 0),
	}

	project, err := h.service.Create(r.Context(), input, upload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Project created successfully", project)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	form, upload, ok := h.parseMultipart(w, r)
	if !ok {
		return
	}

	input := UpdateInput{
		Title:            form.optional("title"),
		Description:      form.optional("description"),
		ShortDescription: form.optional("shortDescription"),
		LiveURL:          form.optional("liveUrl"),
		GithubURL:        form.optional("githubUrl"),
	}
	if tags := form.optional("tags"); tags != nil {
		input.Tags = splitCSV(*tags)
	}
	if techs := form.optional("technologies"); techs != nil {
		input.Technologies = splitCSV(*techs)
	}
	if featured := form.optional("featured"); featured != nil {
		value := *featured == "true"
		input.Featured = &value
	}
	if order := form.optional("order"); order != nil {
		value := intQuery(*order, 0)
		input.Order = &value
	}

	project, err := h.service.Update(r.Context(), id, input, upload)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Project updated successfully", project)
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
	httpx.OK(w, http.StatusOK, "Project deleted successfully", nil)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("project stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", stats)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid project id")
		return 0, false
	}
	return id, true
}

// parseMultipart reads the multipart body and the optional single image
// field. Oversized bodies are cut off before buffering; the store applies
// the exact size and content-type policy afterwards.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (multipartForm, *Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid multipart body")
		return multipartForm{}, nil, false
	}

	form := multipartForm{values: r.MultipartForm.Value}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return form, nil, true
		}
		httpx.Fail(w, http.StatusBadRequest, "invalid image field")
		return multipartForm{}, nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "could not read uploaded image")
		return multipartForm{}, nil, false
	}
	return form, &Upload{Filename: header.Filename, Content: content}, true
}

type multipartForm struct {
	values map[string][]string
}

func (f multipartForm) value(key string) string {
	if v, ok := f.values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// optional distinguishes an absent field from an empty one for partial
// update semantics.
func (f multipartForm) optional(key string) *string {
	if v, ok := f.values[key]; ok && len(v) > 0 {
		return &v[0]
	}
	return nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
