package periods

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	acctshared "github.com/andes-erp/andes-erp/internal/accounting/shared"
	"github.com/andes-erp/andes-erp/internal/shared"
)

// Handler wires HTTP endpoints for accounting periods.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers period routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Open)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/begin-closing", h.BeginClosing)
	r.Post("/{id}/close", h.Close)
}

type openPeriodRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes"`
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req openPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	period, err := h.service.Open(r.Context(), OpenInput{
		TenantID:  shared.TenantFromContext(r.Context()),
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Notes:     req.Notes,
		ActorID:   shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondErr(w, "open period", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, period)
}

func (h *Handler) BeginClosing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid period id")
		return
	}
	period, err := h.service.BeginClosing(r.Context(), shared.TenantFromContext(r.Context()), id, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "begin closing", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, period)
}

type closePeriodRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid period id")
		return
	}
	var req closePeriodRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	period, err := h.service.Close(r.Context(), shared.TenantFromContext(r.Context()), id, shared.ActorFromContext(r.Context()), req.Notes)
	if err != nil {
		h.respondErr(w, "close period", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, period)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.List(r.Context(), shared.TenantFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "list periods", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, periods)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid period id")
		return
	}
	period, err := h.service.Get(r.Context(), shared.TenantFromContext(r.Context()), id)
	if err != nil {
		h.respondErr(w, "get period", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, period)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	status := acctshared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, status, http.StatusText(status))
		return
	}
	shared.RespondError(w, status, err.Error())
}
