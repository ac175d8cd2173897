package mappings

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	acctshared "github.com/andes-erp/andes-erp/internal/accounting/shared"
	"github.com/andes-erp/andes-erp/internal/shared"
)

// Handler wires HTTP endpoints for the accounting configuration.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers config routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

type configResponse struct {
	Accounts            map[SystemRole]int64 `json:"accounts"`
	AutoGenerateEntries bool                 `json:"autoGenerateEntries"`
	IsConfigured        bool                 `json:"isConfigured"`
}

func toResponse(cfg Config) configResponse {
	return configResponse{
		Accounts:            cfg.Accounts,
		AutoGenerateEntries: cfg.AutoGenerateEntries,
		IsConfigured:        cfg.IsConfigured(),
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context(), shared.TenantFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "get config", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(cfg))
}

type updateConfigRequest struct {
	Accounts            map[SystemRole]int64 `json:"accounts"`
	AutoGenerateEntries bool                 `json:"autoGenerateEntries"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Accounts == nil {
		req.Accounts = make(map[SystemRole]int64)
	}
	cfg, err := h.service.Update(r.Context(), Config{
		TenantID:            shared.TenantFromContext(r.Context()),
		Accounts:            req.Accounts,
		AutoGenerateEntries: req.AutoGenerateEntries,
	})
	if err != nil {
		h.respondErr(w, "update config", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, toResponse(cfg))
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
