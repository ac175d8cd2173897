package accounts

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	acctshared "github.com/andes-erp/andes-erp/internal/accounting/shared"
	"github.com/andes-erp/andes-erp/internal/shared"
)

// Handler wires HTTP endpoints for the chart of accounts.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/tree", h.Tree)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/deactivate", h.Deactivate)
}

type createAccountRequest struct {
	Code          string `json:"code" validate:"required,numeric"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Type          string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE COGS"`
	Nature        string `json:"nature" validate:"required,oneof=DEBIT CREDIT"`
	ParentID      *int64 `json:"parentId"`
	IsBankAccount bool   `json:"isBankAccount"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	acc, err := h.service.Create(r.Context(), CreateInput{
		TenantID:      shared.TenantFromContext(r.Context()),
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		Type:          AccountType(req.Type),
		Nature:        AccountNature(req.Nature),
		ParentID:      req.ParentID,
		IsBankAccount: req.IsBankAccount,
		ActorID:       shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondErr(w, "create account", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, acc)
}

type updateAccountRequest struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	IsBankAccount bool   `json:"isBankAccount"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	acc, err := h.service.Update(r.Context(), UpdateInput{
		TenantID:      shared.TenantFromContext(r.Context()),
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		IsBankAccount: req.IsBankAccount,
		ActorID:       shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondErr(w, "update account", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, acc)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	if err := h.service.Deactivate(r.Context(), shared.TenantFromContext(r.Context()), id, shared.ActorFromContext(r.Context())); err != nil {
		h.respondErr(w, "deactivate account", err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context(), shared.TenantFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "list accounts", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	acc, err := h.service.Get(r.Context(), shared.TenantFromContext(r.Context()), id)
	if err != nil {
		h.respondErr(w, "get account", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, acc)
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context(), shared.TenantFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "account tree", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, tree)
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
