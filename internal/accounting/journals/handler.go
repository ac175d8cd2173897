package journals

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	acctshared "github.com/andes-erp/andes-erp/internal/accounting/shared"
	"github.com/andes-erp/andes-erp/internal/shared"
)

// Handler wires HTTP endpoints for journal entries.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

type postLineRequest struct {
	AccountID    int64   `json:"accountId" validate:"required"`
	CostCenterID *int64  `json:"costCenterId"`
	Description  string  `json:"description"`
	Debit        float64 `json:"debit" validate:"gte=0"`
	Credit       float64 `json:"credit" validate:"gte=0"`
}

type postEntryRequest struct {
	PeriodID    int64             `json:"periodId"`
	Date        string            `json:"date" validate:"required,datetime=2006-01-02"`
	Description string            `json:"description" validate:"required"`
	// PERIOD_CLOSE is reserved for the closing sweep; accepting it here
	// would let a client post past the CLOSING gate.
	Source      string            `json:"source" validate:"omitempty,oneof=MANUAL INVOICE_SALE INVOICE_CANCEL PAYMENT_RECEIVED PURCHASE_RECEIVED STOCK_ADJUSTMENT"`
	SourceRef   *uuid.UUID        `json:"sourceRef"`
	Lines       []postLineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	source := SourceManual
	if req.Source != "" {
		source = EntrySource(req.Source)
	}
	lines := make([]PostingLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, PostingLineInput{
			AccountID:    line.AccountID,
			CostCenterID: line.CostCenterID,
			Description:  line.Description,
			Debit:        line.Debit,
			Credit:       line.Credit,
		})
	}
	entry, err := h.service.Post(r.Context(), PostingInput{
		TenantID:    shared.TenantFromContext(r.Context()),
		PeriodID:    req.PeriodID,
		Date:        date,
		Description: req.Description,
		Source:      source,
		SourceRef:   req.SourceRef,
		PostedByID:  shared.ActorFromContext(r.Context()),
		Lines:       lines,
	})
	if err != nil {
		h.respondErr(w, "post journal", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{TenantID: shared.TenantFromContext(r.Context())}
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			filter.FromDate = &d
		}
	}
	if v := q.Get("to"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			filter.ToDate = &d
		}
	}
	if v := q.Get("status"); v != "" {
		status := EntryStatus(v)
		filter.Status = &status
	}
	if v := q.Get("source"); v != "" {
		source := EntrySource(v)
		filter.Source = &source
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("perPage"))
	entries, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondErr(w, "list journals", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": pagination,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	entry, err := h.service.Get(r.Context(), shared.TenantFromContext(r.Context()), id)
	if err != nil {
		h.respondErr(w, "get journal", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, entry)
}

type voidRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var req voidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	entry, err := h.service.Void(r.Context(), VoidInput{
		TenantID: shared.TenantFromContext(r.Context()),
		EntryID:  id,
		ActorID:  shared.ActorFromContext(r.Context()),
		Reason:   req.Reason,
	})
	if err != nil {
		h.respondErr(w, "void journal", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, entry)
}

type reverseRequest struct {
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var req reverseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	input := ReverseInput{
		TenantID:    shared.TenantFromContext(r.Context()),
		EntryID:     id,
		ActorID:     shared.ActorFromContext(r.Context()),
		Description: req.Description,
	}
	if req.Date != "" {
		if d, err := time.Parse("2006-01-02", req.Date); err == nil {
			input.Date = &d
		}
	}
	entry, err := h.service.Reverse(r.Context(), input)
	if err != nil {
		h.respondErr(w, "reverse journal", err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, entry)
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
