package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

// Handler exposes the ledger engine over REST. The engine is single-session
// by design, so the handler serializes every request with one mutex instead
// of pushing locking into the engine.
type Handler struct {
	mu  sync.Mutex
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) TransactionRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Get("/recurring", h.recurring)
	r.Post("/convert", h.convertAll)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/recover", h.recover)
	r.Patch("/{id}", h.edit)
	r.Patch("/{id}/completed", h.setCompleted)
	r.Patch("/{id}/recurring", h.setRecurring)
	r.Post("/{id}/convert", h.convert)
	r.Post("/{id}/tags", h.tag)
	r.Delete("/{id}/tags/{tag}", h.untag)
}

func (h *Handler) BudgetRoutes(r chi.Router) {
	r.Post("/", h.setBudget)
	r.Get("/", h.listBudgets)
	r.Delete("/{index}", h.removeBudget)
}

func (h *Handler) GoalRoutes(r chi.Router) {
	r.Put("/", h.setGoal)
	r.Get("/", h.getGoal)
	r.Post("/contribute", h.contribute)
	r.Post("/deduct", h.deduct)
}

// writeErr maps engine failures onto status codes: validation 400, missing
// 404, wrong-state 409.
func writeErr(w http.ResponseWriter, err error) {
	var (
		validationErr *ledger.ValidationError
		stateErr      *ledger.StateError
	)

	switch {
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &stateErr):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// flush persists the ledger after a mutation; translation failures are
// logged, not surfaced, since the mutation itself already succeeded.
func (h *Handler) flush(r *http.Request) {
	if err := h.svc.Flush(r.Context()); err != nil {
		slog.Error("failed to persist ledger", "error", err)
	}
}

type createTransactionRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    currency.Code   `json:"currency"`
	Category    ledger.Category `json:"category"`
	Date        *string         `json:"date,omitempty"`
	Status      ledger.Status   `json:"status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := ledger.AddParams{
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Status:      req.Status,
	}

	if req.Date != nil {
		d, err := time.Parse(time.DateOnly, *req.Date)
		if err != nil {
			http.Error(w, "invalid date: expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		params.Date = &d
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.svc.Add(params)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	q := r.URL.Query()

	if keyword := q.Get("q"); keyword != "" {
		writeJSON(w, http.StatusOK, toResponseList(h.svc.Search(keyword)))
		return
	}

	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr != "" && endStr != "" {
		start, err := time.Parse(time.DateOnly, startStr)
		if err != nil {
			http.Error(w, "invalid start date", http.StatusBadRequest)
			return
		}

		end, err := time.Parse(time.DateOnly, endStr)
		if err != nil {
			http.Error(w, "invalid end date", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toResponseList(h.svc.FilterByDateRange(start, end)))

		return
	}

	writeJSON(w, http.StatusOK, toResponseList(h.svc.List()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.svc.Get(id)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.svc.Delete)
}

func (h *Handler) recover(w http.ResponseWriter, r *http.Request) {
	h.mutateByID(w, r, h.svc.Recover)
}

// mutateByID runs a single-id engine mutation and persists on success.
func (h *Handler) mutateByID(w http.ResponseWriter, r *http.Request, op func(int) error) {
	id, err := idParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := op(id); err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	w.WriteHeader(http.StatusNoContent)
}

type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mutateByID(w, r, func(id int) error {
		return h.svc.Edit(id, req.Field, req.Value)
	})
}

type completedRequest struct {
	Completed bool `json:"completed"`
}

func (h *Handler) setCompleted(w http.ResponseWriter, r *http.Request) {
	var req completedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mutateByID(w, r, func(id int) error {
		return h.svc.SetCompleted(id, req.Completed)
	})
}

type recurringRequest struct {
	Days int `json:"days"`
}

func (h *Handler) setRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mutateByID(w, r, func(id int) error {
		return h.svc.SetRecurringPeriod(id, req.Days)
	})
}

type convertRequest struct {
	Currency currency.Code `json:"currency"`
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mutateByID(w, r, func(id int) error {
		return h.svc.Convert(id, req.Currency)
	})
}

func (h *Handler) convertAll(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.svc.ConvertAll(req.Currency); err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	w.WriteHeader(http.StatusNoContent)
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handler) tag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mutateByID(w, r, func(id int) error {
		return h.svc.Tag(id, req.Tag)
	})
}

func (h *Handler) untag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	h.mutateByID(w, r, func(id int) error {
		return h.svc.Untag(id, tag)
	})
}

type statsResponse struct {
	Balance    decimal.Decimal                     `json:"balance"`
	Completed  int                                 `json:"completed"`
	Incomplete int                                 `json:"incomplete"`
	ByCategory map[ledger.Category]decimal.Decimal `json:"by_category"`
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	balance, err := h.svc.Balance()
	if err != nil {
		writeErr(w, err)
		return
	}

	byCategory, err := h.svc.CompletedAmountByCategory()
	if err != nil {
		writeErr(w, err)
		return
	}

	completed, incomplete := h.svc.CompletionStats()

	writeJSON(w, http.StatusOK, statsResponse{
		Balance:    balance,
		Completed:  completed,
		Incomplete: incomplete,
		ByCategory: byCategory,
	})
}

func (h *Handler) recurring(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	occurrences := h.svc.RecurringDue()

	resp := make([]occurrenceResponse, len(occurrences))
	for i, o := range occurrences {
		resp[i] = occurrenceResponse{
			Transaction: toResponse(o.Transaction),
			NextDue:     o.NextDue.Format(time.DateOnly),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type setBudgetRequest struct {
	Name     string          `json:"name"`
	Category ledger.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
	EndDate  string          `json:"end_date"`
}

func (h *Handler) setBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	endDate, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date: expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.svc.SetBudget(req.Name, req.Category, req.Total, endDate); err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) listBudgets(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	details, err := h.svc.BudgetDetails()
	if err != nil {
		writeErr(w, err)
		return
	}

	resp := make([]budgetResponse, len(details))
	for i, d := range details {
		resp[i] = toBudgetResponse(d)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) removeBudget(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.svc.RemoveBudget(index); err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	w.WriteHeader(http.StatusNoContent)
}

type setGoalRequest struct {
	Title       string          `json:"title"`
	Target      decimal.Decimal `json:"target"`
	Description string          `json:"description"`
}

func (h *Handler) setGoal(w http.ResponseWriter, r *http.Request) {
	var req setGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.svc.SetGoal(req.Title, req.Target, req.Description); err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	writeJSON(w, http.StatusOK, toGoalResponse(h.svc.Goal()))
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, toGoalResponse(h.svc.Goal()))
}

type goalAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	h.goalMutation(w, r, h.svc.ContributeToGoal)
}

func (h *Handler) deduct(w http.ResponseWriter, r *http.Request) {
	h.goalMutation(w, r, h.svc.DeductFromGoal)
}

func (h *Handler) goalMutation(w http.ResponseWriter, r *http.Request, op func(decimal.Decimal) (ledger.GoalStatus, error)) {
	var req goalAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	status, err := op(req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.flush(r)
	writeJSON(w, http.StatusOK, toGoalResponse(status.Goal))
}

type alertsResponse struct {
	BudgetAlerts []budgetAlertResponse `json:"budget_alerts"`
	HighPriority []transactionResponse `json:"high_priority"`
	Recurring    []occurrenceResponse  `json:"recurring"`
}

// Alerts aggregates everything the alert screen shows: breached budgets,
// high-priority entries and due recurring transactions.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	breaches, err := h.svc.CheckBudgetLimits()
	if err != nil {
		writeErr(w, err)
		return
	}

	resp := alertsResponse{
		BudgetAlerts: make([]budgetAlertResponse, len(breaches)),
		HighPriority: toResponseList(h.svc.HighPriority()),
	}

	for i, a := range breaches {
		resp.BudgetAlerts[i] = budgetAlertResponse{
			Name:      a.Budget.Name,
			Category:  a.Budget.Category,
			Remaining: a.Remaining,
		}
	}

	for _, o := range h.svc.RecurringDue() {
		resp.Recurring = append(resp.Recurring, occurrenceResponse{
			Transaction: toResponse(o.Transaction),
			NextDue:     o.NextDue.Format(time.DateOnly),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
