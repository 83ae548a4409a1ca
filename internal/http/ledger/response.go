package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

type transactionResponse struct {
	ID              int             `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        currency.Code   `json:"currency"`
	Category        ledger.Category `json:"category"`
	Priority        ledger.Priority `json:"priority"`
	Status          ledger.Status   `json:"status"`
	Date            *string         `json:"date,omitempty"`
	Description     string          `json:"description"`
	Tags            []string        `json:"tags,omitempty"`
	RecurringPeriod int             `json:"recurring_period,omitempty"`
	Completed       bool            `json:"completed"`
	Deleted         bool            `json:"deleted,omitempty"`
}

func toResponse(t *ledger.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:              t.ID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Category:        t.Category,
		Priority:        t.Priority,
		Status:          t.Status,
		Description:     t.Description,
		Tags:            t.Tags,
		RecurringPeriod: t.RecurringPeriod,
		Completed:       t.Completed,
		Deleted:         t.Deleted,
	}

	if t.Date != nil {
		d := t.Date.Format(time.DateOnly)
		resp.Date = &d
	}

	return resp
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toResponse(t)
	}

	return resp
}

type budgetResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  ledger.Category `json:"category"`
	Total     decimal.Decimal `json:"total"`
	EndDate   string          `json:"end_date"`
	Remaining decimal.Decimal `json:"remaining"`
}

func toBudgetResponse(d ledger.BudgetDetail) budgetResponse {
	return budgetResponse{
		ID:        d.Budget.ID,
		Name:      d.Budget.Name,
		Category:  d.Budget.Category,
		Total:     d.Budget.Total,
		EndDate:   d.Budget.EndDate.Format(time.DateOnly),
		Remaining: d.Remaining,
	}
}

type goalResponse struct {
	Set           bool            `json:"set"`
	Title         string          `json:"title,omitempty"`
	Description   string          `json:"description,omitempty"`
	Target        decimal.Decimal `json:"target"`
	Balance       decimal.Decimal `json:"balance"`
	ProgressRatio float64         `json:"progress_ratio"`
	Achieved      bool            `json:"achieved"`
	Overdrawn     bool            `json:"overdrawn"`
}

func toGoalResponse(g ledger.Goal) goalResponse {
	return goalResponse{
		Set:           g.Set(),
		Title:         g.Title,
		Description:   g.Description,
		Target:        g.Target,
		Balance:       g.Balance,
		ProgressRatio: g.ProgressRatio(),
		Achieved:      g.Achieved(),
		Overdrawn:     g.Overdrawn(),
	}
}

type occurrenceResponse struct {
	Transaction transactionResponse `json:"transaction"`
	NextDue     string              `json:"next_due"`
}

type budgetAlertResponse struct {
	Name      string          `json:"name"`
	Category  ledger.Category `json:"category"`
	Remaining decimal.Decimal `json:"remaining"`
}
