package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

type AddModel struct {
	CommonModel
	svc *ledger.Service

	form   *huh.Form
	status string

	// Form bindings
	formDesc     string
	formAmount   string
	formCurrency string
	formCategory string
	formDate     string
	formStatus   string
	formPeriod   string
}

func NewAddModel(svc *ledger.Service) AddModel {
	m := AddModel{
		svc:          svc,
		formCurrency: string(currency.Base),
		formCategory: string(ledger.CategoryOther),
		formStatus:   string(ledger.StatusPending),
		formPeriod:   "0",
	}

	m.form = m.newForm()

	return m
}

func (m *AddModel) newForm() *huh.Form {
	currencyOpts := make([]huh.Option[string], 0, len(currency.Codes()))
	for _, c := range currency.Codes() {
		currencyOpts = append(currencyOpts, huh.NewOption(string(c), string(c)))
	}

	categoryOpts := make([]huh.Option[string], 0, len(ledger.Categories()))
	for _, c := range ledger.Categories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), string(c)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount (negative = expense)").
				Placeholder("-12.50").
				Value(&m.formAmount).
				Validate(func(s string) error {
					_, err := decimal.NewFromString(strings.TrimSpace(s))
					return err
				}),

			huh.NewSelect[string]().
				Key("currency").
				Title("Currency").
				Options(currencyOpts...).
				Value(&m.formCurrency),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOpts...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("date").
				Title("Date (YYYY-MM-DD, blank = undated)").
				Value(&m.formDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					return err
				}),

			huh.NewSelect[string]().
				Key("status").
				Title("Status").
				Options(
					huh.NewOption("Pending", string(ledger.StatusPending)),
					huh.NewOption("Completed", string(ledger.StatusCompleted)),
					huh.NewOption("Failed", string(ledger.StatusFailed)),
				).
				Value(&m.formStatus),

			huh.NewInput().
				Key("period").
				Title("Recurs every N days (0 = one-time)").
				Value(&m.formPeriod),
		),
	).WithWidth(60).WithShowHelp(true)
}

func (m AddModel) Title() string     { return "Add Transaction" }
func (m AddModel) ShortHelp() string { return "Esc: back | Enter/Tab: navigate form" }

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if saved, ok := msg.(addSavedMsg); ok {
		if saved.err != nil {
			m.status = fmt.Sprintf("Error: %v", saved.err)
		} else {
			m.status = fmt.Sprintf("Added transaction #%d", saved.id)
		}

		// Reset for the next entry.
		next := NewAddModel(m.svc)
		next.status = m.status

		return next, next.form.Init()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m AddModel) View() string {
	content := "Add Transaction\n\n" + m.form.View()
	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type addSavedMsg struct {
	id  int
	err error
}

func (m AddModel) saveCmd() tea.Cmd {
	params := ledger.AddParams{
		Description: m.formDesc,
		Currency:    currency.Code(m.formCurrency),
		Category:    ledger.Category(m.formCategory),
		Status:      ledger.Status(m.formStatus),
	}

	amountStr := strings.TrimSpace(m.formAmount)
	dateStr := strings.TrimSpace(m.formDate)
	periodStr := strings.TrimSpace(m.formPeriod)

	return func() tea.Msg {
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return addSavedMsg{err: err}
		}

		params.Amount = amount

		if dateStr != "" {
			d, err := time.Parse(time.DateOnly, dateStr)
			if err != nil {
				return addSavedMsg{err: err}
			}

			params.Date = &d
		}

		tx, err := m.svc.Add(params)
		if err != nil {
			return addSavedMsg{err: err}
		}

		if periodStr != "" && periodStr != "0" {
			days := 0
			if _, err := fmt.Sscanf(periodStr, "%d", &days); err != nil {
				return addSavedMsg{err: fmt.Errorf("invalid recurring period %q", periodStr)}
			}

			if err := m.svc.SetRecurringPeriod(tx.ID, days); err != nil {
				return addSavedMsg{err: err}
			}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return addSavedMsg{err: err}
		}

		return addSavedMsg{id: tx.ID}
	}
}
