package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ongweikiat/moolah/internal/ledger"
)

// AlertsModel is the read-only screen combining budget breaches, high
// priority entries and due recurring transactions.
type AlertsModel struct {
	CommonModel
	svc *ledger.Service

	breaches     []ledger.BudgetAlert
	highPriority []*ledger.Transaction
	recurring    []ledger.Occurrence
	err          error
}

func NewAlertsModel(svc *ledger.Service) AlertsModel {
	return AlertsModel{svc: svc}
}

func (m AlertsModel) Title() string     { return "Alerts" }
func (m AlertsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m AlertsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AlertsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case alertsLoadedMsg:
		m.breaches = msg.breaches
		m.highPriority = msg.highPriority
		m.recurring = msg.recurring
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m AlertsModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder

	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	b.WriteString("Budget alerts\n")

	if len(m.breaches) == 0 {
		b.WriteString("  all budgets within limits\n")
	}

	for _, a := range m.breaches {
		b.WriteString(warn.Render(fmt.Sprintf("  %s (%s) over by %s",
			a.Budget.Name, a.Budget.Category, a.Remaining.Neg().StringFixed(2))))
		b.WriteString("\n")
	}

	b.WriteString("\nHigh priority\n")

	if len(m.highPriority) == 0 {
		b.WriteString("  none\n")
	}

	for _, t := range m.highPriority {
		b.WriteString(fmt.Sprintf("  #%d %s %s %s\n",
			t.ID, FormatDate(t.Date), FormatAmount(t.Amount, t.Currency), t.Description))
	}

	b.WriteString("\nRecurring\n")

	if len(m.recurring) == 0 {
		b.WriteString("  none\n")
	}

	for _, o := range m.recurring {
		b.WriteString(fmt.Sprintf("  #%d every %d days, next due %s: %s\n",
			o.Transaction.ID, o.Transaction.RecurringPeriod,
			o.NextDue.Format(time.DateOnly), o.Transaction.Description))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

type alertsLoadedMsg struct {
	breaches     []ledger.BudgetAlert
	highPriority []*ledger.Transaction
	recurring    []ledger.Occurrence
	err          error
}

func (m AlertsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		breaches, err := m.svc.CheckBudgetLimits()
		if err != nil {
			return alertsLoadedMsg{err: err}
		}

		return alertsLoadedMsg{
			breaches:     breaches,
			highPriority: m.svc.HighPriority(),
			recurring:    m.svc.RecurringDue(),
		}
	}
}
