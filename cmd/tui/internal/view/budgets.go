package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

type budgetsState int

const (
	budgetsStateBrowse budgetsState = iota
	budgetsStateAdd
)

type BudgetsModel struct {
	CommonModel
	svc *ledger.Service

	state   budgetsState
	table   table.Model
	details []ledger.BudgetDetail
	form    *huh.Form
	status  string

	// Form bindings
	formName     string
	formCategory string
	formTotal    string
	formEndDate  string
}

func NewBudgetsModel(svc *ledger.Service) BudgetsModel {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 18},
		{Title: "Category", Width: 14},
		{Title: "Cap", Width: 12},
		{Title: "Remaining", Width: 12},
		{Title: "End Date", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BudgetsModel{svc: svc, table: t}
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetsStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | x: remove"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case budgetsRefreshMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.details = msg.details
		m.refreshTable()

		return m, nil

	case budgetsActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.note
		}

		m.state = budgetsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.refreshCmd()
	}

	if m.state == budgetsStateAdd {
		return m.updateAdd(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAddMode()
		case "x":
			return m, m.removeCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) enterAddMode() (tea.Model, tea.Cmd) {
	categoryOpts := make([]huh.Option[string], 0, len(ledger.Categories()))
	for _, c := range ledger.Categories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), string(c)))
	}

	m.formName = ""
	m.formCategory = string(ledger.CategoryFood)
	m.formTotal = ""
	m.formEndDate = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOpts...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("total").
				Title("Cap (in SGD)").
				Placeholder("100.00").
				Value(&m.formTotal).
				Validate(func(s string) error {
					_, err := decimal.NewFromString(strings.TrimSpace(s))
					return err
				}),

			huh.NewInput().
				Key("end_date").
				Title("End date (YYYY-MM-DD)").
				Value(&m.formEndDate).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = budgetsStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetsModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = budgetsStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
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

func (m BudgetsModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Budgets"),
		tableView,
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.state == budgetsStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("New Budget\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.details))

	for i, d := range m.details {
		remaining := d.Remaining.StringFixed(2)
		if d.Remaining.IsNegative() {
			remaining = activeStyle(remaining)
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			d.Budget.Name,
			string(d.Budget.Category),
			FormatAmount(d.Budget.Total, currency.Base),
			remaining,
			d.Budget.EndDate.Format(time.DateOnly),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type budgetsRefreshMsg struct {
	details []ledger.BudgetDetail
	err     error
}

func (m BudgetsModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		details, err := m.svc.BudgetDetails()
		return budgetsRefreshMsg{details: details, err: err}
	}
}

type budgetsActionMsg struct {
	note string
	err  error
}

func (m BudgetsModel) saveCmd() tea.Cmd {
	name := m.formName
	cat := ledger.Category(m.formCategory)
	totalStr := strings.TrimSpace(m.formTotal)
	endStr := strings.TrimSpace(m.formEndDate)

	return func() tea.Msg {
		total, err := decimal.NewFromString(totalStr)
		if err != nil {
			return budgetsActionMsg{err: err}
		}

		endDate, err := time.Parse(time.DateOnly, endStr)
		if err != nil {
			return budgetsActionMsg{err: err}
		}

		if _, err := m.svc.SetBudget(name, cat, total, endDate); err != nil {
			return budgetsActionMsg{err: err}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return budgetsActionMsg{err: err}
		}

		return budgetsActionMsg{note: "Budget saved"}
	}
}

func (m BudgetsModel) removeCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.details) {
		return nil
	}

	return func() tea.Msg {
		if err := m.svc.RemoveBudget(idx); err != nil {
			return budgetsActionMsg{err: err}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return budgetsActionMsg{err: err}
		}

		return budgetsActionMsg{note: "Budget removed"}
	}
}
