package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ongweikiat/moolah/internal/export"
	"github.com/ongweikiat/moolah/internal/ledger"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateSearch
)

type ListModel struct {
	CommonModel
	svc *ledger.Service
	exp *export.Service

	state listState
	table table.Model
	txs   []*ledger.Transaction
	form  *huh.Form

	keyword     string
	status      string
	showDeleted bool

	// Form bindings
	formField string
	formValue string
}

func NewListModel(svc *ledger.Service, exp *export.Service) ListModel {
	columns := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "", Width: 3},
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 14},
		{Title: "Category", Width: 14},
		{Title: "Pri", Width: 6},
		{Title: "Description", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return ListModel{svc: svc, exp: exp, table: t}
}

// ExportService exposes the export collaborator so the menu can rebuild the
// view without re-wiring it.
func (m ListModel) ExportService() *export.Service { return m.exp }

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateSearch:
		return "Type keyword | Enter: apply | Esc: clear"
	}

	if m.showDeleted {
		return "Esc: back | u: recover | d: back to active"
	}

	return "Esc: back | e: edit | x: delete | d: deleted | c: toggle done | /: search | o: export"
}

func (m ListModel) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listRefreshMsg:
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case listActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else if msg.note != "" {
			m.status = msg.note
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.refreshCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	case listStateSearch:
		return m.updateSearch(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.refreshCmd()
		case "e":
			if m.showDeleted {
				return m, nil
			}

			return m.enterEditMode()
		case "x":
			if m.showDeleted {
				return m, nil
			}

			return m, m.mutateCmd(func(id int) error { return m.svc.Delete(id) }, "Deleted")
		case "u":
			return m, m.mutateCmd(func(id int) error { return m.svc.Recover(id) }, "Recovered")
		case "d":
			m.showDeleted = !m.showDeleted
			return m, m.refreshCmd()
		case "c":
			if m.showDeleted {
				return m, nil
			}

			return m, m.toggleCompletedCmd()
		case "/":
			if m.showDeleted {
				return m, nil
			}

			m.state = listStateSearch
			m.keyword = ""

			return m, nil
		case "o":
			if m.showDeleted {
				return m, nil
			}

			return m, m.exportCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		m.keyword = ""
		m.state = listStateBrowse

		return m, m.refreshCmd()
	case tea.KeyEnter:
		m.state = listStateBrowse
		return m, m.refreshCmd()
	case tea.KeyBackspace:
		if len(m.keyword) > 0 {
			m.keyword = m.keyword[:len(m.keyword)-1]
		}

		return m, nil
	case tea.KeyRunes:
		m.keyword += string(keyMsg.Runes)
		return m, nil
	}

	return m, nil
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formField = ledger.FieldDescription
	m.formValue = tx.Description

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("field").
				Title("Field").
				Options(
					huh.NewOption("Description", ledger.FieldDescription),
					huh.NewOption("Category", ledger.FieldCategory),
					huh.NewOption("Amount", ledger.FieldAmount),
					huh.NewOption("Currency", ledger.FieldCurrency),
					huh.NewOption("Date", ledger.FieldDate),
					huh.NewOption("Priority", ledger.FieldPriority),
				).
				Value(&m.formField),

			huh.NewInput().
				Key("value").
				Title("New value").
				Value(&m.formValue).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("value cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
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

	field, value := m.formField, m.formValue

	return m, m.mutateCmd(func(id int) error {
		return m.svc.Edit(id, field, value)
	}, "Saved")
}

func (m ListModel) View() string {
	header := "All transactions"
	if m.showDeleted {
		header = "Deleted transactions"
	} else if m.keyword != "" {
		header = fmt.Sprintf("Search: %s", activeStyle(m.keyword))
	}

	if m.state == listStateSearch {
		header = fmt.Sprintf("Search: %s▌", m.keyword)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.state == listStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *ListModel) selected() *ledger.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		check := "[ ]"
		if tx.Recurring() {
			check = "[R]"
		} else if tx.Completed {
			check = "[x]"
		}

		rows = append(rows, table.Row{
			fmt.Sprintf("%d", tx.ID),
			check,
			FormatDate(tx.Date),
			FormatAmount(tx.Amount, tx.Currency),
			string(tx.Category),
			string(tx.Priority),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type listRefreshMsg struct {
	txs []*ledger.Transaction
}

func (m ListModel) refreshCmd() tea.Cmd {
	keyword, deleted := m.keyword, m.showDeleted

	return func() tea.Msg {
		if deleted {
			return listRefreshMsg{txs: m.svc.Deleted()}
		}

		if keyword != "" {
			return listRefreshMsg{txs: m.svc.Search(keyword)}
		}

		return listRefreshMsg{txs: m.svc.List()}
	}
}

type listActionMsg struct {
	note string
	err  error
}

func (m ListModel) mutateCmd(op func(int) error, note string) tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id := tx.ID

	return func() tea.Msg {
		if err := op(id); err != nil {
			return listActionMsg{err: err}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{note: note}
	}
}

func (m ListModel) toggleCompletedCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	completed := !tx.Completed

	return m.mutateCmd(func(id int) error {
		return m.svc.SetCompleted(id, completed)
	}, "Updated")
}

func (m ListModel) exportCmd() tea.Cmd {
	return func() tea.Msg {
		path, err := m.exp.Export(m.svc.List())
		if err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{note: "Exported to " + path}
	}
}
