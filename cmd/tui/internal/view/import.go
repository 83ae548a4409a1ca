package view

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ongweikiat/moolah/internal/importer"
	"github.com/ongweikiat/moolah/internal/ledger"
)

type importState int

const (
	importStateForm importState = iota
	importStateDone
)

// ImportModel reads a CSV statement from disk and records every row as a
// transaction.
type ImportModel struct {
	CommonModel
	svc *ledger.Service
	imp *importer.Service

	state  importState
	form   *huh.Form
	status string

	// Form bindings
	formPath   string
	formSource string
}

func NewImportModel(svc *ledger.Service, imp *importer.Service) ImportModel {
	m := ImportModel{svc: svc, imp: imp}
	m.form = m.newForm()

	return m
}

// ImportService exposes the underlying importer so the menu can rebuild this
// view without reconstructing it.
func (m ImportModel) ImportService() *importer.Service { return m.imp }

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateDone {
		return "Esc: back | i: import another"
	}

	return "Navigate form | Esc: back"
}

func (m ImportModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("CSV file path").
				Placeholder("statement.csv").
				Value(&m.formPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("source").
				Title("Layout").
				Options(
					huh.NewOption("Generic (moolah export)", string(importer.SourceGeneric)),
					huh.NewOption("Bank (debit/credit columns)", string(importer.SourceBank)),
				).
				Value(&m.formSource),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Import failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Imported %d transactions", msg.count)
		}

		m.state = importStateDone

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == importStateDone && msg.String() == "i" {
			m.state = importStateForm
			m.status = ""
			m.formPath = ""
			m.form = m.newForm()

			return m, m.form.Init()
		}
	}

	if m.state != importStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	path := strings.TrimSpace(m.form.GetString("path"))
	source := importer.Source(m.form.GetString("source"))

	m.state = importStateDone

	return m, m.importCmd(path, source)
}

func (m ImportModel) View() string {
	var body string

	switch m.state {
	case importStateForm:
		body = m.form.View()
	case importStateDone:
		body = "Press i to import another file."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(m.Title()),
		body,
		"",
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type importDoneMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string, source importer.Source) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		defer f.Close()

		rows, err := m.imp.Import(source, f)
		if err != nil {
			return importDoneMsg{err: err}
		}

		for _, params := range rows {
			if _, err := m.svc.Add(params); err != nil {
				return importDoneMsg{err: fmt.Errorf("row %q: %w", params.Description, err)}
			}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return importDoneMsg{err: err}
		}

		return importDoneMsg{count: len(rows)}
	}
}
