package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ongweikiat/moolah/internal/currency"
	"github.com/ongweikiat/moolah/internal/ledger"
)

type goalState int

const (
	goalStateView goalState = iota
	goalStateSet
	goalStateAmount
)

type GoalModel struct {
	CommonModel
	svc *ledger.Service

	state    goalState
	goal     ledger.Goal
	progress progress.Model
	form     *huh.Form
	deduct   bool
	status   string

	// Form bindings
	formTitle  string
	formTarget string
	formDesc   string
	formAmount string
}

func NewGoalModel(svc *ledger.Service) GoalModel {
	return GoalModel{
		svc:      svc,
		goal:     svc.Goal(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m GoalModel) Title() string { return "Savings Goal" }

func (m GoalModel) ShortHelp() string {
	if m.state != goalStateView {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | s: set goal | c: contribute | d: deduct"
}

func (m GoalModel) Init() tea.Cmd {
	return nil
}

func (m GoalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if action, ok := msg.(goalActionMsg); ok {
		if action.err != nil {
			m.status = fmt.Sprintf("Error: %v", action.err)
		} else {
			m.status = action.note
		}

		m.goal = m.svc.Goal()
		m.state = goalStateView
		m.form = nil

		return m, nil
	}

	if m.state != goalStateView {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "s":
		return m.enterSetMode()
	case "c":
		return m.enterAmountMode(false)
	case "d":
		return m.enterAmountMode(true)
	}

	return m, nil
}

func (m GoalModel) enterSetMode() (tea.Model, tea.Cmd) {
	m.formTitle = m.goal.Title
	m.formTarget = ""
	m.formDesc = m.goal.Description

	if m.goal.Set() {
		m.formTarget = m.goal.Target.String()
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&m.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("target").
				Title("Target amount (SGD)").
				Placeholder("1000").
				Value(&m.formTarget).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if !d.IsPositive() {
						return fmt.Errorf("target must be positive")
					}
					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = goalStateSet

	return m, m.form.Init()
}

func (m GoalModel) enterAmountMode(deduct bool) (tea.Model, tea.Cmd) {
	if !m.goal.Set() {
		m.status = "Set a goal first"
		return m, nil
	}

	m.deduct = deduct
	m.formAmount = ""

	title := "Contribute amount (SGD)"
	if deduct {
		title = "Deduct amount (SGD)"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title(title).
				Value(&m.formAmount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if !d.IsPositive() {
						return fmt.Errorf("amount must be positive")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = goalStateAmount

	return m, m.form.Init()
}

func (m GoalModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = goalStateView
			m.form = nil

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

	if m.state == goalStateSet {
		return m, m.setGoalCmd()
	}

	return m, m.amountCmd()
}

func (m GoalModel) View() string {
	var content string

	if !m.goal.Set() {
		content = "No savings goal yet.\n\nPress s to set one."
	} else {
		bar := m.progress.ViewAs(m.goal.ProgressRatio())

		line := fmt.Sprintf("%s of %s",
			FormatAmount(m.goal.Balance, currency.Base),
			FormatAmount(m.goal.Target, currency.Base),
		)

		switch {
		case m.goal.Achieved():
			line += "  ✓ achieved"
		case m.goal.Overdrawn():
			line += "  ⚠ balance is negative"
		}

		content = fmt.Sprintf("%s\n%s\n\n%s\n%s",
			m.goal.Title,
			lipgloss.NewStyle().Faint(true).Render(m.goal.Description),
			bar,
			line,
		)
	}

	if m.form != nil {
		content += "\n\n" + m.form.View()
	}

	content += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.ShortHelp())

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type goalActionMsg struct {
	note string
	err  error
}

func (m GoalModel) setGoalCmd() tea.Cmd {
	title := m.formTitle
	targetStr := strings.TrimSpace(m.formTarget)
	desc := m.formDesc

	return func() tea.Msg {
		target, err := decimal.NewFromString(targetStr)
		if err != nil {
			return goalActionMsg{err: err}
		}

		if err := m.svc.SetGoal(title, target, desc); err != nil {
			return goalActionMsg{err: err}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return goalActionMsg{err: err}
		}

		return goalActionMsg{note: "Goal saved"}
	}
}

func (m GoalModel) amountCmd() tea.Cmd {
	amountStr := strings.TrimSpace(m.formAmount)
	deduct := m.deduct

	return func() tea.Msg {
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return goalActionMsg{err: err}
		}

		var status ledger.GoalStatus

		if deduct {
			status, err = m.svc.DeductFromGoal(amount)
		} else {
			status, err = m.svc.ContributeToGoal(amount)
		}

		if err != nil {
			return goalActionMsg{err: err}
		}

		ctx, cancel := FlushCtx()
		defer cancel()

		if err := m.svc.Flush(ctx); err != nil {
			return goalActionMsg{err: err}
		}

		note := "Updated"
		if status.Overdrawn {
			note = "Updated. Warning: goal balance is negative"
		}

		return goalActionMsg{note: note}
	}
}
