package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/ongweikiat/moolah/cmd/tui/internal/view"
	"github.com/ongweikiat/moolah/internal/config"
	"github.com/ongweikiat/moolah/internal/database"
	"github.com/ongweikiat/moolah/internal/export"
	"github.com/ongweikiat/moolah/internal/importer"
	"github.com/ongweikiat/moolah/internal/ledger"
	"github.com/ongweikiat/moolah/internal/ledger/store"
)

type model struct {
	ledgerService *ledger.Service

	currentView View

	listView    view.ListModel
	addView     view.AddModel
	budgetsView view.BudgetsModel
	goalView    view.GoalModel
	alertsView  view.AlertsModel
	importView  view.ImportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewList    View = 1
	ViewAdd     View = 2
	ViewBudgets View = 3
	ViewGoal    View = 4
	ViewAlerts  View = 5
	ViewImport  View = 6
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Driver, cfg.DSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	if err := store.Migrate(db, cfg.DB.Driver); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	svc := ledger.NewService(store.New(db))
	if err := svc.Hydrate(context.Background()); err != nil {
		slog.Error("failed to load ledger state", "error", err)
		os.Exit(1)
	}

	impSvc := importer.NewService()
	expSvc := export.NewService(cfg.App.ExportDir)

	return model{
		ledgerService: svc,
		currentView:   ViewMenu,
		listView:      view.NewListModel(svc, expSvc),
		addView:       view.NewAddModel(svc),
		budgetsView:   view.NewBudgetsModel(svc),
		goalView:      view.NewGoalModel(svc),
		alertsView:    view.NewAlertsModel(svc),
		importView:    view.NewImportModel(svc, impSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.ledgerService, m.listView.ExportService())

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.ledgerService)

				return m, m.addView.Init()
			case "3":
				m.currentView = ViewBudgets
				m.budgetsView = view.NewBudgetsModel(m.ledgerService)

				return m, m.budgetsView.Init()
			case "4":
				m.currentView = ViewGoal
				m.goalView = view.NewGoalModel(m.ledgerService)

				return m, m.goalView.Init()
			case "5":
				m.currentView = ViewAlerts
				m.alertsView = view.NewAlertsModel(m.ledgerService)

				return m, m.alertsView.Init()
			case "6":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.ledgerService, m.importView.ImportService())

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetsView.Update(msg)
		m.budgetsView = newModel.(view.BudgetsModel)
	case ViewGoal:
		var newModel tea.Model
		newModel, cmd = m.goalView.Update(msg)
		m.goalView = newModel.(view.GoalModel)
	case ViewAlerts:
		var newModel tea.Model
		newModel, cmd = m.alertsView.Update(msg)
		m.alertsView = newModel.(view.AlertsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Moolah\n\n" +
				"1. Transactions\n" +
				"2. Add Transaction\n" +
				"3. Budgets\n" +
				"4. Savings Goal\n" +
				"5. Alerts\n" +
				"6. Import Statement\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewAdd:
		return m.addView.View()
	case ViewBudgets:
		return m.budgetsView.View()
	case ViewGoal:
		return m.goalView.View()
	case ViewAlerts:
		return m.alertsView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
