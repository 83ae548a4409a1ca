package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const flushTimeout = 5 * time.Second

// CommonModel is embedded by all views.
type CommonModel struct{}

// BackMsg returns control to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// FlushCtx returns a context with a standard timeout for persisting the
// ledger snapshot.
func FlushCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flushTimeout)
}
