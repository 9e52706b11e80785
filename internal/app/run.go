package app

import (
	tea "charm.land/bubbletea/v2"

	"helpdesk/internal/config"
	"helpdesk/internal/logging"
	"helpdesk/internal/store"
	"helpdesk/internal/types"
)

// RunConsole starts the operator surface and blocks until it exits.
func RunConsole(api ConsoleAPI, viewer types.ViewerIdentity, settings config.Settings, log logging.Logger) error {
	model := NewConsoleModel(api, viewer, settings, log)
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

// RunWidget starts the end-user surface and blocks until it exits.
func RunWidget(api WidgetAPI, st store.StateStore, token string, state *types.AppState, settings config.Settings, log logging.Logger) error {
	model := NewWidgetModel(api, st, token, state, settings, log)
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}
