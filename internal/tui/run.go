package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/budgly/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard until the user quits or ctx is canceled. Ledger,
// layout and connectivity changes are forwarded to the running program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := []func(){
		m.config.Ledger.Subscribe(func(txns []model.Transaction) {
			p.Send(ledgerChangedMsg{txns: txns})
		}),
		m.config.Layout.Subscribe(func(ids []string) {
			p.Send(layoutChangedMsg{ids: ids})
		}),
	}
	if m.config.Monitor != nil {
		unsubscribe = append(unsubscribe, m.config.Monitor.Subscribe(func(online bool) {
			p.Send(connectivityMsg{online: online})
		}))
	}
	defer func() {
		for _, u := range unsubscribe {
			u()
		}
	}()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}
