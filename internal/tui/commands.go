package tui

import (
	"context"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

const saveTimeout = 10 * time.Second

// saveOrder persists a dropped card order.
func (m Model) saveOrder(ids []string) tea.Cmd {
	ids = append([]string(nil), ids...)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return layoutSavedMsg{action: "reorder", err: m.config.Layout.Reorder(ctx, ids)}
	}
}

func (m Model) setVisible(id string, visible bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		action := "hide"
		if visible {
			action = "show"
		}
		return layoutSavedMsg{action: action, err: m.config.Layout.SetVisible(ctx, id, visible)}
	}
}

func (m Model) resetLayout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return layoutSavedMsg{action: "reset", err: m.config.Layout.Reset(ctx)}
	}
}

func (m Model) addTransaction(txn model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		added, err := m.config.Ledger.Add(ctx, txn)
		return transactionAddedMsg{txn: added, err: err}
	}
}
