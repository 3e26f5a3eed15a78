package tui

import "github.com/Veraticus/budgly/internal/model"

// ledgerChangedMsg carries a fresh transaction snapshot.
type ledgerChangedMsg struct {
	txns []model.Transaction
}

// layoutChangedMsg carries the new ordered visible card ids.
type layoutChangedMsg struct {
	ids []string
}

type connectivityMsg struct {
	online bool
}

// layoutSavedMsg reports the outcome of a reorder, visibility change or reset.
type layoutSavedMsg struct {
	err    error
	action string
}

type transactionAddedMsg struct {
	err error
	txn model.Transaction
}
