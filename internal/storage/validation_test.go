package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateTransactions(t *testing.T) {
	valid := model.Transaction{
		ID:     "t1",
		Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Type:   model.TypeExpense,
		Amount: 10,
	}
	negative := valid
	negative.Amount = -1

	tests := []struct {
		target error
		name   string
		txns   []model.Transaction
	}{
		{name: "valid", txns: []model.Transaction{valid}},
		{name: "nil slice", txns: nil, target: ErrNilParameter},
		{name: "empty slice", txns: []model.Transaction{}, target: ErrEmptySlice},
		{name: "negative amount", txns: []model.Transaction{valid, negative}, target: model.ErrInvalidTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransactions(tt.txns)
			if tt.target == nil {
				if err != nil {
					t.Errorf("validateTransactions() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("validateTransactions() error = %v, want %v", err, tt.target)
			}
		})
	}
}
