// Package ofx imports bank and credit card statements (OFX/QFX) as transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/google/uuid"
)

// Payment modes assigned to imported transactions by statement kind.
const (
	ModeBank       = "Debit"
	ModeCreditCard = "Credit Card"
)

// idNamespace scopes the deterministic ids derived from account and FITID.
var idNamespace = uuid.MustParse("6f1d3c0e-5a43-4f55-9a0b-2d0c8f7b6e11")

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix    = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Parser converts OFX statements to transactions.
type Parser struct {
	// ModeOverride, when set, replaces the per-statement payment mode.
	ModeOverride string
}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Statement is one account's worth of imported transactions.
type Statement struct {
	AccountID    string
	PaymentMode  string
	Transactions []model.Transaction
}

// ParseFile reads every bank and credit card statement in r.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader) ([]model.Transaction, error) {
	stmts, err := p.ParseStatements(ctx, r)
	if err != nil {
		return nil, err
	}
	var txns []model.Transaction
	for _, s := range stmts {
		txns = append(txns, s.Transactions...)
	}
	return txns, nil
}

// ParseStatements is ParseFile keeping the per-account grouping.
func (p *Parser) ParseStatements(ctx context.Context, r io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var stmts []Statement
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			stmts = append(stmts, p.statement(string(stmt.BankAcctFrom.AcctID), ModeBank, stmt.BankTranList))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			stmts = append(stmts, p.statement(string(stmt.CCAcctFrom.AcctID), ModeCreditCard, stmt.BankTranList))
		}
	}

	total := 0
	for _, s := range stmts {
		total += len(s.Transactions)
	}
	slog.Info("Parsed OFX file", "statements", len(stmts), "transactions", total)
	return stmts, nil
}

func (p *Parser) statement(account, mode string, list *ofxgo.TransactionList) Statement {
	if p.ModeOverride != "" {
		mode = p.ModeOverride
	}
	s := Statement{AccountID: account, PaymentMode: mode}
	if list == nil {
		return s
	}
	for _, tx := range list.Transactions {
		s.Transactions = append(s.Transactions, convert(tx, account, mode))
	}
	return s
}

// convert maps one OFX entry. Credits become income, debits expenses.
func convert(tx ofxgo.Transaction, account, mode string) model.Transaction {
	amount, _ := tx.TrnAmt.Float64()
	typ := model.TypeExpense
	if amount > 0 {
		typ = model.TypeIncome
	}
	if amount < 0 {
		amount = -amount
	}

	return model.Transaction{
		ID:          TransactionID(account, string(tx.FiTID)),
		Date:        tx.DtPosted.Time,
		Type:        typ,
		Reason:      merchantName(tx),
		PaymentMode: mode,
		Amount:      amount,
	}
}

// TransactionID derives a stable id so re-importing a statement is idempotent.
func TransactionID(account, fitID string) string {
	return uuid.NewSHA1(idNamespace, []byte(account+"\x00"+fitID)).String()
}

// merchantName picks the cleanest description available.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGeneric(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(datePrefix.ReplaceAllString(name, ""))
}

func isGeneric(name string) bool {
	switch strings.ToUpper(name) {
	case "", "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// preprocess fixes formatting quirks that ofxgo rejects.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRegex.ReplaceAllString(content, "$1>")
}
