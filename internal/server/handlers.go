package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/budgly/internal/common"
	"github.com/Veraticus/budgly/internal/dashboard"
	"github.com/Veraticus/budgly/internal/layout"
	"github.com/Veraticus/budgly/internal/ledger"
	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/streak"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/gin-gonic/gin"
)

type cardResponse struct {
	Card      dashboard.Card     `json:"card"`
	ID        dashboard.CardID   `json:"id"`
	Type      dashboard.CardType `json:"type"`
	FullWidth bool               `json:"fullWidth"`
}

type dashboardResponse struct {
	Period     timewindow.Period `json:"period"`
	PeriodText string            `json:"periodText"`
	Cards      []cardResponse    `json:"cards"`
	Streaks    streak.Data       `json:"streaks"`
	Skipped    int               `json:"skipped"`
}

type layoutResponse struct {
	Entries []model.LayoutEntry `json:"entries"`
	Visible []string            `json:"visible"`
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type visibilityRequest struct {
	Visible *bool  `json:"visible" binding:"required"`
	ID      string `json:"id" binding:"required"`
}

type transactionRequest struct {
	Date        string  `json:"date" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Necessity   string  `json:"necessity"`
	Reason      string  `json:"reason"`
	PaymentMode string  `json:"paymentMode"`
	Amount      float64 `json:"amount"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      "budgly",
		"transactions": s.deps.Ledger.Len(),
	})
}

// period reads ?period= and falls back to the configured default.
func (s *Server) period(c *gin.Context) (timewindow.Period, bool) {
	raw := c.Query("period")
	if raw == "" {
		return s.deps.Period, true
	}
	p, err := timewindow.ParsePeriod(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return p, true
}

func (s *Server) getDashboard(c *gin.Context) {
	p, ok := s.period(c)
	if !ok {
		return
	}

	view := dashboard.Compose(s.deps.Engine, p, s.deps.Formatter, s.deps.Ledger.Snapshot(), s.deps.Layout.OrderedVisibleIDs())
	cards := make([]cardResponse, 0, len(view.Cards))
	for _, r := range view.Cards {
		cards = append(cards, cardResponse{
			ID:        r.Spec.ID,
			Type:      r.Card.Type(),
			FullWidth: dashboard.IsFullWidth(r.Spec),
			Card:      r.Card,
		})
	}

	c.JSON(http.StatusOK, dashboardResponse{
		Period:     p,
		PeriodText: p.Text(),
		Cards:      cards,
		Streaks:    view.Streaks,
		Skipped:    view.Snapshot.Skipped,
	})
}

func (s *Server) getAnalytics(c *gin.Context) {
	p, ok := s.period(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.deps.Engine.ComputePeriod(p, s.deps.Ledger.Snapshot()))
}

func (s *Server) getStreaks(c *gin.Context) {
	c.JSON(http.StatusOK, streak.Calculate(s.deps.Ledger.Snapshot(), s.deps.Engine.Windows()))
}

func (s *Server) layoutState() layoutResponse {
	return layoutResponse{
		Entries: s.deps.Layout.Entries(),
		Visible: s.deps.Layout.OrderedVisibleIDs(),
	}
}

func (s *Server) getLayout(c *gin.Context) {
	c.JSON(http.StatusOK, s.layoutState())
}

func (s *Server) reorderLayout(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.deps.Layout.Reorder(c.Request.Context(), req.IDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.layoutState())
}

func (s *Server) setVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.deps.Layout.SetVisible(c.Request.Context(), req.ID, *req.Visible); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.layoutState())
}

func (s *Server) resetLayout(c *gin.Context) {
	if err := s.deps.Layout.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.layoutState())
}

func (s *Server) listTransactions(c *gin.Context) {
	txns := s.deps.Ledger.Snapshot()
	if c.Query("period") != "" {
		p, ok := s.period(c)
		if !ok {
			return
		}
		txns = s.deps.Engine.FilterPeriod(p, txns)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

func (s *Server) getTransaction(c *gin.Context) {
	txn, err := s.deps.Ledger.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (s *Server) addTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := s.fromRequest(c, req)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := s.deps.Ledger.Add(c.Request.Context(), txn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTransaction(c *gin.Context) {
	var upd model.TransactionUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.PaymentMode != nil {
		mode := s.resolveMode(c, *upd.PaymentMode)
		upd.PaymentMode = &mode
	}

	updated, err := s.deps.Ledger.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.deps.Ledger.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getPaymentModes(c *gin.Context) {
	if s.deps.Modes == nil {
		c.JSON(http.StatusOK, model.DefaultPaymentModes)
		return
	}
	modes, err := s.deps.Modes.GetPaymentModes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, modes)
}

func (s *Server) fromRequest(c *gin.Context, req transactionRequest) (model.Transaction, error) {
	date, err := parseDate(req.Date, s.deps.Engine.Windows().Location())
	if err != nil {
		return model.Transaction{}, err
	}
	typ, err := model.ParseTransactionType(req.Type)
	if err != nil {
		return model.Transaction{}, err
	}
	necessity, err := model.ParseNecessity(req.Necessity)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:        date,
		Type:        typ,
		Necessity:   necessity,
		Reason:      strings.TrimSpace(req.Reason),
		PaymentMode: s.resolveMode(c, req.PaymentMode),
		Amount:      req.Amount,
	}, nil
}

func (s *Server) resolveMode(c *gin.Context, input string) string {
	modes := model.DefaultPaymentModes
	if s.deps.Modes != nil {
		if configured, err := s.deps.Modes.GetPaymentModes(c.Request.Context()); err == nil {
			modes = configured
		}
	}
	return model.ResolvePaymentMode(modes, strings.TrimSpace(input))
}

// parseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates in loc.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC 3339", model.ErrInvalidTransaction, raw)
	}
	return t, nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidTransaction), errors.Is(err, layout.ErrInvalidReorder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, layout.ErrUnknownCard):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		common.LogError(err, "API request failed", common.Fields{"method": c.Request.Method, "path": c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
