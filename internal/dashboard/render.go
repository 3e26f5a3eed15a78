package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the grid width used when none is given.
const DefaultWidth = 80

// Styles holds the lipgloss styles of the terminal renderer.
type Styles struct {
	Card      lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Detail    lipgloss.Style
	Subtitle  lipgloss.Style
	Income    lipgloss.Style
	Expense   lipgloss.Style
	TrendGood lipgloss.Style
	TrendBad  lipgloss.Style
	Selected  lipgloss.Style
	Bars      []lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#404040")).
			Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("#a3a3a3")),
		Value:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fafafa")),
		Detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("#fafafa")),
		Subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#737373")),
		Income:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10b981")),
		Expense:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
		TrendGood: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		TrendBad:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		Selected: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#7c3aed")).
			Padding(0, 1),
		Bars: []lipgloss.Style{
			lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#7c3aed")),
		},
	}
}

// Renderer draws cards as a two column terminal grid.
type Renderer struct {
	styles Styles
	width  int
}

// NewRenderer creates a renderer for a terminal of the given width.
func NewRenderer(width int, styles Styles) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{styles: styles, width: width}
}

// Render lays out cards in order. Full width cards get their own row; other cards
// pair up two per row. selected is the index to highlight, or -1.
func (r *Renderer) Render(cards []Rendered, selected int) string {
	half := r.width / 2
	var rows []string
	var pending []string

	flush := func() {
		if len(pending) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, pending...))
			pending = nil
		}
	}

	for i, rc := range cards {
		if IsFullWidth(rc.Spec) {
			flush()
			rows = append(rows, r.box(rc.Card, r.width, i == selected))
			continue
		}
		pending = append(pending, r.box(rc.Card, half, i == selected))
		if len(pending) == 2 {
			flush()
		}
	}
	flush()
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (r *Renderer) box(c Card, width int, selected bool) string {
	style := r.styles.Card
	if selected {
		style = r.styles.Selected
	}
	// Width excludes the border but includes padding.
	inner := max(width-style.GetHorizontalBorderSize(), 10)
	content := r.RenderCard(c, inner-style.GetHorizontalPadding())
	return style.Width(inner).Render(content)
}

// RenderCard draws the body of a single card within width columns.
func (r *Renderer) RenderCard(c Card, width int) string {
	switch card := c.(type) {
	case StatCard:
		return r.stat(card)
	case InsightCard:
		return r.insight(card)
	case ChartCard:
		return r.chart(card, width)
	default:
		return ""
	}
}

func (r *Renderer) stat(c StatCard) string {
	lines := []string{
		r.styles.Label.Render(strings.ToUpper(c.Label)),
		r.tone(c.Tone).Render(c.Value),
	}
	if c.Trend != nil {
		arrow, style := "↑", r.styles.TrendBad
		if c.Trend.Value <= 0 {
			arrow = "↓"
		}
		if c.Trend.Good {
			style = r.styles.TrendGood
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s %.0f%% %s", arrow, math.Abs(c.Trend.Value), c.Trend.Label)))
	}
	if c.Subtitle != "" {
		lines = append(lines, r.styles.Subtitle.Render(c.Subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) insight(c InsightCard) string {
	lines := []string{r.styles.Label.Render(strings.ToUpper(c.Label))}
	if c.Detail != "" {
		lines = append(lines, r.styles.Detail.Render(c.Detail))
	}
	lines = append(lines, r.tone(c.Tone).Render(c.Value))
	if c.Subtitle != "" {
		lines = append(lines, r.styles.Subtitle.Render(c.Subtitle))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) chart(c ChartCard, width int) string {
	labelWidth := 0
	peak := 0.0
	for _, row := range c.Rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
		for _, v := range row.Values {
			peak = math.Max(peak, math.Abs(v.Amount))
		}
	}
	labelWidth = min(labelWidth, 16)

	lines := []string{r.styles.Label.Render(c.Title)}
	if c.Subtitle != "" {
		lines = append(lines, r.styles.Subtitle.Render(c.Subtitle))
	}
	for _, row := range c.Rows {
		label := truncate(row.Label, labelWidth)
		displays := make([]string, 0, len(row.Values))
		for _, v := range row.Values {
			displays = append(displays, v.Display)
		}
		text := strings.Join(displays, " / ")
		barSpace := max(width-labelWidth-lipgloss.Width(text)-3, 1)

		var bars strings.Builder
		used := 0
		for i, v := range row.Values {
			n := 0
			if peak > 0 {
				n = int(math.Round(math.Abs(v.Amount) / peak * float64(barSpace) / float64(len(row.Values))))
			}
			bars.WriteString(r.bar(i).Render(strings.Repeat("█", n)))
			used += n
		}
		pad := strings.Repeat(" ", max(barSpace-used, 0))
		lines = append(lines, fmt.Sprintf("%-*s %s%s %s", labelWidth, label, bars.String(), pad, r.styles.Subtitle.Render(text)))
	}
	if len(c.Series) > 1 {
		legend := make([]string, 0, len(c.Series))
		for i, s := range c.Series {
			legend = append(legend, r.bar(i).Render("●")+" "+titleCaser.String(s))
		}
		lines = append(lines, r.styles.Subtitle.Render(strings.Join(legend, "  ")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) bar(i int) lipgloss.Style {
	if len(r.styles.Bars) == 0 {
		return lipgloss.NewStyle()
	}
	return r.styles.Bars[i%len(r.styles.Bars)]
}

func (r *Renderer) tone(t Tone) lipgloss.Style {
	switch t {
	case ToneIncome:
		return r.styles.Income
	case ToneExpense:
		return r.styles.Expense
	default:
		return r.styles.Value
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
