package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type ChartPoint struct {
	Label string
	Value float64
}

// BarChart is a plain-text horizontal bar chart with value annotations.
type BarChart struct {
	Title  string
	Data   []ChartPoint
	Prefix string // currency symbol for the value annotation
}

func (c BarChart) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(c.Data) == 0 {
		return c.Title + "\n(no data)"
	}
	maxV := 0.0
	labelW := 0
	for _, p := range c.Data {
		if p.Value > maxV {
			maxV = p.Value
		}
		if len(p.Label) > labelW {
			labelW = len(p.Label)
		}
	}
	if maxV <= 0 {
		maxV = 1
	}
	barW := width - labelW - 14
	if barW < 4 {
		barW = 4
	}
	lines := []string{c.Title}
	for _, p := range c.Data {
		w := int((p.Value / maxV) * float64(barW))
		if w < 1 {
			w = 1
		}
		lines = append(lines, fmt.Sprintf("%-*s %s %s%.2f", labelW, p.Label, strings.Repeat("█", w), c.Prefix, p.Value))
		if len(lines) >= height {
			break
		}
	}
	return strings.Join(lines, "\n")
}

var (
	gaugeFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AD3BC"))
	gaugeOverStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F6C8C2"))
	gaugeUnsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3B0C3"))
)

// Gauge shows spend against a budget limit as a usage bar.
type Gauge struct {
	Label  string
	Spent  float64
	Limit  float64
	Prefix string
}

func (g Gauge) Render(width int) string {
	barW := width - len(g.Label) - 24
	if barW < 6 {
		barW = 6
	}
	if g.Limit <= 0 {
		bar := gaugeUnsetStyle.Render(strings.Repeat("░", barW))
		return fmt.Sprintf("%-14s %s  --   %s%.2f / no budget", g.Label, bar, g.Prefix, g.Spent)
	}
	pct := int(g.Spent / g.Limit * 100)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	filled := barW * pct / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barW-filled)
	style := gaugeFillStyle
	if g.Spent > g.Limit {
		style = gaugeOverStyle
	}
	return fmt.Sprintf("%-14s %s %3d%%  %s%.2f / %s%.0f", g.Label, style.Render(bar), pct, g.Prefix, g.Spent, g.Prefix, g.Limit)
}
