package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBarChartRender(t *testing.T) {
	t.Parallel()

	c := BarChart{
		Title:  "Spending by category",
		Prefix: "₹",
		Data: []ChartPoint{
			{Label: "Food", Value: 250},
			{Label: "Bills", Value: 125},
		},
	}
	out := c.Render(60, 10)
	lines := strings.Split(out, "\n")
	require.Equal(t, "Spending by category", lines[0])
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "Food")
	require.Contains(t, lines[1], "₹250.00")
	require.Contains(t, lines[2], "₹125.00")
	// The longest bar belongs to the largest value.
	require.Greater(t, strings.Count(lines[1], "█"), strings.Count(lines[2], "█"))
}

func TestBarChartEmpty(t *testing.T) {
	t.Parallel()

	out := BarChart{Title: "Spending"}.Render(40, 10)
	require.Contains(t, out, "(no data)")
	require.Empty(t, BarChart{}.Render(0, 0))
}

func TestBarChartHeightClamp(t *testing.T) {
	t.Parallel()

	c := BarChart{Title: "t", Data: []ChartPoint{{"a", 1}, {"b", 2}, {"c", 3}}}
	out := c.Render(40, 2)
	require.Len(t, strings.Split(out, "\n"), 2)
}

func TestGaugeRender(t *testing.T) {
	t.Parallel()

	out := Gauge{Label: "Food", Spent: 250, Limit: 1000, Prefix: "₹"}.Render(60)
	require.Contains(t, out, "Food")
	require.Contains(t, out, " 25%")
	require.Contains(t, out, "₹250.00 / ₹1000")

	over := Gauge{Label: "Bills", Spent: 600, Limit: 500, Prefix: "₹"}.Render(60)
	require.Contains(t, over, "100%")

	unset := Gauge{Label: "Other", Spent: 10, Limit: 0, Prefix: "₹"}.Render(60)
	require.Contains(t, unset, "no budget")
	require.Contains(t, unset, "₹10.00")
	require.NotContains(t, unset, "%")
}
