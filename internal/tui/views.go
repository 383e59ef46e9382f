package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tejav/smartspend/internal/budget"
	"github.com/tejav/smartspend/internal/classify"
	"github.com/tejav/smartspend/internal/ledger"
	"github.com/tejav/smartspend/widgets"
)

// Pastel palette carried over from the original dashboard.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3B0C3"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9AD3BC"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F6C8C2"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3B8F9")).Bold(true)

	categoryStyles = map[string]lipgloss.Style{
		"Food":          lipgloss.NewStyle().Foreground(lipgloss.Color("#F6C8C2")),
		"Shopping":      lipgloss.NewStyle().Foreground(lipgloss.Color("#A3B8F9")),
		"Bills":         lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD8A8")),
		"Transport":     lipgloss.NewStyle().Foreground(lipgloss.Color("#C6E7D2")),
		"Entertainment": lipgloss.NewStyle().Foreground(lipgloss.Color("#F0D7FF")),
		"Other":         lipgloss.NewStyle().Foreground(lipgloss.Color("#E6EEF8")),
	}
)

func categoryStyle(name string) lipgloss.Style {
	if s, ok := categoryStyles[name]; ok {
		return s
	}
	return categoryStyles[classify.CatchAll]
}

func (a *App) money(v float64) string {
	return a.cfg.UI.CurrencySymbol + strconv.FormatFloat(v, 'f', 2, 64)
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewPay:
		body = a.renderPay()
	case viewAdd:
		body = a.renderAdd()
	case viewBudgets:
		body = a.renderBudgets()
	case viewTransfer:
		body = a.renderTransfer()
	case viewAbout:
		body = a.renderAbout()
	default:
		body = a.renderHome()
	}
	if a.status != "" {
		body += "\n\n" + a.status
	}
	return body
}

func (a *App) renderHome() string {
	title := titleStyle.Render("SmartSpend - Overview")
	sub := mutedStyle.Render("Quick snapshot of your spending and budgets")

	totals := a.ledger.TotalsByCategory()
	total := a.ledger.TotalSpent()
	month := a.ledger.MonthTotal(time.Now().In(a.tz))
	active := budget.ActiveTotal(a.limits)
	remaining := budget.RemainingTotal(a.limits, totals)

	metrics := fmt.Sprintf("Total Spent %s   This Month %s   Active Budgets %s   Remaining %s",
		a.money(total), a.money(month), a.money(active), a.money(remaining))

	out := title + "\n" + sub + "\n\n" + metrics + "\n\n"
	out += a.renderCategoryChart(totals) + "\n\n"
	out += a.renderBudgetGauges(totals) + "\n\n"
	out += a.renderRecent()
	out += "\n\n" + mutedStyle.Render("[p] Pay  [a] Add Expense  [b] Budgets  [o] Offline Transfer  [r] Reload  [?] About  [q] Quit")
	return out
}

func (a *App) renderCategoryChart(totals map[string]float64) string {
	var data []barchart.BarData
	var points []widgets.ChartPoint
	for _, c := range classify.Defaults() {
		v := totals[c]
		if v <= 0 {
			continue
		}
		data = append(data, barchart.BarData{
			Label:  c,
			Values: []barchart.BarValue{{Name: c, Value: v, Style: categoryStyle(c)}},
		})
		points = append(points, widgets.ChartPoint{Label: c, Value: v})
	}
	if len(data) == 0 {
		return mutedStyle.Render("No transactions yet - add one from 'Add Expense' or 'Pay'.")
	}

	w := a.width - 4
	if w < 20 {
		w = 20
	}
	if w > 64 {
		w = 64
	}
	bc := barchart.New(w, 8)
	bc.PushAll(data)
	bc.Draw()

	amounts := widgets.BarChart{Title: "Amount by category", Data: points, Prefix: a.cfg.UI.CurrencySymbol}
	return titleStyle.Render("Spending by category") + "\n" + bc.View() + "\n\n" + amounts.Render(w, 10)
}

func (a *App) renderBudgetGauges(spent map[string]float64) string {
	out := titleStyle.Render("Budgets")
	w := a.width - 4
	if w < 40 {
		w = 40
	}
	for _, c := range classify.Defaults() {
		g := widgets.Gauge{Label: c, Spent: spent[c], Limit: a.limits[c], Prefix: a.cfg.UI.CurrencySymbol}
		out += "\n" + g.Render(w)
	}
	if alerts := budget.Alerts(a.limits, spent); len(alerts) > 0 {
		for _, al := range alerts {
			out += "\n" + errStyle.Render(al.Category+" exceeded by "+a.money(al.Overshoot))
		}
	}
	return out
}

func (a *App) renderRecent() string {
	out := titleStyle.Render("Recent transactions")
	recent := a.ledger.Recent(10)
	if len(recent) == 0 {
		return out + "\n" + mutedStyle.Render("No transactions recorded.")
	}
	for _, r := range recent {
		label := r.Merchant
		if label == "" {
			label = r.Note
		}
		if label == "" {
			label = r.Category
		}
		out += fmt.Sprintf("\n%s %-30s %-20s %10s",
			categoryStyle(r.Category).Render("●"),
			label,
			mutedStyle.Render(ledger.PrettyDate(r.Date)),
			a.money(r.Amount))
	}
	return out
}

func (a *App) fieldLabel(label string, active bool) string {
	if active {
		return cursorStyle.Render("▶ " + label)
	}
	return "  " + label
}

func (a *App) renderPay() string {
	f := a.pay
	out := titleStyle.Render("Pay (Simulated)") + "\n"
	out += mutedStyle.Render("Send a simulated payment by phone number, UPI ID, or QR scan (demo only).") + "\n\n"
	out += "Method: " + f.method.String() + "  " + mutedStyle.Render("(ctrl+p to switch)") + "\n\n"

	switch f.method {
	case methodQR:
		scanned := "(not scanned - press ctrl+s)"
		if f.scanned {
			scanned = f.recipient + " (simulated)"
		}
		out += a.fieldLabel("QR scan: ", f.field == 0) + scanned + "\n"
	case methodUPI:
		out += a.fieldLabel("UPI ID: ", f.field == 0) + f.recipient + "\n"
	default:
		out += a.fieldLabel("Phone: ", f.field == 0) + f.recipient + "\n"
	}
	out += a.fieldLabel("Amount: ", f.field == 1) + f.amount + "\n"
	out += a.fieldLabel("Note: ", f.field == 2) + f.note + "\n"
	out += "\nAuto-categorize: " + onOff(f.auto) + "  " + mutedStyle.Render("(ctrl+t)") + "\n"
	out += "\n" + mutedStyle.Render("[enter] Send Payment  [tab] Next field  [esc] Back")
	return out
}

func (a *App) renderAdd() string {
	f := a.add
	out := titleStyle.Render("Add Expense") + "\n"
	out += mutedStyle.Render("Manually add a UPI or cash expense (simulated).") + "\n\n"
	out += a.fieldLabel("Date (YYYY-MM-DD): ", f.field == 0) + f.date + "\n"
	out += a.fieldLabel("Time (HH:MM): ", f.field == 1) + f.time + "\n"
	out += a.fieldLabel("Amount: ", f.field == 2) + f.amount + "\n"
	out += a.fieldLabel("Merchant: ", f.field == 3) + f.merchant + "\n"
	out += a.fieldLabel("Note: ", f.field == 4) + f.note + "\n"
	out += "\nAuto-categorize: " + onOff(f.auto) + "  " + mutedStyle.Render("(ctrl+t)") + "\n"
	if !f.auto {
		preview := classify.Canonical(f.category)
		out += a.fieldLabel("Category: ", f.field == 5) + f.category + mutedStyle.Render("  -> "+preview) + "\n"
	}
	out += "\n" + mutedStyle.Render("[enter] Save expense  [tab] Next field  [esc] Back")
	return out
}

func (a *App) renderBudgets() string {
	f := a.budgetFm
	out := titleStyle.Render("Budgets") + "\n"
	out += mutedStyle.Render("Set monthly budgets by category to receive alerts when exceeded.") + "\n\n"
	for i, c := range f.categories {
		out += a.fieldLabel(fmt.Sprintf("%-14s", c), f.field == i) + f.values[i] + "\n"
	}

	out += "\n" + titleStyle.Render("Alerts") + "\n"
	alerts := budget.Alerts(a.limits, a.ledger.TotalsByCategory())
	if len(alerts) == 0 {
		out += okStyle.Render("No budget exceeded.")
	} else {
		lines := make([]string, 0, len(alerts))
		for _, al := range alerts {
			lines = append(lines, errStyle.Render(al.Category+" exceeded by "+a.money(al.Overshoot)))
		}
		out += strings.Join(lines, "\n")
	}
	out += "\n\n" + mutedStyle.Render("[enter] Save budgets  [tab] Next field  [esc] Back")
	return out
}

func (a *App) renderTransfer() string {
	f := a.transfer
	out := titleStyle.Render("Offline Peer-to-Peer (Simulated)") + "\n"
	out += mutedStyle.Render("Simulate nearby device discovery and local transfer recording.") + "\n\n"

	device := "(none - press ctrl+s to search)"
	if len(f.devices) > 0 {
		parts := make([]string, len(f.devices))
		for i, d := range f.devices {
			if i == f.device {
				parts[i] = cursorStyle.Render("[" + d + "]")
			} else {
				parts[i] = " " + d + " "
			}
		}
		device = strings.Join(parts, " ") + "  " + mutedStyle.Render("(left/right)")
	}
	out += a.fieldLabel("Device: ", f.field == 0) + device + "\n"
	out += a.fieldLabel("Amount: ", f.field == 1) + f.amount + "\n"
	out += a.fieldLabel("Note for receiver: ", f.field == 2) + f.note + "\n"
	out += "\n" + mutedStyle.Render("[ctrl+s] Search devices  [enter] Send offline transfer  [tab] Next field  [esc] Back")
	return out
}

func (a *App) renderAbout() string {
	out := titleStyle.Render("About SmartSpend") + "\n"
	out += mutedStyle.Render("Demo only - no bank integration.") + "\n\n"
	out += "- Auto-categorization (keyword-based, demo).\n"
	out += "- Budgets per-category + alerts.\n"
	out += "- Offline peer-to-peer recording (simulated).\n"
	out += "- Pay via phone / UPI ID / QR (simulated).\n\n"
	out += "Files stored locally:\n"
	out += "- " + a.cfg.LedgerPath() + " (transactions, CSV)\n"
	out += "- " + a.cfg.BudgetPath() + " (budgets, JSON)\n"
	out += "\n" + mutedStyle.Render("[esc] Back  [q] Quit")
	return out
}

func onOff(v bool) string {
	if v {
		return okStyle.Render("on")
	}
	return mutedStyle.Render("off")
}
