package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tejav/smartspend/internal/budget"
	"github.com/tejav/smartspend/internal/config"
	"github.com/tejav/smartspend/internal/ledger"
	"github.com/tejav/smartspend/internal/payment"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	ledgerStore := ledger.NewStore(filepath.Join(dir, "expenses.csv"), zerolog.Nop())
	_, err := ledgerStore.Load()
	require.NoError(t, err)

	budgetStore := budget.NewStore(filepath.Join(dir, "budgets.json"), zerolog.Nop())
	limits, _, err := budgetStore.Load()
	require.NoError(t, err)

	sim := &payment.Simulator{
		Ledger:        ledgerStore,
		PayLatency:    time.Millisecond,
		SearchLatency: time.Millisecond,
		Log:           zerolog.Nop(),
	}

	cfg := config.Config{}
	cfg.Data.Dir = dir
	cfg.Data.LedgerFile = "expenses.csv"
	cfg.Data.BudgetFile = "budgets.json"
	cfg.UI.CurrencySymbol = "₹"

	return New(context.Background(), cfg, ledgerStore, budgetStore, limits, sim, zerolog.Nop(), time.UTC)
}

func press(t *testing.T, a *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+t":
			msg = tea.KeyMsg{Type: tea.KeyCtrlT}
		case "ctrl+p":
			msg = tea.KeyMsg{Type: tea.KeyCtrlP}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		model, _ := a.Update(msg)
		require.IsType(t, &App{}, model)
	}
}

func typeText(t *testing.T, a *App, s string) {
	t.Helper()
	for _, r := range s {
		if r == ' ' {
			a.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestHomeRendersEmptyState(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	out := a.View()
	require.Contains(t, out, "SmartSpend - Overview")
	require.Contains(t, out, "No transactions yet")
	require.Contains(t, out, "Total Spent ₹0.00")
}

func TestHomeShowsTransactions(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.ledger.Append(ledger.Record{Date: "2024-05-01 12:00:00", Amount: 250, Note: "lunch", Merchant: "cafe", Category: "Food"})
	require.NoError(t, a.ledger.Save())

	out := a.View()
	require.Contains(t, out, "Spending by category")
	require.Contains(t, out, "cafe")
	require.Contains(t, out, "₹250.00")
}

func TestNavigation(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "p")
	require.Contains(t, a.View(), "Pay (Simulated)")
	press(t, a, "esc")
	require.Contains(t, a.View(), "Overview")

	press(t, a, "a")
	require.Contains(t, a.View(), "Add Expense")
	press(t, a, "esc")

	press(t, a, "b")
	require.Contains(t, a.View(), "Budgets")
	press(t, a, "esc")

	press(t, a, "o")
	require.Contains(t, a.View(), "Offline Peer-to-Peer")
	press(t, a, "esc")

	press(t, a, "?")
	require.Contains(t, a.View(), "About SmartSpend")
}

func TestQuitKeys(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

func TestAddExpenseAutoCategorizes(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "a")
	press(t, a, "tab", "tab") // amount
	typeText(t, a, "250")
	press(t, a, "tab") // merchant
	typeText(t, a, "Dominos")
	press(t, a, "tab") // note
	typeText(t, a, "pizza night")
	press(t, a, "enter")

	require.Contains(t, a.status, "Saved ₹250.00 as Food")
	recs := a.ledger.Records()
	require.Len(t, recs, 1)
	require.Equal(t, "Food", recs[0].Category)
	require.Equal(t, "Dominos", recs[0].Merchant)
}

func TestAddExpenseManualCategorySnaps(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "a", "ctrl+t") // manual category mode
	press(t, a, "tab", "tab")
	typeText(t, a, "99")
	press(t, a, "tab", "tab", "tab") // category field
	typeText(t, a, "fod")
	press(t, a, "enter")

	require.Contains(t, a.status, "as Food")
	require.Equal(t, "Food", a.ledger.Records()[0].Category)
}

func TestAddExpenseRejectsBadAmount(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "a")
	press(t, a, "tab", "tab")
	typeText(t, a, "abc")
	press(t, a, "enter")

	require.Contains(t, a.status, "amount")
	require.Empty(t, a.ledger.Records())
}

func TestPayValidationMessages(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "p")
	typeText(t, a, "12345")
	press(t, a, "enter")
	require.Contains(t, a.status, "valid phone number")

	// switch to UPI and provide a valid handle but a bad amount
	press(t, a, "ctrl+p")
	typeText(t, a, "cafe@upi")
	press(t, a, "enter")
	require.Contains(t, a.status, "positive amount")
}

func TestPaySubmitGoesBusy(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "p", "ctrl+p") // UPI
	typeText(t, a, "cafe@upi")
	press(t, a, "tab")
	typeText(t, a, "120")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.busy)
	require.NotNil(t, cmd)

	msg := cmd()
	paid, ok := msg.(paidMsg)
	require.True(t, ok)
	require.Equal(t, "Food", paid.r.Category)

	a.Update(msg)
	require.False(t, a.busy)
	require.Contains(t, a.status, "Sent ₹120.00 to cafe@upi")
}

func TestQRScanFlow(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "p", "ctrl+p", "ctrl+p") // phone -> UPI -> QR
	require.Contains(t, a.View(), "not scanned")
	press(t, a, "ctrl+s")
	require.Contains(t, a.View(), "merchant@upi")
	require.True(t, a.pay.scanned)
}

func TestBudgetFormSaves(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "b")
	// Food is the first field; replace its 0.00 with 500.
	for range "0.00" {
		a.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	typeText(t, a, "500")
	press(t, a, "enter")

	require.Contains(t, a.status, "Budgets saved")
	require.Equal(t, 500.0, a.limits["Food"])

	limits, _, err := a.budgets.Load()
	require.NoError(t, err)
	require.Equal(t, 500.0, limits["Food"])
}

func TestBudgetFormRejectsInvalid(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "b")
	typeText(t, a, "x")
	press(t, a, "enter")
	require.Contains(t, a.status, "Invalid limit for Food")
}

func TestBudgetAlertShownOnBudgetScreen(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.limits["Food"] = 100
	a.ledger.Append(ledger.Record{Date: "2024-05-01 12:00:00", Amount: 150, Category: "Food"})
	press(t, a, "b")
	require.Contains(t, a.View(), "Food exceeded by ₹50.00")
}

func TestTransferRequiresSearch(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "o", "enter")
	require.Contains(t, a.status, "Search for nearby devices")
}

func TestTransferFlow(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	press(t, a, "o")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, a.busy)
	require.NotNil(t, cmd)
	a.Update(cmd())
	require.Equal(t, payment.Devices, a.transfer.devices)

	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	sent, ok := msg.(transferredMsg)
	require.True(t, ok)
	require.Equal(t, 50.0, sent.r.Amount)

	a.Update(msg)
	require.Contains(t, a.status, "Recorded locally")
	require.Len(t, a.ledger.Records(), 1)
	require.Equal(t, "Offline->Split dinner", a.ledger.Records()[0].Note)
}

func TestReloadAppliesOnEventLoop(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.ledger.Append(ledger.Record{Date: "2024-05-01 12:00:00", Amount: 100, Merchant: "cafe", Category: "Food"})
	require.NoError(t, a.ledger.Save())
	// an unsaved row that only exists in memory
	a.ledger.Append(ledger.Record{Date: "2024-05-02 12:00:00", Amount: 5, Category: "Other"})

	msg := a.reload()()

	// running the command leaves the shared store alone
	require.Len(t, a.ledger.Records(), 2)

	a.Update(msg)
	require.Len(t, a.ledger.Records(), 1)
	require.Equal(t, 100.0, a.ledger.Records()[0].Amount)
}

func TestReloadConcurrentWithRender(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.ledger.Append(ledger.Record{Date: "2024-05-01 12:00:00", Amount: 250, Merchant: "cafe", Category: "Food"})
	require.NoError(t, a.ledger.Save())

	done := make(chan tea.Msg, 1)
	cmd := a.reload()
	go func() { done <- cmd() }()
	for i := 0; i < 200; i++ {
		_ = a.View()
	}
	a.Update(<-done)
	require.Contains(t, a.View(), "₹250.00")
}

func TestBusyBlocksInput(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	a.busy = true
	press(t, a, "p")
	require.Equal(t, viewHome, a.state)
}
