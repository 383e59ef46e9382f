package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/tejav/smartspend/internal/budget"
	"github.com/tejav/smartspend/internal/config"
	"github.com/tejav/smartspend/internal/ledger"
	"github.com/tejav/smartspend/internal/logging"
	"github.com/tejav/smartspend/internal/payment"
	"github.com/tejav/smartspend/internal/tui"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}

	logger, closeLog, err := logging.New(cfg.LogPath())
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLog()

	ledgerStore := ledger.NewStore(cfg.LedgerPath(), logger)
	info, err := ledgerStore.Load()
	if err != nil {
		log.Fatalf("load transactions: %v", err)
	}
	if info.Reset {
		logger.Warn().Str("path", cfg.LedgerPath()).Msg("transaction file was corrupt and has been reset")
	}

	budgetStore := budget.NewStore(cfg.BudgetPath(), logger)
	limits, binfo, err := budgetStore.Load()
	if err != nil {
		log.Fatalf("load budgets: %v", err)
	}
	if binfo.Fallback {
		logger.Warn().Str("path", cfg.BudgetPath()).Msg("budget file unreadable, running on in-memory defaults")
	}

	sim := &payment.Simulator{
		Ledger:        ledgerStore,
		PayLatency:    cfg.PayLatency(),
		SearchLatency: cfg.SearchLatency(),
		Log:           logger,
	}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		logger.Warn().Err(err).Str("tz", cfg.UI.Timezone).Msg("falling back to local timezone")
		loc = time.Local
	}

	p := tea.NewProgram(tui.New(ctx, cfg, ledgerStore, budgetStore, limits, sim, logger, loc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
