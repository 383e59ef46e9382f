package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tejav/smartspend/internal/budget"
	"github.com/tejav/smartspend/internal/classify"
	"github.com/tejav/smartspend/internal/config"
	"github.com/tejav/smartspend/internal/ledger"
	"github.com/tejav/smartspend/internal/payment"
)

// App is the screen dispatcher: one flat set of mutually exclusive screens,
// no transitions beyond direct navigation.
type App struct {
	ctx     context.Context
	cfg     config.Config
	ledger  *ledger.Store
	budgets *budget.Store
	sim     *payment.Simulator
	log     zerolog.Logger
	tz      *time.Location

	state  appState
	status string
	width  int
	busy   bool // a simulated send or search is in flight

	keys keyMap

	limits map[string]float64

	pay      payForm
	add      addForm
	budgetFm budgetForm
	transfer transferForm
}

type appState string

const (
	viewHome     appState = "home"
	viewPay      appState = "pay"
	viewAdd      appState = "add"
	viewBudgets  appState = "budgets"
	viewTransfer appState = "transfer"
	viewAbout    appState = "about"
)

type payMethod int

const (
	methodPhone payMethod = iota
	methodUPI
	methodQR
)

func (m payMethod) String() string {
	switch m {
	case methodUPI:
		return "UPI ID"
	case methodQR:
		return "Scan QR"
	default:
		return "Phone number"
	}
}

type payForm struct {
	method    payMethod
	recipient string
	amount    string
	note      string
	auto      bool
	scanned   bool
	field     int // 0 recipient, 1 amount, 2 note
}

type addForm struct {
	date     string
	time     string
	amount   string
	merchant string
	note     string
	category string
	auto     bool
	field    int // 0 date, 1 time, 2 amount, 3 merchant, 4 note, 5 category
}

type budgetForm struct {
	categories []string
	values     []string
	field      int
}

type transferForm struct {
	devices []string
	device  int
	amount  string
	note    string
	field   int // 0 device, 1 amount, 2 note
}

type keyMap struct {
	ForceQuit key.Binding
	Back      key.Binding
	Next      key.Binding
	Prev      key.Binding
	Submit    key.Binding
	Toggle    key.Binding
	Method    key.Binding
	Scan      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Toggle:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle auto-categorize")),
		Method:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "switch method")),
		Scan:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "scan / search")),
	}
}

func New(ctx context.Context, cfg config.Config, ledgerStore *ledger.Store, budgetStore *budget.Store, limits map[string]float64, sim *payment.Simulator, logger zerolog.Logger, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	return &App{
		ctx:     ctx,
		cfg:     cfg,
		ledger:  ledgerStore,
		budgets: budgetStore,
		sim:     sim,
		log:     logger,
		tz:      tz,
		state:   viewHome,
		keys:    defaultKeyMap(),
		limits:  limits,
		width:   80,
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if key.Matches(m, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.busy {
			return a, nil
		}
		switch a.state {
		case viewPay:
			return a.handlePayKey(m)
		case viewAdd:
			return a.handleAddKey(m)
		case viewBudgets:
			return a.handleBudgetsKey(m)
		case viewTransfer:
			return a.handleTransferKey(m)
		case viewAbout:
			return a.handleAboutKey(m)
		default:
			return a.handleHomeKey(m)
		}
	case paidMsg:
		a.busy = false
		a.status = okStyle.Render("Sent " + a.money(m.r.Amount) + " to " + m.r.Recipient + " (simulated). Recorded as " + m.r.Category + ". Ref " + shortRef(m.r.Reference))
	case transferredMsg:
		a.busy = false
		a.status = okStyle.Render("Simulated " + a.money(m.r.Amount) + " sent to " + m.r.Recipient + ". Recorded locally. Ref " + shortRef(m.r.Reference))
	case devicesMsg:
		a.busy = false
		a.transfer.devices = []string(m)
		a.status = okStyle.Render("Devices found: " + strings.Join(a.transfer.devices, ", "))
	case reloadedMsg:
		a.ledger.Replace(m.records)
		if m.limits != nil {
			a.limits = m.limits
		}
	case errMsg:
		a.busy = false
		a.status = errStyle.Render("error: " + m.Error())
	}
	return a, nil
}

// reload re-reads both backing files off the event loop. The command works on
// a fresh store and sends the result back in the message; the shared state is
// only swapped in when Update applies it.
func (a *App) reload() tea.Cmd {
	fresh := ledger.NewStore(a.cfg.LedgerPath(), a.log)
	budgets := a.budgets
	return func() tea.Msg {
		if _, err := fresh.Load(); err != nil {
			return errMsg{err}
		}
		limits, _, err := budgets.Load()
		if err != nil {
			return errMsg{err}
		}
		return reloadedMsg{records: fresh.Records(), limits: limits}
	}
}

func (a *App) goHome() (tea.Model, tea.Cmd) {
	a.state = viewHome
	a.status = ""
	return a, a.reload()
}

func (a *App) handleHomeKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "p":
		a.state = viewPay
		a.pay = payForm{note: "Payment via SmartSpend", auto: true}
		a.status = ""
	case "a":
		now := time.Now().In(a.tz)
		a.state = viewAdd
		a.add = addForm{date: now.Format("2006-01-02"), time: now.Format("15:04"), auto: true}
		a.status = ""
	case "b":
		a.state = viewBudgets
		a.budgetFm = newBudgetForm(a.limits)
		a.status = ""
	case "o":
		a.state = viewTransfer
		a.transfer = transferForm{note: "Split dinner", amount: "50"}
		a.status = ""
	case "?":
		a.state = viewAbout
		a.status = ""
	case "r":
		return a, a.reload()
	}
	return a, nil
}

func (a *App) handleAboutKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "esc":
		return a.goHome()
	}
	return a, nil
}

func (a *App) handlePayKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.pay
	switch {
	case key.Matches(m, a.keys.Back):
		return a.goHome()
	case key.Matches(m, a.keys.Method):
		f.method = (f.method + 1) % 3
		f.recipient = ""
		f.scanned = false
		f.field = 0
		return a, nil
	case key.Matches(m, a.keys.Toggle):
		f.auto = !f.auto
		return a, nil
	case key.Matches(m, a.keys.Scan):
		if f.method == methodQR {
			f.recipient = a.sim.ScanQR()
			f.scanned = true
			a.status = okStyle.Render("Scanned: " + f.recipient + " (simulated)")
		}
		return a, nil
	case key.Matches(m, a.keys.Next):
		f.field = (f.field + 1) % 3
		return a, nil
	case key.Matches(m, a.keys.Prev):
		f.field = (f.field + 2) % 3
		return a, nil
	case key.Matches(m, a.keys.Submit):
		return a.submitPay()
	}

	switch f.field {
	case 0:
		if f.method != methodQR {
			f.recipient = editField(f.recipient, m)
		}
	case 1:
		f.amount = editField(f.amount, m)
	case 2:
		f.note = editField(f.note, m)
	}
	return a, nil
}

func (a *App) submitPay() (tea.Model, tea.Cmd) {
	f := &a.pay
	recipient := strings.TrimSpace(f.recipient)
	valid := false
	switch f.method {
	case methodPhone:
		valid = payment.ValidPhone(recipient)
	case methodUPI:
		valid = payment.ValidUPI(recipient)
	case methodQR:
		valid = f.scanned
	}
	if !valid {
		a.status = errStyle.Render("Please enter a valid phone number / UPI ID / scan a QR image.")
		return a, nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(f.amount), 64)
	if err != nil || amount <= 0 {
		a.status = errStyle.Render("Enter a positive amount.")
		return a, nil
	}

	a.busy = true
	a.status = "Processing payment (simulated)..."
	note, auto := f.note, f.auto
	return a, func() tea.Msg {
		r, err := a.sim.Pay(a.ctx, recipient, amount, note, auto)
		if err != nil {
			return errMsg{err}
		}
		return paidMsg{r: r}
	}
}

func (a *App) handleAddKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.add
	fields := 5
	if !f.auto {
		fields = 6
	}
	switch {
	case key.Matches(m, a.keys.Back):
		return a.goHome()
	case key.Matches(m, a.keys.Toggle):
		f.auto = !f.auto
		if f.auto && f.field == 5 {
			f.field = 4
		}
		return a, nil
	case key.Matches(m, a.keys.Next):
		f.field = (f.field + 1) % fields
		return a, nil
	case key.Matches(m, a.keys.Prev):
		f.field = (f.field + fields - 1) % fields
		return a, nil
	case key.Matches(m, a.keys.Submit):
		return a.submitAdd()
	}

	switch f.field {
	case 0:
		f.date = editField(f.date, m)
	case 1:
		f.time = editField(f.time, m)
	case 2:
		f.amount = editField(f.amount, m)
	case 3:
		f.merchant = editField(f.merchant, m)
	case 4:
		f.note = editField(f.note, m)
	case 5:
		f.category = editField(f.category, m)
	}
	return a, nil
}

func (a *App) submitAdd() (tea.Model, tea.Cmd) {
	f := &a.add
	amount, err := strconv.ParseFloat(strings.TrimSpace(f.amount), 64)
	if err != nil || amount < 0 {
		a.status = errStyle.Render("Enter a non-negative amount.")
		return a, nil
	}

	// Malformed timestamps are stored as typed; they simply drop out of
	// date-scoped aggregates.
	stamp := strings.TrimSpace(f.date + " " + f.time)
	if t, ok := ledger.ParseDate(f.date + " " + f.time + ":00"); ok {
		stamp = t.Format(ledger.SavedLayout)
	} else {
		a.log.Debug().Str("stamp", stamp).Msg("expense saved with unparseable timestamp")
	}

	category := classify.CatchAll
	if f.auto {
		category = classify.Categorize(f.note, f.merchant)
	} else {
		category = classify.Canonical(f.category)
	}

	a.ledger.Append(ledger.Record{Date: stamp, Amount: amount, Note: f.note, Merchant: f.merchant, Category: category})
	if err := a.ledger.Save(); err != nil {
		a.status = errStyle.Render("error: " + err.Error())
		return a, nil
	}
	a.status = okStyle.Render("Saved " + a.money(amount) + " as " + category)
	now := time.Now().In(a.tz)
	a.add = addForm{date: now.Format("2006-01-02"), time: now.Format("15:04"), auto: f.auto}
	return a, nil
}

func newBudgetForm(limits map[string]float64) budgetForm {
	cats := classify.Defaults()
	values := make([]string, len(cats))
	for i, c := range cats {
		values[i] = strconv.FormatFloat(limits[c], 'f', 2, 64)
	}
	return budgetForm{categories: cats, values: values}
}

func (a *App) handleBudgetsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.budgetFm
	switch {
	case key.Matches(m, a.keys.Back):
		return a.goHome()
	case key.Matches(m, a.keys.Next):
		f.field = (f.field + 1) % len(f.categories)
		return a, nil
	case key.Matches(m, a.keys.Prev):
		f.field = (f.field + len(f.categories) - 1) % len(f.categories)
		return a, nil
	case key.Matches(m, a.keys.Submit):
		return a.submitBudgets()
	}
	f.values[f.field] = editField(f.values[f.field], m)
	return a, nil
}

func (a *App) submitBudgets() (tea.Model, tea.Cmd) {
	f := &a.budgetFm
	limits := make(map[string]float64, len(f.categories))
	for i, c := range f.categories {
		raw := strings.TrimSpace(f.values[i])
		if raw == "" {
			raw = "0"
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			a.status = errStyle.Render("Invalid limit for " + c + ".")
			f.field = i
			return a, nil
		}
		limits[c] = v
	}
	if err := a.budgets.Save(limits); err != nil {
		a.status = errStyle.Render("error: " + err.Error())
		return a, nil
	}
	a.limits = limits
	a.budgetFm = newBudgetForm(limits)
	a.status = okStyle.Render("Budgets saved.")
	return a, nil
}

func (a *App) handleTransferKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.transfer
	switch {
	case key.Matches(m, a.keys.Back):
		return a.goHome()
	case key.Matches(m, a.keys.Scan):
		a.busy = true
		a.status = "Searching devices..."
		return a, func() tea.Msg {
			devices, err := a.sim.SearchDevices(a.ctx)
			if err != nil {
				return errMsg{err}
			}
			return devicesMsg(devices)
		}
	case key.Matches(m, a.keys.Next):
		f.field = (f.field + 1) % 3
		return a, nil
	case key.Matches(m, a.keys.Prev):
		f.field = (f.field + 2) % 3
		return a, nil
	case key.Matches(m, a.keys.Submit):
		return a.submitTransfer()
	}

	if f.field == 0 && len(f.devices) > 0 {
		switch m.String() {
		case "left":
			f.device = (f.device + len(f.devices) - 1) % len(f.devices)
		case "right":
			f.device = (f.device + 1) % len(f.devices)
		}
		return a, nil
	}
	switch f.field {
	case 1:
		f.amount = editField(f.amount, m)
	case 2:
		f.note = editField(f.note, m)
	}
	return a, nil
}

func (a *App) submitTransfer() (tea.Model, tea.Cmd) {
	f := &a.transfer
	if len(f.devices) == 0 {
		a.status = errStyle.Render("Search for nearby devices first (ctrl+s).")
		return a, nil
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(f.amount), 64)
	if err != nil || amount <= 0 {
		a.status = errStyle.Render("Enter a positive amount.")
		return a, nil
	}

	device := f.devices[f.device]
	note := f.note
	a.busy = true
	a.status = "Establishing secure channel (simulated)..."
	return a, func() tea.Msg {
		r, err := a.sim.Transfer(a.ctx, device, amount, note)
		if err != nil {
			return errMsg{err}
		}
		return transferredMsg{r: r}
	}
}

// editField applies one keystroke to a plain text field.
func editField(value string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(value) > 0 {
			value = value[:len(value)-1]
		}
	case tea.KeySpace:
		value += " "
	case tea.KeyRunes:
		value += string(msg.Runes)
	}
	return value
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}

// messages
type paidMsg struct{ r payment.Receipt }

type transferredMsg struct{ r payment.Receipt }

type devicesMsg []string

type reloadedMsg struct {
	records []ledger.Record
	limits  map[string]float64
}

type errMsg struct{ error }
