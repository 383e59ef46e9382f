package payment

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tejav/smartspend/internal/classify"
	"github.com/tejav/smartspend/internal/ledger"
)

// QRRecipient is the identifier a simulated QR scan always yields.
const QRRecipient = "merchant@upi"

// Devices is the fixed discovery result of a simulated nearby-device search.
var Devices = []string{"Rahul Phone", "Sneha Watch", "Teja Wallet"}

var (
	phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	upiPattern   = regexp.MustCompile(`^[.\w-]{2,}@[a-zA-Z]{3,}$`)
)

// ValidPhone reports whether s is a plausible 10-digit mobile number
// (leading digit 6-9).
func ValidPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// ValidUPI reports whether s looks like a UPI id (name@bank).
func ValidUPI(s string) bool {
	return upiPattern.MatchString(strings.TrimSpace(s))
}

// Simulator fabricates payments and offline transfers. No money moves and no
// network is touched: a send validates input, waits for the configured
// latency, and appends one row to the ledger.
type Simulator struct {
	Ledger        *ledger.Store
	PayLatency    time.Duration
	SearchLatency time.Duration
	Log           zerolog.Logger
}

// Receipt describes one completed simulated send. The reference id exists
// only in memory and in the log; the ledger schema has no column for it.
type Receipt struct {
	Reference string
	Recipient string
	Amount    float64
	Category  string
}

// ScanQR fabricates the result of scanning a payment QR code.
func (s *Simulator) ScanQR() string {
	return QRRecipient
}

// Pay records a simulated payment to recipient. The caller validates the
// recipient beforehand; amount must be positive.
func (s *Simulator) Pay(ctx context.Context, recipient string, amount float64, note string, autoCategorize bool) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, fmt.Errorf("amount must be positive, got %.2f", amount)
	}
	if err := s.wait(ctx, s.PayLatency); err != nil {
		return Receipt{}, err
	}

	category := classify.CatchAll
	if autoCategorize {
		category = classify.Categorize(note, recipient)
	}
	rec := ledger.Record{
		Date:     time.Now().Format(ledger.SavedLayout),
		Amount:   amount,
		Note:     note,
		Merchant: recipient,
		Category: category,
	}
	s.Ledger.Append(rec)
	if err := s.Ledger.Save(); err != nil {
		return Receipt{}, fmt.Errorf("record payment: %w", err)
	}

	r := Receipt{Reference: uuid.NewString(), Recipient: recipient, Amount: amount, Category: category}
	s.Log.Info().Str("ref", r.Reference).Str("recipient", recipient).Float64("amount", amount).Str("category", category).Msg("simulated payment recorded")
	return r, nil
}

// SearchDevices simulates nearby-device discovery and returns the fixed
// device list.
func (s *Simulator) SearchDevices(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx, s.SearchLatency); err != nil {
		return nil, err
	}
	out := make([]string, len(Devices))
	copy(out, Devices)
	return out, nil
}

// Transfer records a simulated offline transfer to a nearby device. The row
// lands in the catch-all category with an Offline-> note prefix.
func (s *Simulator) Transfer(ctx context.Context, device string, amount float64, note string) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, fmt.Errorf("amount must be positive, got %.2f", amount)
	}
	if strings.TrimSpace(device) == "" {
		return Receipt{}, fmt.Errorf("no device selected")
	}
	if err := s.wait(ctx, s.PayLatency); err != nil {
		return Receipt{}, err
	}

	rec := ledger.Record{
		Date:     time.Now().Format(ledger.SavedLayout),
		Amount:   amount,
		Note:     "Offline->" + note,
		Merchant: device,
		Category: classify.CatchAll,
	}
	s.Ledger.Append(rec)
	if err := s.Ledger.Save(); err != nil {
		return Receipt{}, fmt.Errorf("record transfer: %w", err)
	}

	r := Receipt{Reference: uuid.NewString(), Recipient: device, Amount: amount, Category: rec.Category}
	s.Log.Info().Str("ref", r.Reference).Str("device", device).Float64("amount", amount).Msg("simulated offline transfer recorded")
	return r, nil
}

// wait blocks for d, honoring cancellation. Latency exists only for UI
// pacing; no work happens underneath.
func (s *Simulator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
