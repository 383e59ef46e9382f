package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/rs/zerolog"

	"github.com/tejav/smartspend/internal/classify"
)

// Limits within this relative tolerance of spend do not count as exceeded.
const closeRelTolerance = 1e-9

// Store is the JSON-backed category -> monthly limit mapping.
type Store struct {
	path string
	log  zerolog.Logger
}

// LoadInfo reports how Load resolved the backing file.
type LoadInfo struct {
	FirstRun bool // file was absent and has been initialized
	Fallback bool // file was unreadable; defaults used, file left untouched
}

func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, log: logger}
}

// Load reads the mapping and backfills every default category with a zero
// limit. An absent file is initialized with all-zero limits and persisted; an
// unreadable one falls back to all-zero limits in memory without touching the
// file on disk.
func (s *Store) Load() (map[string]float64, LoadInfo, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		limits := zeroLimits()
		if err := s.Save(limits); err != nil {
			return nil, LoadInfo{}, fmt.Errorf("initialize budgets: %w", err)
		}
		s.log.Info().Str("path", s.path).Msg("budgets initialized")
		return limits, LoadInfo{FirstRun: true}, nil
	}
	if err != nil {
		return nil, LoadInfo{}, fmt.Errorf("read budgets: %w", err)
	}

	limits := map[string]float64{}
	if err := json.Unmarshal(data, &limits); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("budgets unreadable, using defaults")
		return zeroLimits(), LoadInfo{Fallback: true}, nil
	}
	for _, c := range classify.Defaults() {
		if _, ok := limits[c]; !ok {
			limits[c] = 0
		}
	}
	return limits, LoadInfo{}, nil
}

// Save fully overwrites the backing file with the supplied mapping. Omitted
// categories lose their stored limit; callers submit the full default set.
func (s *Store) Save(limits map[string]float64) error {
	data, err := json.MarshalIndent(limits, "", "  ")
	if err != nil {
		return fmt.Errorf("encode budgets: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write budgets: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace budgets: %w", err)
	}
	return nil
}

func zeroLimits() map[string]float64 {
	limits := make(map[string]float64)
	for _, c := range classify.Defaults() {
		limits[c] = 0
	}
	return limits
}

// Alert flags one category whose spend exceeded its limit.
type Alert struct {
	Category  string
	Overshoot float64
}

// Alerts compares per-category spend against positive limits, in default
// category order. A category alerts only when spend strictly exceeds its
// limit beyond floating-point tolerance.
func Alerts(limits, spent map[string]float64) []Alert {
	var out []Alert
	for _, c := range classify.Defaults() {
		limit := limits[c]
		if limit <= 0 {
			continue
		}
		s := spent[c]
		if s > limit && !isClose(s, limit) {
			out = append(out, Alert{Category: c, Overshoot: s - limit})
		}
	}
	return out
}

// ActiveTotal sums all positive limits.
func ActiveTotal(limits map[string]float64) float64 {
	var total float64
	for _, v := range limits {
		if v > 0 {
			total += v
		}
	}
	return total
}

// RemainingTotal sums what is left under each limit, floored at zero.
func RemainingTotal(limits, spent map[string]float64) float64 {
	var total float64
	for c, limit := range limits {
		if rem := limit - spent[c]; rem > 0 {
			total += rem
		}
	}
	return total
}

func isClose(a, b float64) bool {
	return math.Abs(a-b) <= closeRelTolerance*math.Max(math.Abs(a), math.Abs(b))
}
