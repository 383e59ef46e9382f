package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var columns = []string{"date", "amount", "note", "merchant", "category"}

// Store is the CSV-backed transaction table. Single writer, single reader;
// records are immutable once appended.
type Store struct {
	path    string
	log     zerolog.Logger
	records []Record
}

// LoadInfo reports how Load resolved the backing file.
type LoadInfo struct {
	FirstRun bool // file was absent and has been initialized
	Reset    bool // file was unreadable, deleted, and reinitialized
	Rows     int
}

func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, log: logger}
}

// Load reads the backing file. An absent file is first-run: an empty table is
// created and persisted. An unreadable file is deleted and reset to empty.
// Missing columns are backfilled empty; malformed cells are tolerated.
func (s *Store) Load() (LoadInfo, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.records = nil
		if err := s.Save(); err != nil {
			return LoadInfo{}, fmt.Errorf("initialize ledger: %w", err)
		}
		s.log.Info().Str("path", s.path).Msg("ledger initialized")
		return LoadInfo{FirstRun: true}, nil
	}
	if err != nil {
		return LoadInfo{}, fmt.Errorf("open ledger: %w", err)
	}

	rows, readErr := readTable(f)
	f.Close()
	if readErr != nil {
		s.log.Warn().Err(readErr).Str("path", s.path).Msg("ledger unreadable, resetting to empty")
		if err := os.Remove(s.path); err != nil {
			return LoadInfo{}, fmt.Errorf("remove corrupt ledger: %w", err)
		}
		s.records = nil
		if err := s.Save(); err != nil {
			return LoadInfo{}, fmt.Errorf("reinitialize ledger: %w", err)
		}
		return LoadInfo{Reset: true}, nil
	}

	s.records = s.tableToRecords(rows)
	return LoadInfo{Rows: len(s.records)}, nil
}

func readTable(r io.Reader) ([][]string, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	return csvr.ReadAll()
}

// tableToRecords maps rows onto the fixed column set. The first row is the
// header; columns it omits are backfilled empty for every record.
func (s *Store) tableToRecords(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{
			Date:     cell(row, "date"),
			Note:     cell(row, "note"),
			Merchant: cell(row, "merchant"),
			Category: cell(row, "category"),
		}
		if raw := strings.TrimSpace(cell(row, "amount")); raw != "" {
			amt, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				s.log.Debug().Str("amount", raw).Msg("unparseable amount kept as zero")
			} else {
				rec.Amount = amt
			}
		}
		out = append(out, rec)
	}
	return out
}

// Append adds a record to the in-memory table only. Call Save to persist.
func (s *Store) Append(r Record) {
	s.records = append(s.records, r)
}

// Save rewrites the whole backing file. Each timestamp is normalized to
// SavedLayout; values no layout accepts are written empty.
func (s *Store) Save() error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range s.records {
		date := ""
		if t, ok := ParseDate(r.Date); ok {
			date = t.Format(SavedLayout)
		} else if strings.TrimSpace(r.Date) != "" {
			s.log.Debug().Str("date", r.Date).Msg("unparseable date written empty")
		}
		row := []string{date, strconv.FormatFloat(r.Amount, 'f', 2, 64), r.Note, r.Merchant, r.Category}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Replace swaps the in-memory table wholesale. Callers hand over ownership of
// records.
func (s *Store) Replace(records []Record) {
	s.records = records
}

// Records returns the in-memory table.
func (s *Store) Records() []Record {
	return s.records
}

// TotalSpent sums every amount, lifetime.
func (s *Store) TotalSpent() float64 {
	var total float64
	for _, r := range s.records {
		total += r.Amount
	}
	return total
}

// TotalsByCategory sums amounts grouped by category label.
func (s *Store) TotalsByCategory() map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range s.records {
		totals[r.Category] += r.Amount
	}
	return totals
}

// MonthTotal sums amounts whose parsed date falls in now's calendar month and
// year. Unparseable dates are excluded.
func (s *Store) MonthTotal(now time.Time) float64 {
	var total float64
	for _, r := range s.records {
		t, ok := ParseDate(r.Date)
		if !ok {
			continue
		}
		if t.Year() == now.Year() && t.Month() == now.Month() {
			total += r.Amount
		}
	}
	return total
}

// Recent returns up to n records, newest first. Records with unparseable
// dates sort last.
func (s *Store) Recent(n int) []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := ParseDate(out[i].Date)
		tj, _ := ParseDate(out[j].Date)
		return ti.After(tj)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
