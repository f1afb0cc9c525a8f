package records

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// priceTolerance is how far a recorded fill price may sit from a quoted
// reference price and still count as the same lot.
const priceTolerance = 0.02

// symbolDistance is the maximum normalized levenshtein distance for a
// loose symbol mention to resolve against a recorded symbol.
const symbolDistance = 0.4

// NormalizeSymbol uppercases a ticker and pins the .US market suffix.
func NormalizeSymbol(ticker string) string {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, ".US") {
		s += ".US"
	}
	return s
}

// ParseRatio turns a sell-quantity phrase into a fraction of the held lot.
// "all" and empty mean everything, "1/2" and "50%" mean half. Anything
// unparseable falls back to everything.
func ParseRatio(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return 1.0
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n := parseFloat(num)
		d := parseFloat(den)
		if n > 0 && d > 0 {
			return n / d
		}
		return 1.0
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		if p := parseFloat(pct); p > 0 {
			return p / 100.0
		}
		return 1.0
	}
	return 1.0
}

// DayFromLabel resolves a relative day mention ("yesterday", "today",
// "friday") to a calendar date, walking back to the most recent matching
// weekday. ok is false when the label names no recognizable day.
func DayFromLabel(label string, today time.Time) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return time.Time{}, false
	}
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	switch {
	case strings.Contains(s, "yesterday"):
		return day(today.AddDate(0, 0, -1)), true
	case strings.Contains(s, "today"):
		return day(today), true
	}
	weekdays := []struct {
		name string
		wd   time.Weekday
	}{
		{"friday", time.Friday},
		{"thursday", time.Thursday},
		{"wednesday", time.Wednesday},
		{"tuesday", time.Tuesday},
		{"monday", time.Monday},
	}
	for _, w := range weekdays {
		if strings.Contains(s, w.name) {
			d := day(today)
			for d.Weekday() != w.wd {
				d = d.AddDate(0, 0, -1)
			}
			return d, true
		}
	}
	return time.Time{}, false
}

// SellQuery describes a sell request phrased relative to earlier buys.
type SellQuery struct {
	Symbol string
	// RefPrice filters buy fills to those within priceTolerance of it.
	// Zero means no price filter.
	RefPrice float64
	// RefLabel filters buy fills to a relative day ("yesterday", "friday").
	RefLabel string
	// Ratio is the fraction phrase ("all", "1/2", "50%").
	Ratio string
	// Today anchors RefLabel resolution. Zero means the current date.
	Today time.Time
}

// ResolveSellQuantity sums the buy fills matching the query's reference
// price and day, then applies the ratio. It returns 0 when no recorded
// buy matches.
func (s *Store) ResolveSellQuantity(ctx context.Context, q SellQuery) (int64, error) {
	if q.Symbol == "" {
		return 0, nil
	}
	trades, err := s.BySymbol(ctx, q.Symbol)
	if err != nil {
		return 0, err
	}

	today := q.Today
	if today.IsZero() {
		today = time.Now()
	}
	targetDay, byDay := DayFromLabel(q.RefLabel, today)

	var total int64
	for _, t := range trades {
		if t.Side != "BUY" || !t.Filled() {
			continue
		}
		if q.RefPrice > 0 && t.Price != nil {
			if diff := *t.Price - q.RefPrice; diff > priceTolerance || diff < -priceTolerance {
				continue
			}
		}
		if byDay {
			at := t.SubmittedAt.In(targetDay.Location())
			if at.Year() != targetDay.Year() || at.YearDay() != targetDay.YearDay() {
				continue
			}
		}
		total += t.Shares()
	}
	if total <= 0 {
		return 0, nil
	}
	return int64(float64(total) * ParseRatio(q.Ratio)), nil
}

// ResolveSymbol matches a loose ticker mention against the recorded
// symbols, tolerating typos up to symbolDistance. An exact normalized
// match wins; otherwise the closest fuzzy candidate does.
func ResolveSymbol(mention string, known []string) (string, bool) {
	norm := NormalizeSymbol(mention)
	if norm == "" {
		return "", false
	}
	best := ""
	bestScore := symbolDistance
	for _, sym := range known {
		if sym == norm {
			return sym, true
		}
		dist := levenshtein.ComputeDistance(trimMarket(norm), trimMarket(sym))
		maxlen := len(trimMarket(norm))
		if n := len(trimMarket(sym)); n > maxlen {
			maxlen = n
		}
		if maxlen == 0 {
			continue
		}
		if score := float64(dist) / float64(maxlen); score < bestScore {
			best, bestScore = sym, score
		}
	}
	return best, best != ""
}

func trimMarket(sym string) string {
	return strings.TrimSuffix(sym, ".US")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
