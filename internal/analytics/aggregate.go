// Package analytics derives monthly totals, category breakdowns and the
// month-over-month comparison from the active expenses.
package analytics

import (
	"sort"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/tips"
)

type MonthlyTotal struct {
	Month      core.MonthKey                `json:"month"`
	Total      core.Money                   `json:"total"`
	Categories map[core.Category]core.Money `json:"categories"`
}

type CategoryTotal struct {
	Category   core.Category `json:"category"`
	Total      core.Money    `json:"total"`
	Percentage float64       `json:"percentage"`
}

// MonthlyComparison compares the current month with the one before it.
// PreviousMonth is nil for a first month.
type MonthlyComparison struct {
	CurrentMonth  MonthlyTotal              `json:"currentMonth"`
	PreviousMonth *MonthlyTotal             `json:"previousMonth"`
	Differences   map[core.Category]float64 `json:"differences"`
	Tips          []string                  `json:"tips"`
}

// Snapshot is every derived value for one state of the expense list.
type Snapshot struct {
	Months            map[core.MonthKey]MonthlyTotal `json:"months"`
	CurrentMonth      core.MonthKey                  `json:"currentMonth"`
	CategoryTotals    []CategoryTotal                `json:"categoryTotals"`
	CurrentMonthTotal core.Money                     `json:"currentMonthTotal"`
	Comparison        *MonthlyComparison             `json:"comparison"`
}

// MonthlyTotals buckets expenses by calendar month in one pass.
func MonthlyTotals(expenses []core.Expense) map[core.MonthKey]MonthlyTotal {
	months := make(map[core.MonthKey]MonthlyTotal)
	for _, e := range expenses {
		key := e.Date.MonthKey()
		m, ok := months[key]
		if !ok {
			m = MonthlyTotal{Month: key, Categories: make(map[core.Category]core.Money)}
		}
		m.Total = m.Total.Add(e.Amount)
		m.Categories[e.Category] = m.Categories[e.Category].Add(e.Amount)
		months[key] = m
	}
	return months
}

// CategoryTotals breaks one month down by category, largest first.
func CategoryTotals(m MonthlyTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(m.Categories))
	for c, total := range m.Categories {
		ct := CategoryTotal{Category: c, Total: total}
		if m.Total.Cents > 0 {
			ct.Percentage = float64(total.Cents) / float64(m.Total.Cents) * 100
		}
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Compare builds the comparison for the month containing now. It returns
// nil when the current month has no expenses.
func Compare(months map[core.MonthKey]MonthlyTotal, now time.Time) *MonthlyComparison {
	key := core.MonthOf(now)
	current, ok := months[key]
	if !ok {
		return nil
	}

	previous, ok := months[key.Prev()]
	if !ok || previous.Total.Cents <= 0 {
		return &MonthlyComparison{
			CurrentMonth: current,
			Differences:  map[core.Category]float64{},
			Tips:         []string{tips.FirstMonthTip},
		}
	}

	diffs := Differences(current, previous)
	return &MonthlyComparison{
		CurrentMonth:  current,
		PreviousMonth: &previous,
		Differences:   diffs,
		Tips:          tips.Generate(diffs, period(current), period(previous)),
	}
}

// Differences returns the percentage change per category over the union of
// both months. A category new this month counts as +100.
func Differences(current, previous MonthlyTotal) map[core.Category]float64 {
	diffs := make(map[core.Category]float64)
	seen := make(map[core.Category]struct{})
	for c := range current.Categories {
		seen[c] = struct{}{}
	}
	for c := range previous.Categories {
		seen[c] = struct{}{}
	}
	for c := range seen {
		cur, prev := current.Categories[c].Cents, previous.Categories[c].Cents
		if cur <= 0 && prev <= 0 {
			continue
		}
		if prev == 0 {
			diffs[c] = 100
			continue
		}
		diffs[c] = float64(cur-prev) / float64(prev) * 100
	}
	return diffs
}

func period(m MonthlyTotal) tips.Period {
	return tips.Period{Total: m.Total, Categories: m.Categories}
}

// Compute recomputes every derived value from scratch.
func Compute(expenses []core.Expense, now time.Time) Snapshot {
	months := MonthlyTotals(expenses)
	key := core.MonthOf(now)
	snap := Snapshot{
		Months:         months,
		CurrentMonth:   key,
		CategoryTotals: []CategoryTotal{},
	}
	if current, ok := months[key]; ok {
		snap.CategoryTotals = CategoryTotals(current)
		snap.CurrentMonthTotal = current.Total
		snap.Comparison = Compare(months, now)
	}
	return snap
}
