// Package tips turns a month-over-month comparison into short advisory
// messages.
package tips

import (
	"fmt"
	"math"
	"sort"

	"smartspend/internal/core"
)

// FirstMonthTip is the only tip shown when there is no previous month to
// compare against.
const FirstMonthTip = "This is your first month tracking expenses!"

const (
	overallThreshold  = 10.0
	categoryThreshold = 20.0
	dominantShare     = 30
	maxCategoryTips   = 3
	trackTip          = "💡 Track your expenses consistently for more personalized insights!"
)

// Period is the slice of a monthly bucket the generator reads.
type Period struct {
	Total      core.Money
	Categories map[core.Category]core.Money
}

// Generate returns the tips for current versus previous. differences holds
// per-category percentage changes. previous.Total must be positive.
func Generate(differences map[core.Category]float64, current, previous Period) []string {
	var out []string

	overall := (current.Total.Float() - previous.Total.Float()) / previous.Total.Float() * 100
	switch {
	case overall > overallThreshold:
		out = append(out, fmt.Sprintf("💸 Your overall spending increased by %d%% this month. Consider reviewing your budget.", round(overall)))
	case overall < -overallThreshold:
		out = append(out, fmt.Sprintf("💰 Great job! You've reduced your overall spending by %d%% this month.", round(math.Abs(overall))))
	}

	for _, c := range significant(differences) {
		change := differences[c]
		switch {
		case change > 0 && current.Categories[c].Cents > 0:
			out = append(out, increaseTip(c, round(change)))
		case change < 0:
			out = append(out, decreaseTip(c, round(math.Abs(change))))
		}
	}

	if len(out) < 2 {
		if c, amount, ok := topCategory(current.Categories); ok && current.Total.Cents > 0 {
			share := round(amount.Float() / current.Total.Float() * 100)
			if share > dominantShare {
				out = append(out, fmt.Sprintf("📊 %s makes up %d%% of your monthly spending. Consider if this aligns with your priorities.", c, share))
			}
		}
	}

	if len(out) == 0 {
		out = append(out, trackTip)
	}
	return out
}

// significant returns up to three categories whose change exceeds the
// threshold, largest magnitude first.
func significant(differences map[core.Category]float64) []core.Category {
	var cats []core.Category
	for c, d := range differences {
		if math.Abs(d) > categoryThreshold {
			cats = append(cats, c)
		}
	}
	sort.Slice(cats, func(i, j int) bool {
		a, b := math.Abs(differences[cats[i]]), math.Abs(differences[cats[j]])
		if a != b {
			return a > b
		}
		return cats[i] < cats[j]
	})
	if len(cats) > maxCategoryTips {
		cats = cats[:maxCategoryTips]
	}
	return cats
}

func topCategory(categories map[core.Category]core.Money) (core.Category, core.Money, bool) {
	var (
		best   core.Category
		amount core.Money
		found  bool
	)
	for c, m := range categories {
		if !found || m.Cents > amount.Cents || (m.Cents == amount.Cents && c < best) {
			best, amount, found = c, m, true
		}
	}
	return best, amount, found
}

// round rounds half up, matching how percentages are displayed.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
