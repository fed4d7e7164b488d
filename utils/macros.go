package utils

import (
	"fmt"
	"strings"
)

// MacroPercentages splits protein/carbs/fats grams into integer percentages
// of total grams. All zeros when there is nothing logged.
func MacroPercentages(protein, carbs, fats float64) (p, c, f int) {
	total := protein + carbs + fats
	if total == 0 {
		return 0, 0, 0
	}
	p = int(protein / total * 100)
	c = int(carbs / total * 100)
	f = int(fats / total * 100)
	return p, c, f
}

// MacroBar renders a 10-step bar for one percentage, e.g. 47% → 4 filled.
func MacroBar(pct int, filled, empty string) string {
	blocks := pct / 10
	if blocks > 10 {
		blocks = 10
	}
	if blocks < 0 {
		blocks = 0
	}
	return strings.Repeat(filled, blocks) + strings.Repeat(empty, 10-blocks)
}

// MacroBars renders the three-bar macro distribution block used in journal
// replies. Empty string when no macros were logged at all.
func MacroBars(protein, carbs, fats float64) string {
	if protein+carbs+fats == 0 {
		return ""
	}
	p, c, f := MacroPercentages(protein, carbs, fats)

	var b strings.Builder
	b.WriteString("\n📊 Macro Distribution:\n")
	fmt.Fprintf(&b, "💪 Prot:  %s %d%%\n", MacroBar(p, "🟥", "⬜"), p)
	fmt.Fprintf(&b, "🍞 Carb:  %s %d%%\n", MacroBar(c, "🟦", "⬜"), c)
	fmt.Fprintf(&b, "🥑 Fat:   %s %d%%", MacroBar(f, "🟧", "⬜"), f)
	return b.String()
}
