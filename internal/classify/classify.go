package classify

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// CatchAll is the category assigned when nothing else matches.
const CatchAll = "Other"

// rule maps a category to the keyword substrings that select it. Order in the
// table is priority order: the first category with a matching keyword wins.
type rule struct {
	category string
	keywords []string
}

var rules = []rule{
	{"Food", []string{"restaurant", "dine", "cafe", "burger", "pizza", "food", "canteen", "coffee", "tea", "snack", "lunch", "dinner"}},
	{"Shopping", []string{"mall", "amazon", "flipkart", "shopping", "shop", "store", "clothes", "shoes", "cart"}},
	{"Bills", []string{"bill", "electricity", "water", "phone", "dth", "grocery", "rent", "internet", "billpayment"}},
	{"Transport", []string{"uber", "ola", "taxi", "bus", "train", "fuel", "petrol", "metro", "cab", "auto"}},
	{"Entertainment", []string{"movie", "netflix", "spotify", "concert", "game", "cinema", "hotstar"}},
}

// Defaults returns the default category set in priority order, catch-all last.
func Defaults() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, CatchAll)
}

// Categorize picks a category for a transaction from its note and merchant.
// Matching is a case-insensitive substring test over note+merchant; the first
// category in the table with any matching keyword wins.
func Categorize(note, merchant string) string {
	text := strings.ToLower(note + " " + merchant)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(text, k) {
				return r.category
			}
		}
	}
	return CatchAll
}

// Typed category names snap to a default category within this edit distance.
const maxSnapDistance = 2

// Canonical maps a free-typed category name onto the default set. Close
// misspellings ("Fod", "Transprot") snap to the nearest default category;
// anything further away lands in the catch-all.
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CatchAll
	}
	best := CatchAll
	bestDist := maxSnapDistance + 1
	for _, c := range Defaults() {
		if d := levenshtein.ComputeDistance(name, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
