package matching

import (
	"strings"
)

// canonicalCategories maps free-text category/subcategory keywords from
// distributor feeds onto the canonical catalog taxonomy. The table is fixed:
// unknown inputs fall back to the matcher's configured default category.
var canonicalCategories = map[string]string{
	"whiskey":  "spirits",
	"whisky":   "spirits",
	"bourbon":  "spirits",
	"scotch":   "spirits",
	"rye":      "spirits",
	"vodka":    "spirits",
	"gin":      "spirits",
	"rum":      "spirits",
	"tequila":  "spirits",
	"mezcal":   "spirits",
	"brandy":   "spirits",
	"cognac":   "spirits",
	"liqueur":  "spirits",
	"cordial":  "spirits",
	"wine":     "wine",
	"red":      "wine",
	"white":    "wine",
	"rose":     "wine",
	"sparkling": "wine",
	"champagne": "wine",
	"prosecco":  "wine",
	"sake":      "wine",
	"beer":     "beer",
	"lager":    "beer",
	"ale":      "beer",
	"ipa":      "beer",
	"stout":    "beer",
	"cider":    "beer",
	"seltzer":  "ready_to_drink",
	"cocktail": "ready_to_drink",
	"rtd":      "ready_to_drink",
	"mixer":    "non_alcoholic",
	"soda":     "non_alcoholic",
	"water":    "non_alcoholic",
}

// mapCategory resolves a raw category and subcategory to the canonical pair.
// The raw subcategory wins as the stored subcategory; when the category text
// itself names a style (e.g. "bourbon"), the style becomes the subcategory.
func mapCategory(rawCategory, rawSubcategory, defaultCategory string) (string, string) {
	for _, candidate := range []string{rawSubcategory, rawCategory} {
		for _, token := range strings.Fields(strings.ToLower(candidate)) {
			if canonical, ok := canonicalCategories[token]; ok {
				subcategory := strings.ToLower(strings.TrimSpace(rawSubcategory))
				if subcategory == "" && canonical != token {
					subcategory = token
				}
				return canonical, subcategory
			}
		}
	}
	return defaultCategory, strings.ToLower(strings.TrimSpace(rawSubcategory))
}
