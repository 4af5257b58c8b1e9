package classifier

import (
	"strings"

	"github.com/tcua/price-index-service/internal/models"
	"github.com/tcua/price-index-service/internal/taxonomy"
)

// Classify matches one raw listing against the rule set and returns the
// classification of the first accepting rule in evaluation order. The second
// return value is false when no rule accepts; such listings are excluded
// from identity resolution and aggregation but still count as fetched.
//
// A rule accepts when its pattern occurs in the listing's name or in its raw
// info (each field matched on its own, a pattern never spans the two), no
// exclusion keyword occurs in either field, and the price falls inside the
// rule's range. Globally excluded listings never match any rule.
//
// Classification is a pure function: safe to call from multiple goroutines
// over the same rule set.
func Classify(listing models.RawListing, rules *taxonomy.RuleSet) (models.Classification, bool) {
	name := strings.ToLower(listing.Name)
	info := strings.ToLower(listing.RawInfo)

	if rules.ExcludedGlobally(name) || rules.ExcludedGlobally(info) {
		return models.Classification{}, false
	}

	for _, rule := range rules.Rules {
		if !rule.Matches(name) && !rule.Matches(info) {
			continue
		}
		if rule.Excludes(name) || rule.Excludes(info) {
			continue
		}
		if !rule.PriceInRange(listing.Price) {
			continue
		}
		return rule.Outcome(), true
	}
	return models.Classification{}, false
}
