package taxonomy

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/tcua/price-index-service/internal/models"
)

// ConfigurationError reports a malformed taxonomy file. It is fatal: a run
// must abort before processing any listing.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "taxonomy configuration error: " + e.Reason
}

// Rule maps a pattern to a (category, generation). Patterns match
// case-insensitively against a listing's name or raw info; substring by
// default, full regular expression when Regex is set. Exclude keywords veto
// a positive match, and PriceRange ([min, max]) rejects listings priced
// outside the plausible band for the generation, so accessories that mention
// a product name never reach the index.
type Rule struct {
	Pattern    string    `yaml:"pattern"`
	Category   string    `yaml:"category"`
	Generation string    `yaml:"generation"`
	Priority   int       `yaml:"priority"`
	Regex      bool      `yaml:"regex,omitempty"`
	Exclude    []string  `yaml:"exclude,omitempty"`
	PriceRange []float64 `yaml:"price_range,omitempty,flow"`

	// set at load time
	lowered        string
	re             *regexp.Regexp
	excludeLowered []string
	minPrice       decimal.Decimal
	maxPrice       decimal.Decimal
	hasPriceRange  bool
}

// Matches reports whether the rule's pattern occurs in the given text.
// The text is expected to be lowercased already.
func (r *Rule) Matches(lowered string) bool {
	if r.re != nil {
		return r.re.MatchString(lowered)
	}
	return strings.Contains(lowered, r.lowered)
}

// Excludes reports whether any of the rule's exclusion keywords occurs in
// the given lowercased text.
func (r *Rule) Excludes(lowered string) bool {
	for _, kw := range r.excludeLowered {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// PriceInRange reports whether a price falls inside the rule's price range.
// Rules without a range accept any price.
func (r *Rule) PriceInRange(price decimal.Decimal) bool {
	if !r.hasPriceRange {
		return true
	}
	return price.GreaterThanOrEqual(r.minPrice) && price.LessThanOrEqual(r.maxPrice)
}

// Outcome returns the classification this rule assigns.
func (r *Rule) Outcome() models.Classification {
	return models.Classification{Category: r.Category, Generation: r.Generation}
}

// RuleSet is an ordered taxonomy: rules sorted by descending priority, ties
// broken by declaration order in the source file. The order is fixed at load
// time so classification is deterministic and reproducible.
type RuleSet struct {
	Rules       []*Rule
	NoiseTokens []string

	globalExclusions []string
}

// ExcludedGlobally reports whether the given lowercased text hits a global
// exclusion keyword. Such listings never match any rule.
func (rs *RuleSet) ExcludedGlobally(lowered string) bool {
	for _, kw := range rs.globalExclusions {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

type fileFormat struct {
	NoiseTokens      []string `yaml:"noise_tokens"`
	GlobalExclusions []string `yaml:"global_exclusions"`
	Rules            []*Rule  `yaml:"rules"`
}

// Load reads and validates a taxonomy YAML file.
func Load(path string) (*RuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}
	return Parse(b)
}

// Parse validates raw YAML taxonomy content and fixes the evaluation order.
func Parse(b []byte) (*RuleSet, error) {
	var f fileFormat
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid yaml: %v", err)}
	}
	if len(f.Rules) == 0 {
		return nil, &ConfigurationError{Reason: "no rules defined"}
	}

	for i, r := range f.Rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d has an empty pattern", i)}
		}
		if r.Category != models.CategoryGPU && r.Category != models.CategoryRAM {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d has unknown category %q", i, r.Category)}
		}
		if strings.TrimSpace(r.Generation) == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d has an empty generation", i)}
		}
		if r.Regex {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d has invalid regex %q: %v", i, r.Pattern, err)}
			}
			r.re = re
		} else {
			r.lowered = strings.ToLower(r.Pattern)
		}
		for _, kw := range r.Exclude {
			if strings.TrimSpace(kw) == "" {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d has an empty exclusion keyword", i)}
			}
			r.excludeLowered = append(r.excludeLowered, strings.ToLower(kw))
		}
		switch len(r.PriceRange) {
		case 0:
		case 2:
			if r.PriceRange[0] < 0 || r.PriceRange[1] < r.PriceRange[0] {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d has invalid price_range [%v, %v]", i, r.PriceRange[0], r.PriceRange[1])}
			}
			r.minPrice = decimal.NewFromFloat(r.PriceRange[0])
			r.maxPrice = decimal.NewFromFloat(r.PriceRange[1])
			r.hasPriceRange = true
		default:
			return nil, &ConfigurationError{Reason: fmt.Sprintf("rule %d price_range must be [min, max], got %d elements", i, len(r.PriceRange))}
		}
	}

	var global []string
	for i, kw := range f.GlobalExclusions {
		if strings.TrimSpace(kw) == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("global exclusion %d is empty", i)}
		}
		global = append(global, strings.ToLower(kw))
	}

	// Descending priority; declaration order breaks ties.
	sort.SliceStable(f.Rules, func(i, j int) bool {
		return f.Rules[i].Priority > f.Rules[j].Priority
	})

	return &RuleSet{Rules: f.Rules, NoiseTokens: f.NoiseTokens, globalExclusions: global}, nil
}
