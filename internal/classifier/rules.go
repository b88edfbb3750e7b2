package classifier

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dashboard-datagen/internal/errors"
)

const DefaultCategory = "Grocery Items"

// ExactRule maps a known brand-name fragment to a category.
type ExactRule struct {
	Match    string `yaml:"match" json:"match"`
	Category string `yaml:"category" json:"category"`
}

// RuleSet is the full category cascade. Order inside every slice is
// significant: the first matching entry wins.
type RuleSet struct {
	Exact      []ExactRule `yaml:"exact" json:"exact"`
	Keywords   []Rule      `yaml:"keywords" json:"keywords"`
	Heuristics []Rule      `yaml:"heuristics" json:"heuristics"`
	Default    string      `yaml:"default" json:"default"`
}

// DefaultRules returns a fresh copy of the built-in rule set for Philippine
// FMCG brands.
func DefaultRules() RuleSet {
	return RuleSet{
		Exact: []ExactRule{
			{Match: "Oishi", Category: "Snacks"},
			{Match: "Jack 'n Jill", Category: "Snacks"},
			{Match: "Del Monte", Category: "Beverages"},
			{Match: "Surf", Category: "Household"},
			{Match: "Birch Tree", Category: "Dairy"},
			{Match: "Lucky Me!", Category: "Noodles"},
			{Match: "Palmolive", Category: "Personal Care"},
			{Match: "Marlboro", Category: "Cigarettes"},
			{Match: "Winston", Category: "Cigarettes"},
			{Match: "Coca-Cola", Category: "Beverages"},
			{Match: "Nestlé", Category: "Food & Beverage"},
			{Match: "Unilever", Category: "Personal Care"},
			{Match: "P&G", Category: "Household"},
			{Match: "Colgate", Category: "Personal Care"},
			{Match: "Kopiko", Category: "Beverages"},
			{Match: "Rebisco", Category: "Snacks"},
			{Match: "CDO", Category: "Food"},
			{Match: "San Miguel", Category: "Beverages"},
			{Match: "Alaska", Category: "Dairy"},
			{Match: "Monde", Category: "Snacks"},
		},
		Keywords: []Rule{
			{Category: "Snacks", Keywords: []string{"chips", "crackers", "cookies", "biscuits", "wafer", "pretzel", "popcorn", "nuts", "curls", "crisps"}},
			{Category: "Beverages", Keywords: []string{"juice", "soda", "cola", "coffee", "tea", "drink", "water"}},
			{Category: "Dairy", Keywords: []string{"milk", "cheese", "butter", "yogurt", "creamer", "evaporated", "condensed"}},
			{Category: "Noodles", Keywords: []string{"noodle", "pancit", "canton", "ramen", "mami", "bihon"}},
			{Category: "Canned Goods", Keywords: []string{"sardines", "tuna", "corned beef", "luncheon", "vienna"}},
			{Category: "Personal Care", Keywords: []string{"shampoo", "soap", "toothpaste", "lotion", "deodorant", "conditioner", "body wash"}},
			{Category: "Household", Keywords: []string{"detergent", "bleach", "dishwashing", "fabric softener", "cleaner", "insecticide"}},
			{Category: "Cigarettes", Keywords: []string{"cigarette", "menthol"}},
		},
		Heuristics: []Rule{
			{Category: "Confectionery", Keywords: []string{"candy", "chocolate", "gum", "mint", "lollipop", "marshmallow", "toffee"}},
			{Category: "Cooking Essentials", Keywords: []string{"oil", "vinegar", "soy sauce", "salt", "sugar", "seasoning", "ketchup", "sauce", "flour"}},
			{Category: "Paper Products", Keywords: []string{"tissue", "napkin", "diaper", "paper", "wipes"}},
			{Category: "Health & Wellness", Keywords: []string{"vitamin", "medicine", "supplement", "tablet", "capsule", "syrup"}},
		},
		Default: DefaultCategory,
	}
}

// LoadRuleSet decodes a YAML rule set.
func LoadRuleSet(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.NewDecoder(r).Decode(&rs); err != nil {
		return RuleSet{}, errors.ValidationWrap(err, "decode category rules")
	}
	if err := rs.validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

func LoadRuleFile(path string) (RuleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("open category rules: %w", err)
	}
	defer file.Close()

	return LoadRuleSet(file)
}

func (rs RuleSet) validate() error {
	for i, r := range rs.Exact {
		if strings.TrimSpace(r.Match) == "" || strings.TrimSpace(r.Category) == "" {
			return errors.Validation(fmt.Sprintf("exact rule %d needs both match and category", i))
		}
	}
	for i, r := range rs.Keywords {
		if strings.TrimSpace(r.Category) == "" {
			return errors.Validation(fmt.Sprintf("keyword rule %d has no category", i))
		}
	}
	for i, r := range rs.Heuristics {
		if strings.TrimSpace(r.Category) == "" {
			return errors.Validation(fmt.Sprintf("heuristic rule %d has no category", i))
		}
	}
	return nil
}
