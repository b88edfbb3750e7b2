package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dashboard-datagen/internal/errors"
)

func TestClassify_Cascade(t *testing.T) {
	c := New(DefaultRules())

	tests := []struct {
		brand    string
		category string
		stage    Stage
		keyword  string
	}{
		{"Lucky Me! Pancit Canton", "Noodles", StageExact, "Lucky Me!"},
		{"SuperCrunch Chips Deluxe", "Snacks", StageKeyword, "chips"},
		{"Generic Mystery Item", "Grocery Items", StageDefault, ""},
		{"ALASKA evaporated milk", "Dairy", StageExact, "Alaska"},
		{"Fresh Orange Juice", "Beverages", StageKeyword, "juice"},
		{"Golden Sardines in Tomato", "Canned Goods", StageKeyword, "sardines"},
		{"Sweet Lollipop Pops", "Confectionery", StageHeuristic, "lollipop"},
		{"Golden Vinegar", "Cooking Essentials", StageHeuristic, "vinegar"},
		{"Soft Tissue Roll", "Paper Products", StageHeuristic, "tissue"},
		{"Daily Vitamin C", "Health & Wellness", StageHeuristic, "vitamin"},
	}

	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			m := c.Explain(tt.brand)
			require.Equal(t, tt.category, m.Category)
			require.Equal(t, tt.stage, m.Stage)
			require.Equal(t, tt.keyword, m.Keyword)
			require.Equal(t, tt.brand, m.Brand)
			require.Equal(t, tt.category, c.Classify(tt.brand))
		})
	}
}

func TestClassify_ExactBeatsKeyword(t *testing.T) {
	c := New(DefaultRules())

	// "Oishi" is an exact rule for Snacks even though "juice" is a Beverages keyword.
	require.Equal(t, "Snacks", c.Classify("Oishi Smart C Juice"))
}

func TestClassify_TableOrderWins(t *testing.T) {
	c := New(RuleSet{
		Exact: []ExactRule{
			{Match: "Acme", Category: "First"},
			{Match: "Acme Foods", Category: "Second"},
		},
		Keywords: []Rule{
			{Category: "Alpha", Keywords: []string{"bar"}},
			{Category: "Beta", Keywords: []string{"foo", "bar"}},
		},
	})

	require.Equal(t, "First", c.Classify("Acme Foods Inc"))
	require.Equal(t, "Alpha", c.Classify("foo and bar"), "Alpha is checked before Beta")
	require.Equal(t, "Beta", c.Classify("foo only"))
	require.Equal(t, "Alpha", c.Classify("barley"))
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(DefaultRules())
	for _, brand := range []string{"Kopiko Blanca", "Random Thing", "Palmolive Shampoo", "Crunchy Nuts"} {
		require.Equal(t, c.Classify(brand), c.Classify(brand))
	}
}

func TestNew_EmptyDefaultFallsBack(t *testing.T) {
	c := New(RuleSet{})
	require.Equal(t, DefaultCategory, c.Classify("anything"))

	custom := New(RuleSet{Default: "Misc"})
	require.Equal(t, "Misc", custom.Classify("anything"))
}

func TestNew_BlankKeywordsIgnored(t *testing.T) {
	c := New(RuleSet{Keywords: []Rule{{Category: "Everything", Keywords: []string{"", "  "}}}})
	require.Equal(t, DefaultCategory, c.Classify("blank keywords would match every brand"))
}

func TestDefaultRules_ReturnsCopy(t *testing.T) {
	rs := DefaultRules()
	rs.Exact[0].Category = "Mutated"

	require.Equal(t, "Snacks", DefaultRules().Exact[0].Category)
}

func TestLoadRuleSet(t *testing.T) {
	rs, err := LoadRuleSet(strings.NewReader(`
exact:
  - match: "Zesto"
    category: Beverages
keywords:
  - category: Frozen
    keywords: [ice cream, frozen]
heuristics:
  - category: Pet Care
    keywords: [dog food]
default: Sari-Sari Items
`))
	require.NoError(t, err)

	c := New(rs)
	require.Equal(t, "Beverages", c.Classify("Zesto Orange"))
	require.Equal(t, "Frozen", c.Classify("Selecta Ice Cream"))
	require.Equal(t, "Pet Care", c.Classify("Pedigree Dog Food"))
	require.Equal(t, "Sari-Sari Items", c.Classify("Lucky Me! Pancit Canton"))
}

func TestLoadRuleSet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "exact: [unclosed"},
		{"exact without category", "exact:\n  - match: Zesto\n"},
		{"keyword without category", "keywords:\n  - keywords: [chips]\n"},
		{"heuristic without category", "heuristics:\n  - keywords: [gum]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRuleSet(strings.NewReader(tt.doc))
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.CodeValidation))
		})
	}
}

func TestLoadRuleFile_Example(t *testing.T) {
	rs, err := LoadRuleFile("../../attached_assets/category_rules.example.yaml")
	require.NoError(t, err)

	c := New(rs)
	require.Equal(t, "Noodles", c.Classify("Lucky Me! Beef Mami"))
	require.Equal(t, "Canned Goods", c.Classify("Century Tuna"))
	require.Equal(t, "Cooking Essentials", c.Classify("Datu Puti Vinegar"))
	require.Equal(t, DefaultCategory, c.Classify("Biogesic Tablet"))
}
