// Package classifier assigns a category label to a free-text brand name.
//
// Classification walks an ordered chain of stages (exact brand fragments,
// product keywords, heuristic product families) and stops at the first rule
// whose keyword is a case-insensitive substring of the brand. When nothing
// matches, the rule set's default label is returned, so Classify never fails.
package classifier

import "strings"

type Stage string

const (
	StageExact     Stage = "exact"
	StageKeyword   Stage = "keyword"
	StageHeuristic Stage = "heuristic"
	StageDefault   Stage = "default"
)

// Rule maps any of its keywords to Category. Keywords are tried in order.
type Rule struct {
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Match describes how a brand was classified.
type Match struct {
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Stage    Stage  `json:"stage"`
	Keyword  string `json:"keyword,omitempty"`
}

type compiledRule struct {
	category string
	keywords []string
	lowered  []string
}

type stage struct {
	name  Stage
	rules []compiledRule
}

// Classifier is immutable once built and safe for concurrent use.
type Classifier struct {
	stages   []stage
	fallback string
}

func New(rs RuleSet) *Classifier {
	c := &Classifier{fallback: rs.Default}
	if c.fallback == "" {
		c.fallback = DefaultCategory
	}

	exact := make([]Rule, 0, len(rs.Exact))
	for _, r := range rs.Exact {
		exact = append(exact, Rule{Category: r.Category, Keywords: []string{r.Match}})
	}

	c.stages = []stage{
		compileStage(StageExact, exact),
		compileStage(StageKeyword, rs.Keywords),
		compileStage(StageHeuristic, rs.Heuristics),
	}
	return c
}

func compileStage(name Stage, rules []Rule) stage {
	s := stage{name: name, rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		cr := compiledRule{category: r.Category}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				continue
			}
			cr.keywords = append(cr.keywords, kw)
			cr.lowered = append(cr.lowered, strings.ToLower(kw))
		}
		s.rules = append(s.rules, cr)
	}
	return s
}

func (c *Classifier) Classify(brand string) string {
	return c.Explain(brand).Category
}

func (c *Classifier) Explain(brand string) Match {
	lowered := strings.ToLower(brand)

	for _, s := range c.stages {
		for _, r := range s.rules {
			for i, kw := range r.lowered {
				if strings.Contains(lowered, kw) {
					return Match{Brand: brand, Category: r.category, Stage: s.name, Keyword: r.keywords[i]}
				}
			}
		}
	}

	return Match{Brand: brand, Category: c.fallback, Stage: StageDefault}
}
