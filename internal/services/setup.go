package services

import (
	"fmt"
	"log/slog"

	"dashboard-datagen/internal/classifier"
	"dashboard-datagen/internal/config"
	"dashboard-datagen/internal/generator"
)

// NewGenerator builds the classifier and generator described by cfg. The
// built-in category rules are used unless a rules file is configured.
func NewGenerator(cfg config.GeneratorConfig, logger *slog.Logger) (*classifier.Classifier, *generator.Generator, error) {
	rules := classifier.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := classifier.LoadRuleFile(cfg.RulesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load category rules: %w", err)
		}
		rules = loaded
		logger.Info("category rules loaded", "file", cfg.RulesFile)
	}
	cls := classifier.New(rules)

	params := generator.DefaultParams()
	params.RecordCount = cfg.RecordCount
	params.AnchorDate = cfg.AnchorDate
	params.MaxSubstitutions = cfg.MaxSubstitutions
	params.Sampling = generator.Sampling(cfg.Sampling)

	opts := []generator.Option{generator.WithLogger(logger)}
	if cfg.Seed != 0 {
		opts = append(opts, generator.WithSeed(cfg.Seed))
	}

	gen, err := generator.New(cls, params, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cls, gen, nil
}
