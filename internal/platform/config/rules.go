package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ruleEntry is one categorization rule as written in the rules file.
type ruleEntry struct {
	Pattern      string   `mapstructure:"pattern" validate:"required"`
	Fields       []string `mapstructure:"fields" validate:"omitempty,dive,oneof=description counterparty bank_description"`
	CategoryID   string   `mapstructure:"category_id"`
	CategoryName string   `mapstructure:"category_name"`
	Counterparty string   `mapstructure:"counterparty"`
}

type rulesFile struct {
	Rules []ruleEntry `mapstructure:"rules" validate:"dive"`
}

// LoadCategorizationRules reads an ordered rule list from a YAML, JSON or TOML file:
//
//	rules:
//	  - pattern: "(?i)mercadona"
//	    fields: [description, counterparty]
//	    category_name: Groceries
//	    counterparty: Mercadona
//
// Patterns are compiled as written. A rule without category_id and category_name is kept but never matches.
func LoadCategorizationRules(path string) ([]domain.CategorizationRule, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading categorization rules %s: %w", path, err)
	}

	var file rulesFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decoding categorization rules %s: %w", path, err)
	}
	return compileRules(file.Rules)
}

func compileRules(entries []ruleEntry) ([]domain.CategorizationRule, error) {
	validate := validator.New()
	rules := make([]domain.CategorizationRule, 0, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, fmt.Errorf("categorization rule %d: %w", i+1, err)
		}
		pattern, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("categorization rule %d: invalid pattern %q: %w", i+1, e.Pattern, err)
		}
		rule := domain.CategorizationRule{
			Pattern:      pattern,
			CategoryID:   optional(e.CategoryID),
			CategoryName: optional(e.CategoryName),
			Counterparty: optional(e.Counterparty),
		}
		for _, f := range e.Fields {
			rule.Fields = append(rule.Fields, domain.RuleField(f))
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
