package domain

import "regexp"

// RuleField names a draft field a categorization rule can look at.
type RuleField string

const (
	RuleFieldDescription     RuleField = "description"
	RuleFieldCounterparty    RuleField = "counterparty"
	RuleFieldBankDescription RuleField = "bank_description"
)

// CategorizationRule maps a pattern over selected draft fields to a category.
// Rules are evaluated in list order and the first match wins.
type CategorizationRule struct {
	Pattern      *regexp.Regexp
	Fields       []RuleField
	CategoryID   *string
	CategoryName *string
	Counterparty *string
}

// Inert reports whether the rule can never assign a category.
func (r CategorizationRule) Inert() bool {
	return r.Pattern == nil || (r.CategoryID == nil && r.CategoryName == nil)
}

// EffectiveFields returns the configured fields, defaulting to the description.
func (r CategorizationRule) EffectiveFields() []RuleField {
	if len(r.Fields) == 0 {
		return []RuleField{RuleFieldDescription}
	}
	return r.Fields
}
