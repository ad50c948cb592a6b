package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	portsrepo "github.com/SscSPs/statement_importer/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
)

type categorizationService struct {
	BaseService
	categoryRepo portsrepo.CategoryReader
	rules        []domain.CategorizationRule
}

// CategorizationOption configures the categorization service
type CategorizationOption func(*categorizationService)

// WithCategorizationRules sets the ordered rule list used by CategorizeDrafts.
func WithCategorizationRules(rules []domain.CategorizationRule) CategorizationOption {
	return func(s *categorizationService) {
		s.rules = rules
	}
}

// NewCategorizationService creates a categorization service backed by the category repository.
func NewCategorizationService(repo portsrepo.CategoryReader, options ...CategorizationOption) portssvc.CategorizationSvc {
	svc := &categorizationService{categoryRepo: repo}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CategorizationSvc = (*categorizationService)(nil)

// Resolve applies, in order: the draft's own category id, its category name, then the rules.
func (s *categorizationService) Resolve(draft domain.TransactionDraft, categories []domain.Category, rules []domain.CategorizationRule) domain.Resolution {
	res := domain.Resolution{Counterparty: draft.Counterparty}
	if len(categories) == 0 {
		return res
	}

	if id := resolveCategory(draft.CategoryID, draft.CategoryName, categories); id != nil {
		res.CategoryID = id
		return res
	}

	for _, rule := range rules {
		if rule.Inert() {
			continue
		}
		if !rule.Pattern.MatchString(haystack(draft, rule.EffectiveFields())) {
			continue
		}
		id := resolveCategory(rule.CategoryID, rule.CategoryName, categories)
		if id == nil {
			// the rule points at a category the owner no longer has
			continue
		}
		res.CategoryID = id
		if rule.Counterparty != nil {
			res.Counterparty = rule.Counterparty
		}
		return res
	}
	return res
}

func (s *categorizationService) CategorizeDrafts(ctx context.Context, account domain.Account, drafts []domain.TransactionDraft) ([]domain.TransactionDraft, error) {
	categories, err := s.categoryRepo.ListCategoriesByOwner(ctx, account.OwnerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load categories", slog.String("owner_id", account.OwnerID))
		return nil, fmt.Errorf("failed to load categories for account %s: %w", account.AccountID, err)
	}

	out := make([]domain.TransactionDraft, len(drafts))
	categorized := 0
	for i, d := range drafts {
		res := s.Resolve(d, categories, s.rules)
		d.CategoryID = res.CategoryID
		d.Counterparty = res.Counterparty
		if d.CategoryID != nil {
			categorized++
		}
		out[i] = d
	}

	s.LogDebug(ctx, "Categorized drafts",
		slog.String("account_id", account.AccountID),
		slog.Int("drafts", len(drafts)),
		slog.Int("categorized", categorized))
	return out, nil
}

// resolveCategory validates an explicit id first, then matches a name case-insensitively.
func resolveCategory(id, name *string, categories []domain.Category) *string {
	if id != nil && *id != "" {
		for _, c := range categories {
			if c.CategoryID == *id {
				found := c.CategoryID
				return &found
			}
		}
	}
	if name != nil {
		want := strings.TrimSpace(*name)
		if want == "" {
			return nil
		}
		for _, c := range categories {
			if strings.EqualFold(strings.TrimSpace(c.Name), want) {
				found := c.CategoryID
				return &found
			}
		}
	}
	return nil
}

// haystack joins the selected fields with single spaces, skipping empty ones.
func haystack(d domain.TransactionDraft, fields []domain.RuleField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		var v string
		switch f {
		case domain.RuleFieldDescription:
			v = d.Description
		case domain.RuleFieldCounterparty:
			if d.Counterparty != nil {
				v = *d.Counterparty
			}
		case domain.RuleFieldBankDescription:
			v = d.BankDescription
		}
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
