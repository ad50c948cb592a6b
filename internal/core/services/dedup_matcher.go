package services

import (
	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
)

// dedupMatcher compares draft signatures against the signatures of committed history.
// Two different events sharing date, amount and the 8 character description hash
// collide and are reported as duplicates.
type dedupMatcher struct{}

// NewDedupMatcher creates the signature based matcher.
func NewDedupMatcher() portssvc.DedupMatcherSvc {
	return dedupMatcher{}
}

var _ portssvc.DedupMatcherSvc = dedupMatcher{}

// Match has no side effects on its inputs. Drafts repeated inside the same file are
// only duplicates when history already holds them.
func (dedupMatcher) Match(drafts []domain.TransactionDraft, history []domain.Transaction) domain.MatchResult {
	known := make(map[string]struct{}, len(history))
	for _, t := range history {
		known[t.Signature()] = struct{}{}
	}

	res := domain.MatchResult{
		All:       make([]domain.TransactionDraft, 0, len(drafts)),
		Matched:   []domain.TransactionDraft{},
		Unmatched: []domain.TransactionDraft{},
		Total:     len(drafts),
	}
	for _, d := range drafts {
		_, dup := known[d.Signature()]
		d.Duplicate = dup
		if dup {
			res.Matched = append(res.Matched, d)
		} else {
			res.Unmatched = append(res.Unmatched, d)
		}
		res.All = append(res.All, d)
	}
	res.Duplicates = len(res.Matched)
	res.New = len(res.Unmatched)
	return res
}
