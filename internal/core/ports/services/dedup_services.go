package services

import "github.com/SscSPs/statement_importer/internal/core/domain"

// DedupMatcherSvc partitions drafts into already-imported and new ones.
type DedupMatcherSvc interface {
	Match(drafts []domain.TransactionDraft, history []domain.Transaction) domain.MatchResult
}
