package domain

// MatchResult partitions a draft list against account history.
// Every slice keeps the input order; matched drafts carry Duplicate=true.
type MatchResult struct {
	All        []TransactionDraft `json:"all"`
	Matched    []TransactionDraft `json:"matched"`
	Unmatched  []TransactionDraft `json:"unmatched"`
	Total      int                `json:"total"`
	Duplicates int                `json:"duplicates"`
	New        int                `json:"new"`
}
