package domain

// ImportMode says whether an import was committed directly or staged for review.
type ImportMode string

const (
	ImportDirect   ImportMode = "direct"
	ImportReviewed ImportMode = "reviewed"
)

// ImportResult summarizes one import run or one batch approval.
type ImportResult struct {
	Mode         ImportMode         `json:"mode"`
	Parser       string             `json:"parser"`
	AccountID    string             `json:"accountID"`
	ImportID     *string            `json:"importID,omitempty"`
	BatchID      *string            `json:"batchID,omitempty"`
	Total        int                `json:"total"`
	Duplicates   int                `json:"duplicates"`
	New          int                `json:"new"`
	Committed    int                `json:"committed"`
	Unconverted  int                `json:"unconverted"`
	Drafts       []TransactionDraft `json:"drafts,omitempty"`
	Transactions []Transaction      `json:"transactions,omitempty"`
}

// Resolution is the category and counterparty chosen for one draft.
type Resolution struct {
	CategoryID   *string
	Counterparty *string
}
