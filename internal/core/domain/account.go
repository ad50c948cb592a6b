package domain

// Account is the bank account a statement is imported into.
type Account struct {
	AccountID    string `json:"accountID"`    // Primary Key (UUID)
	OwnerID      string `json:"ownerID"`      // user owning the account and its categories
	Name         string `json:"name"`         // e.g. "Santander current account"
	CurrencyCode string `json:"currencyCode"` // FK -> currencies.currency_code
	IsActive     bool   `json:"isActive"`
	AuditFields
}
