package models

// Account represents a row of the accounts table.
type Account struct {
	AccountID    string `db:"account_id"`
	OwnerID      string `db:"owner_id"`
	Name         string `db:"name"`
	CurrencyCode string `db:"currency_code"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}
