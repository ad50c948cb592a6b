package models

// Category represents a row of the transaction_categories table.
type Category struct {
	CategoryID string `db:"category_id"`
	OwnerID    string `db:"owner_id"`
	Name       string `db:"name"`
	AuditFields
}
