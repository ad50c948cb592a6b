package domain

// Category is a user-defined transaction category.
type Category struct {
	CategoryID string `json:"categoryID"`
	OwnerID    string `json:"ownerID"`
	Name       string `json:"name"`
	AuditFields
}
