package domain

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "EUR")
	Symbol       string `json:"symbol"`       // e.g., "€"
	Name         string `json:"name"`         // e.g., "Euro"
	Precision    int    `json:"precision"`    // minor units, usually 2
	AuditFields
}
